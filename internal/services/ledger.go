package services

import (
	"hypoforum/internal/db"
	"hypoforum/internal/errs"
	"hypoforum/internal/models"

	"gorm.io/gorm"
)

// TargetRef is a locked, existing vote target and whose reputation it feeds.
type TargetRef struct {
	Target      models.Target
	RecipientID uint
	// ThreadID is the thread the target lives in, zero for users.
	ThreadID uint
	Title    string
}

// LedgerEntry is the outcome of writing one vote row.
type LedgerEntry struct {
	Vote     models.Vote
	Previous int // value before the write, 0 when the row is new
	Created  bool
}

func (e LedgerEntry) Delta() int {
	return e.Vote.Value - e.Previous
}

// VoteLedger owns the votes table: at most one row per (voter, target).
// All methods take the caller's transaction.
type VoteLedger struct{}

// CheckVote validates the vote type and role rules that need no storage.
func (VoteLedger) CheckVote(voter *models.User, target models.Target, voteType models.VoteType) (int, error) {
	value, ok := voteType.Value()
	if !ok {
		return 0, errs.ErrInvalidVoteType
	}
	if voteType == models.VoteEndorse {
		if voter.Role == models.RoleAgent || !models.IsContent(target) {
			return 0, errs.ErrEndorsementRole
		}
	}
	return value, nil
}

// Resolve locks the target row and finds the user whose reputation it feeds.
func (VoteLedger) Resolve(tx *gorm.DB, target models.Target) (TargetRef, error) {
	switch t := target.(type) {
	case models.ThreadTarget:
		var thread models.Thread
		err := db.ForUpdate(tx).Select("id", "author_id", "title").Take(&thread, "id = ?", t.ID).Error
		if err != nil {
			return TargetRef{}, notFound(err, errs.ErrTargetNotFound)
		}
		return TargetRef{Target: t, RecipientID: thread.AuthorID, ThreadID: thread.ID, Title: thread.Title}, nil

	case models.CommentTarget:
		var comment models.Comment
		err := db.ForUpdate(tx).Select("id", "author_id", "thread_id").Take(&comment, "id = ?", t.ID).Error
		if err != nil {
			return TargetRef{}, notFound(err, errs.ErrTargetNotFound)
		}
		return TargetRef{Target: t, RecipientID: comment.AuthorID, ThreadID: comment.ThreadID}, nil

	case models.UserTarget:
		var user models.User
		err := tx.Select("id", "username").Take(&user, "id = ?", t.ID).Error
		if err != nil {
			return TargetRef{}, notFound(err, errs.ErrTargetNotFound)
		}
		return TargetRef{Target: t, RecipientID: user.ID, Title: user.Username}, nil

	default:
		return TargetRef{}, errs.ErrInvalidTargetType
	}
}

// Put inserts the voter's vote or overwrites the existing one.
func (VoteLedger) Put(tx *gorm.DB, voterID uint, target models.Target, voteType models.VoteType, value int) (LedgerEntry, error) {
	var existing models.Vote
	err := tx.Where("voter_id = ? AND target_type = ? AND target_id = ?", voterID, target.Kind(), target.TargetID()).
		Take(&existing).Error
	switch {
	case err == nil:
		entry := LedgerEntry{Previous: existing.Value}
		if existing.VoteType != voteType || existing.Value != value {
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"vote_type": voteType,
				"value":     value,
			}).Error; err != nil {
				return LedgerEntry{}, err
			}
		}
		entry.Vote = existing
		entry.Vote.VoteType = voteType
		entry.Vote.Value = value
		return entry, nil

	case db.IsNotFound(err):
		vote := models.Vote{
			VoterID:    voterID,
			TargetType: target.Kind(),
			TargetID:   target.TargetID(),
			VoteType:   voteType,
			Value:      value,
		}
		// 并发插入会撞唯一索引，由调用方重试
		if err := tx.Create(&vote).Error; err != nil {
			return LedgerEntry{}, err
		}
		return LedgerEntry{Vote: vote, Created: true}, nil

	default:
		return LedgerEntry{}, err
	}
}

// Remove deletes the voter's vote and returns it.
func (VoteLedger) Remove(tx *gorm.DB, voterID uint, target models.Target) (models.Vote, error) {
	var vote models.Vote
	err := tx.Where("voter_id = ? AND target_type = ? AND target_id = ?", voterID, target.Kind(), target.TargetID()).
		Take(&vote).Error
	if err != nil {
		return models.Vote{}, notFound(err, errs.ErrVoteNotFound)
	}
	if err := tx.Delete(&vote).Error; err != nil {
		return models.Vote{}, err
	}
	return vote, nil
}

// List returns the voter's votes, newest first.
func (VoteLedger) List(tx *gorm.DB, voterID uint, kind models.TargetKind, limit int) ([]models.Vote, error) {
	q := tx.Where("voter_id = ?", voterID)
	if kind != "" {
		q = q.Where("target_type = ?", kind)
	}
	var votes []models.Vote
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&votes).Error
	return votes, err
}

// notFound maps gorm's not-found to typed, leaving other errors as they are.
func notFound(err error, typed *errs.Error) error {
	if db.IsNotFound(err) {
		return typed
	}
	return err
}
