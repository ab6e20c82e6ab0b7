package services

import (
	"context"
	"fmt"

	"hypoforum/internal/db"
	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/metrics"
	"hypoforum/internal/models"
	"hypoforum/internal/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxVoteAttempts bounds retries when two first votes race on the unique index.
const maxVoteAttempts = 3

type CastVoteResult struct {
	AppliedValue int  `json:"appliedValue"`
	Delta        int  `json:"delta"`
	Created      bool `json:"created"`
}

type VoteService struct {
	db       *gorm.DB
	ledger   VoteLedger
	agg      AggregateUpdater
	notifier Notifier
	threads  *ThreadService
	auditor  *Auditor
}

// CastVote records voter's vote on target, replacing any previous vote by the
// same voter. Aggregates move by the difference between new and old value.
// Checks run in this order: target exists, not self, then vote type and role.
func (s *VoteService) CastVote(ctx context.Context, voter *models.User, target models.Target, voteType models.VoteType) (*CastVoteResult, error) {
	var (
		ref   TargetRef
		entry LedgerEntry
		err   error
	)
	for attempt := 1; ; attempt++ {
		err = db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
			var err error
			ref, err = s.ledger.Resolve(tx, target)
			if err != nil {
				return err
			}
			if ref.RecipientID == voter.ID {
				return errs.ErrSelfVote
			}
			value, err := s.ledger.CheckVote(voter, target, voteType)
			if err != nil {
				return err
			}

			entry, err = s.ledger.Put(tx, voter.ID, target, voteType, value)
			if err != nil {
				return err
			}

			action := ActionVoteChanged
			if entry.Created {
				action = ActionVoteCast
			}
			return s.agg.ApplyVoteDelta(tx, ref, entry.Delta(), action)
		})
		if err == nil || !db.IsDuplicateKey(err) || attempt >= maxVoteAttempts {
			break
		}
		// 另一个事务先插入了同一张票，重来一次走更新分支
		metrics.VoteRetries.Inc()
	}
	if err != nil {
		metrics.VotesTotal.WithLabelValues(string(voteType), "rejected").Inc()
		return nil, err
	}

	outcome := "changed"
	switch {
	case entry.Created:
		outcome = "created"
	case entry.Delta() == 0:
		outcome = "unchanged"
	}
	metrics.VotesTotal.WithLabelValues(string(voteType), outcome).Inc()

	logger.FromContext(ctx).Info("vote cast",
		zap.Uint("voter_id", voter.ID),
		zap.String("target_type", string(target.Kind())),
		zap.Uint("target_id", target.TargetID()),
		zap.String("vote_type", string(voteType)),
		zap.Int("delta", entry.Delta()),
	)

	s.afterWrite(ref)
	if entry.Created && models.IsContent(target) {
		s.notifyVote(ctx, voter, ref, voteType)
	}

	return &CastVoteResult{
		AppliedValue: entry.Vote.Value,
		Delta:        entry.Delta(),
		Created:      entry.Created,
	}, nil
}

// WithdrawVote removes the voter's vote and reverses its contribution.
// It returns the signed change applied to the aggregates.
func (s *VoteService) WithdrawVote(ctx context.Context, voter *models.User, target models.Target) (int, error) {
	var (
		ref  TargetRef
		vote models.Vote
	)
	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		ref, err = s.ledger.Resolve(tx, target)
		if err != nil {
			return err
		}
		vote, err = s.ledger.Remove(tx, voter.ID, target)
		if err != nil {
			return err
		}
		return s.agg.ApplyVoteDelta(tx, ref, -vote.Value, ActionVoteWithdrawn)
	})
	if err != nil {
		return 0, err
	}

	metrics.VotesTotal.WithLabelValues(string(vote.VoteType), "withdrawn").Inc()
	logger.FromContext(ctx).Info("vote withdrawn",
		zap.Uint("voter_id", voter.ID),
		zap.String("target_type", string(target.Kind())),
		zap.Uint("target_id", target.TargetID()),
		zap.Int("delta", -vote.Value),
	)

	s.afterWrite(ref)
	return -vote.Value, nil
}

// ListVotes returns the caller's own votes, optionally filtered by target type.
func (s *VoteService) ListVotes(ctx context.Context, voterID uint, kind models.TargetKind, limit int) ([]models.Vote, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	votes, err := s.ledger.List(s.db.WithContext(ctx), voterID, kind, limit)
	return votes, errs.Ensure(err)
}

func (s *VoteService) afterWrite(ref TargetRef) {
	if ref.ThreadID == 0 {
		return
	}
	s.threads.Invalidate(ref.ThreadID)
	s.auditor.ScheduleCheck(ref.ThreadID)
}

func (s *VoteService) notifyVote(ctx context.Context, voter *models.User, ref TargetRef, voteType models.VoteType) {
	kind := models.NotificationVote
	if voteType == models.VoteEndorse {
		kind = models.NotificationEndorse
	}

	var title string
	switch ref.Target.(type) {
	case models.ThreadTarget:
		title = fmt.Sprintf("%s %sd your thread \"%s\"", voter.Username, voteType, ref.Title)
	case models.CommentTarget:
		title = fmt.Sprintf("%s %sd your comment", voter.Username, voteType)
	case models.UserTarget:
		// 用户目标不发通知
		return
	}

	ev := notify.NewEvent(kind, ref.RecipientID, voter.ID, title, "")
	ev.ThreadID = ref.ThreadID
	if c, ok := ref.Target.(models.CommentTarget); ok {
		ev.CommentID = c.ID
	}
	emit(ctx, s.notifier, ev)
}
