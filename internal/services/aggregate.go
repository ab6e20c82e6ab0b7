package services

import (
	"hypoforum/internal/errs"
	"hypoforum/internal/models"

	"gorm.io/gorm"
)

// 声望动作
const (
	ActionVoteCast         = "vote_cast"
	ActionVoteChanged      = "vote_changed"
	ActionVoteWithdrawn    = "vote_withdrawn"
	ActionAnswerAccepted   = "answer_accepted"
	ActionCommentRetracted = "comment_retracted"
)

// 声望分值
const (
	ReputationAccept  = 1000
	ReputationRetract = -200
)

// AggregateUpdater is the only code that writes vote_count and reputation.
// It runs inside the caller's transaction so the ledger row and the
// derived numbers commit together.
type AggregateUpdater struct{}

// ApplyVoteDelta moves the target's vote_count (content only) and the
// recipient's reputation by delta.
func (a AggregateUpdater) ApplyVoteDelta(tx *gorm.DB, ref TargetRef, delta int, action string) error {
	if delta == 0 {
		return nil
	}

	var model interface{}
	switch ref.Target.(type) {
	case models.ThreadTarget:
		model = &models.Thread{}
	case models.CommentTarget:
		model = &models.Comment{}
	case models.UserTarget:
		// 用户没有 vote_count，只影响声望
	}

	if model != nil {
		res := tx.Model(model).
			Where("id = ?", ref.Target.TargetID()).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrTargetNotFound
		}
	}

	return a.AdjustReputation(tx, ref.RecipientID, delta, action, ref.Target)
}

// AdjustReputation 记录明细并更新用户声望
func (AggregateUpdater) AdjustReputation(tx *gorm.DB, userID uint, amount int, action string, target models.Target) error {
	if amount == 0 {
		return nil
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}

	log := models.ReputationLog{
		UserID: userID,
		Amount: amount,
		Action: action,
	}
	if target != nil {
		log.TargetType = target.Kind()
		log.TargetID = target.TargetID()
	}
	return tx.Create(&log).Error
}
