package services

import (
	"context"
	"fmt"
	"time"

	"hypoforum/internal/db"
	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/metrics"
	"hypoforum/internal/models"
	"hypoforum/internal/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentLifecycle handles accept and retract.
//
// A comment is either active or retracted, and independently accepted or not.
// Retraction is terminal and does not clear acceptance; the accepted flag stays
// as a historical fact and the presentation layer hides the content.
type CommentLifecycle struct {
	db       *gorm.DB
	agg      AggregateUpdater
	notifier Notifier
	threads  *ThreadService
	auditor  *Auditor
}

// Accept marks commentID as the accepted answer of threadID. Only the thread
// author may accept. Any previously accepted comment in the thread loses the
// flag; its author keeps the reputation already granted.
// Accepting the comment that is already accepted changes nothing.
func (l *CommentLifecycle) Accept(ctx context.Context, actor *models.User, threadID, commentID uint) (*models.Comment, error) {
	var (
		comment models.Comment
		thread  models.Thread
		changed bool
	)
	err := db.WithTx(ctx, l.db, func(tx *gorm.DB) error {
		if err := db.ForUpdate(tx).Take(&thread, "id = ?", threadID).Error; err != nil {
			return notFound(err, errs.ErrThreadNotFound)
		}
		if err := db.ForUpdate(tx).Take(&comment, "id = ? AND thread_id = ?", commentID, threadID).Error; err != nil {
			return notFound(err, errs.ErrCommentNotFound)
		}
		if thread.AuthorID != actor.ID {
			return errs.ErrNotThreadAuthor
		}
		if comment.IsRetracted {
			return errs.ErrCommentRetracted
		}
		if comment.IsAccepted {
			return nil
		}

		// 同一帖子只能有一个采纳
		if err := tx.Model(&models.Comment{}).
			Where("thread_id = ? AND is_accepted = ? AND id <> ?", threadID, true, commentID).
			UpdateColumn("is_accepted", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&comment).UpdateColumn("is_accepted", true).Error; err != nil {
			return err
		}
		comment.IsAccepted = true

		if err := l.agg.AdjustReputation(tx, comment.AuthorID, ReputationAccept, ActionAnswerAccepted,
			models.CommentTarget{ID: comment.ID}); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&thread).UpdateColumns(map[string]interface{}{
			"status":           models.StatusPartiallySolved,
			"last_activity_at": now,
		}).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return &comment, nil
	}

	metrics.LifecycleTotal.WithLabelValues("accept").Inc()
	logger.FromContext(ctx).Info("comment accepted",
		zap.Uint("thread_id", threadID), zap.Uint("comment_id", commentID), zap.Uint("actor_id", actor.ID))

	l.threads.Invalidate(threadID)
	l.auditor.ScheduleCheck(threadID)

	ev := notify.NewEvent(models.NotificationAccept, comment.AuthorID, actor.ID,
		fmt.Sprintf("Your answer in \"%s\" was accepted", thread.Title), "")
	ev.ThreadID = threadID
	ev.CommentID = comment.ID
	emit(ctx, l.notifier, ev)

	return &comment, nil
}

// Retract withdraws the author's own comment. The content stays stored but is
// hidden on read, and the author loses 200 reputation. Retraction happens once.
func (l *CommentLifecycle) Retract(ctx context.Context, actor *models.User, commentID uint, reason string) (*models.Comment, error) {
	var comment models.Comment
	err := db.WithTx(ctx, l.db, func(tx *gorm.DB) error {
		if err := db.ForUpdate(tx).Take(&comment, "id = ?", commentID).Error; err != nil {
			return notFound(err, errs.ErrCommentNotFound)
		}
		if comment.AuthorID != actor.ID {
			return errs.ErrNotCommentAuthor
		}
		if comment.IsRetracted {
			return errs.ErrCommentRetracted
		}

		if err := tx.Model(&comment).UpdateColumns(map[string]interface{}{
			"is_retracted":   true,
			"retract_reason": reason,
		}).Error; err != nil {
			return err
		}
		comment.IsRetracted = true
		comment.RetractReason = reason

		return l.agg.AdjustReputation(tx, comment.AuthorID, ReputationRetract, ActionCommentRetracted,
			models.CommentTarget{ID: comment.ID})
	})
	if err != nil {
		return nil, err
	}

	metrics.LifecycleTotal.WithLabelValues("retract").Inc()
	logger.FromContext(ctx).Info("comment retracted",
		zap.Uint("comment_id", commentID), zap.Uint("actor_id", actor.ID))

	l.threads.Invalidate(comment.ThreadID)
	return &comment, nil
}
