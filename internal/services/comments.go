package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hypoforum/internal/db"
	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/models"
	"hypoforum/internal/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCommentLength = 20000

type CreateCommentInput struct {
	ThreadID uint
	ParentID *uint
	Content  string
}

type CommentService struct {
	db       *gorm.DB
	filter   ContentFilter
	notifier Notifier
	threads  *ThreadService
	auditor  *Auditor
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Validation("content is required")
	}
	if len([]rune(content)) > maxCommentLength {
		return errs.Validation(fmt.Sprintf("content must be at most %d characters", maxCommentLength))
	}
	return nil
}

// Create adds a comment or reply to a thread. Replies sit one level below
// their parent, capped at MaxCommentLevel. Second-level comments count as answers.
func (s *CommentService) Create(ctx context.Context, author *models.User, in CreateCommentInput) (*models.Comment, *ModerationResult, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, nil, err
	}

	verdict := moderate(s.filter, in.Content, "")
	if verdict.Action == ModerationBlock {
		return nil, nil, errs.ErrModerationBlocked.WithReasons(verdict.Reasons)
	}

	var (
		comment models.Comment
		thread  models.Thread
		parent  models.Comment
	)
	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Select("id", "author_id", "title").Take(&thread, "id = ?", in.ThreadID).Error; err != nil {
			return notFound(err, errs.ErrThreadNotFound)
		}

		level := 1
		if in.ParentID != nil {
			err := tx.Select("id", "author_id", "level").
				Take(&parent, "id = ? AND thread_id = ?", *in.ParentID, in.ThreadID).Error
			if err != nil {
				return notFound(err, errs.ErrCommentNotFound)
			}
			level = parent.ChildLevel()
		}

		comment = models.Comment{
			ThreadID:          in.ThreadID,
			AuthorID:          author.ID,
			ParentID:          in.ParentID,
			Content:           in.Content,
			Level:             level,
			IsFlagged:         verdict.Flagged(),
			ModerationScore:   verdict.Score,
			ModerationReasons: verdict.Reasons,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		answerDelta := 0
		if level == 2 {
			answerDelta = 1
		}
		return tx.Model(&models.Thread{}).Where("id = ?", in.ThreadID).UpdateColumns(map[string]interface{}{
			"comment_count":    gorm.Expr("comment_count + 1"),
			"answer_count":     gorm.Expr("answer_count + ?", answerDelta),
			"last_activity_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}
	comment.Author = *author

	logger.FromContext(ctx).Info("comment created",
		zap.Uint("comment_id", comment.ID), zap.Uint("thread_id", in.ThreadID),
		zap.Int("level", comment.Level), zap.Bool("flagged", comment.IsFlagged))

	s.threads.Invalidate(in.ThreadID)
	s.auditor.ScheduleCheck(in.ThreadID)

	// 回复通知父评论作者，否则通知帖子作者
	recipient := thread.AuthorID
	title := fmt.Sprintf("%s commented on \"%s\"", author.Username, thread.Title)
	if in.ParentID != nil {
		recipient = parent.AuthorID
		title = fmt.Sprintf("%s replied to your comment in \"%s\"", author.Username, thread.Title)
	}
	ev := notify.NewEvent(models.NotificationReply, recipient, author.ID, title, excerpt(in.Content, 140))
	ev.ThreadID = in.ThreadID
	ev.CommentID = comment.ID
	emit(ctx, s.notifier, ev)

	if verdict.Flagged() {
		return &comment, &verdict, nil
	}
	return &comment, nil, nil
}

// Edit replaces the content of the author's own comment and keeps the old
// text in the edit history. Retracted comments are frozen.
func (s *CommentService) Edit(ctx context.Context, actor *models.User, commentID uint, content string) (*models.Comment, *ModerationResult, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, nil, err
	}

	verdict := moderate(s.filter, content, "")
	if verdict.Action == ModerationBlock {
		return nil, nil, errs.ErrModerationBlocked.WithReasons(verdict.Reasons)
	}

	var comment models.Comment
	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := db.ForUpdate(tx).Take(&comment, "id = ?", commentID).Error; err != nil {
			return notFound(err, errs.ErrCommentNotFound)
		}
		if comment.AuthorID != actor.ID {
			return errs.ErrNotCommentAuthor
		}
		if comment.IsRetracted {
			return errs.ErrCommentRetracted
		}

		edit := models.CommentEdit{
			CommentID: comment.ID,
			Content:   comment.Content,
			EditedBy:  actor.ID,
			EditedAt:  time.Now(),
		}
		if err := tx.Create(&edit).Error; err != nil {
			return err
		}

		comment.Content = content
		comment.Version++
		comment.IsFlagged = verdict.Flagged()
		comment.ModerationScore = verdict.Score
		comment.ModerationReasons = verdict.Reasons
		return tx.Model(&comment).Select("content", "version", "is_flagged", "moderation_score", "moderation_reasons", "updated_at").
			Updates(&comment).Error
	})
	if err != nil {
		return nil, nil, err
	}

	logger.FromContext(ctx).Info("comment edited",
		zap.Uint("comment_id", comment.ID), zap.Int("version", comment.Version))
	s.threads.Invalidate(comment.ThreadID)

	if verdict.Flagged() {
		return &comment, &verdict, nil
	}
	return &comment, nil, nil
}

// History lists earlier versions of a comment, oldest first.
func (s *CommentService) History(ctx context.Context, commentID uint) ([]models.CommentEdit, error) {
	var edits []models.CommentEdit
	err := s.db.WithContext(ctx).Where("comment_id = ?", commentID).Order("edited_at ASC, id ASC").Find(&edits).Error
	return edits, errs.Ensure(err)
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
