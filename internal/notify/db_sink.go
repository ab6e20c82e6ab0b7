package notify

import (
	"context"

	"hypoforum/internal/db"
	"hypoforum/internal/models"

	"gorm.io/gorm"
)

// DBSink stores events as notification rows for the inbox.
type DBSink struct {
	db *gorm.DB
}

func NewDBSink(gdb *gorm.DB) *DBSink {
	return &DBSink{db: gdb}
}

func (s *DBSink) Name() string { return "db" }

func (s *DBSink) Deliver(ctx context.Context, ev Event) error {
	n := models.Notification{
		EventID:     ev.ID,
		RecipientID: ev.RecipientID,
		Kind:        ev.Kind,
		Title:       ev.Title,
		Content:     ev.Content,
		CreatedAt:   ev.CreatedAt,
	}
	if ev.SenderID != 0 {
		sender := ev.SenderID
		n.SenderID = &sender
	}
	if ev.ThreadID != 0 {
		threadID := ev.ThreadID
		n.ThreadID = &threadID
	}
	if ev.CommentID != 0 {
		commentID := ev.CommentID
		n.CommentID = &commentID
	}

	err := s.db.WithContext(ctx).Create(&n).Error
	if db.IsDuplicateKey(err) {
		// already delivered
		return nil
	}
	return err
}
