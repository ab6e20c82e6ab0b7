package models

import (
	"time"
)

type NotificationKind string

const (
	NotificationVote         NotificationKind = "vote"
	NotificationEndorse      NotificationKind = "endorse"
	NotificationReply        NotificationKind = "reply"
	NotificationAccept       NotificationKind = "accept"
	NotificationStatusChange NotificationKind = "status_change"
)

type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	EventID     string           `gorm:"size:36;uniqueIndex" json:"event_id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"` // Receiver
	SenderID    *uint            `gorm:"index" json:"sender_id"`
	Sender      *User            `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"sender,omitempty"`
	Kind        NotificationKind `gorm:"size:20;not null" json:"kind"`
	Title       string           `gorm:"not null" json:"title"`
	Content     string           `gorm:"type:text" json:"content"`
	ThreadID    *uint            `json:"thread_id,omitempty"`
	CommentID   *uint            `json:"comment_id,omitempty"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
