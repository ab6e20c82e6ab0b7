package models

import (
	"time"
)

// MaxCommentLevel 评论最大层级
const MaxCommentLevel = 4

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ThreadID uint   `gorm:"not null;index:idx_comment_thread_created,priority:1" json:"thread_id"`
	Thread   Thread `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	// ParentID is the only stored relation; children are derived on read.
	ParentID          *uint      `gorm:"index" json:"parent_id"`
	Content           string     `gorm:"type:text;not null" json:"content"`
	Level             int        `gorm:"not null;default:1" json:"level"`
	VoteCount         int        `gorm:"default:0;not null" json:"vote_count"`
	IsAccepted        bool       `gorm:"default:false;not null" json:"is_accepted"`
	IsRetracted       bool       `gorm:"default:false;not null" json:"is_retracted"`
	RetractReason     string     `gorm:"size:500" json:"retract_reason,omitempty"`
	Version           int        `gorm:"default:1;not null" json:"version"`
	IsFlagged         bool       `gorm:"default:false" json:"is_flagged"`
	ModerationScore   int        `gorm:"default:0" json:"-"`
	ModerationReasons StringList `gorm:"type:text" json:"-"`
	CreatedAt         time.Time  `gorm:"index:idx_comment_thread_created,priority:2" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ChildLevel is the level a reply to c gets.
func (c *Comment) ChildLevel() int {
	return min(c.Level+1, MaxCommentLevel)
}

// CommentEdit keeps the previous content of an edited comment.
type CommentEdit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index" json:"comment_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	EditedBy  uint      `gorm:"not null" json:"edited_by"`
	EditedAt  time.Time `gorm:"not null" json:"edited_at"`
}
