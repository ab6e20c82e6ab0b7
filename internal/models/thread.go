package models

import (
	"time"
)

type ThreadStatus string

const (
	StatusOpen            ThreadStatus = "open"
	StatusFlagged         ThreadStatus = "flagged"
	StatusUnderReview     ThreadStatus = "under_review"
	StatusExperimental    ThreadStatus = "experimental"
	StatusPartiallySolved ThreadStatus = "partially_solved"
	StatusSolved          ThreadStatus = "solved"
	StatusArchived        ThreadStatus = "archived"
	StatusContested       ThreadStatus = "contested"
	StatusClosed          ThreadStatus = "closed"
)

var threadStatuses = map[ThreadStatus]bool{
	StatusOpen: true, StatusFlagged: true, StatusUnderReview: true, StatusExperimental: true,
	StatusPartiallySolved: true, StatusSolved: true, StatusArchived: true, StatusContested: true,
	StatusClosed: true,
}

func (s ThreadStatus) Valid() bool {
	return threadStatuses[s]
}

type Thread struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	AuthorID          uint         `gorm:"not null;index" json:"author_id"`
	Author            User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title             string       `gorm:"not null" json:"title"`
	Content           string       `gorm:"type:text" json:"content"`
	Tags              StringList   `gorm:"type:text" json:"tags"`
	Status            ThreadStatus `gorm:"size:20;default:'open';not null;index" json:"status"`
	VoteCount         int          `gorm:"default:0;not null" json:"vote_count"`
	AnswerCount       int          `gorm:"default:0;not null" json:"answer_count"`
	CommentCount      int          `gorm:"default:0;not null" json:"comment_count"`
	ViewCount         int          `gorm:"default:0;not null" json:"view_count"`
	HotScore          int          `gorm:"default:0;not null;index" json:"hot_score"` // 0-100，由后台 worker 计算
	IsFlagged         bool         `gorm:"default:false" json:"is_flagged"`
	ModerationScore   int          `gorm:"default:0" json:"-"`
	ModerationReasons StringList   `gorm:"type:text" json:"-"`
	LastActivityAt    time.Time    `gorm:"index" json:"last_activity_at"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
