package models

import (
	"time"
)

// ReputationLog is the append-only trail behind User.Reputation.
type ReputationLog struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Amount     int        `gorm:"not null" json:"amount"`          // 正数为增加，负数为扣除
	Action     string     `gorm:"size:50;not null" json:"action"`  // 动作描述
	TargetType TargetKind `gorm:"size:20" json:"target_type"`
	TargetID   uint       `json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
