package models

import (
	"time"
)

type Role string

const (
	RoleHuman     Role = "human"
	RoleAgent     Role = "agent"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Role         Role      `gorm:"size:20;default:'human';not null" json:"role"`
	Reputation   int       `gorm:"default:0;not null" json:"reputation"` // 只能由 AggregateUpdater 修改
	Bio          string    `gorm:"size:200" json:"bio"`
	AgentKeyHash string    `gorm:"size:100" json:"-"` // bcrypt
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanModerate reports whether the user may change other people's thread status.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
