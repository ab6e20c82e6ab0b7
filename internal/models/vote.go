package models

import (
	"time"
)

type VoteType string

const (
	VoteUpvote   VoteType = "upvote"
	VoteDownvote VoteType = "downvote"
	VoteEndorse  VoteType = "endorse"
	// VoteAccept is never stored; acceptance goes through the comment lifecycle.
	VoteAccept VoteType = "accept"
)

// 投票分值表
var voteValues = map[VoteType]int{
	VoteUpvote:   10,
	VoteDownvote: -2,
	VoteEndorse:  100,
}

// Value returns the ledger value for t, ok is false for accept and unknown types.
func (t VoteType) Value() (int, bool) {
	v, ok := voteValues[t]
	return v, ok
}

// Vote is unique per (voter, target_type, target_id).
type Vote struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	VoterID    uint       `gorm:"not null;uniqueIndex:idx_vote_voter_target,priority:1" json:"voter_id"`
	TargetType TargetKind `gorm:"size:20;not null;uniqueIndex:idx_vote_voter_target,priority:2;index:idx_vote_target,priority:1" json:"target_type"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_vote_voter_target,priority:3;index:idx_vote_target,priority:2" json:"target_id"`
	VoteType   VoteType   `gorm:"size:20;not null" json:"vote_type"`
	Value      int        `gorm:"not null" json:"value"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
