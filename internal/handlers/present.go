package handlers

import (
	"time"

	"hypoforum/internal/models"
	"hypoforum/internal/services"
	"hypoforum/internal/utils"
)

// RetractedMarker replaces the content of retracted comments on read.
const RetractedMarker = "[retracted]"

type UserSummary struct {
	ID         uint        `json:"id"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	Reputation int         `json:"reputation"`
	Tier       string      `json:"tier"`
}

func newUserSummary(u models.User) UserSummary {
	tier, _ := utils.ReputationTier(u.Reputation)
	return UserSummary{ID: u.ID, Username: u.Username, Role: u.Role, Reputation: u.Reputation, Tier: tier}
}

type CommentView struct {
	ID            uint          `json:"id"`
	ThreadID      uint          `json:"thread_id"`
	ParentID      *uint         `json:"parent_id"`
	Author        UserSummary   `json:"author"`
	Content       string        `json:"content"`
	ContentHTML   string        `json:"content_html"`
	Level         int           `json:"level"`
	VoteCount     int           `json:"vote_count"`
	IsAccepted    bool          `json:"is_accepted"`
	IsRetracted   bool          `json:"is_retracted"`
	RetractReason string        `json:"retract_reason,omitempty"`
	Version       int           `json:"version"`
	IsFlagged     bool          `json:"is_flagged"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Children      []CommentView `json:"children"`
}

// newCommentView renders one comment; retracted content is redacted here and
// nowhere else.
func newCommentView(c models.Comment) CommentView {
	v := CommentView{
		ID:            c.ID,
		ThreadID:      c.ThreadID,
		ParentID:      c.ParentID,
		Author:        newUserSummary(c.Author),
		Level:         c.Level,
		VoteCount:     c.VoteCount,
		IsAccepted:    c.IsAccepted,
		IsRetracted:   c.IsRetracted,
		RetractReason: c.RetractReason,
		Version:       c.Version,
		IsFlagged:     c.IsFlagged,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Children:      []CommentView{},
	}
	if c.IsRetracted {
		v.Content = RetractedMarker
		v.ContentHTML = "<p>" + RetractedMarker + "</p>"
	} else {
		v.Content = c.Content
		v.ContentHTML = string(utils.RenderMarkdown(c.Content))
	}
	return v
}

func newCommentTree(nodes []*services.CommentNode) []CommentView {
	out := make([]CommentView, 0, len(nodes))
	for _, n := range nodes {
		v := newCommentView(n.Comment)
		v.Children = newCommentTree(n.Children)
		out = append(out, v)
	}
	return out
}

type ThreadView struct {
	ID             uint                `json:"id"`
	Author         UserSummary         `json:"author"`
	Title          string              `json:"title"`
	Content        string              `json:"content,omitempty"`
	ContentHTML    string              `json:"content_html,omitempty"`
	Tags           []string            `json:"tags"`
	Status         models.ThreadStatus `json:"status"`
	VoteCount      int                 `json:"vote_count"`
	AnswerCount    int                 `json:"answer_count"`
	CommentCount   int                 `json:"comment_count"`
	ViewCount      int                 `json:"view_count"`
	HotScore       int                 `json:"hot_score"`
	IsFlagged      bool                `json:"is_flagged"`
	LastActivityAt time.Time           `json:"last_activity_at"`
	CreatedAt      time.Time           `json:"created_at"`
}

type ThreadDetailView struct {
	ThreadView
	Comments []CommentView `json:"comments"`
}

func newThreadView(t models.Thread, withBody bool) ThreadView {
	v := ThreadView{
		ID:             t.ID,
		Author:         newUserSummary(t.Author),
		Title:          t.Title,
		Tags:           t.Tags,
		Status:         t.Status,
		VoteCount:      t.VoteCount,
		AnswerCount:    t.AnswerCount,
		CommentCount:   t.CommentCount,
		ViewCount:      t.ViewCount,
		HotScore:       t.HotScore,
		IsFlagged:      t.IsFlagged,
		LastActivityAt: t.LastActivityAt,
		CreatedAt:      t.CreatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if withBody {
		v.Content = t.Content
		v.ContentHTML = string(utils.RenderMarkdown(t.Content))
	}
	return v
}

func newThreadDetailView(d *services.ThreadDetail) ThreadDetailView {
	return ThreadDetailView{
		ThreadView: newThreadView(d.Thread, true),
		Comments:   newCommentTree(d.Comments),
	}
}
