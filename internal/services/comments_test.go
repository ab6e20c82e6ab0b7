package services

import (
	"testing"

	"hypoforum/internal/errs"
	"hypoforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLevelsCapAtFour(t *testing.T) {
	f := newFixture(t)
	op := f.user("thea", models.RoleHuman)
	th := f.thread(op)

	var parent *models.Comment
	var levels []int
	for i := 0; i < 6; i++ {
		c := f.comment(th, op, parent)
		levels = append(levels, c.Level)
		parent = c
	}
	assert.Equal(t, []int{1, 2, 3, 4, 4, 4}, levels)

	var got models.Thread
	f.reload(&got, th.ID)
	assert.Equal(t, 6, got.CommentCount)
	// only the level-2 comment counts as an answer
	assert.Equal(t, 1, got.AnswerCount)
}

func TestCreateCommentParentMustBeInThread(t *testing.T) {
	f := newFixture(t)
	op := f.user("thea", models.RoleHuman)
	th := f.thread(op)
	other := f.thread(op)
	c := f.comment(other, op, nil)

	_, _, err := f.core.Comments.Create(f.ctx, op, CreateCommentInput{ThreadID: th.ID, ParentID: &c.ID, Content: "hello there my friend"})
	assert.ErrorIs(t, err, errs.ErrCommentNotFound)

	_, _, err = f.core.Comments.Create(f.ctx, op, CreateCommentInput{ThreadID: 9999, Content: "hello there my friend"})
	assert.ErrorIs(t, err, errs.ErrThreadNotFound)

	_, _, err = f.core.Comments.Create(f.ctx, op, CreateCommentInput{ThreadID: th.ID, Content: "   "})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestCreateCommentNotifies(t *testing.T) {
	f := newFixture(t)
	op := f.user("thea", models.RoleHuman)
	ada := f.user("ada", models.RoleHuman)
	th := f.thread(op)

	root := f.comment(th, ada, nil)
	reply := f.comment(th, op, root)
	// replying to yourself is silent
	f.comment(th, op, nil)

	events := f.notifier.Events()
	require.Len(t, events, 2)
	assert.Equal(t, op.ID, events[0].RecipientID)
	assert.Equal(t, models.NotificationReply, events[0].Kind)
	assert.Equal(t, ada.ID, events[1].RecipientID)
	assert.Equal(t, reply.ID, events[1].CommentID)
}

func TestCreateCommentModeration(t *testing.T) {
	f := newFixture(t)
	f.core = NewCore(f.db, Options{Notifier: f.notifier})
	op := f.user("thea", models.RoleHuman)
	th := f.thread(op)

	_, _, err := f.core.Comments.Create(f.ctx, op, CreateCommentInput{
		ThreadID: th.ID,
		Content:  "Win the casino lottery prize!!! Visit bit.ly/x and act now, limited time offer",
	})
	require.Error(t, err)
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindModerationBlocked, e.Kind)
	assert.NotEmpty(t, e.Reasons)

	var count int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)

	c, warning, err := f.core.Comments.Create(f.ctx, op, CreateCommentInput{ThreadID: th.ID, Content: "see bit.ly/abc"})
	require.NoError(t, err)
	require.NotNil(t, warning)
	assert.Equal(t, ModerationFlag, warning.Action)
	assert.True(t, c.IsFlagged)
}

func TestEditComment(t *testing.T) {
	f := newFixture(t)
	op := f.user("thea", models.RoleHuman)
	ada := f.user("ada", models.RoleHuman)
	th := f.thread(op)
	c := f.comment(th, ada, nil)

	_, _, err := f.core.Comments.Edit(f.ctx, op, c.ID, "hijacked text goes here")
	assert.ErrorIs(t, err, errs.ErrNotCommentAuthor)

	edited, _, err := f.core.Comments.Edit(f.ctx, ada, c.ID, "a corrected derivation follows here")
	require.NoError(t, err)
	assert.Equal(t, 2, edited.Version)

	history, err := f.core.Comments.History(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a reply with enough words in it", history[0].Content)

	_, err = f.core.Lifecycle.Retract(f.ctx, ada, c.ID, "")
	require.NoError(t, err)
	_, _, err = f.core.Comments.Edit(f.ctx, ada, c.ID, "trying to edit a retracted one")
	assert.ErrorIs(t, err, errs.ErrCommentRetracted)
}
