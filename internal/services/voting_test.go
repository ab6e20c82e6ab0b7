package services

import (
	"fmt"
	"sync"
	"testing"

	"hypoforum/internal/errs"
	"hypoforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVoteUpvoteThenDownvote(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)
	c := f.comment(th, author, nil)
	target := models.CommentTarget{ID: c.ID}

	res, err := f.core.Votes.CastVote(f.ctx, voter, target, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, 10, res.AppliedValue)
	assert.Equal(t, 10, res.Delta)
	assert.True(t, res.Created)
	assert.Equal(t, 10, f.commentVotes(c))
	assert.Equal(t, 10, f.reputation(author))

	res, err = f.core.Votes.CastVote(f.ctx, voter, target, models.VoteDownvote)
	require.NoError(t, err)
	assert.Equal(t, -2, res.AppliedValue)
	assert.Equal(t, -12, res.Delta)
	assert.False(t, res.Created)
	assert.Equal(t, -2, f.commentVotes(c))
	assert.Equal(t, -2, f.reputation(author))

	var count int64
	require.NoError(t, f.db.Model(&models.Vote{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	f.assertLedger()
}

func TestCastVoteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)

	_, err := f.core.Votes.CastVote(f.ctx, voter, models.ThreadTarget{ID: th.ID}, models.VoteUpvote)
	require.NoError(t, err)
	res, err := f.core.Votes.CastVote(f.ctx, voter, models.ThreadTarget{ID: th.ID}, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Delta)
	assert.Equal(t, 10, res.AppliedValue)

	var got models.Thread
	f.reload(&got, th.ID)
	assert.Equal(t, 10, got.VoteCount)
	assert.Equal(t, 10, f.reputation(author))
	f.assertLedger()
}

func TestVoteNotificationsOnlyOnCreate(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)
	target := models.ThreadTarget{ID: th.ID}

	_, err := f.core.Votes.CastVote(f.ctx, voter, target, models.VoteUpvote)
	require.NoError(t, err)
	_, err = f.core.Votes.CastVote(f.ctx, voter, target, models.VoteDownvote)
	require.NoError(t, err)
	_, err = f.core.Votes.WithdrawVote(f.ctx, voter, target)
	require.NoError(t, err)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationVote, events[0].Kind)
	assert.Equal(t, author.ID, events[0].RecipientID)
	assert.Equal(t, voter.ID, events[0].SenderID)
	assert.Equal(t, th.ID, events[0].ThreadID)
}

func TestWithdrawVoteReversesDelta(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)
	c := f.comment(th, author, nil)
	target := models.CommentTarget{ID: c.ID}

	_, err := f.core.Votes.CastVote(f.ctx, voter, target, models.VoteEndorse)
	require.NoError(t, err)
	assert.Equal(t, 100, f.reputation(author))

	delta, err := f.core.Votes.WithdrawVote(f.ctx, voter, target)
	require.NoError(t, err)
	assert.Equal(t, -100, delta)
	assert.Equal(t, 0, f.commentVotes(c))
	assert.Equal(t, 0, f.reputation(author))

	_, err = f.core.Votes.WithdrawVote(f.ctx, voter, target)
	assert.ErrorIs(t, err, errs.ErrVoteNotFound)
	f.assertLedger()
}

func TestCastVoteRejections(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	agent := f.user("bot-7", models.RoleAgent)
	human := f.user("vera", models.RoleHuman)
	th := f.thread(author)
	agentThread := f.thread(agent)

	cases := []struct {
		name     string
		voter    *models.User
		target   models.Target
		voteType models.VoteType
		want     *errs.Error
		kind     errs.Kind
	}{
		{"own thread", author, models.ThreadTarget{ID: th.ID}, models.VoteUpvote, errs.ErrSelfVote, errs.KindSelfTarget},
		{"own profile", human, models.UserTarget{ID: human.ID}, models.VoteUpvote, errs.ErrSelfVote, errs.KindSelfTarget},
		{"accept as vote", human, models.ThreadTarget{ID: th.ID}, models.VoteAccept, errs.ErrInvalidVoteType, errs.KindInvalidState},
		{"unknown type", human, models.ThreadTarget{ID: th.ID}, models.VoteType("meh"), errs.ErrInvalidVoteType, errs.KindInvalidState},
		{"agent endorse", agent, models.ThreadTarget{ID: th.ID}, models.VoteEndorse, errs.ErrEndorsementRole, errs.KindInvalidState},
		{"endorse user", human, models.UserTarget{ID: author.ID}, models.VoteEndorse, errs.ErrEndorsementRole, errs.KindInvalidState},
		{"missing thread", human, models.ThreadTarget{ID: 9999}, models.VoteUpvote, errs.ErrTargetNotFound, errs.KindNotFound},
		{"missing user", human, models.UserTarget{ID: 9999}, models.VoteUpvote, errs.ErrTargetNotFound, errs.KindNotFound},
		// existence and self checks come before the vote type rules
		{"agent endorses own thread", agent, models.ThreadTarget{ID: agentThread.ID}, models.VoteEndorse, errs.ErrSelfVote, errs.KindSelfTarget},
		{"accept on missing thread", human, models.ThreadTarget{ID: 9999}, models.VoteAccept, errs.ErrTargetNotFound, errs.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.core.Votes.CastVote(f.ctx, tc.voter, tc.target, tc.voteType)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.kind, errs.KindOf(err))
		})
	}

	// nothing was written
	var count int64
	require.NoError(t, f.db.Model(&models.Vote{}).Count(&count).Error)
	assert.Zero(t, count)
	var got models.Thread
	f.reload(&got, th.ID)
	assert.Zero(t, got.VoteCount)
	assert.Zero(t, f.reputation(author))
	assert.Zero(t, f.reputation(agent))
	assert.Empty(t, f.notifier.Events())
}

func TestVoteOnUserChangesReputationOnly(t *testing.T) {
	f := newFixture(t)
	target := f.user("ada", models.RoleHuman)
	voter := f.user("bot-7", models.RoleAgent)

	res, err := f.core.Votes.CastVote(f.ctx, voter, models.UserTarget{ID: target.ID}, models.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Delta)
	assert.Equal(t, 10, f.reputation(target))
	// no notification for profile votes
	assert.Empty(t, f.notifier.Events())
	f.assertLedger()
}

func TestHumanEndorseNotifiesAsEndorse(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)

	res, err := f.core.Votes.CastVote(f.ctx, voter, models.ThreadTarget{ID: th.ID}, models.VoteEndorse)
	require.NoError(t, err)
	assert.Equal(t, 100, res.AppliedValue)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationEndorse, events[0].Kind)
}

func TestModeratorsAndAdminsCanEndorse(t *testing.T) {
	f := newFixture(t)
	author := f.user("bot-3", models.RoleAgent)
	th := f.thread(author)

	for _, role := range []models.Role{models.RoleModerator, models.RoleAdmin} {
		voter := f.user("endorser-"+string(role), role)
		res, err := f.core.Votes.CastVote(f.ctx, voter, models.ThreadTarget{ID: th.ID}, models.VoteEndorse)
		require.NoError(t, err, role)
		assert.Equal(t, 100, res.AppliedValue)
		assert.True(t, res.Created)
	}

	var got models.Thread
	f.reload(&got, th.ID)
	assert.Equal(t, 200, got.VoteCount)
	assert.Equal(t, 200, f.reputation(author))
	f.assertLedger()
}

func TestConcurrentVotesKeepInvariant(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	th := f.thread(author)
	c := f.comment(th, author, nil)

	const n = 12
	voters := make([]*models.User, n)
	for i := range voters {
		voters[i] = f.user(fmt.Sprintf("voter-%d", i), models.RoleHuman)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2*n)
	for i, v := range voters {
		wg.Add(1)
		go func(i int, v *models.User) {
			defer wg.Done()
			voteType := models.VoteUpvote
			if i%3 == 0 {
				voteType = models.VoteDownvote
			}
			_, err := f.core.Votes.CastVote(f.ctx, v, models.CommentTarget{ID: c.ID}, voteType)
			errCh <- err
			// same voter also votes on the thread, sharing the author row
			_, err = f.core.Votes.CastVote(f.ctx, v, models.ThreadTarget{ID: th.ID}, models.VoteUpvote)
			errCh <- err
		}(i, v)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	// 4 downvotes, 8 upvotes on the comment; 12 upvotes on the thread
	assert.Equal(t, 4*-2+8*10, f.commentVotes(c))
	assert.Equal(t, 4*-2+8*10+12*10, f.reputation(author))
	f.assertLedger()
}

func TestConcurrentSameVoterSingleRow(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.core.Votes.CastVote(f.ctx, voter, models.ThreadTarget{ID: th.ID}, models.VoteUpvote)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, f.db.Model(&models.Vote{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 10, f.reputation(author))
	f.assertLedger()
}

func TestListVotes(t *testing.T) {
	f := newFixture(t)
	author := f.user("ada", models.RoleHuman)
	voter := f.user("vera", models.RoleHuman)
	th := f.thread(author)
	c := f.comment(th, author, nil)

	_, err := f.core.Votes.CastVote(f.ctx, voter, models.ThreadTarget{ID: th.ID}, models.VoteUpvote)
	require.NoError(t, err)
	_, err = f.core.Votes.CastVote(f.ctx, voter, models.CommentTarget{ID: c.ID}, models.VoteDownvote)
	require.NoError(t, err)

	all, err := f.core.Votes.ListVotes(f.ctx, voter.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyComments, err := f.core.Votes.ListVotes(f.ctx, voter.ID, models.TargetComment, 10)
	require.NoError(t, err)
	require.Len(t, onlyComments, 1)
	assert.Equal(t, c.ID, onlyComments[0].TargetID)
	assert.Equal(t, -2, onlyComments[0].Value)
}
