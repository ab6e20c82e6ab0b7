package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("casting vote: %w", ErrSelfVote)
	assert.True(t, errors.Is(wrapped, ErrSelfVote))
	assert.False(t, errors.Is(wrapped, ErrVoteNotFound))

	withReasons := ErrModerationBlocked.WithReasons([]string{"Content too short"})
	assert.True(t, errors.Is(withReasons, ErrModerationBlocked))
	assert.Equal(t, []string{"Content too short"}, withReasons.Reasons)
	assert.Empty(t, ErrModerationBlocked.Reasons, "sentinel must stay untouched")
}

func TestKindOfAndEnsure(t *testing.T) {
	assert.Equal(t, KindSelfTarget, KindOf(ErrSelfVote))
	assert.Equal(t, KindStorage, KindOf(errors.New("connection reset")))

	raw := errors.New("connection reset")
	ensured := Ensure(raw)
	e, ok := As(ensured)
	assert.True(t, ok)
	assert.Equal(t, KindStorage, e.Kind)
	assert.ErrorIs(t, ensured, raw)

	assert.Same(t, ErrThreadNotFound, Ensure(ErrThreadNotFound))
	assert.Nil(t, Ensure(nil))
}

func TestStatusCode(t *testing.T) {
	cases := map[*Error]int{
		ErrVoteNotFound:      http.StatusNotFound,
		ErrNotThreadAuthor:   http.StatusForbidden,
		ErrSelfVote:          http.StatusBadRequest,
		ErrEndorsementRole:   http.StatusConflict,
		ErrModerationBlocked: http.StatusUnprocessableEntity,
	}
	for e, want := range cases {
		assert.Equal(t, want, e.StatusCode(), e.Code)
	}
	assert.Equal(t, http.StatusInternalServerError, Storage(errors.New("x")).StatusCode())
}

func TestResponse(t *testing.T) {
	status, body := Response(ErrModerationBlocked.WithReasons([]string{"Content too short"}))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	p := body["error"].(payload)
	assert.Equal(t, KindModerationBlocked, p.Kind)
	assert.Equal(t, []string{"Content too short"}, p.Reasons)

	status, body = Response(errors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "storage failure", body["error"].(payload).Message)

	status, _ = Response(ErrUnauthenticated)
	assert.Equal(t, http.StatusUnauthorized, status)
}
