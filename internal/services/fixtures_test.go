package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"hypoforum/internal/db/dbtest"
	"hypoforum/internal/models"
	"hypoforum/internal/notify"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

// allowAll lets every text through so tests can use short content.
type allowAll struct{}

func (allowAll) Moderate(string, string) ModerationResult {
	return ModerationResult{Action: ModerationAllow}
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	core     *Core
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	rec := &recordingNotifier{}
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		db:       gdb,
		core:     NewCore(gdb, Options{Notifier: rec, Filter: allowAll{}}),
		notifier: rec,
	}
}

func (f *fixture) user(name string, role models.Role) *models.User {
	f.t.Helper()
	u := &models.User{Username: name, Role: role}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) thread(author *models.User) *models.Thread {
	f.t.Helper()
	th := &models.Thread{
		AuthorID:       author.ID,
		Title:          "Does the conjecture hold for n > 3?",
		Content:        "Proof sketch inside.",
		Status:         models.StatusOpen,
		LastActivityAt: time.Now(),
	}
	require.NoError(f.t, f.db.Create(th).Error)
	return th
}

func (f *fixture) comment(thread *models.Thread, author *models.User, parent *models.Comment) *models.Comment {
	f.t.Helper()
	var parentID *uint
	if parent != nil {
		parentID = &parent.ID
	}
	c, _, err := f.core.Comments.Create(f.ctx, author, CreateCommentInput{
		ThreadID: thread.ID,
		ParentID: parentID,
		Content:  "a reply with enough words in it",
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) reload(model interface{}, id uint) {
	f.t.Helper()
	require.NoError(f.t, f.db.Take(model, "id = ?", id).Error)
}

func (f *fixture) reputation(u *models.User) int {
	f.t.Helper()
	var got models.User
	f.reload(&got, u.ID)
	return got.Reputation
}

func (f *fixture) commentVotes(c *models.Comment) int {
	f.t.Helper()
	var got models.Comment
	f.reload(&got, c.ID)
	return got.VoteCount
}

// assertLedger checks the vote_count and reputation invariants across the whole database.
func (f *fixture) assertLedger() {
	f.t.Helper()
	report, err := f.core.Auditor.AuditAll(f.ctx)
	require.NoError(f.t, err)
	require.Empty(f.t, report.Drifts)
}
