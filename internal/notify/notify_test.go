package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"hypoforum/internal/db/dbtest"
	"hypoforum/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	first := &recordingSink{fail: true}
	second := &recordingSink{}
	d := NewDispatcher(16, first, second)
	d.Start()

	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), NewEvent(models.NotificationVote, 1, 2, "t", "c"))
	}
	d.Close()

	// a failing sink does not stop delivery to the next one
	assert.Equal(t, 5, first.count())
	assert.Equal(t, 5, second.count())

	// closed dispatcher ignores new events
	d.Notify(context.Background(), NewEvent(models.NotificationVote, 1, 2, "t", "c"))
	assert.Equal(t, 5, second.count())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(2, sink)

	// worker not started yet, so the queue fills up
	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), NewEvent(models.NotificationReply, 1, 2, "t", "c"))
	}
	d.Close()

	assert.Equal(t, 2, sink.count())
}

func TestDBSinkIsIdempotent(t *testing.T) {
	gdb := dbtest.Open(t)
	sink := NewDBSink(gdb)

	ev := NewEvent(models.NotificationAccept, 7, 3, "accepted", "your answer was accepted")
	ev.ThreadID = 11
	ev.CommentID = 12

	require.NoError(t, sink.Deliver(context.Background(), ev))
	require.NoError(t, sink.Deliver(context.Background(), ev))

	var rows []models.Notification
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(7), rows[0].RecipientID)
	require.NotNil(t, rows[0].SenderID)
	assert.Equal(t, uint(3), *rows[0].SenderID)
	require.NotNil(t, rows[0].ThreadID)
	assert.Equal(t, uint(11), *rows[0].ThreadID)
	assert.False(t, rows[0].IsRead)
}

func TestRedisSinkPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, DefaultChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sink := NewRedisSinkWithClient(client)
	ev := NewEvent(models.NotificationEndorse, 4, 5, "endorsed", "")
	require.NoError(t, sink.Deliver(ctx, ev))

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, ev.ID, got.ID)
		assert.Equal(t, models.NotificationEndorse, got.Kind)
		assert.Equal(t, uint(4), got.RecipientID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}
