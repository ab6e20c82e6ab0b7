package notify

import (
	"context"
	"sync"
	"time"

	"hypoforum/internal/logger"
	"hypoforum/internal/metrics"
	"hypoforum/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is what the core emits; sinks decide how to deliver it.
type Event struct {
	ID          string                  `json:"id"`
	Kind        models.NotificationKind `json:"kind"`
	RecipientID uint                    `json:"recipient_id"`
	SenderID    uint                    `json:"sender_id,omitempty"`
	ThreadID    uint                    `json:"thread_id,omitempty"`
	CommentID   uint                    `json:"comment_id,omitempty"`
	Title       string                  `json:"title"`
	Content     string                  `json:"content"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewEvent fills in the id and timestamp.
func NewEvent(kind models.NotificationKind, recipient, sender uint, title, content string) Event {
	return Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		RecipientID: recipient,
		SenderID:    sender,
		Title:       title,
		Content:     content,
		CreatedAt:   time.Now(),
	}
}

type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// Dispatcher delivers events to every sink from a background worker.
// Notify never blocks and never fails: a full queue drops the event.
type Dispatcher struct {
	queue   chan Event
	sinks   []Sink
	timeout time.Duration
	once    sync.Once
	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
}

func NewDispatcher(size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 1000
	}
	return &Dispatcher{
		queue:   make(chan Event, size), // 缓冲队列，防止阻塞请求
		sinks:   sinks,
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

// Start launches the worker. Calling it more than once is harmless.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		go d.worker()
	})
}

func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.NotificationsDropped.Inc()
		logger.FromContext(ctx).Warn("notification queue full, dropping event",
			zap.String("event_id", ev.ID), zap.String("kind", string(ev.Kind)))
	}
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.closeMu.Unlock()

	d.Start()
	<-d.done
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := s.Deliver(ctx, ev); err != nil {
			metrics.NotificationFailures.WithLabelValues(s.Name()).Inc()
			logger.L.Warn("notification delivery failed",
				zap.String("sink", s.Name()), zap.String("event_id", ev.ID), zap.Error(err))
		}
		cancel()
	}
}
