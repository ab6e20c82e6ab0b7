package services

import (
	"context"

	"hypoforum/internal/notify"
)

// Notifier receives events after the change that caused them has committed.
// Implementations must not block and have no way to fail the caller.
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Event) {}

// emit sends ev detached from the request so a cancelled client does not drop it.
func emit(ctx context.Context, n Notifier, ev notify.Event) {
	if ev.RecipientID == 0 || ev.RecipientID == ev.SenderID {
		return
	}
	n.Notify(context.WithoutCancel(ctx), ev)
}
