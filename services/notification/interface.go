package notification

import (
	"context"

	"resolvo/models"
)

// Dispatcher accepts notifications for asynchronous delivery. Implementations
// must be safe for concurrent use; delivery is fire-and-forget and the
// caller never depends on the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// NotificationService performs the actual delivery to a device. The dispatch
// worker drains the queue and calls Send.
type NotificationService interface {
	Send(ctx context.Context, n models.Notification) error
}
