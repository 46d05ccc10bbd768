package booking

import (
	"context"

	bookingRepo "resolvo/database/repository/booking"
	"resolvo/models"
	"resolvo/services/notification"
	"resolvo/services/payment"
)

// CreateBookingInput carries the fields required to open a new booking.
type CreateBookingInput struct {
	ClientID     string
	ResolverID   string
	ServiceID    string
	TotalPrice   float64
	ScheduledFor string
}

// LifecycleService owns every mutation of booking state. Actor identity is
// an explicit argument on all operations; there is no ambient caller state.
type LifecycleService interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, actorID string, limit, offset int64) ([]models.Booking, error)
	ListAllBookings(ctx context.Context, limit, offset int64) ([]models.Booking, error)

	// UpdateBooking is the direct PATCH path: validated, version-guarded,
	// no internal retry on conflict.
	UpdateBooking(ctx context.Context, actorID, bookingID string, patch models.BookingPatch, expectedVersion int64) (*models.Booking, error)
	// ForceCancel is the admin moderation path. It walks the same validated
	// update; an already-terminal booking is reported as InvalidTransition.
	ForceCancel(ctx context.Context, bookingID string) (*models.Booking, error)

	SubmitChangeRequest(ctx context.Context, bookingID, requesterID string, proposed models.BookingPatch) (*models.ChangeRequest, error)
	ResolveChangeRequest(ctx context.Context, changeRequestID, actorID string, decision models.ChangeDecision) (*models.Booking, error)
	WithdrawChangeRequest(ctx context.Context, changeRequestID, requesterID string) error
	ListChangeRequests(ctx context.Context, actorID, bookingID string) ([]models.ChangeRequest, error)
}

// DefaultLifecycleService implements LifecycleService on top of the Mongo
// store. Payments and Notifier are side-effect collaborators: both are
// invoked only after a successful write and never fail the operation.
type DefaultLifecycleService struct {
	Repo     bookingRepo.BookingRepository
	Payments payment.PaymentService
	Notifier notification.Dispatcher
}
