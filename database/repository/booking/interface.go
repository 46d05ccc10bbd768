package bookingRepo

import (
	"context"
	"errors"

	"resolvo/models"
)

// Sentinel errors surfaced by the store. The service layer translates these
// into caller-facing error codes.
var (
	ErrNotFound             = errors.New("booking repo: not found")
	ErrVersionConflict      = errors.New("booking repo: version conflict")
	ErrDuplicateOpenRequest = errors.New("booking repo: open change request already exists for requester")
	ErrAlreadyResolved      = errors.New("booking repo: change request already resolved")
)

// BookingRepository is the single mutation point for booking records and
// their change requests. Writes to a booking are serialized per id by the
// conditional version check; readers are never blocked.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// UpdateWithVersion applies the patch atomically if and only if the stored
	// version equals expectedVersion, incrementing the version by exactly 1.
	// Returns ErrVersionConflict on a stale version, ErrNotFound for unknown ids.
	// When the patch lands a terminal status, all OPEN change requests for the
	// booking are closed as part of the same call.
	UpdateWithVersion(ctx context.Context, bookingID string, patch models.BookingPatch, expectedVersion int64) (*models.Booking, error)
	ListByParty(ctx context.Context, accountID string, limit, offset int64) ([]models.Booking, error)
	ListAll(ctx context.Context, limit, offset int64) ([]models.Booking, error)

	// Change request lifecycle: insert while OPEN, finalize exactly once.
	InsertChangeRequest(ctx context.Context, cr *models.ChangeRequest) error
	GetChangeRequestByID(ctx context.Context, changeRequestID string) (*models.ChangeRequest, error)
	// FinalizeChangeRequest moves an OPEN request to a terminal state.
	// First writer wins; a second attempt returns ErrAlreadyResolved.
	FinalizeChangeRequest(ctx context.Context, changeRequestID string, state models.ChangeRequestState, resolvedBy string) (*models.ChangeRequest, error)
	ListChangeRequests(ctx context.Context, bookingID string) ([]models.ChangeRequest, error)
}
