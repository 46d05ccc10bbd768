package booking

import (
	"context"
	"fmt"
	"time"

	"resolvo/models"
	"resolvo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking opens a new booking in PENDING/UNPAID at version 1.
func (svc *DefaultLifecycleService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if input.ClientID == "" || input.ResolverID == "" || input.ServiceID == "" {
		return nil, errInvalidInput("clientId, resolverId and serviceId are required")
	}
	if input.ClientID == input.ResolverID {
		return nil, errInvalidInput("client and resolver must be distinct parties")
	}
	scheduledFor, err := time.Parse(time.RFC3339, input.ScheduledFor)
	if err != nil {
		return nil, errInvalidInput("scheduledFor must be an RFC3339 timestamp")
	}

	now := time.Now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		ClientID:      input.ClientID,
		ResolverID:    input.ResolverID,
		ServiceID:     input.ServiceID,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		TotalPrice:    input.TotalPrice,
		ScheduledFor:  scheduledFor,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := svc.Repo.Create(ctx, booking); err != nil {
		return nil, translateRepoError(err, booking.ID)
	}

	svc.notifyParties(ctx, booking, "booking_created", "New booking",
		fmt.Sprintf("Booking %s has been created.", booking.ID))
	return booking, nil
}

// GetBooking returns the booking if the actor is one of its parties.
func (svc *DefaultLifecycleService) GetBooking(ctx context.Context, actorID, bookingID string) (*models.Booking, error) {
	booking, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}
	if !booking.IsParty(actorID) {
		return nil, errForbidden("only a party to the booking may view it")
	}
	return booking, nil
}

// ListBookings returns the actor's bookings.
func (svc *DefaultLifecycleService) ListBookings(ctx context.Context, actorID string, limit, offset int64) ([]models.Booking, error) {
	bookings, err := svc.Repo.ListByParty(ctx, actorID, limit, offset)
	if err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to list bookings", err)
	}
	return bookings, nil
}

// ListAllBookings returns bookings across all parties. Admin surface; the
// route guard enforces the role.
func (svc *DefaultLifecycleService) ListAllBookings(ctx context.Context, limit, offset int64) ([]models.Booking, error) {
	bookings, err := svc.Repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to list bookings", err)
	}
	return bookings, nil
}

// UpdateBooking is the direct PATCH path. The patch is validated against the
// booking's current state and applied with the caller-supplied version; a
// stale version surfaces as Conflict with no retry. Retries on this path
// belong to the caller.
func (svc *DefaultLifecycleService) UpdateBooking(ctx context.Context, actorID, bookingID string, patch models.BookingPatch, expectedVersion int64) (*models.Booking, error) {
	if expectedVersion < 1 {
		return nil, errInvalidInput("expectedVersion is required")
	}

	current, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}
	if !current.IsParty(actorID) {
		return nil, errForbidden("only a party to the booking may update it")
	}
	if err := ValidateTransition(current, patch); err != nil {
		return nil, err
	}

	updated, err := svc.Repo.UpdateWithVersion(ctx, bookingID, patch, expectedVersion)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}

	svc.afterStatusChange(ctx, current, updated)
	return updated, nil
}

// ForceCancel cancels a booking on behalf of moderation, flipping a PAID
// booking to REFUNDED in the same patch to keep the coherence invariant.
func (svc *DefaultLifecycleService) ForceCancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	current, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}

	cancelled := models.BookingCancelled
	patch := models.BookingPatch{Status: &cancelled}
	switch current.PaymentStatus {
	case models.PaymentPaid, models.PaymentAuthorized:
		refunded := models.PaymentRefunded
		patch.PaymentStatus = &refunded
	case models.PaymentFailed:
		unpaid := models.PaymentUnpaid
		patch.PaymentStatus = &unpaid
	}
	if err := ValidateTransition(current, patch); err != nil {
		return nil, err
	}

	updated, err := svc.Repo.UpdateWithVersion(ctx, bookingID, patch, current.Version)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}

	svc.afterStatusChange(ctx, current, updated)
	return updated, nil
}

// afterStatusChange runs the post-commit side effects: refund or capture on
// the payment collaborator and fire-and-forget notifications. Failures here
// are logged and never surfaced; the booking write already happened.
func (svc *DefaultLifecycleService) afterStatusChange(ctx context.Context, before, after *models.Booking) {
	logger := utils.GetLogger()

	if svc.Payments != nil && after.PaymentRef != "" {
		switch {
		case after.PaymentStatus == models.PaymentRefunded && before.PaymentStatus != models.PaymentRefunded:
			if err := svc.Payments.Refund(ctx, after.PaymentRef, after.TotalPrice); err != nil {
				logger.Error("refund failed after cancellation",
					zap.String("bookingID", after.ID), zap.Error(err))
			}
		case after.Status == models.BookingCompleted && before.Status != models.BookingCompleted:
			if err := svc.Payments.Capture(ctx, after.PaymentRef); err != nil {
				logger.Error("payment capture failed after completion",
					zap.String("bookingID", after.ID), zap.Error(err))
			}
		}
	}

	if before.Status != after.Status {
		svc.notifyParties(ctx, after, "booking_status_changed",
			"Booking updated",
			fmt.Sprintf("Booking %s is now %s.", after.ID, after.Status))
	}
}

// notifyParties dispatches a notification to both booking parties.
func (svc *DefaultLifecycleService) notifyParties(ctx context.Context, b *models.Booking, notifType, title, body string) {
	if svc.Notifier == nil {
		return
	}
	logger := utils.GetLogger()
	for _, accountID := range []string{b.ClientID, b.ResolverID} {
		n := models.Notification{
			AccountID: accountID,
			Type:      notifType,
			Title:     title,
			Body:      body,
			Data: map[string]string{
				"bookingId": b.ID,
				"status":    string(b.Status),
			},
		}
		if err := svc.Notifier.Dispatch(ctx, n); err != nil {
			logger.Warn("notification dispatch failed",
				zap.String("accountID", accountID), zap.Error(err))
		}
	}
}
