package booking

import (
	"context"
	"testing"
	"time"

	"resolvo/models"
	"resolvo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking(t *testing.T) {
	svc, _, dispatcher, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, CreateBookingInput{
		ClientID:     "client-1",
		ResolverID:   "resolver-1",
		ServiceID:    "svc-1",
		TotalPrice:   120,
		ScheduledFor: time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.BookingPending, created.Status)
	assert.Equal(t, models.PaymentUnpaid, created.PaymentStatus)
	assert.Equal(t, int64(1), created.Version)

	// Both parties hear about the new booking.
	assert.Len(t, dispatcher.sentTo("client-1"), 1)
	assert.Len(t, dispatcher.sentTo("resolver-1"), 1)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateBookingInput
	}{
		{
			name:  "missing parties",
			input: CreateBookingInput{ServiceID: "svc-1", ScheduledFor: time.Now().Format(time.RFC3339)},
		},
		{
			name: "client and resolver identical",
			input: CreateBookingInput{
				ClientID: "acct-1", ResolverID: "acct-1", ServiceID: "svc-1",
				ScheduledFor: time.Now().Format(time.RFC3339),
			},
		},
		{
			name: "malformed timestamp",
			input: CreateBookingInput{
				ClientID: "client-1", ResolverID: "resolver-1", ServiceID: "svc-1",
				ScheduledFor: "tomorrow at noon",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))
		})
	}
}

func TestUpdateBooking(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	seedBooking(repo, models.BookingPending, models.PaymentUnpaid)

	patch := models.BookingPatch{
		Status:        statusPtr(models.BookingConfirmed),
		PaymentStatus: paymentPtr(models.PaymentAuthorized),
	}
	updated, err := svc.UpdateBooking(ctx, "client-1", "bk-1", patch, 1)
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, updated.Status)
	assert.Equal(t, models.PaymentAuthorized, updated.PaymentStatus)
	assert.Equal(t, int64(2), updated.Version)
}

func TestUpdateBookingStaleVersion(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	seedBooking(repo, models.BookingPending, models.PaymentUnpaid)

	// First writer lands and bumps the version to 2.
	patch := models.BookingPatch{TotalPrice: pricePtr(150)}
	_, err := svc.UpdateBooking(ctx, "client-1", "bk-1", patch, 1)
	require.NoError(t, err)

	// Second writer still holds version 1: rejected outright, no retry.
	_, err = svc.UpdateBooking(ctx, "resolver-1", "bk-1", models.BookingPatch{TotalPrice: pricePtr(90)}, 1)
	require.Error(t, err)
	assert.Equal(t, utils.CodeConflict, utils.ErrorCode(err))

	stored, err := repo.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, float64(150), stored.TotalPrice)
	assert.Equal(t, int64(2), stored.Version)
}

func TestUpdateBookingAuthorization(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	seedBooking(repo, models.BookingPending, models.PaymentUnpaid)

	patch := models.BookingPatch{TotalPrice: pricePtr(90)}

	_, err := svc.UpdateBooking(ctx, "stranger", "bk-1", patch, 1)
	require.Error(t, err)
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))

	_, err = svc.UpdateBooking(ctx, "client-1", "bk-1", patch, 0)
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))

	_, err = svc.UpdateBooking(ctx, "client-1", "missing", patch, 1)
	require.Error(t, err)
	assert.Equal(t, utils.CodeNotFound, utils.ErrorCode(err))
}

func TestUpdateBookingRejectsIllegalTransitionBeforeWrite(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	seedBooking(repo, models.BookingPending, models.PaymentUnpaid)

	patch := models.BookingPatch{
		Status:        statusPtr(models.BookingCompleted),
		PaymentStatus: paymentPtr(models.PaymentPaid),
	}
	_, err := svc.UpdateBooking(ctx, "client-1", "bk-1", patch, 1)
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))

	stored, err := repo.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
}

// Walks a booking through its full lifecycle: each write presents the version
// it last read and lands exactly one increment.
func TestBookingLifecycleEndToEnd(t *testing.T) {
	svc, repo, _, payments := newTestService()
	ctx := context.Background()
	b := seedBooking(repo, models.BookingPending, models.PaymentUnpaid)
	b.PaymentRef = "pi_123"

	steps := []models.BookingPatch{
		{Status: statusPtr(models.BookingConfirmed), PaymentStatus: paymentPtr(models.PaymentAuthorized)},
		{Status: statusPtr(models.BookingInProgress)},
		{Status: statusPtr(models.BookingCompleted), PaymentStatus: paymentPtr(models.PaymentPaid)},
	}

	version := int64(1)
	for _, patch := range steps {
		updated, err := svc.UpdateBooking(ctx, "client-1", "bk-1", patch, version)
		require.NoError(t, err)
		assert.Equal(t, version+1, updated.Version)
		version = updated.Version
	}

	stored, err := repo.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, stored.Status)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, int64(4), stored.Version)

	// Completion captured the authorized payment.
	assert.Equal(t, []string{"pi_123"}, payments.captures)

	// Terminal bookings refuse further lifecycle moves.
	_, err = svc.UpdateBooking(ctx, "client-1", "bk-1",
		models.BookingPatch{Status: statusPtr(models.BookingCancelled)}, version)
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
}

func TestForceCancel(t *testing.T) {
	svc, repo, _, payments := newTestService()
	ctx := context.Background()
	b := seedBooking(repo, models.BookingInProgress, models.PaymentPaid)
	b.PaymentRef = "pi_456"

	updated, err := svc.ForceCancel(ctx, "bk-1")
	require.NoError(t, err)

	assert.Equal(t, models.BookingCancelled, updated.Status)
	assert.Equal(t, models.PaymentRefunded, updated.PaymentStatus)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, []string{"pi_456"}, payments.refunds)
}

func TestForceCancelFailedPayment(t *testing.T) {
	svc, repo, _, payments := newTestService()
	ctx := context.Background()
	seedBooking(repo, models.BookingPending, models.PaymentFailed)

	updated, err := svc.ForceCancel(ctx, "bk-1")
	require.NoError(t, err)

	assert.Equal(t, models.BookingCancelled, updated.Status)
	assert.Equal(t, models.PaymentUnpaid, updated.PaymentStatus)
	assert.Empty(t, payments.refunds)
}

func TestGetBookingPartyGate(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	seedBooking(repo, models.BookingPending, models.PaymentUnpaid)

	got, err := svc.GetBooking(ctx, "resolver-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", got.ID)

	_, err = svc.GetBooking(ctx, "stranger", "bk-1")
	require.Error(t, err)
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
}
