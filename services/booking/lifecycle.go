package booking

import (
	"fmt"

	"resolvo/models"
)

// legalTransitions is the booking status graph. Directed, no cycles back to
// PENDING; COMPLETED and CANCELLED are terminal.
var legalTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted, models.BookingDisputed, models.BookingCancelled},
	models.BookingDisputed:   {models.BookingCompleted, models.BookingCancelled},
	models.BookingCompleted:  {},
	models.BookingCancelled:  {},
}

// compatiblePayments is the payment/status coherence table. A booking may
// only hold a payment status compatible with its lifecycle status. UNPAID
// rides along every non-terminal status so a status-only move (confirm an
// unpaid booking, start work, open a dispute) never demands a payment change
// in the same patch; only COMPLETED forces settlement.
var compatiblePayments = map[models.BookingStatus][]models.PaymentStatus{
	models.BookingPending:    {models.PaymentUnpaid, models.PaymentAuthorized, models.PaymentFailed},
	models.BookingConfirmed:  {models.PaymentUnpaid, models.PaymentAuthorized, models.PaymentPaid},
	models.BookingInProgress: {models.PaymentUnpaid, models.PaymentAuthorized, models.PaymentPaid},
	models.BookingDisputed:   {models.PaymentUnpaid, models.PaymentAuthorized, models.PaymentPaid},
	models.BookingCompleted:  {models.PaymentPaid},
	models.BookingCancelled:  {models.PaymentUnpaid, models.PaymentRefunded},
}

// CanTransition reports whether from -> to is an edge of the status graph.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentCompatible reports whether the payment status may coexist with the
// booking status.
func PaymentCompatible(status models.BookingStatus, payment models.PaymentStatus) bool {
	for _, p := range compatiblePayments[status] {
		if p == payment {
			return true
		}
	}
	return false
}

// ValidateTransition checks a proposed patch against the booking's current
// state: status-graph check first, payment coherence second. Either failure
// short-circuits; the caller must not apply any part of the patch.
func ValidateTransition(current *models.Booking, patch models.BookingPatch) error {
	if patch.IsEmpty() {
		return errInvalidInput("patch proposes no changes")
	}

	targetStatus := current.Status
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return errInvalidInput(fmt.Sprintf("unknown booking status %q", *patch.Status))
		}
		targetStatus = *patch.Status
	}
	targetPayment := current.PaymentStatus
	if patch.PaymentStatus != nil {
		if !patch.PaymentStatus.IsValid() {
			return errInvalidInput(fmt.Sprintf("unknown payment status %q", *patch.PaymentStatus))
		}
		targetPayment = *patch.PaymentStatus
	}

	if targetStatus != current.Status && !CanTransition(current.Status, targetStatus) {
		return errInvalidTransition(fmt.Sprintf("cannot transition booking from %s to %s", current.Status, targetStatus))
	}

	// Terminal bookings are immutable apart from payment settlement.
	if current.Status.IsTerminal() {
		if patch.TotalPrice != nil || patch.ScheduledFor != nil {
			return errInvalidTransition(fmt.Sprintf("booking in terminal status %s cannot be modified", current.Status))
		}
	}

	if !PaymentCompatible(targetStatus, targetPayment) {
		return errInvalidTransition(fmt.Sprintf("payment status %s is not compatible with booking status %s", targetPayment, targetStatus))
	}

	return nil
}
