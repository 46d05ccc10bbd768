package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "resolvo/database/repository/booking"
	"resolvo/models"
	"resolvo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitChangeRequest records a proposal to alter a booking. The booking
// itself is untouched until the counterparty accepts.
func (svc *DefaultLifecycleService) SubmitChangeRequest(ctx context.Context, bookingID, requesterID string, proposed models.BookingPatch) (*models.ChangeRequest, error) {
	if proposed.IsEmpty() {
		return nil, errInvalidInput("proposedChanges must not be empty")
	}
	if proposed.Status != nil && !proposed.Status.IsValid() {
		return nil, errInvalidInput(fmt.Sprintf("unknown booking status %q", *proposed.Status))
	}
	if proposed.PaymentStatus != nil && !proposed.PaymentStatus.IsValid() {
		return nil, errInvalidInput(fmt.Sprintf("unknown payment status %q", *proposed.PaymentStatus))
	}

	booking, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}
	if !booking.IsParty(requesterID) {
		return nil, errForbidden("only a party to the booking may propose changes")
	}
	if booking.Status.IsTerminal() {
		return nil, errInvalidTransition(fmt.Sprintf("booking in terminal status %s does not accept change requests", booking.Status))
	}

	cr := &models.ChangeRequest{
		ID:              uuid.New().String(),
		BookingID:       bookingID,
		RequesterID:     requesterID,
		ProposedChanges: proposed,
		State:           models.ChangeRequestOpen,
		CreatedAt:       time.Now(),
	}
	if err := svc.Repo.InsertChangeRequest(ctx, cr); err != nil {
		return nil, translateRepoError(err, bookingID)
	}

	svc.notifyAccount(ctx, booking.Counterparty(requesterID), "change_request_submitted",
		"Change proposed",
		fmt.Sprintf("A change has been proposed for booking %s.", bookingID),
		map[string]string{"bookingId": bookingID, "changeRequestId": cr.ID})
	return cr, nil
}

// ResolveChangeRequest lets the counterparty accept or reject an open
// proposal. On accept the proposal is re-validated against the booking's
// current state (it may have moved since submission) and applied through
// the version-guarded store. A stale version is retried exactly once by
// re-reading and re-validating; a second mismatch surfaces as Conflict.
func (svc *DefaultLifecycleService) ResolveChangeRequest(ctx context.Context, changeRequestID, actorID string, decision models.ChangeDecision) (*models.Booking, error) {
	if !decision.IsValid() {
		return nil, errInvalidInput(fmt.Sprintf("unknown decision %q", decision))
	}

	cr, err := svc.Repo.GetChangeRequestByID(ctx, changeRequestID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, errChangeRequestNotFound(changeRequestID)
		}
		return nil, translateRepoError(err, changeRequestID)
	}
	if cr.State.IsTerminal() {
		return nil, utils.NewServiceError(utils.CodeAlreadyResolved, "change request has already been resolved")
	}

	booking, err := svc.Repo.GetByID(ctx, cr.BookingID)
	if err != nil {
		return nil, translateRepoError(err, cr.BookingID)
	}
	if !booking.IsParty(actorID) || actorID == cr.RequesterID {
		return nil, errForbidden("only the counterparty may accept or reject a change request")
	}

	if decision == models.DecisionReject {
		if _, err := svc.Repo.FinalizeChangeRequest(ctx, changeRequestID, models.ChangeRequestRejected, actorID); err != nil {
			return nil, translateRepoError(err, changeRequestID)
		}
		svc.notifyAccount(ctx, cr.RequesterID, "change_request_rejected",
			"Change rejected",
			fmt.Sprintf("Your proposed change for booking %s was rejected.", cr.BookingID),
			map[string]string{"bookingId": cr.BookingID, "changeRequestId": cr.ID})
		return booking, nil
	}

	if err := ValidateTransition(booking, cr.ProposedChanges); err != nil {
		return nil, err
	}

	// Claim the request before touching the booking so a concurrent
	// withdrawal cannot race a mutation in. First writer wins.
	if _, err := svc.Repo.FinalizeChangeRequest(ctx, changeRequestID, models.ChangeRequestAccepted, actorID); err != nil {
		return nil, translateRepoError(err, changeRequestID)
	}

	updated, err := svc.applyAccepted(ctx, booking, cr)
	if err != nil {
		return nil, err
	}

	svc.notifyAccount(ctx, cr.RequesterID, "change_request_accepted",
		"Change accepted",
		fmt.Sprintf("Your proposed change for booking %s was accepted.", cr.BookingID),
		map[string]string{"bookingId": cr.BookingID, "changeRequestId": cr.ID})
	return updated, nil
}

// applyAccepted commits the proposed patch with a single bounded retry on
// version mismatch.
func (svc *DefaultLifecycleService) applyAccepted(ctx context.Context, booking *models.Booking, cr *models.ChangeRequest) (*models.Booking, error) {
	updated, err := svc.Repo.UpdateWithVersion(ctx, booking.ID, cr.ProposedChanges, booking.Version)
	if err == nil {
		svc.afterStatusChange(ctx, booking, updated)
		return updated, nil
	}
	if !errors.Is(err, bookingRepo.ErrVersionConflict) {
		return nil, translateRepoError(err, booking.ID)
	}

	// The booking moved underneath us. Re-read, re-validate, try once more.
	fresh, err := svc.Repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, translateRepoError(err, booking.ID)
	}
	if err := ValidateTransition(fresh, cr.ProposedChanges); err != nil {
		return nil, err
	}
	updated, err = svc.Repo.UpdateWithVersion(ctx, booking.ID, cr.ProposedChanges, fresh.Version)
	if err != nil {
		utils.GetLogger().Warn("accepted change request could not be applied",
			zap.String("changeRequestID", cr.ID), zap.Error(err))
		return nil, translateRepoError(err, booking.ID)
	}
	svc.afterStatusChange(ctx, fresh, updated)
	return updated, nil
}

// WithdrawChangeRequest lets the original requester retract an open proposal.
func (svc *DefaultLifecycleService) WithdrawChangeRequest(ctx context.Context, changeRequestID, requesterID string) error {
	cr, err := svc.Repo.GetChangeRequestByID(ctx, changeRequestID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return errChangeRequestNotFound(changeRequestID)
		}
		return translateRepoError(err, changeRequestID)
	}
	if cr.RequesterID != requesterID {
		return errForbidden("only the requester may withdraw a change request")
	}
	if cr.State.IsTerminal() {
		return utils.NewServiceError(utils.CodeAlreadyResolved, "change request has already been resolved")
	}

	if _, err := svc.Repo.FinalizeChangeRequest(ctx, changeRequestID, models.ChangeRequestWithdrawn, requesterID); err != nil {
		return translateRepoError(err, changeRequestID)
	}
	return nil
}

// ListChangeRequests returns a booking's change requests to one of its parties.
func (svc *DefaultLifecycleService) ListChangeRequests(ctx context.Context, actorID, bookingID string) ([]models.ChangeRequest, error) {
	booking, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err, bookingID)
	}
	if !booking.IsParty(actorID) {
		return nil, errForbidden("only a party to the booking may view its change requests")
	}
	requests, err := svc.Repo.ListChangeRequests(ctx, bookingID)
	if err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to list change requests", err)
	}
	return requests, nil
}

// notifyAccount dispatches a single fire-and-forget notification.
func (svc *DefaultLifecycleService) notifyAccount(ctx context.Context, accountID, notifType, title, body string, data map[string]string) {
	if svc.Notifier == nil || accountID == "" {
		return
	}
	n := models.Notification{
		AccountID: accountID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Data:      data,
	}
	if err := svc.Notifier.Dispatch(ctx, n); err != nil {
		utils.GetLogger().Warn("notification dispatch failed",
			zap.String("accountID", accountID), zap.Error(err))
	}
}
