package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractRepo "resolvo/database/repository/contract"
	"resolvo/models"
	"resolvo/services/notification"
	"resolvo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateContractInput carries the fields required to issue a new contract.
type CreateContractInput struct {
	BookingID   string
	ListingID   string
	IssuerID    string
	RecipientID string
	Terms       string
	Send        bool
}

// ContractService manages agreement documents: issued by one party, answered
// exactly once by the other.
type ContractService interface {
	CreateContract(ctx context.Context, input CreateContractInput) (*models.Contract, error)
	GetContract(ctx context.Context, actorID, contractID string) (*models.Contract, error)
	ListByBooking(ctx context.Context, actorID, bookingID string) ([]models.Contract, error)
	// Respond records AGREED or DECLINED with optional signature capture.
	// A second response on an answered contract returns AlreadyFinal and
	// never changes respondedAt or signatureData.
	Respond(ctx context.Context, contractID, actorID string, action models.ContractAction, signatureData *string) (*models.Contract, error)
}

// DefaultContractService implements ContractService.
type DefaultContractService struct {
	Repo     contractRepo.ContractRepository
	Notifier notification.Dispatcher
}

// CreateContract issues a contract in DRAFT, or SENT when input.Send is set.
func (svc *DefaultContractService) CreateContract(ctx context.Context, input CreateContractInput) (*models.Contract, error) {
	if input.IssuerID == "" || input.RecipientID == "" {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, "issuerId and recipientId are required")
	}
	if input.BookingID == "" && input.ListingID == "" {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, "a contract must reference a booking or a listing")
	}
	if input.Terms == "" {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, "terms are required")
	}

	status := models.ContractDraft
	if input.Send {
		status = models.ContractSent
	}
	contract := &models.Contract{
		ID:          uuid.New().String(),
		BookingID:   input.BookingID,
		ListingID:   input.ListingID,
		IssuerID:    input.IssuerID,
		RecipientID: input.RecipientID,
		Status:      status,
		Terms:       input.Terms,
		CreatedAt:   time.Now(),
	}
	if err := svc.Repo.Create(ctx, contract); err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to create contract", err)
	}

	if status == models.ContractSent {
		svc.notify(ctx, contract.RecipientID, "contract_sent", "Contract received",
			fmt.Sprintf("A contract is awaiting your response for booking %s.", contract.BookingID), contract.ID)
	}
	return contract, nil
}

// GetContract returns the contract if the actor is the issuer or recipient.
func (svc *DefaultContractService) GetContract(ctx context.Context, actorID, contractID string) (*models.Contract, error) {
	contract, err := svc.Repo.GetByID(ctx, contractID)
	if err != nil {
		return nil, translateRepoError(err, contractID)
	}
	if actorID != contract.IssuerID && actorID != contract.RecipientID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "only a party to the contract may view it")
	}
	return contract, nil
}

// ListByBooking returns contracts attached to a booking.
func (svc *DefaultContractService) ListByBooking(ctx context.Context, actorID, bookingID string) ([]models.Contract, error) {
	contracts, err := svc.Repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to list contracts", err)
	}
	visible := make([]models.Contract, 0, len(contracts))
	for _, c := range contracts {
		if actorID == c.IssuerID || actorID == c.RecipientID {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Respond records the recipient's answer. Terminality is enforced twice: a
// fast check on the loaded document, then the store's conditional update,
// which is what actually guarantees idempotent finality under concurrency.
func (svc *DefaultContractService) Respond(ctx context.Context, contractID, actorID string, action models.ContractAction, signatureData *string) (*models.Contract, error) {
	if !action.IsValid() {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, fmt.Sprintf("unknown contract action %q", action))
	}

	contract, err := svc.Repo.GetByID(ctx, contractID)
	if err != nil {
		return nil, translateRepoError(err, contractID)
	}
	if actorID != contract.RecipientID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "only the contract recipient may respond")
	}
	if contract.Status.IsFinal() {
		return nil, utils.NewServiceError(utils.CodeAlreadyFinal, "contract has already been answered")
	}
	if action == models.ActionAgree && (signatureData == nil || *signatureData == "") {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, "agreeing to a contract requires signature data")
	}

	status := models.ContractAgreed
	if action == models.ActionDecline {
		status = models.ContractDeclined
	}
	updated, err := svc.Repo.FinalizeResponse(ctx, contractID, status, signatureData)
	if err != nil {
		return nil, translateRepoError(err, contractID)
	}

	svc.notify(ctx, updated.IssuerID, "contract_answered", "Contract answered",
		fmt.Sprintf("Your contract was %s.", status), updated.ID)
	return updated, nil
}

func (svc *DefaultContractService) notify(ctx context.Context, accountID, notifType, title, body, contractID string) {
	if svc.Notifier == nil {
		return
	}
	n := models.Notification{
		AccountID: accountID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Data:      map[string]string{"contractId": contractID},
	}
	if err := svc.Notifier.Dispatch(ctx, n); err != nil {
		utils.GetLogger().Warn("notification dispatch failed",
			zap.String("accountID", accountID), zap.Error(err))
	}
}

func translateRepoError(err error, contractID string) error {
	switch {
	case errors.Is(err, contractRepo.ErrNotFound):
		return utils.NewServiceError(utils.CodeNotFound, fmt.Sprintf("contract %s not found", contractID))
	case errors.Is(err, contractRepo.ErrAlreadyFinal):
		return utils.NewServiceError(utils.CodeAlreadyFinal, "contract has already been answered")
	default:
		return utils.WrapServiceError(utils.CodeInternal, "contract store failure", err)
	}
}
