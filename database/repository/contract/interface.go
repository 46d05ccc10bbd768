package contractRepo

import (
	"context"
	"errors"

	"resolvo/models"
)

var (
	ErrNotFound     = errors.New("contract repo: not found")
	ErrAlreadyFinal = errors.New("contract repo: contract already answered")
)

// ContractRepository stores agreement documents. Contracts are
// append-then-finalize: created in DRAFT or SENT, answered exactly once.
type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, contractID string) (*models.Contract, error)
	// FinalizeResponse records the recipient's answer if and only if the
	// contract has not been answered yet. Returns ErrAlreadyFinal otherwise;
	// respondedAt and signatureData are never overwritten.
	FinalizeResponse(ctx context.Context, contractID string, status models.ContractStatus, signatureData *string) (*models.Contract, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.Contract, error)
}
