package accountRepo

import (
	"context"
	"errors"

	"resolvo/models"
)

var (
	ErrNotFound       = errors.New("account repo: not found")
	ErrDuplicateEmail = errors.New("account repo: email already registered")
)

// AccountRepository stores marketplace identities (clients, resolvers, admins).
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetTokenHash(ctx context.Context, accountID, tokenHash string) error
	SetFCMToken(ctx context.Context, accountID, fcmToken string) error
}
