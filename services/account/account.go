package account

import (
	"context"
	"errors"
	"time"

	accountRepo "resolvo/database/repository/account"
	"resolvo/models"
	"resolvo/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        models.AccountRole
}

// AuthResult is returned on successful registration or sign-in.
type AuthResult struct {
	Account *models.Account `json:"account"`
	Token   string          `json:"token"`
}

// AccountService handles identity: registration, sign-in, push token updates.
// It exists to supply authenticated actor identity to the lifecycle core;
// the core itself never reaches for ambient session state.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	UpdateFCMToken(ctx context.Context, accountID, fcmToken string) error
}

// DefaultAccountService implements AccountService.
type DefaultAccountService struct {
	Repo accountRepo.AccountRepository
}

// Register creates a client or resolver account and issues a token.
func (svc *DefaultAccountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, "email and password are required")
	}
	if input.Role != models.RoleClient && input.Role != models.RoleResolver {
		return nil, utils.NewServiceError(utils.CodeInvalidInput, "role must be client or resolver")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to hash password", err)
	}

	now := time.Now()
	acct := &models.Account{
		ID:           uuid.New().String(),
		Role:         input.Role,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.Repo.Create(ctx, acct); err != nil {
		if errors.Is(err, accountRepo.ErrDuplicateEmail) {
			return nil, utils.NewServiceError(utils.CodeInvalidInput, "email is already registered")
		}
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to create account", err)
	}

	return svc.issueToken(ctx, acct)
}

// SignIn verifies credentials and issues a fresh token, rotating the stored
// token hash.
func (svc *DefaultAccountService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	acct, err := svc.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountRepo.ErrNotFound) {
			return nil, utils.NewServiceError(utils.CodeUnauthorized, "invalid credentials")
		}
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to fetch account", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, utils.NewServiceError(utils.CodeUnauthorized, "invalid credentials")
	}

	return svc.issueToken(ctx, acct)
}

// GetByID fetches an account.
func (svc *DefaultAccountService) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	acct, err := svc.Repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrNotFound) {
			return nil, utils.NewServiceError(utils.CodeNotFound, "account not found")
		}
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to fetch account", err)
	}
	return acct, nil
}

// UpdateFCMToken registers the device push token for notification delivery.
func (svc *DefaultAccountService) UpdateFCMToken(ctx context.Context, accountID, fcmToken string) error {
	if err := svc.Repo.SetFCMToken(ctx, accountID, fcmToken); err != nil {
		if errors.Is(err, accountRepo.ErrNotFound) {
			return utils.NewServiceError(utils.CodeNotFound, "account not found")
		}
		return utils.WrapServiceError(utils.CodeInternal, "failed to update push token", err)
	}
	return nil
}

func (svc *DefaultAccountService) issueToken(ctx context.Context, acct *models.Account) (*AuthResult, error) {
	token, err := utils.GenerateToken(acct.ID, string(acct.Role), tokenTTL)
	if err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to issue token", err)
	}
	if err := svc.Repo.SetTokenHash(ctx, acct.ID, utils.HashToken(token)); err != nil {
		return nil, utils.WrapServiceError(utils.CodeInternal, "failed to persist token", err)
	}
	acct.TokenHash = utils.HashToken(token)
	return &AuthResult{Account: acct, Token: token}, nil
}
