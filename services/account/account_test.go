package account

import (
	"context"
	"sync"
	"testing"

	accountRepo "resolvo/database/repository/account"
	"resolvo/models"
	"resolvo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	byEmail  map[string]string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[string]*models.Account),
		byEmail:  make(map[string]string),
	}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[account.Email]; exists {
		return accountRepo.ErrDuplicateEmail
	}
	clone := *account
	r.accounts[account.ID] = &clone
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, accountRepo.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, accountRepo.ErrNotFound
	}
	clone := *r.accounts[id]
	return &clone, nil
}

func (r *fakeAccountRepo) SetTokenHash(ctx context.Context, accountID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return accountRepo.ErrNotFound
	}
	a.TokenHash = tokenHash
	return nil
}

func (r *fakeAccountRepo) SetFCMToken(ctx context.Context, accountID, fcmToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return accountRepo.ErrNotFound
	}
	a.FCMToken = fcmToken
	return nil
}

func TestRegisterAndSignIn(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := &DefaultAccountService{Repo: repo}
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Email:       "client@example.com",
		Password:    "correct-horse",
		DisplayName: "Client One",
		Role:        models.RoleClient,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, models.RoleClient, reg.Account.Role)

	// The stored hash matches the issued token.
	stored, err := repo.GetByID(ctx, reg.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, utils.HashToken(reg.Token), stored.TokenHash)

	auth, err := svc.SignIn(ctx, "client@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, auth.Account.ID)

	_, err = svc.SignIn(ctx, "client@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, utils.CodeUnauthorized, utils.ErrorCode(err))

	_, err = svc.SignIn(ctx, "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, utils.CodeUnauthorized, utils.ErrorCode(err))
}

func TestRegisterValidation(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := &DefaultAccountService{Repo: repo}
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Role: models.RoleClient})
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))

	// Admin accounts are provisioned out of band, never self-registered.
	_, err = svc.Register(ctx, RegisterInput{
		Email: "a@b.com", Password: "pw-12345", Role: models.RoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))

	_, err = svc.Register(ctx, RegisterInput{
		Email: "dup@b.com", Password: "pw-12345", Role: models.RoleResolver,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Email: "dup@b.com", Password: "pw-67890", Role: models.RoleClient,
	})
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))
}

func TestUpdateFCMToken(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := &DefaultAccountService{Repo: repo}
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Email: "r@b.com", Password: "pw-12345", Role: models.RoleResolver,
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateFCMToken(ctx, reg.Account.ID, "device-token-1"))

	stored, err := repo.GetByID(ctx, reg.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "device-token-1", stored.FCMToken)

	err = svc.UpdateFCMToken(ctx, "missing", "tok")
	require.Error(t, err)
	assert.Equal(t, utils.CodeNotFound, utils.ErrorCode(err))
}
