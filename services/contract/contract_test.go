package contract

import (
	"context"
	"sync"
	"testing"
	"time"

	contractRepo "resolvo/database/repository/contract"
	"resolvo/models"
	"resolvo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContractRepo is an in-memory ContractRepository with the same
// answer-once semantics as the Mongo implementation.
type fakeContractRepo struct {
	mu        sync.Mutex
	contracts map[string]*models.Contract
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[string]*models.Contract)}
}

func (r *fakeContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *contract
	r.contracts[contract.ID] = &clone
	return nil
}

func (r *fakeContractRepo) GetByID(ctx context.Context, contractID string) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[contractID]
	if !ok {
		return nil, contractRepo.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeContractRepo) FinalizeResponse(ctx context.Context, contractID string, status models.ContractStatus, signatureData *string) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[contractID]
	if !ok {
		return nil, contractRepo.ErrNotFound
	}
	if c.Status.IsFinal() {
		return nil, contractRepo.ErrAlreadyFinal
	}
	now := time.Now()
	c.Status = status
	c.RespondedAt = &now
	if signatureData != nil {
		c.SignatureData = signatureData
	}
	clone := *c
	return &clone, nil
}

func (r *fakeContractRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Contract
	for _, c := range r.contracts {
		if c.BookingID == bookingID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return nil
}

func newTestService() (*DefaultContractService, *fakeContractRepo, *recordingDispatcher) {
	repo := newFakeContractRepo()
	dispatcher := &recordingDispatcher{}
	return &DefaultContractService{Repo: repo, Notifier: dispatcher}, repo, dispatcher
}

func sigPtr(s string) *string { return &s }

func TestCreateContract(t *testing.T) {
	svc, _, dispatcher := newTestService()
	ctx := context.Background()

	draft, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID:   "bk-1",
		IssuerID:    "resolver-1",
		RecipientID: "client-1",
		Terms:       "50% upfront, remainder on completion.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractDraft, draft.Status)
	assert.Empty(t, dispatcher.sent)

	sent, err := svc.CreateContract(ctx, CreateContractInput{
		ListingID:   "listing-1",
		IssuerID:    "resolver-1",
		RecipientID: "client-2",
		Terms:       "Fixed fee.",
		Send:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractSent, sent.Status)

	// Sending notifies the recipient.
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, "client-2", dispatcher.sent[0].AccountID)
}

func TestCreateContractValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateContractInput
	}{
		{
			name:  "missing parties",
			input: CreateContractInput{BookingID: "bk-1", Terms: "t"},
		},
		{
			name:  "no booking or listing reference",
			input: CreateContractInput{IssuerID: "a", RecipientID: "b", Terms: "t"},
		},
		{
			name:  "missing terms",
			input: CreateContractInput{BookingID: "bk-1", IssuerID: "a", RecipientID: "b"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateContract(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))
		})
	}
}

func TestRespondAgree(t *testing.T) {
	svc, repo, dispatcher := newTestService()
	ctx := context.Background()

	sent, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1",
		Terms: "t", Send: true,
	})
	require.NoError(t, err)

	updated, err := svc.Respond(ctx, sent.ID, "client-1", models.ActionAgree, sigPtr("sig-blob-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ContractAgreed, updated.Status)
	require.NotNil(t, updated.SignatureData)
	assert.Equal(t, "sig-blob-1", *updated.SignatureData)
	require.NotNil(t, updated.RespondedAt)

	// The issuer is told the contract was answered.
	last := dispatcher.sent[len(dispatcher.sent)-1]
	assert.Equal(t, "resolver-1", last.AccountID)

	stored, err := repo.GetByID(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractAgreed, stored.Status)
}

func TestRespondAgreeRequiresSignature(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sent, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1",
		Terms: "t", Send: true,
	})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, sent.ID, "client-1", models.ActionAgree, nil)
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))

	_, err = svc.Respond(ctx, sent.ID, "client-1", models.ActionAgree, sigPtr(""))
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))
}

func TestRespondDecline(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sent, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1",
		Terms: "t", Send: true,
	})
	require.NoError(t, err)

	// Declining needs no signature.
	updated, err := svc.Respond(ctx, sent.ID, "client-1", models.ActionDecline, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ContractDeclined, updated.Status)
	assert.Nil(t, updated.SignatureData)
	require.NotNil(t, updated.RespondedAt)
}

func TestRespondIsFinalOnce(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	sent, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1",
		Terms: "t", Send: true,
	})
	require.NoError(t, err)

	first, err := svc.Respond(ctx, sent.ID, "client-1", models.ActionAgree, sigPtr("sig-1"))
	require.NoError(t, err)

	// A second answer is refused and changes nothing.
	_, err = svc.Respond(ctx, sent.ID, "client-1", models.ActionDecline, nil)
	require.Error(t, err)
	assert.Equal(t, utils.CodeAlreadyFinal, utils.ErrorCode(err))

	stored, err := repo.GetByID(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractAgreed, stored.Status)
	require.NotNil(t, stored.SignatureData)
	assert.Equal(t, "sig-1", *stored.SignatureData)
	assert.Equal(t, first.RespondedAt.Unix(), stored.RespondedAt.Unix())
}

func TestRespondAuthorization(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sent, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1",
		Terms: "t", Send: true,
	})
	require.NoError(t, err)

	// The issuer cannot answer their own contract.
	_, err = svc.Respond(ctx, sent.ID, "resolver-1", models.ActionAgree, sigPtr("sig"))
	require.Error(t, err)
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))

	_, err = svc.Respond(ctx, sent.ID, "client-1", "RENEGOTIATE", nil)
	require.Error(t, err)
	assert.Equal(t, utils.CodeInvalidInput, utils.ErrorCode(err))

	_, err = svc.Respond(ctx, "missing", "client-1", models.ActionAgree, sigPtr("sig"))
	require.Error(t, err)
	assert.Equal(t, utils.CodeNotFound, utils.ErrorCode(err))
}

func TestGetContractPartyGate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1", Terms: "t",
	})
	require.NoError(t, err)

	got, err := svc.GetContract(ctx, "client-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetContract(ctx, "stranger", created.ID)
	require.Error(t, err)
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
}

func TestListByBookingFiltersToParties(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-1", RecipientID: "client-1", Terms: "t",
	})
	require.NoError(t, err)
	_, err = svc.CreateContract(ctx, CreateContractInput{
		BookingID: "bk-1", IssuerID: "resolver-2", RecipientID: "client-2", Terms: "t",
	})
	require.NoError(t, err)

	visible, err := svc.ListByBooking(ctx, "client-1", "bk-1")
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	none, err := svc.ListByBooking(ctx, "stranger", "bk-1")
	require.NoError(t, err)
	assert.Empty(t, none)
}
