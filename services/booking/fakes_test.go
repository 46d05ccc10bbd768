package booking

import (
	"context"
	"sync"
	"time"

	bookingRepo "resolvo/database/repository/booking"
	"resolvo/models"
)

// fakeBookingRepo is an in-memory BookingRepository honoring the same
// contract as the Mongo implementation: version-guarded writes, first-writer
// finalization and cascade-close of open change requests on terminal status.
type fakeBookingRepo struct {
	mu             sync.Mutex
	bookings       map[string]*models.Booking
	changeRequests map[string]*models.ChangeRequest

	// conflictNextUpdates simulates interleaved writers: while positive,
	// UpdateWithVersion bumps the stored version and reports a conflict.
	conflictNextUpdates int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:       make(map[string]*models.Booking),
		changeRequests: make(map[string]*models.ChangeRequest),
	}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) UpdateWithVersion(ctx context.Context, bookingID string, patch models.BookingPatch, expectedVersion int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if r.conflictNextUpdates > 0 {
		r.conflictNextUpdates--
		b.Version++
		return nil, bookingRepo.ErrVersionConflict
	}
	if b.Version != expectedVersion {
		return nil, bookingRepo.ErrVersionConflict
	}

	updated := patch.Apply(*b)
	updated.Version = b.Version + 1
	updated.UpdatedAt = time.Now()
	r.bookings[bookingID] = &updated

	if patch.Status != nil && patch.Status.IsTerminal() {
		now := time.Now()
		for _, cr := range r.changeRequests {
			if cr.BookingID == bookingID && cr.State == models.ChangeRequestOpen {
				cr.State = models.ChangeRequestRejected
				cr.ResolvedBy = "system"
				cr.ResolvedAt = &now
			}
		}
	}

	clone := updated
	return &clone, nil
}

func (r *fakeBookingRepo) ListByParty(ctx context.Context, accountID string, limit, offset int64) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ClientID == accountID || b.ResolverID == accountID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(ctx context.Context, limit, offset int64) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBookingRepo) InsertChangeRequest(ctx context.Context, cr *models.ChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.changeRequests {
		if existing.BookingID == cr.BookingID &&
			existing.RequesterID == cr.RequesterID &&
			existing.State == models.ChangeRequestOpen {
			return bookingRepo.ErrDuplicateOpenRequest
		}
	}
	clone := *cr
	r.changeRequests[cr.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) GetChangeRequestByID(ctx context.Context, changeRequestID string) (*models.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.changeRequests[changeRequestID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	clone := *cr
	return &clone, nil
}

func (r *fakeBookingRepo) FinalizeChangeRequest(ctx context.Context, changeRequestID string, state models.ChangeRequestState, resolvedBy string) (*models.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.changeRequests[changeRequestID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if cr.State != models.ChangeRequestOpen {
		return nil, bookingRepo.ErrAlreadyResolved
	}
	now := time.Now()
	cr.State = state
	cr.ResolvedBy = resolvedBy
	cr.ResolvedAt = &now
	clone := *cr
	return &clone, nil
}

func (r *fakeBookingRepo) ListChangeRequests(ctx context.Context, bookingID string) ([]models.ChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChangeRequest
	for _, cr := range r.changeRequests {
		if cr.BookingID == bookingID {
			out = append(out, *cr)
		}
	}
	return out, nil
}

// fakeDispatcher records dispatched notifications.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return nil
}

func (d *fakeDispatcher) sentTo(accountID string) []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Notification
	for _, n := range d.sent {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out
}

// fakePayments records refund and capture calls.
type fakePayments struct {
	mu       sync.Mutex
	refunds  []string
	captures []string
}

func (p *fakePayments) Refund(ctx context.Context, paymentRef string, amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refunds = append(p.refunds, paymentRef)
	return nil
}

func (p *fakePayments) Capture(ctx context.Context, paymentRef string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captures = append(p.captures, paymentRef)
	return nil
}

func newTestService() (*DefaultLifecycleService, *fakeBookingRepo, *fakeDispatcher, *fakePayments) {
	repo := newFakeBookingRepo()
	dispatcher := &fakeDispatcher{}
	payments := &fakePayments{}
	svc := &DefaultLifecycleService{
		Repo:     repo,
		Payments: payments,
		Notifier: dispatcher,
	}
	return svc, repo, dispatcher, payments
}

func seedBooking(repo *fakeBookingRepo, status models.BookingStatus, payment models.PaymentStatus) *models.Booking {
	now := time.Now()
	b := &models.Booking{
		ID:            "bk-1",
		ClientID:      "client-1",
		ResolverID:    "resolver-1",
		ServiceID:     "svc-1",
		Status:        status,
		PaymentStatus: payment,
		TotalPrice:    120,
		ScheduledFor:  now.Add(48 * time.Hour),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	repo.bookings[b.ID] = b
	return b
}

func statusPtr(s models.BookingStatus) *models.BookingStatus { return &s }

func paymentPtr(p models.PaymentStatus) *models.PaymentStatus { return &p }

func pricePtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
