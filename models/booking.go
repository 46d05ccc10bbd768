package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingDisputed   BookingStatus = "DISPUTED"
)

// PaymentStatus tracks the money side of a booking.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "UNPAID"
	PaymentAuthorized PaymentStatus = "AUTHORIZED"
	PaymentPaid       PaymentStatus = "PAID"
	PaymentRefunded   PaymentStatus = "REFUNDED"
	PaymentFailed     PaymentStatus = "FAILED"
)

// IsValid reports whether s is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled, BookingDisputed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// IsValid reports whether p is a recognized payment status.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentAuthorized, PaymentPaid, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

// Booking is the shared record negotiated between a client and a resolver.
// Version backs optimistic concurrency: every successful write increments it
// by exactly one, and writers must present the version they last read.
type Booking struct {
	ID            string        `bson:"id" json:"id"`
	ClientID      string        `bson:"client_id" json:"clientId"`
	ResolverID    string        `bson:"resolver_id" json:"resolverId"`
	ServiceID     string        `bson:"service_id" json:"serviceId"`
	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	TotalPrice    float64       `bson:"total_price" json:"totalPrice"`
	ScheduledFor  time.Time     `bson:"scheduled_for" json:"scheduledFor"`
	PaymentRef    string        `bson:"payment_ref,omitempty" json:"paymentRef,omitempty"`
	Version       int64         `bson:"version" json:"version"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// IsParty reports whether the given account is one of the booking's two parties.
func (b *Booking) IsParty(accountID string) bool {
	return accountID == b.ClientID || accountID == b.ResolverID
}

// Counterparty returns the other party of the booking relative to accountID.
// Empty string when accountID is not a party.
func (b *Booking) Counterparty(accountID string) string {
	switch accountID {
	case b.ClientID:
		return b.ResolverID
	case b.ResolverID:
		return b.ClientID
	}
	return ""
}

// BookingPatch is a partial update to a booking. Nil fields are left untouched.
type BookingPatch struct {
	Status        *BookingStatus `bson:"status,omitempty" json:"status,omitempty"`
	PaymentStatus *PaymentStatus `bson:"payment_status,omitempty" json:"paymentStatus,omitempty"`
	TotalPrice    *float64       `bson:"total_price,omitempty" json:"totalPrice,omitempty"`
	ScheduledFor  *time.Time     `bson:"scheduled_for,omitempty" json:"scheduledFor,omitempty"`
	PaymentRef    *string        `bson:"payment_ref,omitempty" json:"paymentRef,omitempty"`
}

// IsEmpty reports whether the patch proposes no changes at all.
func (p BookingPatch) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil &&
		p.TotalPrice == nil && p.ScheduledFor == nil && p.PaymentRef == nil
}

// Apply returns a copy of b with the patch applied. It does not touch version
// or timestamps; those belong to the store.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	if p.ScheduledFor != nil {
		b.ScheduledFor = *p.ScheduledFor
	}
	if p.PaymentRef != nil {
		b.PaymentRef = *p.PaymentRef
	}
	return b
}
