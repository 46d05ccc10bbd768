package models

import "time"

// ContractStatus is the lifecycle state of a contract document.
type ContractStatus string

const (
	ContractDraft    ContractStatus = "DRAFT"
	ContractSent     ContractStatus = "SENT"
	ContractAgreed   ContractStatus = "AGREED"
	ContractDeclined ContractStatus = "DECLINED"
)

// IsFinal reports whether the contract has been answered. AGREED and DECLINED
// are terminal: a recorded decision is never overwritten.
func (s ContractStatus) IsFinal() bool {
	return s == ContractAgreed || s == ContractDeclined
}

// ContractAction is the recipient's response to a sent contract.
type ContractAction string

const (
	ActionAgree   ContractAction = "AGREED"
	ActionDecline ContractAction = "DECLINED"
)

// IsValid reports whether a is one of the two permitted responses.
func (a ContractAction) IsValid() bool {
	return a == ActionAgree || a == ActionDecline
}

// Contract is a binding agreement document attached to a booking or listing.
// SignatureData is an opaque blob reference (e.g. a storage public ID),
// stored verbatim and nullable for declined contracts.
type Contract struct {
	ID            string         `bson:"id" json:"id"`
	BookingID     string         `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	ListingID     string         `bson:"listing_id,omitempty" json:"listingId,omitempty"`
	IssuerID      string         `bson:"issuer_id" json:"issuerId"`
	RecipientID   string         `bson:"recipient_id" json:"recipientId"`
	Status        ContractStatus `bson:"status" json:"status"`
	Terms         string         `bson:"terms" json:"terms"`
	SignatureData *string        `bson:"signature_data,omitempty" json:"signatureData,omitempty"`
	CreatedAt     time.Time      `bson:"created_at" json:"createdAt"`
	RespondedAt   *time.Time     `bson:"responded_at,omitempty" json:"respondedAt,omitempty"`
}
