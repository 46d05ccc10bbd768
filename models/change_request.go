package models

import "time"

// ChangeRequestState is the lifecycle state of a change request.
type ChangeRequestState string

const (
	ChangeRequestOpen      ChangeRequestState = "OPEN"
	ChangeRequestAccepted  ChangeRequestState = "ACCEPTED"
	ChangeRequestRejected  ChangeRequestState = "REJECTED"
	ChangeRequestWithdrawn ChangeRequestState = "WITHDRAWN"
)

// IsTerminal reports whether the state admits no further transition.
func (s ChangeRequestState) IsTerminal() bool {
	return s != ChangeRequestOpen
}

// ChangeRequest is a proposal by one booking party to alter the booking,
// pending the counterparty's decision. The booking itself never mutates
// until the counterparty accepts.
type ChangeRequest struct {
	ID              string             `bson:"id" json:"id"`
	BookingID       string             `bson:"booking_id" json:"bookingId"`
	RequesterID     string             `bson:"requester_id" json:"requesterId"`
	ProposedChanges BookingPatch       `bson:"proposed_changes" json:"proposedChanges"`
	State           ChangeRequestState `bson:"state" json:"state"`
	ResolvedBy      string             `bson:"resolved_by,omitempty" json:"resolvedBy,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	ResolvedAt      *time.Time         `bson:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
}

// ChangeDecision is the counterparty's verdict on an open change request.
type ChangeDecision string

const (
	DecisionAccept ChangeDecision = "ACCEPT"
	DecisionReject ChangeDecision = "REJECT"
)

// IsValid reports whether d is a recognized decision.
func (d ChangeDecision) IsValid() bool {
	return d == DecisionAccept || d == DecisionReject
}
