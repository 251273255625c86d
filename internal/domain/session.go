package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the state of one purchase's payment session.
type SessionState string

const (
	SessionIdle             SessionState = "idle"
	SessionSeatsReserved    SessionState = "seats_reserved"
	SessionMethodSelected   SessionState = "method_selected"
	SessionAwaitingProvider SessionState = "awaiting_provider"
	SessionConfirmed        SessionState = "confirmed"
	SessionFailed           SessionState = "failed"
	SessionReconciled       SessionState = "reconciled"
)

// Terminal reports whether the session can accept no further transitions.
// Late provider callbacks and expired countdowns on a finalized session are
// rejected against this guard.
func (s SessionState) Terminal() bool {
	return s == SessionConfirmed || s == SessionFailed || s == SessionReconciled
}

// BookingSession carries a purchase across the seat-selection -> payment ->
// provider-redirect hops. It replaces the ephemeral client-side handoff
// objects with an explicit server-side record, stored with a TTL equal to
// the payment window.
type BookingSession struct {
	ID                uuid.UUID
	UserID            int64
	TripType          TripType
	BookingGroupID    string
	OutboundTicketIDs []uuid.UUID
	ReturnTicketIDs   []uuid.UUID
	Amount            int64
	State             SessionState
	Method            string
	TransactionID     string
	FailureReason     string
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// TicketIDs returns the full set of ticket IDs to reconcile: for a round
// trip, the union of the outbound and return lists; otherwise the outbound
// list alone.
func (s *BookingSession) TicketIDs() []uuid.UUID {
	if s.TripType == TripRoundTrip {
		ids := make([]uuid.UUID, 0, len(s.OutboundTicketIDs)+len(s.ReturnTicketIDs))
		ids = append(ids, s.OutboundTicketIDs...)
		ids = append(ids, s.ReturnTicketIDs...)
		return ids
	}
	return s.OutboundTicketIDs
}

// Expired reports whether the payment countdown has elapsed.
func (s *BookingSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
