package pairing

import (
	"time"

	"github.com/google/uuid"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/pricing"
)

// Slot is one selected leg of a purchase. A nil slot is empty.
type Slot struct {
	TripID    int64
	BasePrice int64
}

// Session is the two-slot selection state of one search flow.
type Session struct {
	ID         uuid.UUID
	UserID     int64
	TripType   domain.TripType
	From       string
	To         string
	DepartDate time.Time
	ReturnDate time.Time
	Outbound   *Slot
	Return     *Slot
}

// SelectOutbound fills the outbound slot.
func (s *Session) SelectOutbound(tripID, basePrice int64) {
	s.Outbound = &Slot{TripID: tripID, BasePrice: basePrice}
}

// SelectReturn fills the return slot. The outbound slot must already be
// selected; the return list is only revealed after it.
func (s *Session) SelectReturn(tripID, basePrice int64) error {
	if s.TripType != domain.TripRoundTrip {
		return ErrNotRoundTrip
	}
	if s.Outbound == nil {
		return ErrOutboundEmpty
	}

	s.Return = &Slot{TripID: tripID, BasePrice: basePrice}

	return nil
}

// ResetOutbound is the "choose again" action: it empties both slots. There
// is no partial rollback; any return search results are discarded with it.
func (s *Session) ResetOutbound() {
	s.Outbound = nil
	s.Return = nil
}

// CanContinue reports whether the flow may hand off to seat selection: the
// outbound slot for one-way, both slots for round trip.
func (s *Session) CanContinue() bool {
	if s.Outbound == nil {
		return false
	}
	if s.TripType == domain.TripRoundTrip {
		return s.Return != nil
	}
	return true
}

// Preview prices the selected pair for display. Both slots must be filled.
func (s *Session) Preview(policy pricing.Policy) (pricing.Preview, error) {
	if s.Outbound == nil {
		return pricing.Preview{}, ErrOutboundEmpty
	}
	if s.Return == nil {
		return pricing.Preview{}, ErrReturnEmpty
	}

	return policy.PairPreview(s.Outbound.BasePrice, s.Return.BasePrice), nil
}
