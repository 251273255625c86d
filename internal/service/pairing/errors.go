package pairing

import "errors"

var (
	ErrSessionNotFound = errors.New("pairing session not found")
	ErrTripNotFound    = errors.New("trip not found")
	ErrNotRoundTrip    = errors.New("session is not a round trip")
	ErrOutboundEmpty   = errors.New("outbound trip not selected")
	ErrReturnEmpty     = errors.New("return trip not selected")
	ErrNoReturnTrips   = errors.New("no return trips for the reverse route")
)
