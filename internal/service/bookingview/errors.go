package bookingview

import "errors"

var (
	// ErrBookingNotFound means no tickets exist for the requested group.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrNotConfirmed means an invoice was requested for a booking that is
	// not fully confirmed; the caller should render the plain detail view.
	ErrNotConfirmed = errors.New("booking is not confirmed")
	// ErrNotRetryable means retry-payment was requested for a group with no
	// booked tickets left to pay for.
	ErrNotRetryable = errors.New("booking has no payable tickets")
	// ErrNotCancellable means every ticket of the group already left the
	// booked state.
	ErrNotCancellable = errors.New("booking has no cancellable tickets")
)
