package admin

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrNotRefundable means the payment exists but is not in the completed
	// state, the only state refund may leave.
	ErrNotRefundable = errors.New("payment is not refundable")
	ErrSeatNotFound  = errors.New("seat not found")
)
