package booking

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNoSeatsSelected  = errors.New("no seats selected")
	ErrBadLegs          = errors.New("leg set does not match trip type")
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrPromotionInvalid = errors.New("promotion code invalid or expired")
)

// PartialFailureError surfaces a fan-out that only partially applied: the
// succeeded ticket IDs are enumerable so the caller can decide what to do
// with them. Returned only when rollback-on-failure is disabled.
type PartialFailureError struct {
	Succeeded []uuid.UUID
	Cause     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("booking partially applied: %d tickets created, cause: %v",
		len(e.Succeeded), e.Cause)
}

func (e *PartialFailureError) Unwrap() error { return e.Cause }
