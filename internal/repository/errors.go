package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrNoSeats         = errors.New("trip has no seats")
	ErrBadTransition   = errors.New("invalid status transition")
)
