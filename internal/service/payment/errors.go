package payment

import "errors"

var (
	ErrSessionNotFound  = errors.New("payment session not found")
	ErrSessionExpired   = errors.New("payment window expired")
	ErrSessionFinalized = errors.New("payment session already finalized")
	ErrBadState         = errors.New("action not valid in current session state")
	ErrConfirmFailed    = errors.New("ticket confirmation failed")
)
