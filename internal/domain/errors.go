package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrMissingRules    = errors.New("academic rules file is required")
	ErrMissingLogo     = errors.New("university logo is required")
	ErrInvalidLogo     = errors.New("logo must be a PNG or JPEG image")
	ErrInvalidDuration = errors.New("duration must be 0-23 hours and 0-59 minutes")
	ErrSessionEnded    = errors.New("session has ended")
	ErrSpeechDisabled  = errors.New("speech is disabled")
)
