package auth

import "errors"

// Authorization flow errors.
var (
	// ErrEmptyAuthCode is returned when the interactive prompt produced an
	// empty authorization code (e.g. the operator just pressed enter).
	ErrEmptyAuthCode = errors.New("empty authorization code")
)
