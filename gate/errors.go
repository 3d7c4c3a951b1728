package gate

import "errors"

// Sentinel errors returned by Checker.Authorize.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
