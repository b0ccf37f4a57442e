// Package services provides application-level orchestration services
package services

import "errors"

// Sentinel errors mapped to HTTP status codes by the presentation layer.
var (
	// ErrNotFound reports that no record matches the given identifier.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate reports a uniqueness violation, such as an existing
	// circuit code or username.
	ErrDuplicate = errors.New("record already exists")

	// ErrValidation reports malformed or incomplete input.
	ErrValidation = errors.New("invalid input")

	// ErrUnauthorized reports missing or failed authentication.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden reports an authenticated caller lacking the required role.
	ErrForbidden = errors.New("operation not permitted")
)
