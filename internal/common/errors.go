// Package common defines shared constants and sentinel errors used across
// the QuickFlip client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("item not found")

	// ErrDiscarded reports a remote result that arrived after its target
	// was removed or superseded. It is never recorded as the store error.
	ErrDiscarded = errors.New("result discarded")

	// Session errors.
	ErrNotAuthenticated = errors.New("no authenticated user")

	// Validation errors. These are returned before any state mutation
	// or network call takes place.
	ErrInvalidPrice      = errors.New("price must be a positive number")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrEmptyPatch        = errors.New("no fields to update")

	// Transport errors.
	ErrUnavailable = errors.New("backend unavailable")
)
