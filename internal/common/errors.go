// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Configuration errors are fatal and raised before any storage access.
	ErrConfiguration = errors.New("configuration error")

	// Input validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAllocationExhausted means every username candidate within the
	// allocation budget already existed. Treated as systemic misconfiguration.
	ErrAllocationExhausted = errors.New("username allocation exhausted")

	// ErrUnsupported marks operations the plugin contract rejects by design.
	ErrUnsupported = errors.New("operation not supported")
)
