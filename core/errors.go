package core

import (
	"errors"
)

// Sentinel errors for the device-flow and token management taxonomy.
// Handlers map these to HTTP status codes; services wrap them with
// fmt.Errorf("%w: ...") so errors.Is keeps working across layers.
var (
	// ErrNotFound is a sentinel error for "not found" cases
	ErrNotFound = errors.New("not found")

	// ErrInvalidProvider means the caller named a provider we don't support
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrProviderUnavailable wraps upstream transport failures and 5xx
	// responses so raw transport errors never leak to callers
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNoPendingFlow means poll was called without an active device flow
	ErrNoPendingFlow = errors.New("no pending device flow")

	// ErrReauthorizationRequired means the stored token is unusable and the
	// client must restart the device flow
	ErrReauthorizationRequired = errors.New("reauthorization required")
)

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound)
}
