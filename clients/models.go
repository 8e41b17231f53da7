package clients

import (
	"errors"
	"time"
)

// Sentinel outcomes of polling a provider's token endpoint. The adapters
// translate each provider's error vocabulary into these so nothing above
// them branches on provider identity.
var (
	// ErrAuthorizationPending means the user has not finished authorizing yet
	ErrAuthorizationPending = errors.New("authorization pending")

	// ErrSlowDown means the provider wants a longer polling interval
	ErrSlowDown = errors.New("slow down")

	// ErrAccessDenied means the user declined the authorization request
	ErrAccessDenied = errors.New("access denied")

	// ErrDeviceCodeExpired means the device code's lifetime has passed
	ErrDeviceCodeExpired = errors.New("device code expired")

	// ErrInvalidGrant means the provider rejected a refresh token
	ErrInvalidGrant = errors.New("invalid grant")
)

// DeviceAuthorization is a provider's response to starting a device flow
type DeviceAuthorization struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	IntervalSeconds int
	ExpiresIn       int
}

// ProviderTokens is a provider's response to a successful token exchange.
// RefreshToken may be empty on refresh responses - some providers only
// issue it once, on the initial exchange.
type ProviderTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
