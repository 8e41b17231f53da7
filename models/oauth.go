package models

import (
	"time"
)

// CalendarProvider identifies an OAuth-connected calendar service
type CalendarProvider string

const (
	CalendarProviderGoogle    CalendarProvider = "google"
	CalendarProviderMicrosoft CalendarProvider = "microsoft"
)

// OAuthSessionStatus is the lifecycle state of a device-flow session.
// pending is the only non-terminal state; authorized, expired and denied
// are terminal - a new session replaces the old one instead of reviving it.
type OAuthSessionStatus string

const (
	OAuthSessionStatusPending    OAuthSessionStatus = "pending"
	OAuthSessionStatusAuthorized OAuthSessionStatus = "authorized"
	OAuthSessionStatusExpired    OAuthSessionStatus = "expired"
	OAuthSessionStatusDenied     OAuthSessionStatus = "denied"
)

// OAuthSession tracks one OAuth 2.0 device-authorization grant in progress.
// The device code is server-side state and never serialized to API responses.
type OAuthSession struct {
	ID              string             `db:"id"               json:"id"`
	UserID          string             `db:"user_id"          json:"user_id"`
	Provider        CalendarProvider   `db:"provider"         json:"provider"`
	DeviceCode      string             `db:"device_code"      json:"-"`
	UserCode        string             `db:"user_code"        json:"user_code"`
	VerificationURI string             `db:"verification_uri" json:"verification_uri"`
	IntervalSeconds int                `db:"interval_seconds" json:"interval_seconds"`
	ExpiresAt       time.Time          `db:"expires_at"       json:"expires_at"`
	Status          OAuthSessionStatus `db:"status"           json:"status"`
	CreatedAt       time.Time          `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at"       json:"updated_at"`
}

// IsExpired reports whether the session's local deadline has passed
func (s *OAuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ProviderToken holds the OAuth tokens for one (user, provider) pair.
// At most one row exists per pair - the repository enforces this with an
// upsert on the unique (user_id, provider) index.
type ProviderToken struct {
	ID           string           `db:"id"            json:"id"`
	UserID       string           `db:"user_id"       json:"user_id"`
	Provider     CalendarProvider `db:"provider"      json:"provider"`
	AccessToken  string           `db:"access_token"  json:"-"`
	RefreshToken string           `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time        `db:"expires_at"    json:"expires_at"`
	CreatedAt    time.Time        `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at"    json:"updated_at"`
}

// IsExpired reports whether the access token's lifetime has passed
func (t *ProviderToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// PollStatus is the tri-state outcome of one device-flow poll
type PollStatus string

const (
	PollStatusPending         PollStatus = "pending"
	PollStatusAuthorized      PollStatus = "authorized"
	PollStatusDeniedOrExpired PollStatus = "denied_or_expired"
)

// PollResult is returned by the device flow coordinator for each poll call
type PollResult struct {
	Status          PollStatus     `json:"status"`
	IntervalSeconds int            `json:"interval_seconds,omitempty"`
	Token           *ProviderToken `json:"-"`
}
