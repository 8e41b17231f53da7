package microsoft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepperbackend/clients"
	"pepperbackend/models"
)

func newTestClient(deviceAuthURL, tokenURL, graphBaseURL string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		clientID:      "test-client-id",
		deviceAuthURL: deviceAuthURL,
		tokenURL:      tokenURL,
		graphBaseURL:  graphBaseURL,
	}
}

func TestNewClientDefaultsTenant(t *testing.T) {
	client := NewClient("test-client-id", "")
	assert.Contains(t, client.deviceAuthURL, "/common/")
	assert.Contains(t, client.tokenURL, "/common/")

	client = NewClient("test-client-id", "my-tenant")
	assert.Contains(t, client.deviceAuthURL, "/my-tenant/")
}

func TestBeginDeviceAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-client-id", r.Form.Get("client_id"))
		assert.Contains(t, r.Form.Get("scope"), "Calendars.ReadWrite")
		assert.Contains(t, r.Form.Get("scope"), "offline_access")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "device-123",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://microsoft.com/devicelogin",
			"expires_in":       900,
			"interval":         5,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL, server.URL)

	auth, err := client.BeginDeviceAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "device-123", auth.DeviceCode)
	assert.Equal(t, "ABCD-EFGH", auth.UserCode)
	assert.Equal(t, "https://microsoft.com/devicelogin", auth.VerificationURI)
	assert.Equal(t, 5, auth.IntervalSeconds)
	assert.Equal(t, 900, auth.ExpiresIn)
}

func TestExchangeDeviceCodeErrors(t *testing.T) {
	testCases := []struct {
		name        string
		errorCode   string
		expectedErr error
	}{
		{"pending", "authorization_pending", clients.ErrAuthorizationPending},
		{"slow down", "slow_down", clients.ErrSlowDown},
		{"declined", "authorization_declined", clients.ErrAccessDenied},
		{"expired", "expired_token", clients.ErrDeviceCodeExpired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]any{"error": tc.errorCode})
			}))
			defer server.Close()

			client := newTestClient(server.URL, server.URL, server.URL)

			_, err := client.ExchangeDeviceCode(context.Background(), "device-123")
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestExchangeDeviceCodeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:device_code", r.Form.Get("grant_type"))
		assert.Equal(t, "device-123", r.Form.Get("device_code"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-token-1",
			"refresh_token": "refresh-token-1",
			"expires_in":    3600,
			"token_type":    "Bearer",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL, server.URL)

	tokens, err := client.ExchangeDeviceCode(context.Background(), "device-123")
	require.NoError(t, err)
	assert.Equal(t, "access-token-1", tokens.AccessToken)
	assert.Equal(t, "refresh-token-1", tokens.RefreshToken)
	assert.True(t, tokens.ExpiresAt.After(time.Now().Add(59*time.Minute)))
}

func TestRefreshToken(t *testing.T) {
	t.Run("invalid grant", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
		}))
		defer server.Close()

		client := newTestClient(server.URL, server.URL, server.URL)

		_, err := client.RefreshToken(context.Background(), "stale-refresh-token")
		assert.ErrorIs(t, err, clients.ErrInvalidGrant)
	})

	t.Run("success rotates refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "refresh-token-1", r.Form.Get("refresh_token"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-token-2",
				"refresh_token": "refresh-token-2",
				"expires_in":    3600,
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL, server.URL, server.URL)

		tokens, err := client.RefreshToken(context.Background(), "refresh-token-1")
		require.NoError(t, err)
		assert.Equal(t, "access-token-2", tokens.AccessToken)
		assert.Equal(t, "refresh-token-2", tokens.RefreshToken)
	})
}

func TestListUpcomingEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token-1", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Path, "/me/calendarview")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{
					"id":          "event-1",
					"subject":     "Standup",
					"bodyPreview": "Daily sync",
					"location":    map[string]any{"displayName": "Room 4"},
					"start":       map[string]any{"dateTime": "2026-09-01T09:00:00.0000000", "timeZone": "UTC"},
					"end":         map[string]any{"dateTime": "2026-09-01T09:15:00.0000000", "timeZone": "UTC"},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL, server.URL)

	events, err := client.ListUpcomingEvents(context.Background(), "access-token-1", 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "event-1", events[0].ID)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "Room 4", events[0].Location)
	assert.Equal(t, models.CalendarProviderMicrosoft, events[0].Provider)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), events[0].StartTime)
}

func TestCreateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/me/events")

		var payload graphEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Dentist", payload.Subject)
		assert.Equal(t, "UTC", payload.Start.TimeZone)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		payload.ID = "event-99"
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL, server.URL)

	start := time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC)
	created, err := client.CreateEvent(context.Background(), "access-token-1", &models.CalendarEvent{
		Title:     "Dentist",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "event-99", created.ID)
	assert.Equal(t, "Dentist", created.Title)
	assert.Equal(t, models.CalendarProviderMicrosoft, created.Provider)
}
