package oauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pepperbackend/clients"
	"pepperbackend/core"
	"pepperbackend/models"
	"pepperbackend/services"
)

type testFixture struct {
	service      *OAuthServiceImpl
	sessionsRepo *MockOAuthSessionsRepository
	tokensRepo   *MockProviderTokensRepository
	googleClient *MockProviderClient
}

func newTestFixture() *testFixture {
	sessionsRepo := new(MockOAuthSessionsRepository)
	tokensRepo := new(MockProviderTokensRepository)
	googleClient := new(MockProviderClient)

	service := NewOAuthService(
		sessionsRepo,
		tokensRepo,
		map[models.CalendarProvider]clients.OAuthProviderClient{
			models.CalendarProviderGoogle: googleClient,
		},
		services.PassthroughTxManager{},
	)

	return &testFixture{
		service:      service,
		sessionsRepo: sessionsRepo,
		tokensRepo:   tokensRepo,
		googleClient: googleClient,
	}
}

func pendingSession(interval int) *models.OAuthSession {
	return &models.OAuthSession{
		ID:              core.NewID("oas"),
		UserID:          "u_1",
		Provider:        models.CalendarProviderGoogle,
		DeviceCode:      "device-123",
		UserCode:        "ABCD-EFGH",
		VerificationURI: "https://google.com/device",
		IntervalSeconds: interval,
		ExpiresAt:       time.Now().Add(10 * time.Minute),
		Status:          models.OAuthSessionStatusPending,
	}
}

func TestStartDeviceFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider", func(t *testing.T) {
		f := newTestFixture()

		_, err := f.service.StartDeviceFlow(ctx, "u_1", models.CalendarProvider("caldav"))
		assert.ErrorIs(t, err, core.ErrInvalidProvider)
	})

	t.Run("provider unreachable", func(t *testing.T) {
		f := newTestFixture()
		f.googleClient.On("BeginDeviceAuth", ctx).Return(nil, errors.New("connection refused"))

		_, err := f.service.StartDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrProviderUnavailable)
	})

	t.Run("success replaces pending flows", func(t *testing.T) {
		f := newTestFixture()
		f.googleClient.On("BeginDeviceAuth", ctx).Return(&clients.DeviceAuthorization{
			DeviceCode:      "device-123",
			UserCode:        "ABCD-EFGH",
			VerificationURI: "https://google.com/device",
			IntervalSeconds: 5,
			ExpiresIn:       900,
		}, nil)
		f.sessionsRepo.On("ExpirePendingSessions", mock.Anything, "u_1", models.CalendarProviderGoogle).
			Return(nil)
		f.sessionsRepo.On("CreateOAuthSession", mock.Anything, mock.AnythingOfType("*models.OAuthSession")).
			Return(nil)

		session, err := f.service.StartDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.OAuthSessionStatusPending, session.Status)
		assert.Equal(t, "ABCD-EFGH", session.UserCode)
		assert.Equal(t, 5, session.IntervalSeconds)
		assert.True(t, session.ExpiresAt.After(time.Now().Add(14*time.Minute)))

		f.sessionsRepo.AssertExpectations(t)
	})
}

func TestPollDeviceFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("no pending flow", func(t *testing.T) {
		f := newTestFixture()
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.None[*models.OAuthSession](), nil)

		_, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrNoPendingFlow)
	})

	t.Run("still pending", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.googleClient.On("ExchangeDeviceCode", ctx, "device-123").
			Return(nil, clients.ErrAuthorizationPending)

		result, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusPending, result.Status)
		assert.Equal(t, 5, result.IntervalSeconds)
	})

	t.Run("slow down grows and persists the interval", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.googleClient.On("ExchangeDeviceCode", ctx, "device-123").
			Return(nil, clients.ErrSlowDown)
		f.sessionsRepo.On("UpdateSessionInterval", ctx, session.ID, 10).Return(nil)

		result, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusPending, result.Status)
		assert.Equal(t, 10, result.IntervalSeconds)

		f.sessionsRepo.AssertExpectations(t)
	})

	t.Run("user denied", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.googleClient.On("ExchangeDeviceCode", ctx, "device-123").
			Return(nil, clients.ErrAccessDenied)
		f.sessionsRepo.On("UpdateSessionStatus", ctx, session.ID, models.OAuthSessionStatusDenied).
			Return(true, nil)

		result, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusDeniedOrExpired, result.Status)

		f.sessionsRepo.AssertExpectations(t)
	})

	t.Run("device code expired upstream", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.googleClient.On("ExchangeDeviceCode", ctx, "device-123").
			Return(nil, clients.ErrDeviceCodeExpired)
		f.sessionsRepo.On("UpdateSessionStatus", ctx, session.ID, models.OAuthSessionStatusExpired).
			Return(true, nil)

		result, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusDeniedOrExpired, result.Status)
	})

	t.Run("session past its deadline skips the provider call", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		session.ExpiresAt = time.Now().Add(-time.Minute)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.sessionsRepo.On("UpdateSessionStatus", ctx, session.ID, models.OAuthSessionStatusExpired).
			Return(true, nil)

		result, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusDeniedOrExpired, result.Status)

		f.googleClient.AssertNotCalled(t, "ExchangeDeviceCode", mock.Anything, mock.Anything)
	})

	t.Run("provider error", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.googleClient.On("ExchangeDeviceCode", ctx, "device-123").
			Return(nil, errors.New("status 500"))

		_, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrProviderUnavailable)
	})

	t.Run("authorized stores the token", func(t *testing.T) {
		f := newTestFixture()
		session := pendingSession(5)
		expiresAt := time.Now().Add(time.Hour)
		f.sessionsRepo.On("GetPendingSession", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(session), nil)
		f.googleClient.On("ExchangeDeviceCode", ctx, "device-123").
			Return(&clients.ProviderTokens{
				AccessToken:  "access-token-1",
				RefreshToken: "refresh-token-1",
				ExpiresAt:    expiresAt,
			}, nil)
		f.sessionsRepo.On("UpdateSessionStatus", mock.Anything, session.ID, models.OAuthSessionStatusAuthorized).
			Return(true, nil)
		f.tokensRepo.On("UpsertProviderToken", mock.Anything, mock.AnythingOfType("*models.ProviderToken")).
			Return(nil)

		result, err := f.service.PollDeviceFlow(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, models.PollStatusAuthorized, result.Status)
		require.NotNil(t, result.Token)
		assert.Equal(t, "access-token-1", result.Token.AccessToken)
		assert.Equal(t, models.CalendarProviderGoogle, result.Token.Provider)

		f.sessionsRepo.AssertExpectations(t)
		f.tokensRepo.AssertExpectations(t)
	})
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider", func(t *testing.T) {
		f := newTestFixture()

		err := f.service.Disconnect(ctx, "u_1", models.CalendarProvider("caldav"))
		assert.ErrorIs(t, err, core.ErrInvalidProvider)
	})

	t.Run("removes token and pending flows", func(t *testing.T) {
		f := newTestFixture()
		f.sessionsRepo.On("ExpirePendingSessions", mock.Anything, "u_1", models.CalendarProviderGoogle).
			Return(nil)
		f.tokensRepo.On("DeleteProviderToken", mock.Anything, "u_1", models.CalendarProviderGoogle).
			Return(nil)

		err := f.service.Disconnect(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)

		f.sessionsRepo.AssertExpectations(t)
		f.tokensRepo.AssertExpectations(t)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	storedToken := func() *models.ProviderToken {
		return &models.ProviderToken{
			ID:           core.NewID("pt"),
			UserID:       "u_1",
			Provider:     models.CalendarProviderGoogle,
			AccessToken:  "stale-access-token",
			RefreshToken: "refresh-token-1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		}
	}

	t.Run("no stored token", func(t *testing.T) {
		f := newTestFixture()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.None[*models.ProviderToken](), nil)

		_, err := f.service.RefreshToken(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrReauthorizationRequired)
	})

	t.Run("revoked refresh token deletes the row", func(t *testing.T) {
		f := newTestFixture()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(storedToken()), nil)
		f.googleClient.On("RefreshToken", ctx, "refresh-token-1").
			Return(nil, clients.ErrInvalidGrant)
		f.tokensRepo.On("DeleteProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(nil)

		_, err := f.service.RefreshToken(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrReauthorizationRequired)

		f.tokensRepo.AssertExpectations(t)
	})

	t.Run("provider outage is not a reauth signal", func(t *testing.T) {
		f := newTestFixture()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(storedToken()), nil)
		f.googleClient.On("RefreshToken", ctx, "refresh-token-1").
			Return(nil, errors.New("status 503"))

		_, err := f.service.RefreshToken(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrProviderUnavailable)
		f.tokensRepo.AssertNotCalled(t, "DeleteProviderToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success keeps the old refresh token when omitted", func(t *testing.T) {
		f := newTestFixture()
		token := storedToken()
		newExpiry := time.Now().Add(time.Hour)
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(token), nil)
		f.googleClient.On("RefreshToken", ctx, "refresh-token-1").
			Return(&clients.ProviderTokens{AccessToken: "fresh-access-token", ExpiresAt: newExpiry}, nil)
		f.tokensRepo.On("UpsertProviderToken", ctx, token).Return(nil)

		refreshed, err := f.service.RefreshToken(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, "fresh-access-token", refreshed.AccessToken)
		assert.Equal(t, "refresh-token-1", refreshed.RefreshToken)
		assert.True(t, refreshed.ExpiresAt.After(time.Now()))
	})

	t.Run("success adopts a rotated refresh token", func(t *testing.T) {
		f := newTestFixture()
		token := storedToken()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(token), nil)
		f.googleClient.On("RefreshToken", ctx, "refresh-token-1").
			Return(&clients.ProviderTokens{
				AccessToken:  "fresh-access-token",
				RefreshToken: "refresh-token-2",
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil)
		f.tokensRepo.On("UpsertProviderToken", ctx, token).Return(nil)

		refreshed, err := f.service.RefreshToken(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, "refresh-token-2", refreshed.RefreshToken)
	})
}

func TestValidAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		f := newTestFixture()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.None[*models.ProviderToken](), nil)

		_, err := f.service.ValidAccessToken(ctx, "u_1", models.CalendarProviderGoogle)
		assert.ErrorIs(t, err, core.ErrReauthorizationRequired)
	})

	t.Run("fresh token returned as-is", func(t *testing.T) {
		f := newTestFixture()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(&models.ProviderToken{
				AccessToken: "access-token-1",
				ExpiresAt:   time.Now().Add(time.Hour),
			}), nil)

		accessToken, err := f.service.ValidAccessToken(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, "access-token-1", accessToken)
		f.googleClient.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("expired token gets refreshed", func(t *testing.T) {
		f := newTestFixture()
		f.tokensRepo.On("GetProviderToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return(mo.Some(&models.ProviderToken{
				UserID:       "u_1",
				Provider:     models.CalendarProviderGoogle,
				AccessToken:  "stale-access-token",
				RefreshToken: "refresh-token-1",
				ExpiresAt:    time.Now().Add(-time.Minute),
			}), nil)
		f.googleClient.On("RefreshToken", ctx, "refresh-token-1").
			Return(&clients.ProviderTokens{
				AccessToken: "fresh-access-token",
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil)
		f.tokensRepo.On("UpsertProviderToken", ctx, mock.AnythingOfType("*models.ProviderToken")).
			Return(nil)

		accessToken, err := f.service.ValidAccessToken(ctx, "u_1", models.CalendarProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, "fresh-access-token", accessToken)
	})
}

func TestConnectedProviders(t *testing.T) {
	ctx := context.Background()

	f := newTestFixture()
	f.tokensRepo.On("ListProviderTokens", ctx, "u_1").Return([]*models.ProviderToken{
		{Provider: models.CalendarProviderGoogle, ExpiresAt: time.Now().Add(time.Hour)},
		{Provider: models.CalendarProviderMicrosoft, ExpiresAt: time.Now().Add(-time.Hour)},
	}, nil)

	connected, err := f.service.ConnectedProviders(ctx, "u_1")
	require.NoError(t, err)
	assert.Equal(t, []models.CalendarProvider{models.CalendarProviderGoogle}, connected)
}
