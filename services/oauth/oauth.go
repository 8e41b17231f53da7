package oauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"pepperbackend/clients"
	"pepperbackend/core"
	"pepperbackend/models"
	"pepperbackend/services"
)

// slowDownIncrement is how much the poll interval grows when a provider
// answers slow_down, per RFC 8628
const slowDownIncrement = 5

// OAuthSessionsRepository is the persistence surface the coordinator needs
// for device-flow sessions
type OAuthSessionsRepository interface {
	CreateOAuthSession(ctx context.Context, session *models.OAuthSession) error
	GetPendingSession(
		ctx context.Context,
		userID string,
		provider models.CalendarProvider,
	) (mo.Option[*models.OAuthSession], error)
	UpdateSessionStatus(ctx context.Context, sessionID string, status models.OAuthSessionStatus) (bool, error)
	UpdateSessionInterval(ctx context.Context, sessionID string, intervalSeconds int) error
	ExpirePendingSessions(ctx context.Context, userID string, provider models.CalendarProvider) error
}

// ProviderTokensRepository is the persistence surface for stored provider
// credentials
type ProviderTokensRepository interface {
	UpsertProviderToken(ctx context.Context, token *models.ProviderToken) error
	GetProviderToken(
		ctx context.Context,
		userID string,
		provider models.CalendarProvider,
	) (mo.Option[*models.ProviderToken], error)
	ListProviderTokens(ctx context.Context, userID string) ([]*models.ProviderToken, error)
	DeleteProviderToken(ctx context.Context, userID string, provider models.CalendarProvider) error
}

// OAuthServiceImpl coordinates device authorization flows across the
// configured providers and owns the stored tokens they produce
type OAuthServiceImpl struct {
	sessionsRepo OAuthSessionsRepository
	tokensRepo   ProviderTokensRepository
	providers    map[models.CalendarProvider]clients.OAuthProviderClient
	txManager    services.TransactionManager
}

func NewOAuthService(
	sessionsRepo OAuthSessionsRepository,
	tokensRepo ProviderTokensRepository,
	providers map[models.CalendarProvider]clients.OAuthProviderClient,
	txManager services.TransactionManager,
) *OAuthServiceImpl {
	return &OAuthServiceImpl{
		sessionsRepo: sessionsRepo,
		tokensRepo:   tokensRepo,
		providers:    providers,
		txManager:    txManager,
	}
}

func (s *OAuthServiceImpl) providerClient(provider models.CalendarProvider) (clients.OAuthProviderClient, error) {
	client, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidProvider, provider)
	}
	return client, nil
}

// StartDeviceFlow begins a new device flow for the provider. Any pending
// flow for the same (user, provider) pair is expired first, so the newest
// session is always the only pollable one.
func (s *OAuthServiceImpl) StartDeviceFlow(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (*models.OAuthSession, error) {
	log.Printf("🔐 Starting device flow for user %s, provider: %s", userID, provider)

	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	client, err := s.providerClient(provider)
	if err != nil {
		return nil, err
	}

	auth, err := client.BeginDeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin device authorization: %v", core.ErrProviderUnavailable, err)
	}

	session := &models.OAuthSession{
		ID:              core.NewID("oas"),
		UserID:          userID,
		Provider:        provider,
		DeviceCode:      auth.DeviceCode,
		UserCode:        auth.UserCode,
		VerificationURI: auth.VerificationURI,
		IntervalSeconds: auth.IntervalSeconds,
		ExpiresAt:       time.Now().Add(time.Duration(auth.ExpiresIn) * time.Second),
		Status:          models.OAuthSessionStatusPending,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sessionsRepo.ExpirePendingSessions(txCtx, userID, provider); err != nil {
			return fmt.Errorf("failed to expire previous sessions: %w", err)
		}
		if err := s.sessionsRepo.CreateOAuthSession(txCtx, session); err != nil {
			return fmt.Errorf("failed to create oauth session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔐 Completed successfully - started device flow session %s with user code %s", session.ID, session.UserCode)
	return session, nil
}

// PollDeviceFlow performs one poll attempt for the user's pending flow.
// Polling is client-driven - the caller decides when to call again based on
// the returned interval.
func (s *OAuthServiceImpl) PollDeviceFlow(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (*models.PollResult, error) {
	log.Printf("🔐 Polling device flow for user %s, provider: %s", userID, provider)

	client, err := s.providerClient(provider)
	if err != nil {
		return nil, err
	}

	maybeSession, err := s.sessionsRepo.GetPendingSession(ctx, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending session: %w", err)
	}
	session, ok := maybeSession.Get()
	if !ok {
		return nil, fmt.Errorf("%w: no pending device flow for provider %s", core.ErrNoPendingFlow, provider)
	}

	if session.IsExpired() {
		if _, err := s.sessionsRepo.UpdateSessionStatus(ctx, session.ID, models.OAuthSessionStatusExpired); err != nil {
			return nil, fmt.Errorf("failed to expire session: %w", err)
		}
		log.Printf("🔐 Device flow session %s expired before authorization", session.ID)
		return &models.PollResult{Status: models.PollStatusDeniedOrExpired}, nil
	}

	tokens, err := client.ExchangeDeviceCode(ctx, session.DeviceCode)
	if err != nil {
		return s.handlePollError(ctx, session, err)
	}

	token := &models.ProviderToken{
		ID:           core.NewID("pt"),
		UserID:       userID,
		Provider:     provider,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// The status guard means a concurrent poll may win the transition.
		// Upserting regardless is harmless - both polls carry the same
		// freshly issued credentials.
		if _, err := s.sessionsRepo.UpdateSessionStatus(txCtx, session.ID, models.OAuthSessionStatusAuthorized); err != nil {
			return fmt.Errorf("failed to mark session authorized: %w", err)
		}
		if err := s.tokensRepo.UpsertProviderToken(txCtx, token); err != nil {
			return fmt.Errorf("failed to store provider token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔐 Completed successfully - device flow authorized for user %s, provider: %s", userID, provider)
	return &models.PollResult{Status: models.PollStatusAuthorized, Token: token}, nil
}

func (s *OAuthServiceImpl) handlePollError(
	ctx context.Context,
	session *models.OAuthSession,
	pollErr error,
) (*models.PollResult, error) {
	switch {
	case errors.Is(pollErr, clients.ErrAuthorizationPending):
		return &models.PollResult{
			Status:          models.PollStatusPending,
			IntervalSeconds: session.IntervalSeconds,
		}, nil

	case errors.Is(pollErr, clients.ErrSlowDown):
		newInterval := session.IntervalSeconds + slowDownIncrement
		if err := s.sessionsRepo.UpdateSessionInterval(ctx, session.ID, newInterval); err != nil {
			return nil, fmt.Errorf("failed to persist slow_down interval: %w", err)
		}
		log.Printf("🔐 Provider asked to slow down, session %s interval now %ds", session.ID, newInterval)
		return &models.PollResult{
			Status:          models.PollStatusPending,
			IntervalSeconds: newInterval,
		}, nil

	case errors.Is(pollErr, clients.ErrAccessDenied):
		if _, err := s.sessionsRepo.UpdateSessionStatus(ctx, session.ID, models.OAuthSessionStatusDenied); err != nil {
			return nil, fmt.Errorf("failed to mark session denied: %w", err)
		}
		log.Printf("🔐 User denied device flow session %s", session.ID)
		return &models.PollResult{Status: models.PollStatusDeniedOrExpired}, nil

	case errors.Is(pollErr, clients.ErrDeviceCodeExpired):
		if _, err := s.sessionsRepo.UpdateSessionStatus(ctx, session.ID, models.OAuthSessionStatusExpired); err != nil {
			return nil, fmt.Errorf("failed to mark session expired: %w", err)
		}
		log.Printf("🔐 Device code expired for session %s", session.ID)
		return &models.PollResult{Status: models.PollStatusDeniedOrExpired}, nil

	default:
		return nil, fmt.Errorf("%w: device code exchange failed: %v", core.ErrProviderUnavailable, pollErr)
	}
}

// Disconnect removes the stored token for the provider and invalidates any
// pending flow. Idempotent - disconnecting an unconnected provider succeeds.
func (s *OAuthServiceImpl) Disconnect(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) error {
	log.Printf("🔐 Disconnecting provider %s for user %s", provider, userID)

	if _, err := s.providerClient(provider); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sessionsRepo.ExpirePendingSessions(txCtx, userID, provider); err != nil {
			return fmt.Errorf("failed to expire pending sessions: %w", err)
		}
		if err := s.tokensRepo.DeleteProviderToken(txCtx, userID, provider); err != nil {
			return fmt.Errorf("failed to delete provider token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🔐 Completed successfully - disconnected provider %s for user %s", provider, userID)
	return nil
}

// RefreshToken exchanges the stored refresh token for fresh credentials.
// A refresh token the provider no longer accepts deletes the stored row, so
// the user is cleanly back to disconnected instead of stuck half-authorized.
func (s *OAuthServiceImpl) RefreshToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (*models.ProviderToken, error) {
	log.Printf("🔐 Refreshing token for user %s, provider: %s", userID, provider)

	client, err := s.providerClient(provider)
	if err != nil {
		return nil, err
	}

	maybeToken, err := s.tokensRepo.GetProviderToken(ctx, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider token: %w", err)
	}
	token, ok := maybeToken.Get()
	if !ok {
		return nil, fmt.Errorf("%w: no stored token for provider %s", core.ErrReauthorizationRequired, provider)
	}

	if token.RefreshToken == "" {
		if err := s.tokensRepo.DeleteProviderToken(ctx, userID, provider); err != nil {
			return nil, fmt.Errorf("failed to delete unrefreshable token: %w", err)
		}
		return nil, fmt.Errorf("%w: stored token has no refresh token", core.ErrReauthorizationRequired)
	}

	refreshed, err := client.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		if errors.Is(err, clients.ErrInvalidGrant) {
			if deleteErr := s.tokensRepo.DeleteProviderToken(ctx, userID, provider); deleteErr != nil {
				return nil, fmt.Errorf("failed to delete revoked token: %w", deleteErr)
			}
			log.Printf("🔐 Refresh token revoked for user %s, provider %s - reauthorization required", userID, provider)
			return nil, fmt.Errorf("%w: refresh token no longer valid", core.ErrReauthorizationRequired)
		}
		return nil, fmt.Errorf("%w: token refresh failed: %v", core.ErrProviderUnavailable, err)
	}

	token.AccessToken = refreshed.AccessToken
	token.ExpiresAt = refreshed.ExpiresAt
	// Google omits the refresh token on refresh; keep the original then
	if refreshed.RefreshToken != "" {
		token.RefreshToken = refreshed.RefreshToken
	}

	if err := s.tokensRepo.UpsertProviderToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refreshed token: %w", err)
	}

	log.Printf("🔐 Completed successfully - refreshed token for user %s, provider: %s", userID, provider)
	return token, nil
}

// ValidAccessToken returns a non-expired access token for the provider,
// refreshing the stored one first when it has expired
func (s *OAuthServiceImpl) ValidAccessToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (string, error) {
	maybeToken, err := s.tokensRepo.GetProviderToken(ctx, userID, provider)
	if err != nil {
		return "", fmt.Errorf("failed to get provider token: %w", err)
	}
	token, ok := maybeToken.Get()
	if !ok {
		return "", fmt.Errorf("%w: provider %s is not connected", core.ErrReauthorizationRequired, provider)
	}

	if !token.IsExpired() {
		return token.AccessToken, nil
	}

	refreshed, err := s.RefreshToken(ctx, userID, provider)
	if err != nil {
		return "", err
	}

	return refreshed.AccessToken, nil
}

// ConnectedProviders lists providers currently holding a non-expired access
// token for the user
func (s *OAuthServiceImpl) ConnectedProviders(ctx context.Context, userID string) ([]models.CalendarProvider, error) {
	tokens, err := s.tokensRepo.ListProviderTokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider tokens: %w", err)
	}

	connected := []models.CalendarProvider{}
	for _, token := range tokens {
		if !token.IsExpired() {
			connected = append(connected, token.Provider)
		}
	}

	return connected, nil
}
