package oauth

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"pepperbackend/clients"
	"pepperbackend/models"
)

// MockOAuthSessionsRepository is a mock implementation of OAuthSessionsRepository
type MockOAuthSessionsRepository struct {
	mock.Mock
}

func (m *MockOAuthSessionsRepository) CreateOAuthSession(ctx context.Context, session *models.OAuthSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockOAuthSessionsRepository) GetPendingSession(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (mo.Option[*models.OAuthSession], error) {
	args := m.Called(ctx, userID, provider)
	return args.Get(0).(mo.Option[*models.OAuthSession]), args.Error(1)
}

func (m *MockOAuthSessionsRepository) UpdateSessionStatus(
	ctx context.Context,
	sessionID string,
	status models.OAuthSessionStatus,
) (bool, error) {
	args := m.Called(ctx, sessionID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockOAuthSessionsRepository) UpdateSessionInterval(
	ctx context.Context,
	sessionID string,
	intervalSeconds int,
) error {
	args := m.Called(ctx, sessionID, intervalSeconds)
	return args.Error(0)
}

func (m *MockOAuthSessionsRepository) ExpirePendingSessions(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) error {
	args := m.Called(ctx, userID, provider)
	return args.Error(0)
}

// MockProviderTokensRepository is a mock implementation of ProviderTokensRepository
type MockProviderTokensRepository struct {
	mock.Mock
}

func (m *MockProviderTokensRepository) UpsertProviderToken(ctx context.Context, token *models.ProviderToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockProviderTokensRepository) GetProviderToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (mo.Option[*models.ProviderToken], error) {
	args := m.Called(ctx, userID, provider)
	return args.Get(0).(mo.Option[*models.ProviderToken]), args.Error(1)
}

func (m *MockProviderTokensRepository) ListProviderTokens(
	ctx context.Context,
	userID string,
) ([]*models.ProviderToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProviderToken), args.Error(1)
}

func (m *MockProviderTokensRepository) DeleteProviderToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) error {
	args := m.Called(ctx, userID, provider)
	return args.Error(0)
}

// MockProviderClient is a mock implementation of clients.OAuthProviderClient
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) BeginDeviceAuth(ctx context.Context) (*clients.DeviceAuthorization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DeviceAuthorization), args.Error(1)
}

func (m *MockProviderClient) ExchangeDeviceCode(
	ctx context.Context,
	deviceCode string,
) (*clients.ProviderTokens, error) {
	args := m.Called(ctx, deviceCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.ProviderTokens), args.Error(1)
}

func (m *MockProviderClient) RefreshToken(ctx context.Context, refreshToken string) (*clients.ProviderTokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.ProviderTokens), args.Error(1)
}
