package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pepperbackend/clients"
	"pepperbackend/core"
	"pepperbackend/models"
	"pepperbackend/services"
)

// MockCalendarClient is a mock implementation of clients.CalendarClient
type MockCalendarClient struct {
	mock.Mock
}

func (m *MockCalendarClient) ListUpcomingEvents(
	ctx context.Context,
	accessToken string,
	days int,
) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, accessToken, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarEvent), args.Error(1)
}

func (m *MockCalendarClient) CreateEvent(
	ctx context.Context,
	accessToken string,
	event *models.CalendarEvent,
) (*models.CalendarEvent, error) {
	args := m.Called(ctx, accessToken, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarEvent), args.Error(1)
}

type testFixture struct {
	service      *CalendarServiceImpl
	oauthService *services.MockOAuthService
	googleClient *MockCalendarClient
}

func newTestFixture() *testFixture {
	oauthService := new(services.MockOAuthService)
	googleClient := new(MockCalendarClient)

	service := NewCalendarService(oauthService, map[models.CalendarProvider]clients.CalendarClient{
		models.CalendarProviderGoogle: googleClient,
	})

	return &testFixture{
		service:      service,
		oauthService: oauthService,
		googleClient: googleClient,
	}
}

func TestListUpcomingEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider", func(t *testing.T) {
		f := newTestFixture()

		_, err := f.service.ListUpcomingEvents(ctx, "u_1", models.CalendarProvider("caldav"), 7)
		assert.ErrorIs(t, err, core.ErrInvalidProvider)
	})

	t.Run("empty provider uses the first connected one", func(t *testing.T) {
		f := newTestFixture()
		f.oauthService.On("ConnectedProviders", ctx, "u_1").
			Return([]models.CalendarProvider{models.CalendarProviderGoogle}, nil)
		f.oauthService.On("ValidAccessToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return("access-token-1", nil)
		f.googleClient.On("ListUpcomingEvents", ctx, "access-token-1", 7).
			Return([]models.CalendarEvent{{ID: "event-1", Title: "Standup"}}, nil)

		events, err := f.service.ListUpcomingEvents(ctx, "u_1", "", 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "event-1", events[0].ID)
	})

	t.Run("no connected providers", func(t *testing.T) {
		f := newTestFixture()
		f.oauthService.On("ConnectedProviders", ctx, "u_1").
			Return([]models.CalendarProvider{}, nil)

		_, err := f.service.ListUpcomingEvents(ctx, "u_1", "", 7)
		assert.ErrorIs(t, err, core.ErrReauthorizationRequired)
	})

	t.Run("provider failure is wrapped", func(t *testing.T) {
		f := newTestFixture()
		f.oauthService.On("ValidAccessToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return("access-token-1", nil)
		f.googleClient.On("ListUpcomingEvents", ctx, "access-token-1", 7).
			Return(nil, errors.New("status 503"))

		_, err := f.service.ListUpcomingEvents(ctx, "u_1", models.CalendarProviderGoogle, 7)
		assert.ErrorIs(t, err, core.ErrProviderUnavailable)
	})
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC)

	t.Run("validates the event", func(t *testing.T) {
		f := newTestFixture()

		_, err := f.service.CreateEvent(ctx, "u_1", models.CalendarProviderGoogle, &models.CalendarEvent{
			StartTime: start,
			EndTime:   start.Add(time.Hour),
		})
		assert.Error(t, err)

		_, err = f.service.CreateEvent(ctx, "u_1", models.CalendarProviderGoogle, &models.CalendarEvent{
			Title:     "Dentist",
			StartTime: start,
			EndTime:   start.Add(-time.Hour),
		})
		assert.Error(t, err)
	})

	t.Run("success", func(t *testing.T) {
		f := newTestFixture()
		event := &models.CalendarEvent{Title: "Dentist", StartTime: start, EndTime: start.Add(time.Hour)}
		f.oauthService.On("ValidAccessToken", ctx, "u_1", models.CalendarProviderGoogle).
			Return("access-token-1", nil)
		f.googleClient.On("CreateEvent", ctx, "access-token-1", event).
			Return(&models.CalendarEvent{ID: "event-99", Title: "Dentist"}, nil)

		created, err := f.service.CreateEvent(ctx, "u_1", models.CalendarProviderGoogle, event)
		require.NoError(t, err)
		assert.Equal(t, "event-99", created.ID)
	})
}
