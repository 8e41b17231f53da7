package calendar

import (
	"context"
	"fmt"
	"log"

	"pepperbackend/clients"
	"pepperbackend/core"
	"pepperbackend/models"
	"pepperbackend/services"
)

// defaultUpcomingDays bounds the calendar view when the caller does not say
const defaultUpcomingDays = 7

// CalendarServiceImpl fronts the per-provider calendar clients with token
// handling. It never talks to a provider without a valid access token from
// the oauth service.
type CalendarServiceImpl struct {
	oauthService services.OAuthService
	providers    map[models.CalendarProvider]clients.CalendarClient
}

func NewCalendarService(
	oauthService services.OAuthService,
	providers map[models.CalendarProvider]clients.CalendarClient,
) *CalendarServiceImpl {
	return &CalendarServiceImpl{
		oauthService: oauthService,
		providers:    providers,
	}
}

// resolveProvider picks the provider to use. An empty provider means "any
// connected one", which keeps single-provider users from having to name it.
func (s *CalendarServiceImpl) resolveProvider(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (models.CalendarProvider, clients.CalendarClient, error) {
	if provider == "" {
		connected, err := s.oauthService.ConnectedProviders(ctx, userID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve connected providers: %w", err)
		}
		if len(connected) == 0 {
			return "", nil, fmt.Errorf("%w: no calendar provider connected", core.ErrReauthorizationRequired)
		}
		provider = connected[0]
	}

	client, ok := s.providers[provider]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", core.ErrInvalidProvider, provider)
	}

	return provider, client, nil
}

func (s *CalendarServiceImpl) ListUpcomingEvents(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
	days int,
) ([]models.CalendarEvent, error) {
	log.Printf("📋 Starting to list upcoming events for user %s, provider: %s", userID, provider)

	if days <= 0 {
		days = defaultUpcomingDays
	}

	provider, client, err := s.resolveProvider(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.oauthService.ValidAccessToken(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	events, err := client.ListUpcomingEvents(ctx, accessToken, days)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list events: %v", core.ErrProviderUnavailable, err)
	}

	log.Printf("📋 Completed successfully - listed %d events for user %s from %s", len(events), userID, provider)
	return events, nil
}

func (s *CalendarServiceImpl) CreateEvent(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
	event *models.CalendarEvent,
) (*models.CalendarEvent, error) {
	log.Printf("📋 Starting to create event for user %s, provider: %s", userID, provider)

	if event == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}
	if event.Title == "" {
		return nil, fmt.Errorf("event title cannot be empty")
	}
	if event.EndTime.Before(event.StartTime) {
		return nil, fmt.Errorf("event cannot end before it starts")
	}

	provider, client, err := s.resolveProvider(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.oauthService.ValidAccessToken(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	created, err := client.CreateEvent(ctx, accessToken, event)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create event: %v", core.ErrProviderUnavailable, err)
	}

	log.Printf("📋 Completed successfully - created event %s for user %s on %s", created.ID, userID, provider)
	return created, nil
}
