package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"pepperbackend/clients"
	"pepperbackend/models"
)

const (
	defaultDeviceAuthURL = "https://oauth2.googleapis.com/device/code"
	defaultTokenURL      = "https://oauth2.googleapis.com/token"

	deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// Scope covering event read/write on the user's calendars
var calendarScopes = []string{calendar.CalendarEventsScope}

// Client implements clients.CalendarProviderClient for Google.
// Device authorization uses Google's limited-input device endpoints;
// calendar operations go through the Calendar API.
type Client struct {
	httpClient    *http.Client
	clientID      string
	clientSecret  string
	deviceAuthURL string
	tokenURL      string
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type deviceTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
}

// NewClient creates a new Google provider client
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		clientID:      clientID,
		clientSecret:  clientSecret,
		deviceAuthURL: defaultDeviceAuthURL,
		tokenURL:      defaultTokenURL,
	}
}

// BeginDeviceAuth requests a device and user code from Google
func (c *Client) BeginDeviceAuth(ctx context.Context) (*clients.DeviceAuthorization, error) {
	v := url.Values{}
	v.Set("client_id", c.clientID)
	v.Set("scope", strings.Join(calendarScopes, " "))

	resp, err := c.postForm(ctx, c.deviceAuthURL, v)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("device code request failed: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var dc deviceCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&dc); err != nil {
		return nil, fmt.Errorf("failed to decode device code response: %w", err)
	}

	if dc.Interval <= 0 {
		dc.Interval = 5
	}

	return &clients.DeviceAuthorization{
		DeviceCode:      dc.DeviceCode,
		UserCode:        dc.UserCode,
		VerificationURI: dc.VerificationURL,
		IntervalSeconds: dc.Interval,
		ExpiresIn:       dc.ExpiresIn,
	}, nil
}

// ExchangeDeviceCode polls Google's token endpoint once for the device code
func (c *Client) ExchangeDeviceCode(ctx context.Context, deviceCode string) (*clients.ProviderTokens, error) {
	v := url.Values{}
	v.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		v.Set("client_secret", c.clientSecret)
	}
	v.Set("device_code", deviceCode)
	v.Set("grant_type", deviceCodeGrantType)

	resp, err := c.postForm(ctx, c.tokenURL, v)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr deviceTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if tr.Error != "" {
		switch tr.Error {
		case "authorization_pending":
			return nil, clients.ErrAuthorizationPending
		case "slow_down":
			return nil, clients.ErrSlowDown
		case "access_denied":
			return nil, clients.ErrAccessDenied
		case "expired_token":
			return nil, clients.ErrDeviceCodeExpired
		default:
			return nil, fmt.Errorf("device token error: %s", tr.Error)
		}
	}

	if tr.AccessToken == "" {
		return nil, clients.ErrAuthorizationPending
	}

	return &clients.ProviderTokens{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// RefreshToken exchanges a refresh token for a fresh access token. Google
// does not reissue the refresh token here - callers keep the stored one.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*clients.ProviderTokens, error) {
	v := url.Values{}
	v.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		v.Set("client_secret", c.clientSecret)
	}
	v.Set("refresh_token", refreshToken)
	v.Set("grant_type", "refresh_token")

	resp, err := c.postForm(ctx, c.tokenURL, v)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr deviceTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}

	if tr.Error != "" {
		if tr.Error == "invalid_grant" {
			return nil, clients.ErrInvalidGrant
		}
		return nil, fmt.Errorf("token refresh error: %s", tr.Error)
	}

	if tr.AccessToken == "" {
		return nil, fmt.Errorf("missing access token in refresh response")
	}

	return &clients.ProviderTokens{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// ListUpcomingEvents fetches events from the user's primary calendar for
// the next `days` days
func (c *Client) ListUpcomingEvents(ctx context.Context, accessToken string, days int) ([]models.CalendarEvent, error) {
	service, err := c.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timeMin := now.Format(time.RFC3339)
	timeMax := now.Add(time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)

	events, err := service.Events.List("primary").
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(timeMin).
		TimeMax(timeMax).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	result := make([]models.CalendarEvent, 0, len(events.Items))
	for _, item := range events.Items {
		// All-day events carry a date instead of a datetime; skip them
		if item.Start == nil || item.Start.DateTime == "" {
			continue
		}

		startTime, _ := time.Parse(time.RFC3339, item.Start.DateTime)
		endTime, _ := time.Parse(time.RFC3339, item.End.DateTime)

		result = append(result, models.CalendarEvent{
			ID:          item.Id,
			Title:       item.Summary,
			Description: item.Description,
			Location:    item.Location,
			StartTime:   startTime,
			EndTime:     endTime,
			Provider:    models.CalendarProviderGoogle,
		})
	}

	return result, nil
}

// CreateEvent inserts an event into the user's primary calendar
func (c *Client) CreateEvent(ctx context.Context, accessToken string, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	service, err := c.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	created, err := service.Events.Insert("primary", &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       &calendar.EventDateTime{DateTime: event.StartTime.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: event.EndTime.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return &models.CalendarEvent{
		ID:          created.Id,
		Title:       created.Summary,
		Description: created.Description,
		Location:    created.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Provider:    models.CalendarProviderGoogle,
	}, nil
}

func (c *Client) calendarService(ctx context.Context, accessToken string) (*calendar.Service, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	service, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, values url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	return resp, nil
}
