package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"pepperbackend/clients"
	"pepperbackend/models"
)

const (
	deviceAuthURLTemplate = "https://login.microsoftonline.com/%s/oauth2/v2.0/devicecode"
	tokenURLTemplate      = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	defaultGraphBaseURL   = "https://graph.microsoft.com/v1.0"

	deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

	// offline_access is what makes Microsoft issue a refresh token
	calendarScopes = "offline_access https://graph.microsoft.com/Calendars.ReadWrite"

	graphTimeLayout = "2006-01-02T15:04:05.9999999"
)

// Client implements clients.CalendarProviderClient for Microsoft. Device
// authorization goes through the Microsoft identity platform; calendar
// operations through the Graph API.
type Client struct {
	httpClient    *http.Client
	clientID      string
	deviceAuthURL string
	tokenURL      string
	graphBaseURL  string
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphEventBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphEvent struct {
	ID          string         `json:"id,omitempty"`
	Subject     string         `json:"subject"`
	BodyPreview string         `json:"bodyPreview,omitempty"`
	Body        *graphEventBody `json:"body,omitempty"`
	Location    *graphLocation `json:"location,omitempty"`
	Start       graphDateTime  `json:"start"`
	End         graphDateTime  `json:"end"`
}

type graphEventList struct {
	Value []graphEvent `json:"value"`
}

// NewClient creates a new Microsoft provider client. An empty tenant falls
// back to "common" for multi-tenant sign-in.
func NewClient(clientID, tenant string) *Client {
	if tenant == "" {
		tenant = "common"
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		clientID:      clientID,
		deviceAuthURL: fmt.Sprintf(deviceAuthURLTemplate, tenant),
		tokenURL:      fmt.Sprintf(tokenURLTemplate, tenant),
		graphBaseURL:  defaultGraphBaseURL,
	}
}

// BeginDeviceAuth requests a device and user code from the Microsoft
// identity platform
func (c *Client) BeginDeviceAuth(ctx context.Context) (*clients.DeviceAuthorization, error) {
	v := url.Values{}
	v.Set("client_id", c.clientID)
	v.Set("scope", calendarScopes)

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
		VerificationURI: dc.VerificationURI,
		IntervalSeconds: dc.Interval,
		ExpiresIn:       dc.ExpiresIn,
	}, nil
}

// ExchangeDeviceCode polls the token endpoint once for the device code
func (c *Client) ExchangeDeviceCode(ctx context.Context, deviceCode string) (*clients.ProviderTokens, error) {
	v := url.Values{}
	v.Set("client_id", c.clientID)
	v.Set("device_code", deviceCode)
	v.Set("grant_type", deviceCodeGrantType)

	resp, err := c.postForm(ctx, c.tokenURL, v)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if tr.Error != "" {
		switch tr.Error {
		case "authorization_pending":
			return nil, clients.ErrAuthorizationPending
		case "slow_down":
			return nil, clients.ErrSlowDown
		case "authorization_declined":
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

// RefreshToken exchanges a refresh token for fresh credentials. Microsoft
// rotates the refresh token, so the response carries a new one.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*clients.ProviderTokens, error) {
	v := url.Values{}
	v.Set("client_id", c.clientID)
	v.Set("scope", calendarScopes)
	v.Set("refresh_token", refreshToken)
	v.Set("grant_type", "refresh_token")

	resp, err := c.postForm(ctx, c.tokenURL, v)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
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

// ListUpcomingEvents fetches the user's calendar view for the next `days`
// days from the Graph API
func (c *Client) ListUpcomingEvents(ctx context.Context, accessToken string, days int) ([]models.CalendarEvent, error) {
	now := time.Now().UTC()
	endpoint := fmt.Sprintf(
		"%s/me/calendarview?startDateTime=%s&endDateTime=%s&$orderby=start/dateTime&$top=50",
		c.graphBaseURL,
		url.QueryEscape(now.Format(time.RFC3339)),
		url.QueryEscape(now.Add(time.Duration(days)*24*time.Hour).Format(time.RFC3339)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	// Lets Microsoft support correlate failed calls server-side
	req.Header.Set("client-request-id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar view request failed: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list graphEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode calendar view response: %w", err)
	}

	result := make([]models.CalendarEvent, 0, len(list.Value))
	for _, item := range list.Value {
		startTime, err := parseGraphTime(item.Start.DateTime)
		if err != nil {
			continue
		}
		endTime, _ := parseGraphTime(item.End.DateTime)

		event := models.CalendarEvent{
			ID:          item.ID,
			Title:       item.Subject,
			Description: item.BodyPreview,
			StartTime:   startTime,
			EndTime:     endTime,
			Provider:    models.CalendarProviderMicrosoft,
		}
		if item.Location != nil {
			event.Location = item.Location.DisplayName
		}
		result = append(result, event)
	}

	return result, nil
}

// CreateEvent inserts an event into the user's default calendar via Graph
func (c *Client) CreateEvent(ctx context.Context, accessToken string, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	payload := graphEvent{
		Subject: event.Title,
		Start: graphDateTime{
			DateTime: event.StartTime.UTC().Format(graphTimeLayout),
			TimeZone: "UTC",
		},
		End: graphDateTime{
			DateTime: event.EndTime.UTC().Format(graphTimeLayout),
			TimeZone: "UTC",
		},
	}
	if event.Description != "" {
		payload.Body = &graphEventBody{ContentType: "text", Content: event.Description}
	}
	if event.Location != "" {
		payload.Location = &graphLocation{DisplayName: event.Location}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphBaseURL+"/me/events", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-request-id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("event create request failed: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var created graphEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created event: %w", err)
	}

	return &models.CalendarEvent{
		ID:          created.ID,
		Title:       created.Subject,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Provider:    models.CalendarProviderMicrosoft,
	}, nil
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

// Graph returns wall-clock datetimes without a zone designator; the Prefer
// header pins them to UTC
func parseGraphTime(value string) (time.Time, error) {
	return time.ParseInLocation(graphTimeLayout, value, time.UTC)
}
