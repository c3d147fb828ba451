package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPGateway talks to the Google Calendar REST API with bearer auth.
type HTTPGateway struct {
	HTTPClient *http.Client
	BaseURL    string
	CalendarID string
	Token      string
}

func NewHTTPGateway(baseURL, calendarID, token string) *HTTPGateway {
	return &HTTPGateway{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		CalendarID: calendarID,
		Token:      token,
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventCreated struct {
	ID string `json:"id"`
}

func (g *HTTPGateway) CreateEvent(event Event) (string, error) {
	body := eventBody{
		Summary:     event.Title,
		Location:    event.Location,
		Description: event.Description,
		Start:       eventTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: event.Timezone},
		End:         eventTime{DateTime: event.End.Format(time.RFC3339), TimeZone: event.Timezone},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal event error: %v", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", g.BaseURL, url.PathEscape(g.CalendarID))
	req, err := http.NewRequest("POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.Token)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body error: %v", err)
	}
	var created eventCreated
	if err := json.Unmarshal(bodyBytes, &created); err != nil {
		return "", fmt.Errorf("unmarshal response error: %v", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("api returned no event id")
	}
	return created.ID, nil
}

func (g *HTTPGateway) DeleteEvent(eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		g.BaseURL, url.PathEscape(g.CalendarID), url.PathEscape(eventID))
	req, err := http.NewRequest("DELETE", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.Token)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}
	return nil
}
