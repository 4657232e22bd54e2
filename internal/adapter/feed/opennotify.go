// internal/adapter/feed/opennotify.go

package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"isstrack/internal/domain/tracking"
)

// DefaultOpenNotifyURL is the open-notify current position endpoint
const DefaultOpenNotifyURL = "http://api.open-notify.org/iss-now.json"

// OpenNotifyClient reads positions from the open-notify API. It reports no altitude.
type OpenNotifyClient struct {
	HTTPClient *http.Client
	URL        string
}

// openNotifyResponse is the iss-now.json payload; coordinates arrive as strings
type openNotifyResponse struct {
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	ISSPosition *struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"iss_position"`
}

// NewOpenNotifyClient creates a new open-notify client
func NewOpenNotifyClient(httpClient *http.Client, url string) *OpenNotifyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if url == "" {
		url = DefaultOpenNotifyURL
	}
	return &OpenNotifyClient{
		HTTPClient: httpClient,
		URL:        url,
	}
}

// Name implements tracking.Feed
func (c *OpenNotifyClient) Name() string {
	return SourceOpenNotify
}

// Current implements tracking.Feed
func (c *OpenNotifyClient) Current(ctx context.Context) (tracking.Coordinate, error) {
	var data openNotifyResponse
	if err := getJSON(ctx, c.HTTPClient, c.URL, &data); err != nil {
		return tracking.Coordinate{}, err
	}

	if data.Message != "" && data.Message != "success" {
		return tracking.Coordinate{}, fmt.Errorf("open-notify returned %q: %w", data.Message, tracking.ErrMalformedPayload)
	}
	if data.ISSPosition == nil {
		return tracking.Coordinate{}, fmt.Errorf("missing iss_position: %w", tracking.ErrMalformedPayload)
	}

	lat, err := strconv.ParseFloat(data.ISSPosition.Latitude, 64)
	if err != nil {
		return tracking.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", data.ISSPosition.Latitude, tracking.ErrMalformedPayload)
	}
	lng, err := strconv.ParseFloat(data.ISSPosition.Longitude, 64)
	if err != nil {
		return tracking.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", data.ISSPosition.Longitude, tracking.ErrMalformedPayload)
	}

	coord := tracking.Coordinate{
		Latitude:  lat,
		Longitude: lng,
		Timestamp: time.Now().UTC(),
	}
	if data.Timestamp > 0 {
		coord.Timestamp = time.Unix(data.Timestamp, 0).UTC()
	}

	return coord, nil
}
