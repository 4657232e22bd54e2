// internal/adapter/feed/wheretheiss.go

package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"isstrack/internal/domain/tracking"
)

// DefaultWhereTheISSURL is the wheretheiss.at endpoint for NORAD id 25544
const DefaultWhereTheISSURL = "https://api.wheretheiss.at/v1/satellites/25544"

// WhereTheISSClient reads positions from the wheretheiss.at API
type WhereTheISSClient struct {
	HTTPClient *http.Client
	URL        string
}

// whereTheISSResponse is the subset of the satellite payload the tracker uses
type whereTheISSResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	Timestamp int64    `json:"timestamp"`
}

// NewWhereTheISSClient creates a new wheretheiss.at client
func NewWhereTheISSClient(httpClient *http.Client, url string) *WhereTheISSClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if url == "" {
		url = DefaultWhereTheISSURL
	}
	return &WhereTheISSClient{
		HTTPClient: httpClient,
		URL:        url,
	}
}

// Name implements tracking.Feed
func (c *WhereTheISSClient) Name() string {
	return SourceWhereTheISS
}

// Current implements tracking.Feed
func (c *WhereTheISSClient) Current(ctx context.Context) (tracking.Coordinate, error) {
	var data whereTheISSResponse
	if err := getJSON(ctx, c.HTTPClient, c.URL, &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return tracking.Coordinate{}, fmt.Errorf("field %s: %w", typeErr.Field, tracking.ErrMalformedPayload)
		}
		return tracking.Coordinate{}, err
	}

	if data.Latitude == nil || data.Longitude == nil || data.Altitude == nil {
		return tracking.Coordinate{}, fmt.Errorf("missing latitude, longitude or altitude: %w", tracking.ErrMalformedPayload)
	}

	coord := tracking.Coordinate{
		Latitude:  *data.Latitude,
		Longitude: *data.Longitude,
		Altitude:  data.Altitude,
		Timestamp: time.Now().UTC(),
	}
	if data.Timestamp > 0 {
		coord.Timestamp = time.Unix(data.Timestamp, 0).UTC()
	}

	return coord, nil
}
