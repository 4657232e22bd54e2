// internal/domain/tracking/model.go

package tracking

import (
	"context"
	"errors"
	"math"
	"time"
)

// Coordinate is a single observed position of the station
type Coordinate struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty"` // km, not every feed reports it
	Timestamp time.Time `json:"timestamp"`
}

// PathPoint is a [longitude, latitude] pair as consumed by the globe renderer
type PathPoint [2]float64

// Point returns the path point for the coordinate
func (c Coordinate) Point() PathPoint {
	return PathPoint{c.Longitude, c.Latitude}
}

// NormalizeLongitude maps any longitude into [-180, 180)
func NormalizeLongitude(longitude float64) float64 {
	m := math.Mod(longitude+540, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}

// WholeDegrees rounds to the nearest whole degree. Halves round up, so -0.5 becomes 0.
func WholeDegrees(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Feed is an external source of live station positions
type Feed interface {
	// Name returns the feed name
	Name() string

	// Current fetches the current position
	Current(ctx context.Context) (Coordinate, error)
}

// Reader is the read-only view of tracking state exposed to the presentation layer
type Reader interface {
	// Current returns the latest position, false before the first successful poll
	Current() (Coordinate, bool)

	// Trail returns the bounded history of recent positions, oldest first
	Trail() []Coordinate

	// PathPoints returns the trail as [lon, lat] pairs, oldest first
	PathPoints() []PathPoint
}

// PositionHandler is invoked after every successful poll. previous is nil on the first poll.
type PositionHandler func(current Coordinate, previous *Coordinate) error

// ErrMalformedPayload is returned by feeds whose response is missing a field
// or carries it with the wrong type
var ErrMalformedPayload = errors.New("malformed position payload")
