// internal/domain/fact/model.go

package fact

import (
	"context"
	"errors"
)

// Range is an inclusive [min, max] interval in degrees
type Range [2]float64

// Contains reports whether v lies inside the range, bounds included
func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

// RegionFact is a static educational snippet tied to a bounding box.
// Longitude bounds are expressed in normalized [-180, 180] form.
type RegionFact struct {
	ID        string `json:"id"`
	Region    string `json:"region"`
	Latitude  Range  `json:"latitude"`
	Longitude Range  `json:"longitude"`
	Fact      string `json:"fact"`
	Source    string `json:"source,omitempty"`
}

// DisplayedFact is the fact currently shown to viewers. It is always replaced
// as a whole, never field by field.
type DisplayedFact struct {
	Fact   string `json:"fact"`
	Region string `json:"region"`
	Source string `json:"source"`
}

// Generated is the raw result of a fact generation call before validation
type Generated struct {
	Fact   string
	Region string
	Source string
}

// Generator produces a fact for a coordinate pair
type Generator interface {
	// Generate returns a fact about the area below (latitude, longitude)
	Generate(ctx context.Context, latitude, longitude float64) (Generated, error)
}

// Provider is the read side of fact state exposed to the presentation layer
type Provider interface {
	// Current returns the displayed fact, nil before the first refresh
	Current() *DisplayedFact

	// IsGenerating reports whether a generation attempt is in flight
	IsGenerating() bool

	// MarkRevealed records that the presentation layer finished typing the current fact
	MarkRevealed()
}

var (
	// ErrNotConfigured is returned by generators that lack credentials. It is an
	// expected condition that routes to the local fallback chain.
	ErrNotConfigured = errors.New("fact generator not configured")

	// ErrMalformedPayload is returned when an upstream payload is missing
	// required fields or carries them with the wrong type
	ErrMalformedPayload = errors.New("malformed payload")
)
