// internal/adapter/feed/tle.go

package feed

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	satellite "github.com/joshuaferrara/go-satellite"

	"isstrack/internal/domain/tracking"
)

// Default ISS two-line element set. Accuracy degrades with distance from the
// epoch, so deployments should supply a current set through configuration.
const (
	DefaultISSTLELine1 = "1 25544U 98067A   20045.18587073  .00000950  00000-0  25302-4 0  9990"
	DefaultISSTLELine2 = "2 25544  51.6443 242.0161 0004885 264.6060 207.3845 15.49165514212791"
)

// MaxTLEAge is how old an element set may get before positions are reported as drifting
const MaxTLEAge = 3 * 24 * time.Hour

const radToDeg = 180 / math.Pi

// TLEPropagator computes positions offline with SGP4 from a two-line element set
type TLEPropagator struct {
	sat   satellite.Satellite
	epoch time.Time
	clock clockwork.Clock
}

// NewTLEPropagator parses the element set. clock defaults to the wall clock.
func NewTLEPropagator(line1, line2 string, clock clockwork.Clock) (*TLEPropagator, error) {
	if line1 == "" && line2 == "" {
		line1, line2 = DefaultISSTLELine1, DefaultISSTLELine2
	}
	if len(line1) < 69 || len(line2) < 69 || !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
		return nil, fmt.Errorf("invalid two-line element set")
	}
	epoch, err := parseTLEEpoch(line1)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &TLEPropagator{
		sat:   satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
		epoch: epoch,
		clock: clock,
	}, nil
}

// parseTLEEpoch reads the YYDDD.DDDDDDDD epoch field of line 1
func parseTLEEpoch(line1 string) (time.Time, error) {
	yy, err := strconv.Atoi(strings.TrimSpace(line1[18:20]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid element set epoch year: %w", err)
	}
	day, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil || day < 1 || day >= 367 {
		return time.Time{}, fmt.Errorf("invalid element set epoch day %q", line1[20:32])
	}

	year := 2000 + yy
	if yy >= 57 {
		year = 1900 + yy
	}
	offset := time.Duration((day - 1) * float64(24*time.Hour))
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Add(offset), nil
}

// Name implements tracking.Feed
func (p *TLEPropagator) Name() string {
	return SourceTLE
}

// Epoch returns the reference time of the element set
func (p *TLEPropagator) Epoch() time.Time {
	return p.epoch
}

// Age returns how far the clock is from the element set epoch
func (p *TLEPropagator) Age() time.Duration {
	age := p.clock.Since(p.epoch)
	if age < 0 {
		return -age
	}
	return age
}

// Current implements tracking.Feed
func (p *TLEPropagator) Current(ctx context.Context) (tracking.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return tracking.Coordinate{}, err
	}
	return p.PositionAt(p.clock.Now().UTC())
}

// PositionAt propagates the orbit to t. go-satellite works in kilometres and radians.
func (p *TLEPropagator) PositionAt(t time.Time) (tracking.Coordinate, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	if math.IsNaN(posECI.X) || math.IsNaN(posECI.Y) || math.IsNaN(posECI.Z) {
		return tracking.Coordinate{}, fmt.Errorf("propagation failed for %s", t.Format(time.RFC3339))
	}

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	altitude, _, latLong := satellite.ECIToLLA(posECI, gmst)

	alt := altitude
	return tracking.Coordinate{
		Latitude:  latLong.Latitude * radToDeg,
		Longitude: tracking.NormalizeLongitude(latLong.Longitude * radToDeg),
		Altitude:  &alt,
		Timestamp: t,
	}, nil
}
