package feed

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTLEPropagatorPositionAt(t *testing.T) {
	p, err := NewTLEPropagator("", "", nil)
	require.NoError(t, err)

	epoch := time.Date(2020, 2, 14, 5, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		at := epoch.Add(time.Duration(i) * 10 * time.Minute)
		got, err := p.PositionAt(at)
		require.NoError(t, err)

		// orbit inclination bounds the latitude
		assert.LessOrEqual(t, math.Abs(got.Latitude), 52.0, "latitude at %s", at)
		assert.GreaterOrEqual(t, got.Longitude, -180.0)
		assert.LessOrEqual(t, got.Longitude, 180.0)
		require.NotNil(t, got.Altitude)
		assert.InDelta(t, 410, *got.Altitude, 90, "altitude at %s", at)
		assert.Equal(t, at, got.Timestamp)
	}
}

func TestTLEPropagatorMoves(t *testing.T) {
	p, err := NewTLEPropagator("", "", nil)
	require.NoError(t, err)

	epoch := time.Date(2020, 2, 14, 5, 0, 0, 0, time.UTC)
	a, err := p.PositionAt(epoch)
	require.NoError(t, err)
	b, err := p.PositionAt(epoch.Add(5 * time.Minute))
	require.NoError(t, err)

	moved := math.Abs(a.Latitude-b.Latitude) + math.Abs(a.Longitude-b.Longitude)
	assert.Greater(t, moved, 5.0, "station covers roughly 20 degrees of arc in five minutes")
}

func TestTLEPropagatorCurrentUsesClock(t *testing.T) {
	at := time.Date(2020, 2, 14, 6, 0, 0, 0, time.UTC)
	p, err := NewTLEPropagator("", "", clockwork.NewFakeClockAt(at))
	require.NoError(t, err)

	got, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, got.Timestamp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Current(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewTLEPropagatorRejectsBadInput(t *testing.T) {
	_, err := NewTLEPropagator(DefaultISSTLELine1, "", nil)
	assert.Error(t, err)

	_, err = NewTLEPropagator("garbage", "more garbage", nil)
	assert.Error(t, err)

	_, err = NewTLEPropagator(DefaultISSTLELine2, DefaultISSTLELine1, nil)
	assert.Error(t, err)
}

func TestTLEEpoch(t *testing.T) {
	p, err := NewTLEPropagator("", "", nil)
	require.NoError(t, err)

	// day 45.18587073 of 2020
	want := time.Date(2020, 2, 14, 4, 27, 39, 231_000_000, time.UTC)
	assert.WithinDuration(t, want, p.Epoch(), time.Second)

	_, err = NewTLEPropagator(
		"1 25544U 98067A   20xyz.18587073  .00000950  00000-0  25302-4 0  9990",
		DefaultISSTLELine2, nil)
	assert.Error(t, err)
}

func TestTLEAge(t *testing.T) {
	epoch := time.Date(2020, 2, 14, 4, 27, 39, 0, time.UTC)

	p, err := NewTLEPropagator("", "", clockwork.NewFakeClockAt(epoch.Add(36*time.Hour)))
	require.NoError(t, err)
	assert.InDelta(t, (36 * time.Hour).Seconds(), p.Age().Seconds(), 1)

	p, err = NewTLEPropagator("", "", clockwork.NewFakeClockAt(epoch.Add(-time.Hour)))
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), p.Age().Seconds(), 1)
}

func TestNewWarnsOnStaleTLE(t *testing.T) {
	epoch := time.Date(2020, 2, 14, 4, 27, 39, 0, time.UTC)

	tests := []struct {
		name  string
		now   time.Time
		warns bool
	}{
		{name: "fresh element set", now: epoch.Add(24 * time.Hour), warns: false},
		{name: "stale element set", now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), warns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)

			f, err := New(Options{
				Source: SourceTLE,
				Clock:  clockwork.NewFakeClockAt(tt.now),
				Logger: zap.New(core),
			})
			require.NoError(t, err)

			got, err := f.Current(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.now, got.Timestamp)

			stale := logs.FilterMessageSnippet("stale").Len()
			if tt.warns {
				assert.Equal(t, 1, stale)
			} else {
				assert.Zero(t, stale)
			}
		})
	}
}
