package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"isstrack/internal/domain/tracking"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedFeed returns queued results in order, then repeats the last one
type scriptedFeed struct {
	mu      sync.Mutex
	results []feedResult
	calls   int
}

type feedResult struct {
	coord tracking.Coordinate
	err   error
}

func (f *scriptedFeed) Name() string { return "scripted" }

func (f *scriptedFeed) Current(ctx context.Context) (tracking.Coordinate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	r := f.results[i]
	return r.coord, r.err
}

func (f *scriptedFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePollRecorder struct {
	mu       sync.Mutex
	outcomes []string
	trail    int
}

func (r *fakePollRecorder) ObservePoll(feed, outcome string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakePollRecorder) SetTrailLength(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trail = n
}

func ok(lat, lon float64) feedResult {
	return feedResult{coord: tracking.Coordinate{Latitude: lat, Longitude: lon, Timestamp: time.Unix(1700000000, 0).UTC()}}
}

func TestPollerPoll(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{
		ok(10, 20),
		{err: errors.New("connection refused")},
		ok(11, 21),
	}}
	rec := &fakePollRecorder{}
	p := NewPoller(feed, nil, rec, PollerConfig{Interval: time.Second, TrailSize: 100})

	var calls []*tracking.Coordinate
	p.RegisterPositionHandler(func(current tracking.Coordinate, previous *tracking.Coordinate) error {
		calls = append(calls, previous)
		return nil
	})

	_, has := p.Current()
	assert.False(t, has, "no position before the first poll")

	require.NoError(t, p.Poll(context.Background()))
	current, has := p.Current()
	require.True(t, has)
	assert.Equal(t, 10.0, current.Latitude)

	err := p.Poll(context.Background())
	require.Error(t, err)
	current, _ = p.Current()
	assert.Equal(t, 10.0, current.Latitude, "failed poll must not change state")
	assert.Len(t, p.Trail(), 1)

	require.NoError(t, p.Poll(context.Background()))
	assert.Len(t, p.Trail(), 2)
	assert.Equal(t, []tracking.PathPoint{{20, 10}, {21, 11}}, p.PathPoints())

	require.Len(t, calls, 2)
	assert.Nil(t, calls[0], "first handler call has no previous position")
	require.NotNil(t, calls[1])
	assert.Equal(t, 10.0, calls[1].Latitude)

	assert.Equal(t, []string{PollSuccess, PollFailure, PollSuccess}, rec.outcomes)
	assert.Equal(t, 2, rec.trail)
}

func TestPollerFillsMissingTimestamp(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{{coord: tracking.Coordinate{Latitude: 1, Longitude: 2}}}}
	p := NewPoller(feed, nil, nil, PollerConfig{Interval: time.Second})

	require.NoError(t, p.Poll(context.Background()))
	current, _ := p.Current()
	assert.False(t, current.Timestamp.IsZero())
}

func TestPollerHandlerErrorDoesNotStopOthers(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{ok(0, 0)}}
	p := NewPoller(feed, nil, nil, PollerConfig{Interval: time.Second})

	var second bool
	p.RegisterPositionHandler(func(tracking.Coordinate, *tracking.Coordinate) error {
		return errors.New("boom")
	})
	p.RegisterPositionHandler(func(tracking.Coordinate, *tracking.Coordinate) error {
		second = true
		return nil
	})

	require.NoError(t, p.Poll(context.Background()))
	assert.True(t, second)
}

func TestPollerStartPollsImmediatelyAndOnInterval(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{ok(1, 1), ok(2, 2), ok(3, 3)}}
	p := NewPoller(feed, nil, nil, PollerConfig{Interval: 10 * time.Millisecond, TrailSize: 100})

	require.NoError(t, p.Start(context.Background()))
	assert.Error(t, p.Start(context.Background()), "second start must fail")

	require.Eventually(t, func() bool { return feed.Calls() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))

	calls := feed.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, feed.Calls(), "no polls after stop")
}

func TestPollerStopsWithContext(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{ok(1, 1)}}
	p := NewPoller(feed, nil, nil, PollerConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	require.Eventually(t, func() bool { return feed.Calls() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, p.Stop(stopCtx))
}

func TestPollerRejectsInvalidInterval(t *testing.T) {
	p := NewPoller(&scriptedFeed{results: []feedResult{ok(0, 0)}}, nil, nil, PollerConfig{})
	assert.Error(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
}
