// internal/service/tracking/poller.go

package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"isstrack/internal/domain/tracking"
)

// Poll outcomes reported to the recorder
const (
	PollSuccess = "success"
	PollFailure = "failure"
)

// PollRecorder receives poller metrics
type PollRecorder interface {
	ObservePoll(feed, outcome string, duration time.Duration)
	SetTrailLength(n int)
}

// PollerConfig contains configuration for the position poller
type PollerConfig struct {
	Interval       time.Duration
	RequestTimeout time.Duration
	TrailSize      int
}

// Poller fetches the station position on a fixed interval and keeps the trail.
// Polls are serialized: the next tick is not handled until the previous poll returns.
type Poller struct {
	feed     tracking.Feed
	trail    *Trail
	config   PollerConfig
	logger   *zap.Logger
	recorder PollRecorder

	mu       sync.RWMutex
	current  *tracking.Coordinate
	handlers []tracking.PositionHandler

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewPoller creates a new position poller
func NewPoller(
	feed tracking.Feed,
	logger *zap.Logger,
	recorder PollRecorder,
	config PollerConfig,
) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Poller{
		feed:     feed,
		trail:    NewTrail(config.TrailSize),
		config:   config,
		logger:   logger,
		recorder: recorder,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// RegisterPositionHandler registers a callback for every successful poll
func (p *Poller) RegisterPositionHandler(handler tracking.PositionHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handlers = append(p.handlers, handler)
}

// Start polls once immediately and then on every interval until ctx is done or Stop is called
func (p *Poller) Start(ctx context.Context) error {
	if p.config.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.config.Interval)
	}

	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return fmt.Errorf("poller already started")
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	return nil
}

// run is the poll loop
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	p.Poll(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll performs a single fetch. A failed fetch is logged and leaves state unchanged.
func (p *Poller) Poll(ctx context.Context) error {
	if p.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	coord, err := p.feed.Current(ctx)
	if err != nil {
		if p.recorder != nil {
			p.recorder.ObservePoll(p.feed.Name(), PollFailure, time.Since(start))
		}
		if ctx.Err() == nil {
			p.logger.Warn("Error fetching ISS position", zap.String("feed", p.feed.Name()), zap.Error(err))
		}
		return fmt.Errorf("error fetching position from %s: %w", p.feed.Name(), err)
	}

	if coord.Timestamp.IsZero() {
		coord.Timestamp = time.Now().UTC()
	}

	p.mu.Lock()
	previous := p.current
	p.current = &coord
	handlers := make([]tracking.PositionHandler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	n := p.trail.Push(coord)

	if p.recorder != nil {
		p.recorder.ObservePoll(p.feed.Name(), PollSuccess, time.Since(start))
		p.recorder.SetTrailLength(n)
	}

	p.logger.Debug("ISS position updated",
		zap.Float64("latitude", coord.Latitude),
		zap.Float64("longitude", coord.Longitude),
		zap.Int("trail", n))

	for _, handler := range handlers {
		if err := handler(coord, previous); err != nil {
			p.logger.Warn("Position handler failed", zap.Error(err))
		}
	}

	return nil
}

// Current implements tracking.Reader
func (p *Poller) Current() (tracking.Coordinate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return tracking.Coordinate{}, false
	}
	return *p.current, true
}

// Trail implements tracking.Reader
func (p *Poller) Trail() []tracking.Coordinate {
	return p.trail.Positions()
}

// PathPoints implements tracking.Reader
func (p *Poller) PathPoints() []tracking.PathPoint {
	return p.trail.PathPoints()
}

// Stop gracefully stops the poll loop
func (p *Poller) Stop(ctx context.Context) error {
	p.cancel()

	c := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
