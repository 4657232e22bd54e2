// internal/service/facts/policy.go

package facts

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
)

// State is the refresh policy state
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
)

// Generation outcomes reported to the recorder
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

// GenerationRecorder receives refresh policy metrics
type GenerationRecorder interface {
	ObserveGeneration(outcome string, duration time.Duration)
	IncDroppedTrigger()
}

// PolicyConfig contains configuration for the refresh policy
type PolicyConfig struct {
	MovementThreshold float64       // degrees of latitude or longitude
	RefreshInterval   time.Duration // periodic nudge
	Cooldown          time.Duration // minimum time between generation attempts
	GenerateTimeout   time.Duration
}

// DefaultPolicyConfig returns the default refresh cadence
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MovementThreshold: 5,
		RefreshInterval:   10 * time.Second,
		Cooldown:          5 * time.Minute,
		GenerateTimeout:   30 * time.Second,
	}
}

// RefreshPolicy decides when the displayed fact is regenerated. At most one
// generation is in flight; triggers that arrive meanwhile are dropped.
type RefreshPolicy struct {
	config    PolicyConfig
	generator fact.Generator
	fallback  *FallbackChain
	gate      *RevealGate
	clock     clockwork.Clock
	logger    *zap.Logger
	recorder  GenerationRecorder

	mu          sync.RWMutex
	state       State
	current     *fact.DisplayedFact
	lastAttempt time.Time
	nextNudge   time.Time
	nudgeDue    bool
	handlers    []func(fact.DisplayedFact) error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefreshPolicy creates a new refresh policy in the Idle state
func NewRefreshPolicy(
	generator fact.Generator,
	fallback *FallbackChain,
	gate *RevealGate,
	clock clockwork.Clock,
	logger *zap.Logger,
	recorder GenerationRecorder,
	config PolicyConfig,
) *RefreshPolicy {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RefreshPolicy{
		config:    config,
		generator: generator,
		fallback:  fallback,
		gate:      gate,
		clock:     clock,
		logger:    logger,
		recorder:  recorder,
		state:     StateIdle,
		nextNudge: clock.Now().Add(config.RefreshInterval),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// HasMovedToNewRegion reports whether the position changed by more than
// threshold degrees in latitude or longitude
func HasMovedToNewRegion(current, previous *tracking.Coordinate, threshold float64) bool {
	if current == nil || previous == nil {
		return false
	}
	latDiff := math.Abs(current.Latitude - previous.Latitude)
	lngDiff := math.Abs(current.Longitude - previous.Longitude)
	return latDiff > threshold || lngDiff > threshold
}

// HandlePosition adapts Evaluate to a tracking.PositionHandler
func (p *RefreshPolicy) HandlePosition(current tracking.Coordinate, previous *tracking.Coordinate) error {
	p.Evaluate(current, previous)
	return nil
}

// Evaluate applies the trigger rules for a new position and starts a generation
// when they hold. It reports whether a generation was started.
func (p *RefreshPolicy) Evaluate(current tracking.Coordinate, previous *tracking.Coordinate) bool {
	now := p.clock.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx.Err() != nil {
		return false
	}

	// The refresh timer rearms every time it fires, whatever happens next
	if !now.Before(p.nextNudge) {
		p.nudgeDue = true
		p.nextNudge = now.Add(p.config.RefreshInterval)
	}

	moved := HasMovedToNewRegion(&current, previous, p.config.MovementThreshold)
	if !moved && !p.nudgeDue && p.current != nil {
		return false
	}

	if p.state == StateGenerating {
		if p.recorder != nil {
			p.recorder.IncDroppedTrigger()
		}
		return false
	}

	if !p.lastAttempt.IsZero() && now.Sub(p.lastAttempt) < p.config.Cooldown {
		return false
	}

	if p.current != nil && p.gate != nil && !p.gate.Ready(now) {
		return false
	}

	p.state = StateGenerating
	p.lastAttempt = now
	p.nudgeDue = false

	p.logger.Debug("Fact refresh triggered",
		zap.Bool("moved", moved),
		zap.Float64("latitude", current.Latitude),
		zap.Float64("longitude", current.Longitude))

	p.wg.Add(1)
	go p.generate(current)

	return true
}

// generate runs one generation attempt and installs its result or the fallback
func (p *RefreshPolicy) generate(coord tracking.Coordinate) {
	defer p.wg.Done()

	ctx := p.ctx
	if p.config.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.config.GenerateTimeout)
		defer cancel()
	}

	start := time.Now()
	outcome := OutcomeGenerated

	generated, err := p.generator.Generate(ctx, coord.Latitude, coord.Longitude)
	var displayed fact.DisplayedFact
	if err == nil {
		displayed, err = Validate(generated)
	}

	if err != nil {
		if p.ctx.Err() != nil {
			p.mu.Lock()
			p.state = StateIdle
			p.mu.Unlock()
			return
		}

		if errors.Is(err, fact.ErrNotConfigured) {
			p.logger.Debug("Fact generator not configured, using local facts")
		} else {
			p.logger.Warn("Fact generation failed, using local facts", zap.Error(err))
		}
		displayed = p.fallback.Resolve(coord.Latitude, coord.Longitude)
		outcome = OutcomeFallback
	}

	if p.recorder != nil {
		p.recorder.ObserveGeneration(outcome, time.Since(start))
	}

	p.mu.Lock()
	p.current = &displayed
	if p.gate != nil {
		p.gate.Begin(displayed.Fact, p.clock.Now())
	}
	p.state = StateIdle
	handlers := make([]func(fact.DisplayedFact) error, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	p.logger.Info("Displayed fact updated",
		zap.String("region", displayed.Region),
		zap.String("source", displayed.Source),
		zap.String("outcome", outcome))

	for _, handler := range handlers {
		if err := handler(displayed); err != nil {
			p.logger.Warn("Fact handler failed", zap.Error(err))
		}
	}
}

// RegisterFactHandler registers a callback for every newly displayed fact
func (p *RefreshPolicy) RegisterFactHandler(handler func(fact.DisplayedFact) error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handlers = append(p.handlers, handler)
}

// Current implements fact.Provider
func (p *RefreshPolicy) Current() *fact.DisplayedFact {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return nil
	}
	f := *p.current
	return &f
}

// IsGenerating implements fact.Provider
func (p *RefreshPolicy) IsGenerating() bool {
	return p.State() == StateGenerating
}

// State returns the current policy state
func (p *RefreshPolicy) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// MarkRevealed implements fact.Provider
func (p *RefreshPolicy) MarkRevealed() {
	if p.gate != nil {
		p.gate.MarkRevealed(p.clock.Now())
	}
}

// RevealStatus returns the typing gate progress for the current fact
func (p *RefreshPolicy) RevealStatus() RevealStatus {
	if p.gate == nil {
		return RevealStatus{}
	}
	return p.gate.Status(p.clock.Now())
}

// Stop cancels any in-flight generation and waits for it to return
func (p *RefreshPolicy) Stop(ctx context.Context) error {
	// Evaluate checks ctx and calls wg.Add under mu, so no Add can follow Wait
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()

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
