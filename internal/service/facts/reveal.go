// internal/service/facts/reveal.go

package facts

import (
	"sync"
	"time"
	"unicode/utf8"
)

// RevealConfig controls the typing-reveal gate
type RevealConfig struct {
	CharDelay  time.Duration
	MinDisplay time.Duration
}

// RevealStatus describes where the current fact is in its reveal cycle
type RevealStatus struct {
	Active     bool      `json:"active"`
	Revealed   int       `json:"revealed"` // characters shown so far
	Total      int       `json:"total"`
	RevealedAt time.Time `json:"revealedAt"`
	ReadyAt    time.Time `json:"readyAt"`
}

// RevealGate is a two-phase countdown: the fact text is typed out one character
// per CharDelay, then must stay on screen for MinDisplay. The gate is open only
// once both phases are over. The presentation layer may end the first phase early.
type RevealGate struct {
	cfg RevealConfig

	mu        sync.Mutex
	active    bool
	startedAt time.Time
	total     int
	revealEnd time.Time
}

// NewRevealGate creates an open gate
func NewRevealGate(cfg RevealConfig) *RevealGate {
	return &RevealGate{cfg: cfg}
}

// Begin starts the reveal of a new fact text
func (g *RevealGate) Begin(text string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.active = true
	g.startedAt = now
	g.total = utf8.RuneCountInString(text)
	g.revealEnd = now.Add(time.Duration(g.total) * g.cfg.CharDelay)
}

// MarkRevealed ends the typing phase at now if it is still running
func (g *RevealGate) MarkRevealed(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active && now.Before(g.revealEnd) {
		g.revealEnd = now
	}
}

// Ready reports whether a new fact may replace the current one
func (g *RevealGate) Ready(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return true
	}
	return !now.Before(g.revealEnd.Add(g.cfg.MinDisplay))
}

// Status returns the reveal progress at now
func (g *RevealGate) Status(now time.Time) RevealStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return RevealStatus{}
	}

	revealed := g.total
	if now.Before(g.revealEnd) && g.cfg.CharDelay > 0 {
		revealed = int(now.Sub(g.startedAt) / g.cfg.CharDelay)
		if revealed > g.total {
			revealed = g.total
		}
	}

	return RevealStatus{
		Active:     true,
		Revealed:   revealed,
		Total:      g.total,
		RevealedAt: g.revealEnd,
		ReadyAt:    g.revealEnd.Add(g.cfg.MinDisplay),
	}
}
