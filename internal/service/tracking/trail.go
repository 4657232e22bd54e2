// internal/service/tracking/trail.go

package tracking

import (
	"sync"

	"isstrack/internal/domain/tracking"
)

// DefaultTrailSize is the number of positions kept for path rendering
const DefaultTrailSize = 100

// Trail is a bounded FIFO history of recent positions
type Trail struct {
	mu       sync.RWMutex
	samples  []tracking.Coordinate
	capacity int
}

// NewTrail creates a trail holding at most capacity positions
func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = DefaultTrailSize
	}
	return &Trail{
		samples:  make([]tracking.Coordinate, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a position, evicting the oldest when full. It returns the new length.
func (t *Trail) Push(c tracking.Coordinate) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.samples) == t.capacity {
		copy(t.samples, t.samples[1:])
		t.samples = t.samples[:len(t.samples)-1]
	}
	t.samples = append(t.samples, c)
	return len(t.samples)
}

// Positions returns a copy of the trail, oldest first
func (t *Trail) Positions() []tracking.Coordinate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]tracking.Coordinate, len(t.samples))
	copy(out, t.samples)
	return out
}

// PathPoints returns the trail as [lon, lat] pairs
func (t *Trail) PathPoints() []tracking.PathPoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]tracking.PathPoint, len(t.samples))
	for i, c := range t.samples {
		out[i] = c.Point()
	}
	return out
}

// Len returns the number of stored positions
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.samples)
}

// Capacity returns the maximum number of stored positions
func (t *Trail) Capacity() int {
	return t.capacity
}
