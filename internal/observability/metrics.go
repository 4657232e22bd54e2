// internal/observability/metrics.go

package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the tracker's Prometheus metrics. All methods are safe on a nil receiver.
type Collector struct {
	gatherer prometheus.Gatherer

	Polls           *prometheus.CounterVec
	PollDurations   *prometheus.HistogramVec
	TrailLength     prometheus.Gauge
	Generations     *prometheus.CounterVec
	GenerationTime  *prometheus.HistogramVec
	DroppedTriggers prometheus.Counter
	ChatRequests    *prometheus.CounterVec
}

// NewCollector registers the tracker metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	polls, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_position_polls_total",
		Help: "Position polls, labeled by feed and outcome.",
	}, []string{"feed", "outcome"}), "iss_position_polls_total")
	if err != nil {
		return nil, err
	}

	pollDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iss_position_poll_duration_seconds",
		Help:    "Position poll latency in seconds.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"feed"}), "iss_position_poll_duration_seconds")
	if err != nil {
		return nil, err
	}

	trail, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "iss_trail_length",
		Help: "Current number of positions in the trail.",
	}), "iss_trail_length")
	if err != nil {
		return nil, err
	}

	generations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_fact_generations_total",
		Help: "Fact refreshes, labeled by outcome (generated or fallback).",
	}, []string{"outcome"}), "iss_fact_generations_total")
	if err != nil {
		return nil, err
	}

	generationTime, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iss_fact_generation_duration_seconds",
		Help:    "Fact generation latency in seconds.",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"outcome"}), "iss_fact_generation_duration_seconds")
	if err != nil {
		return nil, err
	}

	dropped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iss_fact_triggers_dropped_total",
		Help: "Refresh triggers dropped because a generation was already in flight.",
	}), "iss_fact_triggers_dropped_total")
	if err != nil {
		return nil, err
	}

	chats, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_chat_requests_total",
		Help: "Chat requests, labeled by outcome.",
	}, []string{"outcome"}), "iss_chat_requests_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		Polls:           polls,
		PollDurations:   pollDurations,
		TrailLength:     trail,
		Generations:     generations,
		GenerationTime:  generationTime,
		DroppedTriggers: dropped,
		ChatRequests:    chats,
	}, nil
}

// ObservePoll records a position poll
func (c *Collector) ObservePoll(feed, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.Polls.WithLabelValues(feed, outcome).Inc()
	c.PollDurations.WithLabelValues(feed).Observe(duration.Seconds())
}

// SetTrailLength records the trail size
func (c *Collector) SetTrailLength(n int) {
	if c == nil {
		return
	}
	c.TrailLength.Set(float64(n))
}

// ObserveGeneration records a fact refresh
func (c *Collector) ObserveGeneration(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.Generations.WithLabelValues(outcome).Inc()
	c.GenerationTime.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncDroppedTrigger records a refresh trigger dropped while generating
func (c *Collector) IncDroppedTrigger() {
	if c == nil {
		return
	}
	c.DroppedTriggers.Inc()
}

// ObserveChat records a chat request
func (c *Collector) ObserveChat(outcome string) {
	if c == nil {
		return
	}
	c.ChatRequests.WithLabelValues(outcome).Inc()
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}
