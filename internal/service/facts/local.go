// internal/service/facts/local.go

package facts

import (
	"context"
	"fmt"
	"strings"

	"isstrack/internal/domain/fact"
)

// Defaults substituted into a validated fact
const (
	DefaultRegion         = "Unknown Region"
	DefaultSource         = "Unknown Source"
	DefaultFallbackSource = "World Ocean Review"
)

// LocalGenerator answers from the catalog and falls back to synthesized facts.
// It never fails and is used when no language model is configured.
type LocalGenerator struct {
	catalog *Catalog
	synth   *Synthesizer
}

// NewLocalGenerator creates a generator backed by local data only
func NewLocalGenerator(catalog *Catalog, synth *Synthesizer) *LocalGenerator {
	return &LocalGenerator{
		catalog: catalog,
		synth:   synth,
	}
}

// Generate implements fact.Generator
func (g *LocalGenerator) Generate(ctx context.Context, latitude, longitude float64) (fact.Generated, error) {
	if err := ctx.Err(); err != nil {
		return fact.Generated{}, err
	}

	if m, ok := g.catalog.Match(latitude, longitude); ok {
		return fact.Generated{Fact: m.Fact, Region: m.Region, Source: m.Source}, nil
	}

	s := g.synth.Synthesize(latitude, longitude)
	return fact.Generated{Fact: s.Fact, Region: s.Region, Source: s.Source}, nil
}

// FallbackChain resolves a fact without any outbound call: catalog match,
// then synthesized fact, then a random catalog entry
type FallbackChain struct {
	catalog *Catalog
	synth   *Synthesizer
}

// NewFallbackChain creates the local fallback chain
func NewFallbackChain(catalog *Catalog, synth *Synthesizer) *FallbackChain {
	return &FallbackChain{
		catalog: catalog,
		synth:   synth,
	}
}

// Resolve always returns a displayable fact
func (c *FallbackChain) Resolve(latitude, longitude float64) fact.DisplayedFact {
	if m, ok := c.catalog.Match(latitude, longitude); ok {
		return fallbackFact(m.Fact, m.Region, m.Source)
	}

	if s := c.synth.Synthesize(latitude, longitude); strings.TrimSpace(s.Fact) != "" {
		return fallbackFact(s.Fact, s.Region, s.Source)
	}

	r := c.catalog.Random()
	return fallbackFact(r.Fact, r.Region, r.Source)
}

func fallbackFact(text, region, source string) fact.DisplayedFact {
	return fact.DisplayedFact{
		Fact:   strings.TrimSpace(text),
		Region: strings.TrimSpace(region),
		Source: orDefault(source, DefaultFallbackSource),
	}
}

// Validate trims a generated fact and substitutes defaults for empty fields.
// A fact without text is rejected.
func Validate(g fact.Generated) (fact.DisplayedFact, error) {
	text := strings.TrimSpace(g.Fact)
	if text == "" {
		return fact.DisplayedFact{}, fmt.Errorf("generated fact has no text: %w", fact.ErrMalformedPayload)
	}

	return fact.DisplayedFact{
		Fact:   text,
		Region: orDefault(g.Region, DefaultRegion),
		Source: orDefault(g.Source, DefaultSource),
	}, nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
