// internal/adapter/llm/genai.go

// Package llm wraps the Google GenAI API for fact generation and chat.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

const factSystemPrompt = `You are an educational guide riding along with the International Space Station.
Given the coordinates directly below the station, answer with a single JSON object:
{"fact": "<one or two sentence fact about the region below>", "region": "<region name>", "source": "<reputable source>"}
If the point is over open ocean, talk about that ocean. Do not add any other text.`

const chatSystemPrompt = `You are a friendly assistant for an International Space Station tracker.
Answer questions about the ISS, orbital mechanics and the places it flies over.
Keep answers short and accurate.`

// contentGenerator is the subset of *genai.Models the client needs
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the GenAI client
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	CacheTTL    time.Duration
	CacheSize   uint64
}

// Client generates facts and chat replies with a Gemini model. A client without
// an API key answers every call with fact.ErrNotConfigured.
type Client struct {
	models contentGenerator
	model  string
	temp   float32
	cache  *factCache
	logger *zap.Logger
}

// NewClient creates a new GenAI client
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		model:  cfg.Model,
		temp:   cfg.Temperature,
		cache:  newFactCache(cfg.CacheTTL, cfg.CacheSize),
		logger: logger,
	}
	if c.model == "" {
		c.model = DefaultModel
	}

	if cfg.APIKey == "" {
		logger.Info("No GenAI API key configured, facts and chat use local fallbacks")
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.models = client.Models

	return c, nil
}

// Configured reports whether the client can reach the model
func (c *Client) Configured() bool {
	return c.models != nil
}

// Generate implements fact.Generator
func (c *Client) Generate(ctx context.Context, latitude, longitude float64) (fact.Generated, error) {
	if !c.Configured() {
		return fact.Generated{}, fact.ErrNotConfigured
	}

	key := cacheKey(latitude, longitude)
	if g, ok := c.cache.get(key); ok {
		c.logger.Debug("Fact cache hit", zap.String("key", key))
		return g, nil
	}

	prompt := fmt.Sprintf("The ISS is currently above latitude %.4f, longitude %.4f.", latitude, longitude)
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(factSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(c.temp),
	})
	if err != nil {
		return fact.Generated{}, fmt.Errorf("GenAI fact generation failed: %w", err)
	}

	g, err := DecodeFact(resp.Text())
	if err != nil {
		return fact.Generated{}, err
	}

	c.cache.put(key, g)
	return g, nil
}

// Chat answers a free-form question. position may be nil when unknown.
func (c *Client) Chat(ctx context.Context, message string, position *tracking.Coordinate) (string, error) {
	if !c.Configured() {
		return "", fact.ErrNotConfigured
	}

	system := chatSystemPrompt
	if position != nil {
		system += fmt.Sprintf("\nThe ISS is currently above latitude %.4f, longitude %.4f.", position.Latitude, position.Longitude)
		if position.Altitude != nil {
			system += fmt.Sprintf(" Its altitude is %.1f km.", *position.Altitude)
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(c.temp),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI chat failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty chat response: %w", fact.ErrMalformedPayload)
	}
	return text, nil
}

// DecodeFact validates a model response field by field. Missing or non-string
// region and source are left empty for the caller to default; a missing or
// non-string fact is a malformed payload.
func DecodeFact(raw string) (fact.Generated, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return fact.Generated{}, fmt.Errorf("error decoding fact response: %v: %w", err, fact.ErrMalformedPayload)
	}

	text, ok := payload["fact"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return fact.Generated{}, fmt.Errorf("fact field missing or not a string: %w", fact.ErrMalformedPayload)
	}

	region, _ := payload["region"].(string)
	source, _ := payload["source"].(string)

	return fact.Generated{
		Fact:   strings.TrimSpace(text),
		Region: strings.TrimSpace(region),
		Source: strings.TrimSpace(source),
	}, nil
}
