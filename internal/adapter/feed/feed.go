// internal/adapter/feed/feed.go

// Package feed implements the external position sources for the tracker.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"isstrack/internal/domain/tracking"
)

// Source names accepted by New
const (
	SourceWhereTheISS = "wheretheiss"
	SourceOpenNotify  = "opennotify"
	SourceTLE         = "tle"
)

// ErrUnexpectedStatus is returned when a feed answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Options configures the feed built by New
type Options struct {
	Source         string
	WhereTheISSURL string
	OpenNotifyURL  string
	TLELine1       string
	TLELine2       string
	Timeout        time.Duration
	Clock          clockwork.Clock
	Logger         *zap.Logger
}

// New builds the feed selected by opts.Source
func New(opts Options) (tracking.Feed, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	switch opts.Source {
	case SourceWhereTheISS, "":
		return NewWhereTheISSClient(httpClient, opts.WhereTheISSURL), nil
	case SourceOpenNotify:
		return NewOpenNotifyClient(httpClient, opts.OpenNotifyURL), nil
	case SourceTLE:
		p, err := NewTLEPropagator(opts.TLELine1, opts.TLELine2, opts.Clock)
		if err != nil {
			return nil, err
		}
		if age := p.Age(); age > MaxTLEAge && opts.Logger != nil {
			opts.Logger.Warn("Two-line element set is stale, computed positions will drift",
				zap.Time("epoch", p.Epoch()),
				zap.Duration("age", age))
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported position source: %s", opts.Source)
	}
}

// getJSON issues a GET request and decodes the body into v
func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}
