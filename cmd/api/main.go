// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"isstrack/internal/adapter/events"
	"isstrack/internal/adapter/feed"
	"isstrack/internal/adapter/llm"
	"isstrack/internal/config"
	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
	"isstrack/internal/logging"
	"isstrack/internal/observability"
	"isstrack/internal/server"
	"isstrack/internal/service/facts"
	trackingService "isstrack/internal/service/tracking"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Environment == "development",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Tracker exited with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Setup context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := observability.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	natsConn, publisher := initEvents(cfg.NATS, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	catalog, err := loadCatalog(cfg.Facts.CatalogPath)
	if err != nil {
		return err
	}
	logger.Info("Region fact catalog loaded", zap.Int("entries", catalog.Len()))

	positionFeed, err := feed.New(feed.Options{
		Source:         cfg.Tracker.Source,
		WhereTheISSURL: cfg.Tracker.WhereTheISSURL,
		OpenNotifyURL:  cfg.Tracker.OpenNotifyURL,
		TLELine1:       cfg.Tracker.TLELine1,
		TLELine2:       cfg.Tracker.TLELine2,
		Timeout:        cfg.Tracker.RequestTimeout,
		Logger:         logger.Named("feed"),
	})
	if err != nil {
		return fmt.Errorf("failed to create position feed: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: float32(cfg.LLM.Temperature),
		CacheTTL:    cfg.LLM.CacheTTL,
		CacheSize:   uint64(cfg.LLM.CacheSize),
	}, logger.Named("llm"))
	if err != nil {
		return err
	}

	synth := facts.NewSynthesizer()
	var generator fact.Generator = facts.NewLocalGenerator(catalog, synth)
	if llmClient.Configured() {
		generator = llmClient
	}

	policy := facts.NewRefreshPolicy(
		generator,
		facts.NewFallbackChain(catalog, synth),
		facts.NewRevealGate(facts.RevealConfig{
			CharDelay:  cfg.Facts.RevealCharDelay,
			MinDisplay: cfg.Facts.MinDisplay,
		}),
		clockwork.NewRealClock(),
		logger.Named("facts"),
		metrics,
		facts.PolicyConfig{
			MovementThreshold: cfg.Facts.MovementThreshold,
			RefreshInterval:   cfg.Facts.RefreshInterval,
			Cooldown:          cfg.Facts.Cooldown,
			GenerateTimeout:   cfg.Facts.GenerateTimeout,
		},
	)

	poller := trackingService.NewPoller(positionFeed, logger.Named("tracker"), metrics, trackingService.PollerConfig{
		Interval:       cfg.Tracker.PollInterval,
		RequestTimeout: cfg.Tracker.RequestTimeout,
		TrailSize:      cfg.Tracker.TrailSize,
	})

	// Publish every position, then let the policy decide on a refresh
	poller.RegisterPositionHandler(func(current tracking.Coordinate, previous *tracking.Coordinate) error {
		return publisher.Publish(events.TypePosition, current)
	})
	poller.RegisterPositionHandler(policy.HandlePosition)

	policy.RegisterFactHandler(func(f fact.DisplayedFact) error {
		return publisher.Publish(events.TypeFact, f)
	})

	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		Tracker:     poller,
		Facts:       policy,
		Chatter:     llmClient,
		Metrics:     metrics,
		NATS:        natsConn,
		EventsTopic: cfg.NATS.EventsTopic,
		Logger:      logger.Named("http"),
	})

	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start position poller: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("source", positionFeed.Name()),
			zap.Bool("llm", llmClient.Configured()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		if err := poller.Stop(shutdownCtx); err != nil {
			logger.Warn("Position poller shutdown error", zap.Error(err))
		}
		if err := policy.Stop(shutdownCtx); err != nil {
			logger.Warn("Refresh policy shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}

func loadCatalog(path string) (*facts.Catalog, error) {
	if path == "" {
		return facts.DefaultCatalog(), nil
	}

	catalog, err := facts.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load fact catalog: %w", err)
	}
	return catalog, nil
}

// initEvents connects to NATS. When NATS is disabled or unreachable the
// tracker keeps running without live events.
func initEvents(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, events.Publisher) {
	if !cfg.Enabled {
		logger.Info("NATS disabled, live events are off")
		return nil, events.NopPublisher{}
	}

	nc, err := initNATS(cfg, logger)
	if err != nil {
		logger.Warn("NATS unavailable, live events are off", zap.Error(err))
		return nil, events.NopPublisher{}
	}

	return nc, events.NewNATSPublisher(nc, cfg.EventsTopic)
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("isstrack"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
