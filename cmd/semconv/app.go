package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semconv/catalog"
	"github.com/c360studio/semconv/config"
	"github.com/c360studio/semconv/convert"
	"github.com/c360studio/semconv/graph"
	"github.com/c360studio/semconv/repository"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	natsClient *natsclient.Client

	memory  *repository.Memory // set for the memory backend
	repo    repository.Repository
	writer  repository.Writer
	service *catalog.Service
}

// deps are the external connections an app is assembled from.
type deps struct {
	publisher graph.StreamPublisher
	js        jetstream.JetStream
}

func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader(logger)
	if path != "" {
		return loader.LoadFile(path)
	}
	return loader.Load()
}

// newApp connects to NATS when the configuration needs it and assembles
// the app.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	var (
		client *natsclient.Client
		d      deps
	)
	if cfg.NeedsNATS() {
		var err error
		client, err = connectToNATS(ctx, cfg.NATS.URL, logger)
		if err != nil {
			return nil, err
		}
		d.publisher = client
		if cfg.Repository.Backend == config.BackendNATS {
			js, err := client.JetStream()
			if err != nil {
				client.Close(ctx)
				return nil, fmt.Errorf("get jetstream: %w", err)
			}
			d.js = js
		}
	}

	a, err := assemble(ctx, cfg, logger, d)
	if err != nil {
		if client != nil {
			client.Close(ctx)
		}
		return nil, err
	}
	a.natsClient = client
	return a, nil
}

// assemble wires repository, reporters, metrics and the catalog service.
func assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, d deps) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	switch cfg.Repository.Backend {
	case config.BackendMemory:
		records, err := repository.LoadFixtures(cfg.FixturePatterns())
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
		mem, err := repository.NewMemory(records...)
		if err != nil {
			return nil, fmt.Errorf("build memory repository: %w", err)
		}
		entities, relationships := mem.Len()
		logger.Info("Loaded fixtures",
			slog.Int("entities", entities),
			slog.Int("relationships", relationships))
		a.memory, a.repo, a.writer = mem, mem, mem
	case config.BackendNATS:
		if d.js == nil {
			return nil, errors.New("nats backend requires a JetStream connection")
		}
		kv, err := repository.NewKVStore(ctx, d.js, cfg.Repository.EntityBucket, cfg.Repository.RelationshipBucket,
			repository.WithKVLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open KV repository: %w", err)
		}
		a.repo, a.writer = kv, kv
	default:
		return nil, fmt.Errorf("unknown repository backend: %s", cfg.Repository.Backend)
	}

	converter := convert.NewConverter(
		convert.WithReporter(newReporter(cfg.Reporting, logger, d.publisher)),
		convert.WithMetrics(convert.NewMetrics(a.registry, cfg.Metrics.Namespace)),
		convert.WithLogger(logger),
	)
	a.service = catalog.NewService(a.repo, converter, catalog.WithLogger(logger))
	return a, nil
}

// newReporter combines the configured failure reporters.
func newReporter(cfg config.ReportingConfig, logger *slog.Logger, pub graph.StreamPublisher) convert.Reporter {
	var reporters convert.MultiReporter
	if !cfg.Quiet {
		reporters = append(reporters, convert.NewLogReporter(logger))
	}
	if cfg.Publish && pub != nil {
		reporters = append(reporters, graph.NewFailurePublisher(pub,
			graph.WithSubject(cfg.Subject),
			graph.WithLogger(logger)))
	}
	if len(reporters) == 0 {
		return convert.Discard
	}
	return reporters
}

func (a *app) close(ctx context.Context) {
	if a.natsClient != nil {
		a.natsClient.Close(ctx)
	}
}

func connectToNATS(ctx context.Context, natsURLs string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", natsURLs)

	client, err := natsclient.NewClient(natsURLs,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURLs)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURLs)
	}

	logger.Info("Connected to NATS", "url", natsURLs)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker run -p 4222:4222 nats -js

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
