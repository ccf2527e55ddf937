package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kycportal/internal/platform/config"
	"kycportal/internal/platform/httpserver"
	"kycportal/internal/platform/kafka"
	"kycportal/internal/platform/logger"
	"kycportal/internal/platform/postgres"
	platformredis "kycportal/internal/platform/redis"
	"kycportal/internal/platform/tracing"
)

// main wires configuration and infrastructure, builds the onboarding
// application and runs the HTTP server until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kycportal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error("failed to flush traces", "error", err)
		}
	}()

	infra, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close(log)

	app, err := build(ctx, cfg, infra, log)
	if err != nil {
		return err
	}
	defer app.close(log)

	go func() {
		if err := app.sessions.StartCleanup(ctx, cfg.Onboarding.SessionSweep); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("session cleanup stopped", "error", err)
		}
	}()

	// Writes must outlive a submission that runs to its deadline.
	srv := httpserver.New(cfg.Addr, newRouter(cfg, app, infra, log), cfg.Onboarding.SubmissionTimeout+15*time.Second)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting kycportal", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// infrastructure holds the optional external connections. A nil field means
// the matching component runs in memory.
type infrastructure struct {
	redis    *platformredis.Client
	db       *sql.DB
	producer *kafka.Producer
	checks   map[string]func(context.Context) error
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{checks: map[string]func(context.Context) error{}}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		infra.redis = redisClient
		infra.checks["redis"] = redisClient.Health
		log.Info("redis connected")
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		infra.close(log)
		return nil, err
	}
	if db != nil {
		infra.db = db
		infra.checks["postgres"] = db.PingContext
		log.Info("postgres connected")
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		infra.close(log)
		return nil, err
	}
	if producer != nil {
		infra.producer = producer
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		infra.checks["kafka"] = producer.Health
		log.Info("kafka producer ready", "topic", cfg.Kafka.AuditTopic)
	}
	return infra, nil
}

func (i *infrastructure) close(log *slog.Logger) {
	if i.producer != nil {
		i.producer.Close()
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Error("failed to close postgres", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Error("failed to close redis", "error", err)
		}
	}
}
