package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/database"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/router"
	"github.com/iliyamo/community-hub/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// a missing APP_PORT, DATABASE_URL or JWT_SECRET stops us here, before
	// anything is bound
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()
	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	if cfg.SeedRoles {
		n, err := database.SeedRoles(ctx, db, cfg.DBDriver, model.DefaultRoles)
		if err != nil {
			return err
		}
		logger.Info("default roles seeded", "inserted", n)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		logger.Info("response cache enabled", "addr", cfg.Redis.Addr)
	} else if cfg.Redis.Addr != "" {
		logger.Warn("redis unreachable, response cache disabled", "addr", cfg.Redis.Addr)
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled() {
		pub := service.NewAMQPPublisher(cfg.RabbitMQURL, logger)
		defer func() { _ = pub.Close() }()
		events = pub

		if cfg.AuditConsumer {
			go func() {
				if err := queue.StartAuditConsumer(ctx, cfg.RabbitMQURL, cfg.AuditLogPath, logger); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("audit consumer stopped", "error", err)
				}
			}()
		}
	}

	e, err := router.New(cfg, router.Deps{DB: db, Redis: rdb, Events: events, Logger: logger})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr(), "env", cfg.Env)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
