package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/evdash/internal/config"
	"github.com/JonMunkholm/evdash/internal/core"
	"github.com/JonMunkholm/evdash/internal/logging"
	"github.com/JonMunkholm/evdash/internal/source"
	"github.com/JonMunkholm/evdash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"sources", len(cfg.Data.Sources),
		"database", cfg.Data.UsesDatabase(),
		"page_size", cfg.View.PageSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := loadRecords(ctx, &cfg.Data)
	if err != nil {
		slog.Error("failed to load records", "error", err, "hint", core.FormatUserError(err))
		os.Exit(1)
	}
	slog.Info("records loaded", "count", len(records), "columns", core.ColumnCount())

	server := web.NewServer(records, web.Options{
		PageSize:       cfg.View.PageSize,
		TopN:           cfg.View.TopN,
		SessionSecret:  []byte(cfg.Session.Secret),
		SessionIdle:    cfg.Session.IdleTimeout,
		CookieName:     cfg.Session.CookieName,
		SecureCookie:   cfg.Session.Secure,
		RequestTimeout: cfg.Server.RequestTimeout,
		TrustedProxies: cfg.Security.TrustedProxies,
		EnableCSP:      cfg.Security.EnableCSP,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	err = server.Run(ctx, cfg.Server.Addr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// loadRecords reads every configured file source, then the PostgreSQL
// table when DATABASE_URL is set. File records come first.
func loadRecords(ctx context.Context, cfg *config.DataConfig) ([]core.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	defer cancel()

	var records []core.Record
	if len(cfg.Sources) > 0 {
		fileRecords, err := source.Load(ctx, cfg.Sources...)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}

	if cfg.UsesDatabase() {
		dbRecords, err := loadDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		records = append(records, dbRecords...)
	}
	return records, nil
}

func loadDatabase(ctx context.Context, cfg *config.DataConfig) ([]core.Record, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"), "table", cfg.Table)
	}

	return source.LoadPostgres(ctx, pool, cfg.Table)
}
