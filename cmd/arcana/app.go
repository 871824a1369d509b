package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"arcana/internal/config"
	"arcana/internal/logx"
	"arcana/internal/source"
	"arcana/internal/store"
)

// App holds the process-wide dependencies assembled by wire: config, the
// database pool, the Store and TradeSource bindings, and the logger.
// Subcommands receive it fully constructed and never build their own
// dependencies.
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Store  store.Store
	Source source.TradeSource
	Logger *slog.Logger
}

// Close releases the database pool. Subcommands must defer this after a
// successful InitializeApp.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return logx.NewDefault(cfg.LogLevel)
}

func providePool(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := store.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, "")
	pool, err := store.Connect(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("app: connect store: %w", err)
	}
	return pool, nil
}

func providePostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *store.PostgresStore {
	return store.NewPostgresStore(pool, logger)
}

func provideCoinbaseSource(cfg *config.Config) *source.CoinbaseSource {
	sourceCfg := source.DefaultCoinbaseConfig()
	sourceCfg.MinDelay = cfg.RateMinDelay
	return source.NewCoinbaseSource(sourceCfg)
}
