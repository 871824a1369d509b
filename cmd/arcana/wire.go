//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"arcana/internal/source"
	"arcana/internal/store"
)

// InitializeApp builds an App via Wire: Config -> pgxpool.Pool ->
// PostgresStore -> CoinbaseSource -> App, mirroring the teacher's
// cmd/us-data/wire.go InitializeApp shape.
func InitializeApp() (*App, error) {
	wire.Build(
		provideConfig,
		provideLogger,
		providePool,
		providePostgresStore,
		provideCoinbaseSource,
		wire.Bind(new(store.Store), new(*store.PostgresStore)),
		wire.Bind(new(source.TradeSource), new(*source.CoinbaseSource)),
		wire.Struct(new(App), "Config", "Pool", "Store", "Source", "Logger"),
	)
	return nil, nil
}
