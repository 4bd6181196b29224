//go:build wireinject
// +build wireinject

package di

import (
	"ETFSheet/pkg/config"
	"ETFSheet/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Data sources
		ProvideUniverse,
		ProvidePriceSource,

		// Core computation
		ProvideProcessor,
		ProvideSheetBuilder,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSnapshotStore,
		ProvideSheetPublisher,
		ProvideSheetCache,
		ProvideCSVExporter,

		// Use cases
		ProvideSheetRefresher,

		// HTTP
		ProvideSheetHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
