//go:build wireinject
// +build wireinject

package di

import (
	"DerivPulse/pkg/config"
	"DerivPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideRedis,
		ProvideSnapshotPublisher,

		// Aggregation pipeline
		ProvideRegistry,
		ProvideOrchestrator,
		ProvideResponseCache,
		ProvideAllowlist,

		// Use cases and HTTP surface
		ProvideMarketService,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
