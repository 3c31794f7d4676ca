//go:build wireinject
// +build wireinject

package di

import (
	"FilingLens/pkg/config"
	"FilingLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires the dashboard service from cfg.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideRegistry,
		ProvideMetrics,
		ProvideKafkaProducer,
		ProvideLogger,

		// Event delivery
		ProvideEventPublisher,
		ProvideEventPipeline,

		// Analytics engine
		ProvideCache,
		ProvideEngine,

		// Session and transport
		ProvideDashboard,
		ProvideDashboardHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
