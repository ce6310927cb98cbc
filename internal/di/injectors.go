//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"rucd/internal"
	"rucd/internal/controllers"
	"rucd/internal/fleet"
	"rucd/internal/providers"
	"rucd/internal/reminders"
	"rucd/internal/services"
	"rucd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMetricsProvider,

		fleet.NewZstdCompressor,
		services.NewFleetService,
		fleet.NewFileManager,
		reminders.NewDedupStore,
		reminders.NewLocalNotifier,
		reminders.NewLogBadgeSink,
		reminders.NewConfigAuthorizer,
		reminders.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
