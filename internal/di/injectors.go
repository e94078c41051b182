//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"sessionstate/internal"
	"sessionstate/internal/controllers"
	"sessionstate/internal/providers"
	"sessionstate/internal/services"
	"sessionstate/internal/storage"
	"sessionstate/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewStoreFormat,

		services.NewSessionService,
		storage.NewCompressor,
		storage.NewConfiguredFileStore,
		storage.NewConfiguredQuarantine,
		storage.NewFileManager,
		storage.NewScheduler,
		controllers.NewStateController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
