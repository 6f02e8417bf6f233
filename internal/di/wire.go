//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"feedview/internal/config"
)

// InitializeApp builds the feedviewer object graph.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideImageCache,
		ProvideMediaStorage,
		ProvideFetcher,
		ProvideLoader,
		ProvideEngine,
		ProvideSessions,
		ProvidePostSource,
		ProvideCoordinator,
		ProvideViewer,
		ProvideDebugHandler,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
