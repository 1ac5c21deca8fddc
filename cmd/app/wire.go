//go:build wireinject
// +build wireinject

package main

import (
	"imagegate/config"
	"imagegate/internal/command"
	"imagegate/internal/cron"
	"imagegate/internal/database"
	"imagegate/internal/handler"
	"imagegate/internal/middleware"
	"imagegate/internal/router"
	"imagegate/internal/service"
	"imagegate/internal/service/provider"
	"imagegate/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			provider.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			newHttpClient,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init application.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			telemetry.ProviderSet,
			command.ProviderSet,
		),
	)
}
