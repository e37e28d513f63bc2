//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"cnpgdemo/config"
	"cnpgdemo/infras/metrics"
	"cnpgdemo/infras/otel"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/infras/redis"
	"cnpgdemo/shared/cache"
	"cnpgdemo/transport/http"
	"cnpgdemo/transport/http/middleware"
	"cnpgdemo/transport/http/router"

	healthService "cnpgdemo/internal/domains/health/service"
	itemRepository "cnpgdemo/internal/domains/item/repository"
	itemService "cnpgdemo/internal/domains/item/service"
	itemHandler "cnpgdemo/internal/handlers/item"
	systemHandler "cnpgdemo/internal/handlers/system"
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Provider), new(*postgres.Connection)),
	otel.New,
	redis.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var itemDomain = wire.NewSet(
	itemRepository.New,
	itemService.New,
)

var healthDomain = wire.NewSet(
	healthService.New,
)

var domains = wire.NewSet(
	itemDomain,
	healthDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	itemHandler.New,
	systemHandler.New,
	router.New,
)

func InitializeService(cfg *config.Config) (*http.HTTP, func(), error) {
	wire.Build(
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}, nil, nil
}
