package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cnpgdemo/config"
	"cnpgdemo/infras/metrics"
	"cnpgdemo/infras/otel"
	"cnpgdemo/shared/cache"
)

const (
	otelHTTPScopeName = "http"
	unmatchedRoute    = "unmatched"
)

type AppMiddleware interface {
	RequestID(next http.Handler) http.Handler
	Tracing(next http.Handler) http.Handler
	Metrics(next http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
}

type appMiddleware struct {
	otel    otel.Otel
	config  *config.Config
	cache   cache.RedisCache
	metrics metrics.Recorder
}

func NewAppMiddleware(otel otel.Otel, config *config.Config, cache cache.RedisCache, recorder metrics.Recorder) AppMiddleware {
	return &appMiddleware{
		otel:    otel,
		config:  config,
		cache:   cache,
		metrics: recorder,
	}
}

// routePattern is only complete once the router has matched the request.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}

	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}

	return unmatchedRoute
}
