package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"cnpgdemo/config"
	_ "cnpgdemo/docs" // registers the swagger document
	"cnpgdemo/internal/handlers/item"
	"cnpgdemo/internal/handlers/system"
	"cnpgdemo/transport/http/middleware"
)

const (
	pathDocs      = "/docs"
	pathDocsFiles = "/docs/*"
	pathDocsIndex = "/docs/index.html"
	pathDocsJSON  = "/docs/doc.json"
)

type DomainHandlers struct {
	Item   item.Handler
	System system.Handler
}

type Router struct {
	Config         *config.Config
	Middleware     middleware.AppMiddleware
	DomainHandlers DomainHandlers
}

func New(cfg *config.Config, appMiddleware middleware.AppMiddleware, domainHandlers DomainHandlers) Router {
	return Router{
		Config:         cfg,
		Middleware:     appMiddleware,
		DomainHandlers: domainHandlers,
	}
}

// SetupRoutes installs the middleware chain and every route. Metrics sit
// inside Recoverer so panicking handlers are still counted as 500s.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(r.Middleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.StripSlashes)
	router.Use(r.Middleware.Metrics)
	router.Use(r.Middleware.Tracing)

	if r.Config.App.CORS.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   r.Config.App.CORS.AllowedOrigins,
			AllowedMethods:   r.Config.App.CORS.AllowedMethods,
			AllowedHeaders:   r.Config.App.CORS.AllowedHeaders,
			AllowCredentials: r.Config.App.CORS.AllowCredentials,
			MaxAge:           r.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	if timeout := r.Config.RequestTimeout(); timeout > 0 {
		router.Use(chiMiddleware.Timeout(timeout))
	}

	r.DomainHandlers.System.Router(router)

	// Only item traffic is throttled; health checks and scrapes never see a 429.
	router.Group(func(limited chi.Router) {
		limited.Use(r.Middleware.RateLimit())
		r.DomainHandlers.Item.Router(limited)
	})

	router.Get(pathDocs, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, pathDocsIndex, http.StatusMovedPermanently)
	})
	router.Get(pathDocsFiles, httpSwagger.Handler(httpSwagger.URL(pathDocsJSON)))
}

// Handler builds a fresh chi mux with all routes mounted.
func (r *Router) Handler() http.Handler {
	mux := chi.NewRouter()
	r.SetupRoutes(mux)

	return mux
}
