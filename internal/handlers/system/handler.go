package system

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cnpgdemo/config"
	"cnpgdemo/infras/metrics"
	"cnpgdemo/internal/domains/health/service"
	"cnpgdemo/transport/http/response"
)

const (
	pathRoot    = "/"
	pathHealth  = "/health"
	pathMetrics = "/metrics"
	pathDocs    = "/docs"
)

type Handler struct {
	health  service.Health
	metrics metrics.Recorder
	cfg     *config.Config
}

func New(health service.Health, recorder metrics.Recorder, cfg *config.Config) Handler {
	return Handler{
		health:  health,
		metrics: recorder,
		cfg:     cfg,
	}
}

type WelcomeResponse struct {
	Message string `json:"message" example:"Welcome to cloudnativepg-demo API"`
	Docs    string `json:"docs"    example:"/docs"`
	Health  string `json:"health"  example:"/health"`
	Metrics string `json:"metrics" example:"/metrics"`
}

// Router mounts /metrics only when metrics are enabled.
func (handler *Handler) Router(router chi.Router) {
	router.Get(pathRoot, handler.Root)
	router.Get(pathHealth, handler.Health)

	if handler.metrics.Enabled() {
		router.Method(http.MethodGet, pathMetrics, handler.metrics.Handler())
	}
}

// Root godoc
// @Summary Service entry point
// @Tags System
// @Produce json
// @Success 200 {object} WelcomeResponse
// @Router / [get]
func (handler *Handler) Root(writer http.ResponseWriter, _ *http.Request) {
	response.WithJSON(writer, http.StatusOK, WelcomeResponse{
		Message: "Welcome to " + handler.cfg.App.Name + " API",
		Docs:    pathDocs,
		Health:  pathHealth,
		Metrics: pathMetrics,
	})
}

// Health godoc
// @Summary Database health
// @Description Pings the primary and the replica independently. Always 200; failures are reported in the body.
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (handler *Handler) Health(writer http.ResponseWriter, request *http.Request) {
	res := handler.health.Check(request.Context())

	response.WithJSON(writer, http.StatusOK, res)
}
