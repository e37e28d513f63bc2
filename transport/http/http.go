package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cnpgdemo/config"
	"cnpgdemo/shared/constant"
	"cnpgdemo/transport/http/response"
	"cnpgdemo/transport/http/router"
)

type ServerState int32

const (
	ServerStateStarting ServerState = iota
	ServerStateReady
	ServerStateInGracePeriod
)

const readHeaderTimeout = 10 * time.Second

type HTTP struct {
	Config *config.Config
	Router router.Router

	state  atomic.Int32
	server *http.Server
}

func New(cfg *config.Config, r router.Router) *HTTP {
	return &HTTP{
		Config: cfg,
		Router: r,
	}
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) setState(state ServerState) {
	h.state.Store(int32(state))
}

// Handler is the full application handler. Requests that arrive on an
// existing connection while the server drains get a 503.
func (h *HTTP) Handler() http.Handler {
	routes := h.Router.Handler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.State() == ServerStateInGracePeriod {
			w.Header().Set("Connection", "close")
			response.WithPreparingShutdown(w)

			return
		}

		routes.ServeHTTP(w, r)
	})
}

// Serve listens until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (h *HTTP) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return h.serve(ctx, listener)
}

func (h *HTTP) serve(ctx context.Context, listener net.Listener) error {
	h.server = &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Str("addr", listener.Addr().String()).Msg("Starting up HTTP server.")

		h.setState(ServerStateReady)

		if err := h.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		return h.shutdown()
	})

	return group.Wait()
}

func (h *HTTP) shutdown() error {
	h.setState(ServerStateInGracePeriod)

	grace := h.Config.ShutdownGracePeriod()
	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Received shutdown signal. Shutting down now.")

		grace = 0
	} else {
		log.Info().Dur("grace_period", grace).Msg("Received shutdown signal. Entering grace period.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Grace period elapsed with requests in flight, closing.")

		return h.server.Close()
	}

	log.Info().Msg("HTTP server stopped.")

	return nil
}
