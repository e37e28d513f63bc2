package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cnpgdemo/config"
	"cnpgdemo/infras/otel"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/internal/domains/health/model/dto"
	"cnpgdemo/shared/constant"
)

type Health interface {
	Check(ctx context.Context) dto.HealthResponse
}

type serviceImpl struct {
	db   postgres.Provider
	cfg  *config.Config
	otel otel.Otel
}

func New(db postgres.Provider, cfg *config.Config, otel otel.Otel) Health {
	return &serviceImpl{
		db:   db,
		cfg:  cfg,
		otel: otel,
	}
}

// Check pings both pools side by side. A failing pool only marks itself down.
func (s *serviceImpl) Check(ctx context.Context) (res dto.HealthResponse) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HealthCheck")
	defer scope.End()

	var primaryUp, replicaUp bool

	var group errgroup.Group

	group.Go(func() error {
		primaryUp = s.ping(ctx, postgres.RolePrimary)

		return nil
	})

	group.Go(func() error {
		replicaUp = s.ping(ctx, postgres.RoleReplica)

		return nil
	})

	_ = group.Wait()

	res.FromChecks(primaryUp, replicaUp)

	scope.SetAttributes(map[string]any{
		"health.status":     res.Status,
		"health.primary_db": res.PrimaryDB,
		"health.replica_db": res.ReplicaDB,
	})

	return res
}

func (s *serviceImpl) ping(ctx context.Context, role postgres.Role) (up bool) {
	if timeout := s.cfg.HealthTimeout(); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("role", string(role)).Msg("database ping panicked")

			up = false
		}
	}()

	if err := s.db.Ping(ctx, role); err != nil {
		log.Warn().Err(err).Str("role", string(role)).Msg("database ping failed")

		return false
	}

	return true
}
