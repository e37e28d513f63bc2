package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Item=MockItemService

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
	"cnpgdemo/infras/metrics"
	"cnpgdemo/infras/otel"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/internal/domains/item/model"
	"cnpgdemo/internal/domains/item/model/dto"
	"cnpgdemo/internal/domains/item/repository"
	"cnpgdemo/shared/constant"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
	"cnpgdemo/shared/timezone"
)

const (
	operationCreate = "create"
	operationGet    = "get"
	operationList   = "list"
	operationUpdate = "update"
	operationDelete = "delete"
)

// Item routes writes to the primary pool and reads to the replica pool.
// Replica reads may lag behind writes.
type Item interface {
	Create(ctx context.Context, req dto.CreateItemRequest) (dto.ItemResponse, error)
	Get(ctx context.Context, id int64) (dto.ItemResponse, error)
	List(ctx context.Context, page gDto.Pagination) (dto.ItemsResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateItemRequest) (dto.ItemResponse, error)
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	db      postgres.Provider
	repo    repository.Item
	metrics metrics.Recorder
	cfg     *config.Config
	otel    otel.Otel
}

func New(db postgres.Provider, repo repository.Item, recorder metrics.Recorder, cfg *config.Config, otel otel.Otel) Item {
	return &serviceImpl{
		db:      db,
		repo:    repo,
		metrics: recorder,
		cfg:     cfg,
		otel:    otel,
	}
}

// run borrows one connection for role and times the whole operation.
func (s *serviceImpl) run(ctx context.Context, operation string, role postgres.Role, fn func(session postgres.Session) error) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelDatabaseScopeName, constant.OtelDatabaseScopeName+"."+operation)
	defer scope.End()

	scope.SetAttribute(constant.OtelRoleAttributeKey, string(role))

	start := time.Now()
	defer func() {
		s.metrics.ObserveDBOperation(operation, string(role), time.Since(start))
		scope.TraceIfError(err)
	}()

	return postgres.WithSession(ctx, s.db, role, fn)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var item model.Item

	err = s.run(ctx, operationCreate, postgres.RolePrimary, func(session postgres.Session) error {
		return session.Transact(ctx, func(exec postgres.Executor) (txErr error) {
			item, txErr = s.repo.Insert(ctx, exec, req.ToModel(timezone.Now()))

			return txErr
		})
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create item")

		return res, fmt.Errorf("failed to create item: %w", err)
	}

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var item model.Item

	err = s.run(ctx, operationGet, postgres.RoleReplica, func(session postgres.Session) (getErr error) {
		item, getErr = s.repo.Get(ctx, session.Executor(), id)

		return getErr
	})
	if err != nil {
		if !failure.IsNotFound(err) {
			log.Error().Err(err).Int64("id", id).Msg("failed to get item")
		}

		return res, fmt.Errorf("failed to get item: %w", err)
	}

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, page gDto.Pagination) (res dto.ItemsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	page.Clamp(s.cfg.App.MaxListLimit)

	var items []model.Item

	err = s.run(ctx, operationList, postgres.RoleReplica, func(session postgres.Session) (listErr error) {
		items, listErr = s.repo.List(ctx, session.Executor(), page)

		return listErr
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list items")

		return res, fmt.Errorf("failed to list items: %w", err)
	}

	res.FromModels(items)

	return res, nil
}

// Update locks the row, merges only the supplied fields and commits once.
// A missing row aborts the transaction before anything is written.
func (s *serviceImpl) Update(ctx context.Context, id int64, req dto.UpdateItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, err
	}

	var item model.Item

	err = s.run(ctx, operationUpdate, postgres.RolePrimary, func(session postgres.Session) error {
		return session.Transact(ctx, func(exec postgres.Executor) error {
			current, txErr := s.repo.GetForUpdate(ctx, exec, id)
			if txErr != nil {
				return txErr
			}

			patched := req.Apply(current)
			patched.UpdatedAt = timezone.Now()

			item, txErr = s.repo.Update(ctx, exec, patched)

			return txErr
		})
	})
	if err != nil {
		if !failure.IsNotFound(err) {
			log.Error().Err(err).Int64("id", id).Msg("failed to update item")
		}

		return res, fmt.Errorf("failed to update item: %w", err)
	}

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = s.run(ctx, operationDelete, postgres.RolePrimary, func(session postgres.Session) error {
		return session.Transact(ctx, func(exec postgres.Executor) error {
			return s.repo.Delete(ctx, exec, id)
		})
	})
	if err != nil {
		if !failure.IsNotFound(err) {
			log.Error().Err(err).Int64("id", id).Msg("failed to delete item")
		}

		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}
