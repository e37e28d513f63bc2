package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cnpgdemo/infras/otel"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/internal/domains/item/model"
	"cnpgdemo/shared/constant"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
	"cnpgdemo/shared/logger"
)

const (
	itemColumns = "id, title, description, created_at, updated_at"

	queryInsert = "INSERT INTO " + model.TableName + " (title, description, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4) RETURNING " + itemColumns
	queryGet          = "SELECT " + itemColumns + " FROM " + model.TableName + " WHERE id = $1"
	queryGetForUpdate = queryGet + " FOR UPDATE"
	queryList         = "SELECT " + itemColumns + " FROM " + model.TableName + " ORDER BY id ASC OFFSET $1 LIMIT $2"
	// updated_at must move forward even when the clock has not.
	queryUpdate = "UPDATE " + model.TableName + " SET title = $2, description = $3, " +
		"updated_at = GREATEST($4::timestamptz, updated_at + interval '1 microsecond') " +
		"WHERE id = $1 RETURNING " + itemColumns
	queryDelete = "DELETE FROM " + model.TableName + " WHERE id = $1 RETURNING id"
)

var ErrItemNotFound = failure.NotFound("Item not found")

type Item interface {
	Insert(ctx context.Context, exec postgres.Executor, item model.Item) (model.Item, error)
	Get(ctx context.Context, exec postgres.Executor, id int64) (model.Item, error)
	GetForUpdate(ctx context.Context, exec postgres.Executor, id int64) (model.Item, error)
	List(ctx context.Context, exec postgres.Executor, page gDto.Pagination) ([]model.Item, error)
	Update(ctx context.Context, exec postgres.Executor, item model.Item) (model.Item, error)
	Delete(ctx context.Context, exec postgres.Executor, id int64) error
}

type repositoryImpl struct {
	otel otel.Otel
}

func New(otel otel.Otel) Item {
	return &repositoryImpl{
		otel: otel,
	}
}

func (repo *repositoryImpl) scope(ctx context.Context, name, query string) (context.Context, otel.Scope) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, model.EntityName, name))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	return ctx, scope
}

func (repo *repositoryImpl) Insert(ctx context.Context, exec postgres.Executor, item model.Item) (res model.Item, err error) {
	ctx, scope := repo.scope(ctx, "Insert", queryInsert)
	defer scope.End()

	err = sqlx.GetContext(ctx, exec, &res, queryInsert, item.Title, item.Description, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return res, fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return res, nil
}

func (repo *repositoryImpl) Get(ctx context.Context, exec postgres.Executor, id int64) (model.Item, error) {
	ctx, scope := repo.scope(ctx, "Get", queryGet)
	defer scope.End()

	return repo.get(ctx, scope, exec, queryGet, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (repo *repositoryImpl) GetForUpdate(ctx context.Context, exec postgres.Executor, id int64) (model.Item, error) {
	ctx, scope := repo.scope(ctx, "GetForUpdate", queryGetForUpdate)
	defer scope.End()

	return repo.get(ctx, scope, exec, queryGetForUpdate, id)
}

func (repo *repositoryImpl) get(ctx context.Context, scope otel.Scope, exec postgres.Executor, query string, id int64) (res model.Item, err error) {
	err = sqlx.GetContext(ctx, exec, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrItemNotFound
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return res, fmt.Errorf("failed to get data (%s): %w", model.EntityName, err)
	}

	return res, nil
}

func (repo *repositoryImpl) List(ctx context.Context, exec postgres.Executor, page gDto.Pagination) ([]model.Item, error) {
	ctx, scope := repo.scope(ctx, "List", queryList)
	defer scope.End()

	scope.SetAttributes(map[string]any{
		"page.skip":  page.Skip,
		"page.limit": page.Limit,
	})

	res := []model.Item{}

	if err := sqlx.SelectContext(ctx, exec, &res, queryList, page.Skip, page.Limit); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get all data (%s): %w", model.EntityName, err)
	}

	return res, nil
}

// Update writes every mutable column of item. Callers merge the patch first.
func (repo *repositoryImpl) Update(ctx context.Context, exec postgres.Executor, item model.Item) (res model.Item, err error) {
	ctx, scope := repo.scope(ctx, "Update", queryUpdate)
	defer scope.End()

	err = sqlx.GetContext(ctx, exec, &res, queryUpdate, item.ID, item.Title, item.Description, item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrItemNotFound
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return res, fmt.Errorf("failed to update data (%s): %w", model.EntityName, err)
	}

	return res, nil
}

func (repo *repositoryImpl) Delete(ctx context.Context, exec postgres.Executor, id int64) error {
	ctx, scope := repo.scope(ctx, "Delete", queryDelete)
	defer scope.End()

	var deleted int64

	err := sqlx.GetContext(ctx, exec, &deleted, queryDelete, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to delete data (%s): %w", model.EntityName, err)
	}

	return nil
}
