package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./session.go -destination=./mocks/session_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"cnpgdemo/shared/failure"
)

type Role string

const (
	RolePrimary Role = "primary"
	RoleReplica Role = "replica"
)

var ErrUnknownRole = errors.New("unknown database role")

const pingQuery = "SELECT 1"

// Executor is what repositories run statements against: a borrowed
// connection or an open transaction.
type Executor interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Session is one connection borrowed from a role's pool. Release must be
// called exactly once; WithSession does it for you.
type Session interface {
	Role() Role
	Executor() Executor
	Transact(ctx context.Context, fn func(exec Executor) error) error
	Release()
}

type Provider interface {
	Acquire(ctx context.Context, role Role) (Session, error)
	Ping(ctx context.Context, role Role) error
}

// WithSession borrows a connection for role, runs fn and returns the
// connection on every exit path, panics included.
func WithSession(ctx context.Context, provider Provider, role Role, fn func(session Session) error) error {
	session, err := provider.Acquire(ctx, role)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer session.Release()

	return fn(session)
}

func (c *Connection) pool(role Role) (*sqlx.DB, error) {
	switch role {
	case RolePrimary:
		return c.Primary, nil
	case RoleReplica:
		return c.Replica, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// Acquire borrows a connection from role's pool. An unreachable pool is a 503.
func (c *Connection) Acquire(ctx context.Context, role Role) (Session, error) {
	db, err := c.pool(role)
	if err != nil {
		return nil, err
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failure.ServiceUnavailable(fmt.Sprintf("%s database unavailable", role)), err)
	}

	return &session{role: role, conn: conn}, nil
}

// Ping runs a trivial round trip on a connection borrowed from role's pool.
func (c *Connection) Ping(ctx context.Context, role Role) error {
	return WithSession(ctx, c, role, func(session Session) error {
		var one int

		if err := sqlx.GetContext(ctx, session.Executor(), &one, pingQuery); err != nil {
			return fmt.Errorf("%s ping failed: %w", role, err)
		}

		return nil
	})
}

type session struct {
	role    Role
	conn    *sqlx.Conn
	release sync.Once
}

func (s *session) Role() Role {
	return s.role
}

func (s *session) Executor() Executor {
	return s.conn
}

// Transact commits once if fn succeeds and rolls back otherwise.
func (s *session) Transact(ctx context.Context, fn func(exec Executor) error) (err error) {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", s.role, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			log.Error().Err(rollbackErr).Str("role", string(s.role)).Msg("failed to roll back transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s transaction: %w", s.role, err)
	}

	return nil
}

func (s *session) Release() {
	s.release.Do(func() {
		if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			log.Error().Err(err).Str("role", string(s.role)).Msg("failed to release connection")
		}
	})
}
