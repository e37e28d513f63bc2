package postgres

//nolint:revive
import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/juju/clock"
	"github.com/juju/retry"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
)

const (
	driverName     = "postgres"
	backoffFactor  = 2
	minRetryDelay  = time.Millisecond
	unknownDSNHost = "unknown"
)

// Connection holds the two independent pools. Nothing replicates between
// them here; the replica is simply a second DSN.
type Connection struct {
	Primary *sqlx.DB
	Replica *sqlx.DB
}

// Options controls pool sizing and the startup retry budget.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Attempts        int
	Delay           time.Duration
	MaxDelay        time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DB.ConnMaxLifetimeSeconds) * time.Second,
		Attempts:        cfg.DB.MaxRetry,
		Delay:           time.Duration(cfg.DB.RetryWaitSeconds) * time.Second,
		MaxDelay:        time.Duration(cfg.DB.RetryMaxWaitSeconds) * time.Second,
	}
}

// StartupError is returned when a pool could not be opened within the retry budget.
type StartupError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("failed connecting to %s database after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// New opens the primary and replica pools. The returned cleanup closes both.
func New(cfg *config.Config) (*Connection, func(), error) {
	ctx := context.Background()
	opts := OptionsFromConfig(cfg)

	primary, err := Connect(ctx, string(RolePrimary), cfg.DB.PrimaryURL, opts)
	if err != nil {
		return nil, nil, err
	}

	replica, err := Connect(ctx, string(RoleReplica), cfg.DB.ReplicaURL, opts)
	if err != nil {
		_ = primary.Close()

		return nil, nil, err
	}

	conn := &Connection{
		Primary: primary,
		Replica: replica,
	}

	cleanup := func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed closing database pools")

			return
		}

		log.Info().Msg("Database pools closed")
	}

	return conn, cleanup, nil
}

// Connect opens one pool, retrying with exponential backoff until opts.Attempts
// is spent or ctx is done. sqlx.ConnectContext pings, so a returned pool has
// already answered once.
func Connect(ctx context.Context, name, dsn string, opts Options) (*sqlx.DB, error) {
	host := dsnHost(dsn)
	attempts := max(opts.Attempts, 1)
	delay := max(opts.Delay, minRetryDelay)
	maxDelay := max(opts.MaxDelay, delay)

	var db *sqlx.DB

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			conn, err := sqlx.ConnectContext(ctx, driverName, dsn)
			if err != nil {
				return err //nolint:wrapcheck
			}

			db = conn

			return nil
		},
		NotifyFunc: func(err error, attempt int) {
			log.
				Error().
				Err(err).
				Str("name", name).
				Str("host", host).
				Int("attempt", attempt).
				Int("maxAttempts", attempts).
				Msg("Failed connecting to database")
		},
		Attempts:    attempts,
		Delay:       delay,
		MaxDelay:    maxDelay,
		BackoffFunc: retry.ExpBackoff(delay, maxDelay, backoffFactor, false),
		Clock:       clock.WallClock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
			err = retry.LastError(err)
		}

		return nil, &StartupError{Name: name, Attempts: attempts, Err: err}
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	log.
		Info().
		Str("name", name).
		Str("host", host).
		Msg("Connected to database")

	return db, nil
}

func (c *Connection) Close() error {
	var firstErr error

	for _, db := range []*sqlx.DB{c.Primary, c.Replica} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close pool: %w", err)
		}
	}

	return firstErr
}

// dsnHost keeps credentials out of the logs.
func dsnHost(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.Host == "" {
		return unknownDSNHost
	}

	return parsed.Host
}
