// Package db is the PostgreSQL implementation of store.Store, built on
// database/sql with the pgx driver.
package db

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jonathan/job-portal/internal/store"
	"go.uber.org/zap"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a connection pool, or one transaction on it.
type DB struct {
	sql  *sql.DB
	q    querier
	inTx bool
}

var _ store.Store = (*DB)(nil)

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdle     time.Duration
	ConnMaxLifetime time.Duration
	// ConnectTimeout bounds the retry loop waiting for the server.
	ConnectTimeout time.Duration
}

// DefaultPoolConfig returns settings suited to a single API process.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxIdle:     5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  30 * time.Second,
	}
}

// New wraps an open *sql.DB.
func New(sqlDB *sql.DB) *DB {
	return &DB{sql: sqlDB, q: sqlDB}
}

// Connect opens the pool and waits, with backoff, until the server answers.
func Connect(ctx context.Context, databaseURL string, cfg PoolConfig, logger *zap.SugaredLogger) (*DB, error) {
	sqlDB, err := sql.Open(DriverName, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := 500 * time.Millisecond
	for {
		err := sqlDB.PingContext(ctx)
		if err == nil {
			return New(sqlDB), nil
		}
		if logger != nil {
			logger.Warnw("postgres not ready yet", "error", err, "retry_in", backoff)
		}
		select {
		case <-ctx.Done():
			_ = sqlDB.Close()
			return nil, errors.Wrap(err, "failed to ping database")
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.sql == nil || db.inTx {
		return nil
	}
	return db.sql.Close()
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

// WithTx runs fn inside one transaction. Nested calls join the outer one.
func (db *DB) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if db.inTx {
		return fn(db)
	}
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&DB{sql: db.sql, q: tx, inTx: true}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// Postgres error codes translated to store sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// translate maps constraint violations onto store sentinels, keeping the
// driver error as detail.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return errors.WithSecondaryError(store.ErrDuplicate, err)
		case codeForeignKeyViolation:
			return errors.WithSecondaryError(store.ErrReferenced, err)
		}
	}
	return err
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// affected reports whether exec touched at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return n > 0, nil
}

// args accumulates positional parameters for dynamically built queries.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}
