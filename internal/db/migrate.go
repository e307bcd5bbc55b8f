package db

import (
	"context"
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies pending migrations in file-name order, one transaction each.
// A nil logger runs silently.
func Migrate(ctx context.Context, sqlDB *sql.DB, logger *zap.SugaredLogger) (int, error) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return 0, errors.Wrap(err, "read migrations")
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		done, err := migrationApplied(ctx, sqlDB, version)
		if err != nil {
			return applied, errors.Wrapf(err, "check %s", filename)
		}
		if done {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)", "migration", filename, "version", version)
			}
			continue
		}

		body, err := migrations.ReadFile(path.Join("migrations", filename))
		if err != nil {
			return applied, errors.Wrapf(err, "read %s", filename)
		}
		if logger != nil {
			logger.Infow("Applying migration", "migration", filename, "version", version)
		}
		if err := applyMigration(ctx, sqlDB, version, string(body)); err != nil {
			return applied, errors.Wrapf(err, "apply %s", filename)
		}
		applied++
	}

	if logger != nil {
		logger.Infow("Migrations complete", "total_migrations", len(files), "applied", applied)
	}
	return applied, nil
}

func migrationApplied(ctx context.Context, sqlDB *sql.DB, version string) (bool, error) {
	var table sql.NullString
	if err := sqlDB.QueryRowContext(ctx, `SELECT to_regclass('schema_migrations')::text`).Scan(&table); err != nil {
		return false, err
	}
	if !table.Valid {
		if version != "000" {
			return false, errors.Newf("schema_migrations table missing before migration %s", version)
		}
		return false, nil
	}
	var exists bool
	err := sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	return exists, err
}

func applyMigration(ctx context.Context, sqlDB *sql.DB, version, body string) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return errors.Wrap(err, "execute")
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return errors.Wrap(err, "record")
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// SQL exposes the underlying pool for migrations and health checks.
func (db *DB) SQL() *sql.DB {
	return db.sql
}
