package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_media_items",
		SQL: `CREATE TABLE IF NOT EXISTS media_items (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id          TEXT        NOT NULL,
  title             TEXT        NOT NULL,
  description       TEXT        NOT NULL DEFAULT '',
  original_filename TEXT        NOT NULL,
  mime_type         TEXT        NOT NULL DEFAULT '',
  category          TEXT        NOT NULL DEFAULT '',
  file_path         TEXT        NOT NULL UNIQUE,
  file_url          TEXT        NOT NULL DEFAULT '',
  size              BIGINT      NOT NULL CHECK (size >= 0),
  is_favorite       BOOLEAN     NOT NULL DEFAULT false,
  is_deleted        BOOLEAN     NOT NULL DEFAULT false,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_media_items_owner_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_media_items_owner_created_at ON media_items (owner_id, created_at DESC);`,
	},
	{
		Name: "create_index_media_items_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_media_items_category ON media_items (category);`,
	},
}

// EnsureMigrated checks if the media_items table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.media_items') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
