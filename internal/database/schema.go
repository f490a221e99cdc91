package database

import (
	"context"
	"fmt"
	"log/slog"
)

const postsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	message TEXT NOT NULL,
	category VARCHAR(100) NOT NULL DEFAULT '',
	has_image BOOLEAN NOT NULL DEFAULT FALSE,
	has_video BOOLEAN NOT NULL DEFAULT FALSE,
	scheduled_month SMALLINT,
	scheduled_day SMALLINT,
	scheduled_year SMALLINT,
	status VARCHAR(20) NOT NULL DEFAULT 'queued',
	score SMALLINT NOT NULL DEFAULT 0,
	feedback TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status);
CREATE INDEX IF NOT EXISTS idx_posts_schedule ON posts(scheduled_year, scheduled_month, scheduled_day);
`

// CreateTables creates all necessary database tables
func (db *DB) CreateTables(ctx context.Context) error {
	slog.Debug("Creating database tables...")

	if _, err := db.Pool.Exec(ctx, postsTable); err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}

	slog.Info("✅ All tables created successfully")
	return nil
}
