package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id BIGSERIAL PRIMARY KEY,
		patient_id TEXT NOT NULL UNIQUE,
		"timestamp" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		respiratory_rate INTEGER,
		pulse INTEGER,
		systolic_bp INTEGER,
		consciousness TEXT NOT NULL DEFAULT 'alert',
		can_walk BOOLEAN NOT NULL DEFAULT TRUE,
		injury_type JSONB NOT NULL DEFAULT '[]',
		injury_severity TEXT NOT NULL DEFAULT 'moderate',
		body_regions JSONB NOT NULL DEFAULT '[]',
		estimated_age INTEGER,
		gender TEXT,
		triage_category TEXT NOT NULL,
		triage_score INTEGER NOT NULL,
		priority INTEGER NOT NULL,
		treatment_started TIMESTAMPTZ,
		treatment_notes TEXT,
		outcome TEXT,
		notes TEXT,
		location TEXT,
		medic TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_patients_category ON patients (triage_category)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id BIGSERIAL PRIMARY KEY,
		resource_type TEXT NOT NULL UNIQUE,
		current_stock INTEGER NOT NULL,
		critical_level INTEGER NOT NULL DEFAULT 10,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		location TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_status ON outbox_events (status, created_at)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	base := NewBaseRepository(db)
	return base.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
