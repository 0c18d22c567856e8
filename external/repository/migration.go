package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE interview_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		patient_email TEXT NOT NULL,
		physician_id TEXT NOT NULL,
		language TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		age INTEGER NOT NULL,
		sex TEXT NOT NULL,
		chief_complaint TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status interview_status NOT NULL DEFAULT 'running',
		end_reason TEXT NOT NULL DEFAULT '',
		positives TEXT NOT NULL DEFAULT '',
		negatives TEXT NOT NULL DEFAULT '',
		physical_findings TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		investigations TEXT NOT NULL DEFAULT '',
		assessment TEXT NOT NULL DEFAULT '',
		plan TEXT NOT NULL DEFAULT '',
		final_comments TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_physician ON interviews (physician_id, started_at)`,
	`CREATE TABLE IF NOT EXISTS interview_messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		interview_id UUID NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(interview_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_messages_interview ON interview_messages (interview_id, position)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
