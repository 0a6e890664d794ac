package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE practice_session_status AS ENUM ('created', 'recording', 'finished', 'processed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE agent_creation_status AS ENUM ('pending', 'setting_up_voice', 'setting_up_persona', 'ready'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS presentations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS presentation_files (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		presentation_id UUID NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_presentation_files_presentation ON presentation_files (presentation_id)`,
	`CREATE TABLE IF NOT EXISTS agents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		persona TEXT NOT NULL,
		voice_description TEXT NOT NULL,
		platform_agent_id TEXT NOT NULL DEFAULT '',
		platform_voice_id TEXT NOT NULL DEFAULT '',
		system_prompt TEXT NOT NULL DEFAULT '',
		creation_status agent_creation_status NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS presentation_agents (
		presentation_id UUID NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
		agent_id UUID NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		PRIMARY KEY (presentation_id, agent_id)
	)`,
	`CREATE TABLE IF NOT EXISTS practice_sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		presentation_id UUID NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
		status practice_session_status NOT NULL DEFAULT 'created',
		started_at TIMESTAMPTZ,
		ended_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_practice_sessions_presentation ON practice_sessions (presentation_id)`,
	`CREATE TABLE IF NOT EXISTS timeline_segments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES practice_sessions(id) ON DELETE CASCADE,
		segment_index INTEGER NOT NULL,
		start_seconds DOUBLE PRECISION NOT NULL,
		end_seconds DOUBLE PRECISION NOT NULL,
		owner_id TEXT NOT NULL,
		conversation_id TEXT NOT NULL DEFAULT '',
		UNIQUE(session_id, segment_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timeline_segments_session ON timeline_segments (session_id, segment_index)`,
	`CREATE TABLE IF NOT EXISTS weak_areas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES practice_sessions(id) ON DELETE CASCADE,
		start_seconds DOUBLE PRECISION NOT NULL,
		end_seconds DOUBLE PRECISION NOT NULL,
		transcript TEXT NOT NULL,
		explanation TEXT NOT NULL,
		clip BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weak_areas_session ON weak_areas (session_id)`,
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
