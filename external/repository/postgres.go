package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchperfect/pitchperfect/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreatePresentation(ctx context.Context, input repository.CreatePresentationInput) (*repository.Presentation, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO presentations (title, description)
		 VALUES ($1, $2)
		 RETURNING id, title, description, created_at`,
		input.Title, input.Description)
	var p repository.Presentation
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) GetPresentation(ctx context.Context, id string) (*repository.Presentation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, title, description, created_at FROM presentations WHERE id = $1`,
		id)
	var p repository.Presentation
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) DeletePresentation(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM presentations WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) AddPresentationFile(ctx context.Context, input repository.AddPresentationFileInput) (*repository.PresentationFile, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO presentation_files (presentation_id, name, url)
		 VALUES ($1, $2, $3)
		 RETURNING id, presentation_id, name, url, created_at`,
		input.PresentationID, input.Name, input.URL)
	var f repository.PresentationFile
	if err := row.Scan(&f.ID, &f.PresentationID, &f.Name, &f.URL, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) ListPresentationFiles(ctx context.Context, presentationID string) ([]repository.PresentationFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, presentation_id, name, url, created_at
		 FROM presentation_files WHERE presentation_id = $1 ORDER BY created_at ASC`,
		presentationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.PresentationFile
	for rows.Next() {
		var f repository.PresentationFile
		if err := rows.Scan(&f.ID, &f.PresentationID, &f.Name, &f.URL, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) LinkAgentToPresentation(ctx context.Context, presentationID, agentID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO presentation_agents (presentation_id, agent_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		presentationID, agentID)
	return err
}

func (r *PostgresRepository) ListAgentsByPresentation(ctx context.Context, presentationID string) ([]repository.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.name, a.persona, a.voice_description, a.platform_agent_id,
		        a.platform_voice_id, a.system_prompt, a.creation_status, a.created_at
		 FROM agents a
		 JOIN presentation_agents pa ON pa.agent_id = a.id
		 WHERE pa.presentation_id = $1 ORDER BY a.created_at ASC`,
		presentationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Agent
	for rows.Next() {
		var a repository.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Persona, &a.VoiceDescription, &a.PlatformAgentID,
			&a.PlatformVoiceID, &a.SystemPrompt, &a.CreationStatus, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) CreateAgent(ctx context.Context, input repository.CreateAgentInput) (*repository.Agent, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO agents (name, persona, voice_description)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, persona, voice_description, platform_agent_id,
		           platform_voice_id, system_prompt, creation_status, created_at`,
		input.Name, input.Persona, input.VoiceDescription)
	return scanAgent(row)
}

func (r *PostgresRepository) GetAgent(ctx context.Context, id string) (*repository.Agent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, persona, voice_description, platform_agent_id,
		        platform_voice_id, system_prompt, creation_status, created_at
		 FROM agents WHERE id = $1`,
		id)
	a, err := scanAgent(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresRepository) UpdateAgentProvisioning(ctx context.Context, input repository.UpdateAgentProvisioningInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE agents SET platform_agent_id = $2, platform_voice_id = $3,
		        system_prompt = $4, creation_status = $5
		 WHERE id = $1`,
		input.AgentID, input.PlatformAgentID, input.PlatformVoiceID, input.SystemPrompt, input.CreationStatus)
	return err
}

func (r *PostgresRepository) UpdateAgentPersona(ctx context.Context, input repository.UpdateAgentPersonaInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE agents SET persona = $2, system_prompt = $3 WHERE id = $1`,
		input.AgentID, input.Persona, input.SystemPrompt)
	return err
}

func (r *PostgresRepository) CreatePracticeSession(ctx context.Context, input repository.CreatePracticeSessionInput) (*repository.PracticeSession, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO practice_sessions (presentation_id)
		 VALUES ($1)
		 RETURNING id, presentation_id, status, started_at, ended_at, created_at`,
		input.PresentationID)
	return scanPracticeSession(row)
}

func (r *PostgresRepository) GetPracticeSession(ctx context.Context, id string) (*repository.PracticeSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, presentation_id, status, started_at, ended_at, created_at
		 FROM practice_sessions WHERE id = $1`,
		id)
	s, err := scanPracticeSession(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *PostgresRepository) UpdatePracticeSessionStarted(ctx context.Context, sessionID string, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE practice_sessions SET status = 'recording', started_at = $2 WHERE id = $1`,
		sessionID, startedAt)
	return err
}

func (r *PostgresRepository) UpdatePracticeSessionStatus(ctx context.Context, sessionID string, status repository.PracticeSessionStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE practice_sessions SET status = $2 WHERE id = $1`,
		sessionID, status)
	return err
}

func (r *PostgresRepository) CompletePracticeSession(ctx context.Context, input repository.CompletePracticeSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE practice_sessions SET status = 'finished', ended_at = $2 WHERE id = $1`,
		input.SessionID, input.EndedAt)
	return err
}

func (r *PostgresRepository) InsertTimelineSegment(ctx context.Context, input repository.InsertTimelineSegmentInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO timeline_segments (session_id, segment_index, start_seconds, end_seconds, owner_id, conversation_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		input.SessionID, input.SegmentIndex, input.StartSeconds, input.EndSeconds, input.OwnerID, input.ConversationID)
	return err
}

func (r *PostgresRepository) ListTimelineSegments(ctx context.Context, sessionID string) ([]repository.TimelineSegment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, segment_index, start_seconds, end_seconds, owner_id, conversation_id
		 FROM timeline_segments WHERE session_id = $1 ORDER BY segment_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.TimelineSegment
	for rows.Next() {
		var seg repository.TimelineSegment
		if err := rows.Scan(&seg.ID, &seg.SessionID, &seg.SegmentIndex, &seg.StartSeconds,
			&seg.EndSeconds, &seg.OwnerID, &seg.ConversationID); err != nil {
			return nil, err
		}
		list = append(list, seg)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) InsertWeakArea(ctx context.Context, input repository.InsertWeakAreaInput) (*repository.WeakArea, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO weak_areas (session_id, start_seconds, end_seconds, transcript, explanation, clip)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, session_id, start_seconds, end_seconds, transcript, explanation, clip, created_at`,
		input.SessionID, input.StartSeconds, input.EndSeconds, input.Transcript, input.Explanation, input.Clip)
	var w repository.WeakArea
	if err := row.Scan(&w.ID, &w.SessionID, &w.StartSeconds, &w.EndSeconds, &w.Transcript,
		&w.Explanation, &w.Clip, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresRepository) ListWeakAreas(ctx context.Context, sessionID string) ([]repository.WeakArea, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, start_seconds, end_seconds, transcript, explanation, clip, created_at
		 FROM weak_areas WHERE session_id = $1 ORDER BY start_seconds ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.WeakArea
	for rows.Next() {
		var w repository.WeakArea
		if err := rows.Scan(&w.ID, &w.SessionID, &w.StartSeconds, &w.EndSeconds, &w.Transcript,
			&w.Explanation, &w.Clip, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func scanAgent(row pgx.Row) (*repository.Agent, error) {
	var a repository.Agent
	if err := row.Scan(&a.ID, &a.Name, &a.Persona, &a.VoiceDescription, &a.PlatformAgentID,
		&a.PlatformVoiceID, &a.SystemPrompt, &a.CreationStatus, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanPracticeSession(row pgx.Row) (*repository.PracticeSession, error) {
	var s repository.PracticeSession
	if err := row.Scan(&s.ID, &s.PresentationID, &s.Status, &s.StartedAt, &s.EndedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
