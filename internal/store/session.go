package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	researchCtx, err := json.Marshal(sess.Context)
	if err != nil {
		return fmt.Errorf("marshal research context: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO sessions (id, question, status, current_stage, overall_confidence, research_context)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		sess.ID, sess.Question, sess.Status, sess.CurrentStage, sess.OverallConfidence, researchCtx,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess := &domain.Session{}
	var researchCtx []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, question, status, current_stage, overall_confidence, research_context, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&sess.ID, &sess.Question, &sess.Status, &sess.CurrentStage, &sess.OverallConfidence, &researchCtx, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(researchCtx) > 0 {
		if err := json.Unmarshal(researchCtx, &sess.Context); err != nil {
			return nil, fmt.Errorf("unmarshal research context: %w", err)
		}
	}

	if sess.StageLog, err = s.stageLog(ctx, id); err != nil {
		return nil, err
	}
	if sess.Results, err = s.stageResults(ctx, id); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Update(ctx context.Context, sess *domain.Session) error {
	researchCtx, err := json.Marshal(sess.Context)
	if err != nil {
		return fmt.Errorf("marshal research context: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE sessions
		 SET question = $2, status = $3, current_stage = $4, overall_confidence = $5, research_context = $6, updated_at = NOW()
		 WHERE id = $1`,
		sess.ID, sess.Question, sess.Status, sess.CurrentStage, sess.OverallConfidence, researchCtx,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SessionStore) AppendStageContext(ctx context.Context, sessionID uuid.UUID, sc domain.StageExecutionContext) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO stage_contexts (session_id, stage_id, stage_name, status, api_calls_made, confidence_achieved, error_message, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sessionID, sc.StageID, sc.StageName, sc.Status, sc.APICallsMade, sc.ConfidenceAchieved, sc.ErrorMessage, sc.StartedAt, sc.FinishedAt,
	)
	return err
}

func (s *SessionStore) AppendStageResult(ctx context.Context, sessionID uuid.UUID, r domain.StageResult) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO stage_results (session_id, stage_id, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, stage_id) DO UPDATE SET content = EXCLUDED.content`,
		sessionID, r.StageID, r.Content,
	)
	return err
}

func (s *SessionStore) List(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, question, status, current_stage, overall_confidence, created_at, updated_at
		 FROM sessions ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.ID, &sess.Question, &sess.Status, &sess.CurrentStage, &sess.OverallConfidence, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SessionStore) stageLog(ctx context.Context, sessionID uuid.UUID) ([]domain.StageExecutionContext, error) {
	rows, err := s.db.Query(ctx,
		`SELECT stage_id, stage_name, status, api_calls_made, confidence_achieved, error_message, started_at, finished_at
		 FROM stage_contexts WHERE session_id = $1 ORDER BY started_at, stage_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StageExecutionContext
	for rows.Next() {
		var sc domain.StageExecutionContext
		if err := rows.Scan(&sc.StageID, &sc.StageName, &sc.Status, &sc.APICallsMade, &sc.ConfidenceAchieved, &sc.ErrorMessage, &sc.StartedAt, &sc.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SessionStore) stageResults(ctx context.Context, sessionID uuid.UUID) ([]domain.StageResult, error) {
	rows, err := s.db.Query(ctx,
		`SELECT stage_id, content FROM stage_results WHERE session_id = $1 ORDER BY stage_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StageResult
	for rows.Next() {
		var r domain.StageResult
		if err := rows.Scan(&r.StageID, &r.Content); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
