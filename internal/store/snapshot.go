package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

type SnapshotStore struct {
	db *pgxpool.Pool
}

func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, stage int, data *domain.GraphData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal graph snapshot: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO graph_snapshots (session_id, stage, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, stage) DO UPDATE SET data = EXCLUDED.data, created_at = NOW()`,
		sessionID, stage, payload,
	)
	return err
}

func (s *SnapshotStore) GetSnapshot(ctx context.Context, sessionID uuid.UUID, stage int) (*domain.GraphData, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM graph_snapshots WHERE session_id = $1 AND stage = $2`,
		sessionID, stage,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	data := &domain.GraphData{}
	if err := json.Unmarshal(payload, data); err != nil {
		return nil, fmt.Errorf("unmarshal graph snapshot: %w", err)
	}
	return data, nil
}

func (s *SnapshotStore) SaveNodeEmbedding(ctx context.Context, sessionID uuid.UUID, nodeID string, embedding []float32) error {
	if len(embedding) == 0 {
		return nil
	}
	vec := pgvector.NewVector(embedding)
	_, err := s.db.Exec(ctx,
		`INSERT INTO node_embeddings (session_id, node_id, embedding)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, node_id) DO UPDATE SET embedding = EXCLUDED.embedding`,
		sessionID, nodeID, vec,
	)
	return err
}

func (s *SnapshotStore) FindSimilarNodes(ctx context.Context, sessionID uuid.UUID, embedding []float32, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT node_id FROM node_embeddings
		 WHERE session_id = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		sessionID, vec, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
