package domain

import (
	"context"

	"github.com/google/uuid"
)

// InferenceClient is the natural-language inference provider. Returned text
// is treated as opaque input to the scoring and classification heuristics.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	DetectField(ctx context.Context, question string) (*FieldAnalysis, error)
}

// SearchOpts tunes an evidence search call.
type SearchOpts struct {
	MaxResults int
	Recency    string
}

// SearchClient is the evidence-search provider. Stage 4 falls back to the
// inference provider when a search call fails.
type SearchClient interface {
	Search(ctx context.Context, query string, opts SearchOpts) (string, error)
}

// EmbeddingClient produces text embeddings for similarity grouping.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SessionStore persists session records and their stage logs. The engine
// itself never persists; the session service drives these after each stage.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	AppendStageContext(ctx context.Context, sessionID uuid.UUID, sc StageExecutionContext) error
	AppendStageResult(ctx context.Context, sessionID uuid.UUID, r StageResult) error
	List(ctx context.Context, limit int) ([]Session, error)
}

// SnapshotStore persists per-stage graph exports and node embeddings.
// GetSnapshot returns ErrSnapshotNotFound for a stage with no export.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, sessionID uuid.UUID, stage int, data *GraphData) error
	GetSnapshot(ctx context.Context, sessionID uuid.UUID, stage int) (*GraphData, error)
	SaveNodeEmbedding(ctx context.Context, sessionID uuid.UUID, nodeID string, embedding []float32) error
	FindSimilarNodes(ctx context.Context, sessionID uuid.UUID, embedding []float32, limit int) ([]string, error)
}
