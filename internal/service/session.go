package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// SessionService owns the live pipelines and keeps their sessions in sync
// with the stores. Stage execution is serialized per session.
type SessionService struct {
	sessions  domain.SessionStore
	snapshots domain.SnapshotStore
	llm       domain.InferenceClient
	search    domain.SearchClient
	embed     domain.EmbeddingClient
	layers    *LayerService
	cfg       PipelineConfig
	logger    *zap.Logger

	mu      sync.RWMutex
	engines map[uuid.UUID]*engineEntry
}

type engineEntry struct {
	mu       sync.Mutex
	pipeline *Pipeline
	session  *domain.Session
}

func NewSessionService(
	sessions domain.SessionStore,
	snapshots domain.SnapshotStore,
	llm domain.InferenceClient,
	search domain.SearchClient,
	embed domain.EmbeddingClient,
	layers *LayerService,
	cfg PipelineConfig,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		snapshots: snapshots,
		llm:       llm,
		search:    search,
		embed:     embed,
		layers:    layers,
		cfg:       cfg,
		logger:    logger,
		engines:   make(map[uuid.UUID]*engineEntry),
	}
}

// CreateSession registers a new reasoning session for the given question.
func (s *SessionService) CreateSession(ctx context.Context, question string) (*domain.Session, error) {
	if question == "" {
		return nil, domain.NewValidationError("question", "must not be empty")
	}
	if s.llm == nil || s.search == nil || s.embed == nil {
		return nil, domain.NewValidationError("providers", "inference, search, and embedding clients must be configured; check provider API keys")
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		Question:  question,
		Status:    domain.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.sessions != nil {
		if err := s.sessions.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	entry := &engineEntry{
		pipeline: NewPipeline(question, domain.ResearchContext{}, s.llm, s.search, s.embed, s.cfg, s.logger),
		session:  session,
	}
	s.mu.Lock()
	s.engines[session.ID] = entry
	s.mu.Unlock()

	s.logger.Info("session created",
		zap.String("session_id", session.ID.String()),
		zap.String("question", question))
	return snapshotSession(session), nil
}

// AdvanceStage runs the session's next stage and returns the updated session
// with the resulting graph export.
func (s *SessionService) AdvanceStage(ctx context.Context, id uuid.UUID) (*domain.Session, *domain.GraphData, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	data, runErr := entry.pipeline.RunNextStage(ctx)
	s.syncSession(entry, runErr)
	s.persist(ctx, entry, data)

	if runErr != nil {
		return snapshotSession(entry.session), nil, runErr
	}
	return snapshotSession(entry.session), data, nil
}

// RunAll advances the session through every remaining stage, stopping at
// the first failure.
func (s *SessionService) RunAll(ctx context.Context, id uuid.UUID) (*domain.Session, *domain.GraphData, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var data *domain.GraphData
	for !entry.pipeline.Completed() {
		var runErr error
		data, runErr = entry.pipeline.RunNextStage(ctx)
		s.syncSession(entry, runErr)
		s.persist(ctx, entry, data)
		if runErr != nil {
			return snapshotSession(entry.session), nil, runErr
		}
	}
	return snapshotSession(entry.session), data, nil
}

// GetSession returns the current state of a session.
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	entry, ok := s.engines[id]
	s.mu.RUnlock()
	if ok {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		return snapshotSession(entry.session), nil
	}
	if s.sessions != nil {
		return s.sessions.GetByID(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

// ListSessions returns recent sessions from the store.
func (s *SessionService) ListSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	if s.sessions == nil {
		return nil, nil
	}
	return s.sessions.List(ctx, limit)
}

// GetGraph exports the session's current graph.
func (s *SessionService) GetGraph(ctx context.Context, id uuid.UUID) (*domain.GraphData, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pipeline.Snapshot(), nil
}

// StageSnapshot returns the graph export recorded after the given stage.
// The session's current stage is served from the live engine; earlier
// stages are read back from the snapshot store.
func (s *SessionService) StageSnapshot(ctx context.Context, id uuid.UUID, stage int) (*domain.GraphData, error) {
	if stage < 1 || stage > domain.StageCount {
		return nil, domain.NewValidationError("stage", fmt.Sprintf("must be between 1 and %d", domain.StageCount))
	}
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	current := entry.pipeline.CurrentStage()
	if stage == current {
		data := entry.pipeline.Snapshot()
		entry.mu.Unlock()
		return data, nil
	}
	entry.mu.Unlock()

	if s.snapshots == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return s.snapshots.GetSnapshot(ctx, id, stage)
}

// Layers partitions the session's current graph into network layers.
func (s *SessionService) Layers(ctx context.Context, id uuid.UUID) ([]domain.NetworkLayer, []domain.InterLayerConnection, error) {
	return s.LayersWith(ctx, id, nil)
}

// LayersWith partitions with caller-supplied layer definitions; empty
// specs fall back to the service defaults.
func (s *SessionService) LayersWith(ctx context.Context, id uuid.UUID, specs []domain.LayerDefinitionSpec) ([]domain.NetworkLayer, []domain.InterLayerConnection, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	data := entry.pipeline.Snapshot()
	entry.mu.Unlock()

	var layers []domain.NetworkLayer
	if len(specs) > 0 {
		defs, err := domain.CompileLayerDefinitions(specs)
		if err != nil {
			return nil, nil, err
		}
		layers = s.layers.CreateLayersWith(data, defs)
	} else {
		layers = s.layers.CreateLayers(data)
	}
	conns := s.layers.InferInterLayerConnections(layers)
	return layers, conns, nil
}

// Analysis computes per-layer metrics and the cross-layer analysis for the
// session's current graph.
func (s *SessionService) Analysis(ctx context.Context, id uuid.UUID) ([]domain.LayerMetrics, *domain.CrossLayerAnalysis, error) {
	layers, conns, err := s.Layers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	metrics := make([]domain.LayerMetrics, 0, len(layers))
	for _, l := range layers {
		metrics = append(metrics, s.layers.AnalyzeLayer(l))
	}
	cross := s.layers.AnalyzeCrossLayer(layers, conns)
	return metrics, &cross, nil
}

func (s *SessionService) entry(id uuid.UUID) (*engineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.engines[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entry, nil
}

// syncSession folds the pipeline's state back into the session record.
func (s *SessionService) syncSession(entry *engineEntry, runErr error) {
	p := entry.pipeline
	sess := entry.session
	sess.CurrentStage = p.CurrentStage()
	sess.Context = p.Research()
	sess.StageLog = p.StageLog()
	sess.Results = p.Results()
	sess.OverallConfidence = p.OverallConfidence()
	sess.UpdatedAt = time.Now()
	switch {
	case runErr != nil:
		sess.Status = domain.SessionFailed
	case p.Completed():
		sess.Status = domain.SessionCompleted
	default:
		sess.Status = domain.SessionActive
	}
}

// persist writes the session, latest stage log entry and graph snapshot.
// Store failures are logged, not fatal; the in-memory engine stays
// authoritative for the life of the process.
func (s *SessionService) persist(ctx context.Context, entry *engineEntry, data *domain.GraphData) {
	sess := entry.session
	if s.sessions != nil {
		if err := s.sessions.Update(ctx, sess); err != nil {
			s.logger.Warn("session update failed",
				zap.String("session_id", sess.ID.String()), zap.Error(err))
		}
		if n := len(sess.StageLog); n > 0 {
			if err := s.sessions.AppendStageContext(ctx, sess.ID, sess.StageLog[n-1]); err != nil {
				s.logger.Warn("stage context append failed",
					zap.String("session_id", sess.ID.String()), zap.Error(err))
			}
		}
		if n := len(sess.Results); n > 0 && sess.Results[n-1].StageID == sess.CurrentStage {
			if err := s.sessions.AppendStageResult(ctx, sess.ID, sess.Results[n-1]); err != nil {
				s.logger.Warn("stage result append failed",
					zap.String("session_id", sess.ID.String()), zap.Error(err))
			}
		}
	}
	if s.snapshots != nil && data != nil {
		if err := s.snapshots.SaveSnapshot(ctx, sess.ID, sess.CurrentStage, data); err != nil {
			s.logger.Warn("snapshot save failed",
				zap.String("session_id", sess.ID.String()), zap.Error(err))
		}
		for _, n := range data.Nodes {
			if len(n.Embedding) == 0 {
				continue
			}
			if err := s.snapshots.SaveNodeEmbedding(ctx, sess.ID, n.ID, n.Embedding); err != nil {
				s.logger.Warn("node embedding save failed",
					zap.String("session_id", sess.ID.String()),
					zap.String("node_id", n.ID), zap.Error(err))
			}
		}
		if sess.CurrentStage == domain.StagePruningMerging {
			s.auditMergeSimilarity(ctx, sess, data)
		}
	}
}

// auditMergeSimilarity cross-checks the in-memory merge against the stored
// embeddings after pruning. Surviving hypotheses that still rank as each
// other's nearest neighbours in vector space are logged so under-merged
// duplicates can be reviewed.
func (s *SessionService) auditMergeSimilarity(ctx context.Context, sess *domain.Session, data *domain.GraphData) {
	survivors := make(map[string]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		if n.Kind == domain.NodeHypothesis {
			survivors[n.ID] = true
		}
	}

	for _, n := range data.Nodes {
		if n.Kind != domain.NodeHypothesis || len(n.Embedding) == 0 {
			continue
		}
		similar, err := s.snapshots.FindSimilarNodes(ctx, sess.ID, n.Embedding, 3)
		if err != nil {
			s.logger.Warn("merge similarity audit failed",
				zap.String("session_id", sess.ID.String()), zap.Error(err))
			return
		}
		for _, id := range similar {
			if id == n.ID || !survivors[id] {
				continue
			}
			s.logger.Info("similar hypotheses survived merging",
				zap.String("session_id", sess.ID.String()),
				zap.String("node_id", n.ID),
				zap.String("neighbor_id", id))
		}
	}
}

func snapshotSession(sess *domain.Session) *domain.Session {
	out := *sess
	out.StageLog = append([]domain.StageExecutionContext(nil), sess.StageLog...)
	out.Results = append([]domain.StageResult(nil), sess.Results...)
	return &out
}
