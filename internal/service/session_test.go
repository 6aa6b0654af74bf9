package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/embedding"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/llm"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/search"
)

type mockSessionStore struct {
	sessions map[uuid.UUID]*domain.Session

	createErr error
	updateErr error

	updateCalls       int
	stageContextCalls int
	stageResultCalls  int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (m *mockSessionStore) Create(ctx context.Context, s *domain.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *mockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSessionStore) Update(ctx context.Context, s *domain.Session) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *mockSessionStore) AppendStageContext(ctx context.Context, sessionID uuid.UUID, sc domain.StageExecutionContext) error {
	m.stageContextCalls++
	return nil
}

func (m *mockSessionStore) AppendStageResult(ctx context.Context, sessionID uuid.UUID, r domain.StageResult) error {
	m.stageResultCalls++
	return nil
}

func (m *mockSessionStore) List(ctx context.Context, limit int) ([]domain.Session, error) {
	var out []domain.Session
	for _, s := range m.sessions {
		out = append(out, *s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type mockSnapshotStore struct {
	snapshotCalls  int
	embeddingCalls int
	similarCalls   int
	saved          map[int]*domain.GraphData
	similar        []string
}

func (m *mockSnapshotStore) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, stage int, data *domain.GraphData) error {
	m.snapshotCalls++
	if m.saved == nil {
		m.saved = make(map[int]*domain.GraphData)
	}
	m.saved[stage] = data
	return nil
}

func (m *mockSnapshotStore) GetSnapshot(ctx context.Context, sessionID uuid.UUID, stage int) (*domain.GraphData, error) {
	data, ok := m.saved[stage]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, nil
}

func (m *mockSnapshotStore) SaveNodeEmbedding(ctx context.Context, sessionID uuid.UUID, nodeID string, embedding []float32) error {
	m.embeddingCalls++
	return nil
}

func (m *mockSnapshotStore) FindSimilarNodes(ctx context.Context, sessionID uuid.UUID, embedding []float32, limit int) ([]string, error) {
	m.similarCalls++
	return m.similar, nil
}

func setupSessionService() (*SessionService, *mockSessionStore, *mockSnapshotStore) {
	sessions := newMockSessionStore()
	snapshots := &mockSnapshotStore{}
	svc := NewSessionService(
		sessions, snapshots,
		llm.NewMockClient(), search.NewMockClient(), embedding.NewMockClient(),
		NewLayerService(nil, testLogger()),
		PipelineConfig{},
		testLogger(),
	)
	return svc, sessions, snapshots
}

func TestCreateSession(t *testing.T) {
	svc, sessions, _ := setupSessionService()

	sess, err := svc.CreateSession(context.Background(), "Does sleep deprivation impair memory consolidation?")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Error("expected a session id")
	}
	if sess.Status != domain.SessionActive {
		t.Errorf("expected active session, got %s", sess.Status)
	}
	if sess.CurrentStage != 0 {
		t.Errorf("new session must start at stage 0, got %d", sess.CurrentStage)
	}
	if _, ok := sessions.sessions[sess.ID]; !ok {
		t.Error("session was not persisted on creation")
	}
}

func TestCreateSessionEmptyQuestion(t *testing.T) {
	svc, _, _ := setupSessionService()

	_, err := svc.CreateSession(context.Background(), "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestCreateSessionMissingProviders(t *testing.T) {
	// A failed provider factory leaves a nil client wired into the service;
	// session creation must reject it up front instead of letting the first
	// stage dereference a nil interface.
	svc := NewSessionService(
		newMockSessionStore(), &mockSnapshotStore{},
		nil, nil, nil,
		NewLayerService(nil, testLogger()),
		PipelineConfig{},
		testLogger(),
	)

	_, err := svc.CreateSession(context.Background(), "Does exercise alter gut microbiota diversity?")
	if err == nil {
		t.Fatal("expected validation error for missing provider clients")
	}
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Field != "providers" {
		t.Errorf("expected providers field, got %q", vErr.Field)
	}
}

func TestCreateSessionStoreFailure(t *testing.T) {
	svc, sessions, _ := setupSessionService()
	sessions.createErr = errors.New("connection refused")

	if _, err := svc.CreateSession(context.Background(), "q"); err == nil {
		t.Fatal("expected store failure to surface on creation")
	}
}

func TestAdvanceStage(t *testing.T) {
	svc, sessions, snapshots := setupSessionService()
	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sess, data, err := svc.AdvanceStage(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if sess.CurrentStage != 1 {
		t.Errorf("expected current stage 1, got %d", sess.CurrentStage)
	}
	if sess.Status != domain.SessionActive {
		t.Errorf("expected active session, got %s", sess.Status)
	}
	if len(sess.StageLog) != 1 || len(sess.Results) != 1 {
		t.Errorf("expected one log entry and one result, got %d/%d", len(sess.StageLog), len(sess.Results))
	}
	if data == nil || len(data.Nodes) != 1 {
		t.Fatalf("expected root-only graph export, got %+v", data)
	}

	if sessions.updateCalls != 1 || sessions.stageContextCalls != 1 || sessions.stageResultCalls != 1 {
		t.Errorf("unexpected store write counts: update=%d context=%d result=%d",
			sessions.updateCalls, sessions.stageContextCalls, sessions.stageResultCalls)
	}
	if snapshots.snapshotCalls != 1 {
		t.Errorf("expected one snapshot write, got %d", snapshots.snapshotCalls)
	}
}

func TestAdvanceStageUnknownSession(t *testing.T) {
	svc, _, _ := setupSessionService()

	_, _, err := svc.AdvanceStage(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAdvanceStageFailureMarksSession(t *testing.T) {
	sessions := newMockSessionStore()
	llmClient := llm.NewMockClient()
	llmClient.DetectFieldError = errors.New("provider down")
	svc := NewSessionService(
		sessions, nil,
		llmClient, search.NewMockClient(), embedding.NewMockClient(),
		NewLayerService(nil, testLogger()),
		PipelineConfig{},
		testLogger(),
	)

	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sess, _, err := svc.AdvanceStage(context.Background(), created.ID)
	if err == nil {
		t.Fatal("expected stage failure")
	}
	if sess.Status != domain.SessionFailed {
		t.Errorf("expected failed session, got %s", sess.Status)
	}
	if sess.CurrentStage != 0 {
		t.Errorf("failed stage must not advance the session, got %d", sess.CurrentStage)
	}
}

func TestRunAll(t *testing.T) {
	svc, _, snapshots := setupSessionService()
	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sess, data, err := svc.RunAll(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if sess.Status != domain.SessionCompleted {
		t.Errorf("expected completed session, got %s", sess.Status)
	}
	if sess.CurrentStage != domain.StageCount {
		t.Errorf("expected session at stage %d, got %d", domain.StageCount, sess.CurrentStage)
	}
	if sess.OverallConfidence <= 0 {
		t.Errorf("expected positive overall confidence, got %v", sess.OverallConfidence)
	}
	if data == nil {
		t.Fatal("expected final graph export")
	}
	if snapshots.snapshotCalls != domain.StageCount {
		t.Errorf("expected %d snapshot writes, got %d", domain.StageCount, snapshots.snapshotCalls)
	}
}

func TestStageSnapshot(t *testing.T) {
	svc, _, _ := setupSessionService()
	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := svc.AdvanceStage(context.Background(), created.ID); err != nil {
			t.Fatalf("AdvanceStage %d: %v", i+1, err)
		}
	}

	// A past stage comes back from the snapshot store.
	first, err := svc.StageSnapshot(context.Background(), created.ID, 1)
	if err != nil {
		t.Fatalf("StageSnapshot(1): %v", err)
	}
	if first.Stats.Stage != 1 || len(first.Nodes) != 1 {
		t.Errorf("expected root-only stage 1 snapshot, got stage %d with %d nodes", first.Stats.Stage, len(first.Nodes))
	}

	// The current stage is served from the live engine.
	current, err := svc.StageSnapshot(context.Background(), created.ID, 2)
	if err != nil {
		t.Fatalf("StageSnapshot(2): %v", err)
	}
	if current.Stats.Stage != 2 {
		t.Errorf("expected stage 2 snapshot, got stage %d", current.Stats.Stage)
	}

	if _, err := svc.StageSnapshot(context.Background(), created.ID, 7); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound for a stage not yet run, got %v", err)
	}
	var vErr *domain.ValidationError
	if _, err := svc.StageSnapshot(context.Background(), created.ID, 0); !errors.As(err, &vErr) {
		t.Errorf("expected ValidationError for stage 0, got %v", err)
	}
	if _, err := svc.StageSnapshot(context.Background(), uuid.New(), 1); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMergeAuditQueriesStoredEmbeddings(t *testing.T) {
	svc, _, snapshots := setupSessionService()
	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for i := 0; i < domain.StagePruningMerging; i++ {
		if _, _, err := svc.AdvanceStage(context.Background(), created.ID); err != nil {
			t.Fatalf("AdvanceStage %d: %v", i+1, err)
		}
	}
	if snapshots.similarCalls == 0 {
		t.Error("expected the post-merge audit to query stored embeddings")
	}
}

func TestSessionWorksWithoutStores(t *testing.T) {
	svc := NewSessionService(
		nil, nil,
		llm.NewMockClient(), search.NewMockClient(), embedding.NewMockClient(),
		NewLayerService(nil, testLogger()),
		PipelineConfig{},
		testLogger(),
	)

	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession without stores: %v", err)
	}
	if _, _, err := svc.AdvanceStage(context.Background(), created.ID); err != nil {
		t.Fatalf("AdvanceStage without stores: %v", err)
	}

	got, err := svc.GetSession(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.CurrentStage != 1 {
		t.Errorf("expected stage 1, got %d", got.CurrentStage)
	}

	list, err := svc.ListSessions(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if list != nil {
		t.Errorf("expected no listing without a store, got %d entries", len(list))
	}
}

func TestSessionLayersAndAnalysis(t *testing.T) {
	svc, _, _ := setupSessionService()
	created, err := svc.CreateSession(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, _, err := svc.RunAll(context.Background(), created.ID); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	layers, _, err := svc.Layers(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	if len(layers) != 4 {
		t.Fatalf("expected 4 layers, got %d", len(layers))
	}

	metrics, cross, err := svc.Analysis(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if len(metrics) != len(layers) {
		t.Errorf("expected metrics for every layer, got %d", len(metrics))
	}
	if cross == nil {
		t.Fatal("expected a cross-layer analysis")
	}
}
