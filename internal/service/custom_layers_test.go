package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/embedding"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/llm"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/search"
)

// MockSnapshotStore mocks the SnapshotStore interface.
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, stage int, data *domain.GraphData) error {
	args := m.Called(ctx, sessionID, stage, data)
	return args.Error(0)
}

func (m *MockSnapshotStore) GetSnapshot(ctx context.Context, sessionID uuid.UUID, stage int) (*domain.GraphData, error) {
	args := m.Called(ctx, sessionID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GraphData), args.Error(1)
}

func (m *MockSnapshotStore) SaveNodeEmbedding(ctx context.Context, sessionID uuid.UUID, nodeID string, emb []float32) error {
	args := m.Called(ctx, sessionID, nodeID, emb)
	return args.Error(0)
}

func (m *MockSnapshotStore) FindSimilarNodes(ctx context.Context, sessionID uuid.UUID, emb []float32, limit int) ([]string, error) {
	args := m.Called(ctx, sessionID, emb, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestCustomLayerDefinitions(t *testing.T) {
	snapshots := new(MockSnapshotStore)
	snapshots.On("SaveSnapshot", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	snapshots.On("SaveNodeEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewSessionService(
		nil, snapshots,
		llm.NewMockClient(), search.NewMockClient(), embedding.NewMockClient(),
		NewLayerService(nil, testLogger()),
		PipelineConfig{},
		testLogger(),
	)

	sess, err := svc.CreateSession(context.Background(), "q")
	assert.NoError(t, err)

	// Stages 1-3 build the root, dimensions and hypotheses.
	for i := 0; i < 3; i++ {
		_, _, err = svc.AdvanceStage(context.Background(), sess.ID)
		assert.NoError(t, err)
	}
	snapshots.AssertNumberOfCalls(t, "SaveSnapshot", 3)

	specs := []domain.LayerDefinitionSpec{
		{ID: "layer_anchors", Name: "Anchors", Level: 1, Kind: domain.LayerTheory,
			NodeKinds: []domain.NodeKind{domain.NodeRoot, domain.NodeDimension}, MinImpact: 0.9},
		{ID: "layer_claims", Name: "Claims", Level: 2, Kind: domain.LayerHypothesis,
			NodeKinds: []domain.NodeKind{domain.NodeHypothesis}},
	}

	layers, _, err := svc.LayersWith(context.Background(), sess.ID, specs)
	assert.NoError(t, err)
	assert.Len(t, layers, 2)

	anchors := layers[0]
	assert.Equal(t, "layer_anchors", anchors.ID)
	// Root (impact 1.0) plus the three high-impact dimensions.
	assert.Len(t, anchors.Nodes, 4)

	claims := layers[1]
	assert.Len(t, claims.Nodes, 28)
}

func TestCustomLayerDefinitionsRejected(t *testing.T) {
	svc := NewSessionService(
		nil, nil,
		llm.NewMockClient(), search.NewMockClient(), embedding.NewMockClient(),
		NewLayerService(nil, testLogger()),
		PipelineConfig{},
		testLogger(),
	)
	sess, err := svc.CreateSession(context.Background(), "q")
	assert.NoError(t, err)

	_, _, err = svc.LayersWith(context.Background(), sess.ID, []domain.LayerDefinitionSpec{
		{ID: "", Level: 1, NodeKinds: []domain.NodeKind{domain.NodeEvidence}},
	})
	assert.Error(t, err)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
