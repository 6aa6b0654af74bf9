package service

import (
	"math"
	"testing"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

func layerTestGraph() *domain.GraphData {
	conf := domain.NewConfidenceVector(0.7, 0.7, 0.7, 0.7)
	return &domain.GraphData{
		Nodes: []domain.Node{
			{ID: "root", Label: "question", Kind: domain.NodeRoot, Confidence: conf,
				Meta: domain.NodeMeta{ImpactScore: 1.0}},
			{ID: "dim_scope", Label: "Scope", Kind: domain.NodeDimension, Confidence: conf,
				Meta: domain.NodeMeta{ImpactScore: 0.9}},
			{ID: "dim_biases", Label: "Potential Biases", Kind: domain.NodeDimension, Confidence: conf,
				Meta: domain.NodeMeta{ImpactScore: 0.7}},
			{ID: "hyp_1", Label: "hypothesis one", Kind: domain.NodeHypothesis, Confidence: conf,
				Meta: domain.NodeMeta{ImpactScore: 0.6, DisciplinaryTags: []string{"immunology"}}},
			{ID: "ev_1", Label: "evidence one", Kind: domain.NodeEvidence, Confidence: conf,
				Meta: domain.NodeMeta{ImpactScore: 0.75, DisciplinaryTags: []string{"immunology"}}},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "root", Target: "dim_scope", Kind: domain.EdgeSupportive, Confidence: 0.7, Weight: 0.7},
			{ID: "e2", Source: "root", Target: "dim_biases", Kind: domain.EdgeSupportive, Confidence: 0.7, Weight: 0.7},
			{ID: "e3", Source: "hyp_1", Target: "ev_1", Kind: domain.EdgeSupportive, Confidence: 0.75, Weight: 0.75},
		},
	}
}

func layerByID(t *testing.T, layers []domain.NetworkLayer, id string) domain.NetworkLayer {
	t.Helper()
	for _, l := range layers {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("layer %s not found", id)
	return domain.NetworkLayer{}
}

func TestCreateLayers(t *testing.T) {
	svc := NewLayerService(nil, testLogger())
	layers := svc.CreateLayers(layerTestGraph())

	if len(layers) != 4 {
		t.Fatalf("expected 4 default layers, got %d", len(layers))
	}

	evidence := layerByID(t, layers, "layer_evidence")
	if len(evidence.Nodes) != 1 || evidence.Nodes[0].ID != "ev_1" {
		t.Errorf("unexpected evidence layer nodes: %+v", evidence.Nodes)
	}
	if evidence.Level != 1 || evidence.EpistemicStatus != domain.StatusEmpirical {
		t.Errorf("unexpected evidence layer level/status: %d/%s", evidence.Level, evidence.EpistemicStatus)
	}
	if len(evidence.Edges) != 0 {
		t.Errorf("cross-layer edge leaked into the evidence layer: %+v", evidence.Edges)
	}

	theory := layerByID(t, layers, "layer_theory")
	if len(theory.Nodes) != 3 {
		t.Fatalf("expected root and both dimensions in theory layer, got %d nodes", len(theory.Nodes))
	}
	if len(theory.Edges) != 2 {
		t.Errorf("expected 2 induced edges in theory layer, got %d", len(theory.Edges))
	}
	wantComplexity := 2.0 / 3.0
	if math.Abs(theory.Complexity-wantComplexity) > 1e-9 {
		t.Errorf("expected theory complexity %v, got %v", wantComplexity, theory.Complexity)
	}

	// Only the high-impact dimension qualifies as methodology.
	methodology := layerByID(t, layers, "layer_methodology")
	if len(methodology.Nodes) != 1 || methodology.Nodes[0].ID != "dim_scope" {
		t.Errorf("unexpected methodology layer nodes: %+v", methodology.Nodes)
	}
	if methodology.EpistemicStatus != domain.StatusMetaTheoretical {
		t.Errorf("unexpected methodology status: %s", methodology.EpistemicStatus)
	}
}

func TestCreateLayersEmptyLayerComplexity(t *testing.T) {
	svc := NewLayerService(nil, testLogger())
	layers := svc.CreateLayers(&domain.GraphData{})
	for _, l := range layers {
		if l.Complexity != 0 {
			t.Errorf("empty layer %s: expected complexity 0, got %v", l.ID, l.Complexity)
		}
	}
}

func TestInferInterLayerConnections(t *testing.T) {
	svc := NewLayerService(nil, testLogger())
	layers := svc.CreateLayers(layerTestGraph())
	conns := svc.InferInterLayerConnections(layers)

	// hyp_1 and ev_1 share a disciplinary tag and confidence; nothing else
	// clears the similarity threshold.
	var found *domain.InterLayerConnection
	for i := range conns {
		c := conns[i]
		if c.SourceNode == "ev_1" && c.TargetNode == "hyp_1" {
			found = &conns[i]
		}
		if c.Kind == domain.ConnCorrespondence && !c.Bidirectional {
			t.Errorf("correspondence connection %s must be bidirectional", c.ID)
		}
	}
	if found == nil {
		t.Fatal("expected a connection between ev_1 and hyp_1")
	}
	if found.Kind != domain.ConnAbstraction {
		t.Errorf("evidence-to-hypothesis runs lower to higher; expected abstraction, got %s", found.Kind)
	}
	if found.Strength <= interLayerSimilarityThreshold {
		t.Errorf("connection strength %v not above threshold", found.Strength)
	}
	if found.Bidirectional {
		t.Error("abstraction connections are directional")
	}
	wantConfidence := 0.7
	if math.Abs(found.Confidence-wantConfidence) > 1e-9 {
		t.Errorf("expected connection confidence %v, got %v", wantConfidence, found.Confidence)
	}
}

func TestInferInterLayerConnectionsDissimilarNodes(t *testing.T) {
	svc := NewLayerService(nil, testLogger())
	data := &domain.GraphData{
		Nodes: []domain.Node{
			{ID: "ev_1", Label: "spectroscopy readings", Kind: domain.NodeEvidence,
				Confidence: domain.NewConfidenceVector(0.9, 0.9, 0.9, 0.9),
				Meta:       domain.NodeMeta{DisciplinaryTags: []string{"chemistry"}}},
			{ID: "hyp_1", Label: "market dynamics", Kind: domain.NodeHypothesis,
				Confidence: domain.NewConfidenceVector(0.2, 0.2, 0.2, 0.2),
				Meta:       domain.NodeMeta{DisciplinaryTags: []string{"economics"}}},
		},
	}
	layers := svc.CreateLayers(data)
	conns := svc.InferInterLayerConnections(layers)
	if len(conns) != 0 {
		t.Fatalf("expected no connections between dissimilar nodes, got %d", len(conns))
	}
}

func TestNodeSimilarity(t *testing.T) {
	conf := domain.NewConfidenceVector(0.7, 0.7, 0.7, 0.7)
	a := domain.Node{Kind: domain.NodeEvidence, Confidence: conf,
		Meta: domain.NodeMeta{DisciplinaryTags: []string{"immunology"}}}
	b := domain.Node{Kind: domain.NodeHypothesis, Confidence: conf,
		Meta: domain.NodeMeta{DisciplinaryTags: []string{"immunology"}}}

	// Full tag overlap, equal confidence, differing kind: (0 + 1 + 0.3) / 1.6.
	want := 1.3 / 1.6
	got := nodeSimilarity(a, b)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected similarity %v, got %v", want, got)
	}

	a.Kind = domain.NodeHypothesis
	if got := nodeSimilarity(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical kind, tags and confidence must score 1, got %v", got)
	}

	b.Meta.DisciplinaryTags = nil
	if got := nodeSimilarity(a, b); got > interLayerSimilarityThreshold {
		t.Errorf("expected tagless similarity below threshold, got %v", got)
	}
}

func TestTagJaccard(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"x", "y"}, []string{"x", "y"}, 1},
		{"disjoint", []string{"x"}, []string{"y"}, 0},
		{"partial", []string{"x", "y"}, []string{"y", "z"}, 1.0 / 3.0},
		{"empty side", nil, []string{"x"}, 0},
		{"duplicates collapse", []string{"x"}, []string{"x", "x"}, 1},
	}
	for _, tc := range cases {
		if got := tagJaccard(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestAnalyzeLayer(t *testing.T) {
	svc := NewLayerService(nil, testLogger())
	conf := domain.NewConfidenceVector(0.7, 0.7, 0.7, 0.7)
	layer := domain.NetworkLayer{
		ID:              "layer_theory",
		EpistemicStatus: domain.StatusTheoretical,
		Nodes: []domain.Node{
			{ID: "a", Label: "a", Kind: domain.NodeDimension, Confidence: conf},
			{ID: "b", Label: "b", Kind: domain.NodeDimension, Confidence: conf},
			{ID: "c", Label: "c", Kind: domain.NodeDimension, Confidence: conf},
		},
		Edges: []domain.Edge{
			{ID: "ab", Source: "a", Target: "b", Weight: 0.8},
			{ID: "bc", Source: "b", Target: "c", Weight: 0.8},
			{ID: "ca", Source: "c", Target: "a", Weight: 0.8},
		},
	}

	m := svc.AnalyzeLayer(layer)
	if m.LayerID != "layer_theory" || m.NodeCount != 3 || m.EdgeCount != 3 {
		t.Fatalf("unexpected metrics identity: %+v", m)
	}
	if m.Density != 1 {
		t.Errorf("a triangle is fully dense, got %v", m.Density)
	}
	if m.ClusteringCoeff != 1 {
		t.Errorf("triangle clustering must be 1, got %v", m.ClusteringCoeff)
	}
	if m.Centralization != 0 {
		t.Errorf("regular graph has zero centralization, got %v", m.Centralization)
	}
	if len(m.CentralNodes) != 3 {
		t.Errorf("expected all 3 nodes ranked, got %d", len(m.CentralNodes))
	}
	if m.EpistemicStatus != domain.StatusTheoretical {
		t.Errorf("metrics must carry the layer status, got %s", m.EpistemicStatus)
	}
}

func TestAnalyzeCrossLayer(t *testing.T) {
	svc := NewLayerService(nil, testLogger())
	layers := []domain.NetworkLayer{
		{ID: "layer_evidence", Level: 1},
		{ID: "layer_hypothesis", Level: 2},
	}
	conns := []domain.InterLayerConnection{
		{ID: "conn_1", SourceLayer: "layer_evidence", TargetLayer: "layer_hypothesis",
			SourceNode: "ev_1", TargetNode: "hyp_1",
			Kind: domain.ConnAbstraction, Strength: 0.9, Confidence: 0.8},
		{ID: "conn_2", SourceLayer: "layer_hypothesis", TargetLayer: "layer_evidence",
			SourceNode: "hyp_2", TargetNode: "ev_2",
			Kind: domain.ConnInstantiation, Strength: 0.5, Confidence: 0.6},
	}

	analysis := svc.AnalyzeCrossLayer(layers, conns)

	if len(analysis.Flows) != 2 {
		t.Fatalf("expected 2 flows, got %d", len(analysis.Flows))
	}
	if analysis.Flows[0].ConnectionID != "conn_1" || analysis.Flows[1].ConnectionID != "conn_2" {
		t.Errorf("flows not ordered by connection id: %+v", analysis.Flows)
	}
	if !analysis.Flows[0].Upward || analysis.Flows[1].Upward {
		t.Errorf("unexpected flow directions: %+v", analysis.Flows)
	}

	upFlow := 0.9 * 0.8
	downFlow := 0.5 * 0.6
	if math.Abs(analysis.TotalFlow-(upFlow+downFlow)) > 1e-9 {
		t.Errorf("expected total flow %v, got %v", upFlow+downFlow, analysis.TotalFlow)
	}
	if math.Abs(analysis.NetUpwardFlow-(upFlow-downFlow)) > 1e-9 {
		t.Errorf("expected net upward flow %v, got %v", upFlow-downFlow, analysis.NetUpwardFlow)
	}

	// Only the strong upward connection emerges; its kind is rewritten.
	if len(analysis.EmergentProperties) != 1 {
		t.Fatalf("expected 1 emergent property, got %d", len(analysis.EmergentProperties))
	}
	if analysis.EmergentProperties[0].ID != "conn_1" || analysis.EmergentProperties[0].Kind != domain.ConnEmergence {
		t.Errorf("unexpected emergent property: %+v", analysis.EmergentProperties[0])
	}

	if len(analysis.Reductions) != 1 {
		t.Fatalf("expected 1 reduction mapping, got %d", len(analysis.Reductions))
	}
	r := analysis.Reductions[0]
	if r.HigherNode != "hyp_2" || r.LowerNode != "ev_2" || r.Strength != 0.5 {
		t.Errorf("unexpected reduction mapping: %+v", r)
	}
}
