package service

import (
	"testing"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/graph"
)

func addTestNode(t *testing.T, a *graph.Arena, n domain.Node) {
	t.Helper()
	if _, err := a.AddNode(n); err != nil {
		t.Fatalf("add node %s: %v", n.ID, err)
	}
}

func TestSynthesizeHyperedges_Interdisciplinary(t *testing.T) {
	a := graph.NewArena()
	for _, id := range []string{"ev_1", "ev_2", "ev_3", "ev_4"} {
		addTestNode(t, a, domain.Node{
			ID:   id,
			Kind: domain.NodeEvidence,
			Meta: domain.NodeMeta{DisciplinaryTags: []string{"immunology"}},
		})
	}

	created := SynthesizeHyperedges(a)
	if len(created) != 1 {
		t.Fatalf("expected exactly 1 hyperedge, got %d", len(created))
	}
	h := created[0]
	if h.Kind != domain.HyperInterdisciplinary {
		t.Fatalf("expected interdisciplinary kind, got %s", h.Kind)
	}
	if h.ID != "hyper_inter_immunology" {
		t.Fatalf("unexpected id %s", h.ID)
	}
	if len(h.Nodes) != 4 {
		t.Fatalf("expected all 4 evidence nodes as members, got %v", h.Nodes)
	}
	if h.Confidence != interdisciplinaryConfidence {
		t.Fatalf("expected confidence %f, got %f", interdisciplinaryConfidence, h.Confidence)
	}
}

func TestSynthesizeHyperedges_MultiCausal(t *testing.T) {
	a := graph.NewArena()
	addTestNode(t, a, domain.Node{ID: "hyp_1", Kind: domain.NodeHypothesis})
	addTestNode(t, a, domain.Node{ID: "ev_a", Kind: domain.NodeEvidence})
	addTestNode(t, a, domain.Node{ID: "ev_b", Kind: domain.NodeEvidence})
	a.AddEdge(domain.Edge{ID: "e1", Source: "hyp_1", Target: "ev_a", Kind: domain.EdgeSupportive, Confidence: 0.7})
	a.AddEdge(domain.Edge{ID: "e2", Source: "hyp_1", Target: "ev_b", Kind: domain.EdgeCausalDirect, Confidence: 0.7})

	created := SynthesizeHyperedges(a)
	if len(created) != 1 {
		t.Fatalf("expected 1 hyperedge, got %d", len(created))
	}
	h := created[0]
	if h.Kind != domain.HyperMultiCausal {
		t.Fatalf("expected multi_causal, got %s", h.Kind)
	}
	if h.ID != "hyper_multi_hyp_1" {
		t.Fatalf("unexpected id %s", h.ID)
	}
	if len(h.Nodes) != 3 {
		t.Fatalf("expected hypothesis plus 2 evidence members, got %v", h.Nodes)
	}
}

func TestSynthesizeHyperedges_MultiCausal_IgnoresContradictory(t *testing.T) {
	a := graph.NewArena()
	addTestNode(t, a, domain.Node{ID: "hyp_1", Kind: domain.NodeHypothesis})
	addTestNode(t, a, domain.Node{ID: "ev_a", Kind: domain.NodeEvidence})
	addTestNode(t, a, domain.Node{ID: "ev_b", Kind: domain.NodeEvidence})
	a.AddEdge(domain.Edge{ID: "e1", Source: "hyp_1", Target: "ev_a", Kind: domain.EdgeSupportive, Confidence: 0.7})
	a.AddEdge(domain.Edge{ID: "e2", Source: "hyp_1", Target: "ev_b", Kind: domain.EdgeContradictory, Confidence: 0.7})

	if created := SynthesizeHyperedges(a); len(created) != 0 {
		t.Fatalf("expected no hyperedges with only one supporting edge, got %d", len(created))
	}
}

func TestSynthesizeHyperedges_ComplexCluster(t *testing.T) {
	a := graph.NewArena()
	high := domain.ConfidenceVector{0.9, 0.9, 0.9, 0.9}
	for _, id := range []string{"ev_1", "ev_2", "ev_3"} {
		addTestNode(t, a, domain.Node{ID: id, Kind: domain.NodeEvidence, Confidence: high})
	}
	// A low-confidence node stays out of the cluster.
	addTestNode(t, a, domain.Node{ID: "ev_low", Kind: domain.NodeEvidence,
		Confidence: domain.ConfidenceVector{0.3, 0.3, 0.3, 0.3}})

	created := SynthesizeHyperedges(a)
	if len(created) != 1 {
		t.Fatalf("expected 1 hyperedge, got %d", len(created))
	}
	h := created[0]
	if h.Kind != domain.HyperComplexRelation {
		t.Fatalf("expected complex_relationship, got %s", h.Kind)
	}
	if len(h.Nodes) != 3 {
		t.Fatalf("expected 3 cluster members, got %v", h.Nodes)
	}
}

func TestSynthesizeHyperedges_Idempotent(t *testing.T) {
	a := graph.NewArena()
	for _, id := range []string{"ev_1", "ev_2"} {
		addTestNode(t, a, domain.Node{
			ID:   id,
			Kind: domain.NodeEvidence,
			Meta: domain.NodeMeta{DisciplinaryTags: []string{"physics"}},
		})
	}

	SynthesizeHyperedges(a)
	SynthesizeHyperedges(a)

	if got := len(a.ValidHyperEdges()); got != 1 {
		t.Fatalf("expected re-synthesis to be idempotent, got %d hyperedges", got)
	}
}
