package graph

import (
	"math"
	"testing"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

func edge(id, src, dst string, w float64) domain.Edge {
	return domain.Edge{ID: id, Source: src, Target: dst, Weight: w, Confidence: w}
}

func TestDensity(t *testing.T) {
	if got := Density(1, 0); got != 0 {
		t.Fatalf("expected 0 for a single node, got %f", got)
	}
	// Triangle: 3 of 3 possible edges.
	if got := Density(3, 3); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected 1 for a complete triangle, got %f", got)
	}
	// 4 nodes, 3 edges of 6 possible.
	if got := Density(4, 3); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}

func TestClusteringCoefficient_Triangle(t *testing.T) {
	ids := []string{"a", "b", "c"}
	edges := []domain.Edge{
		edge("e1", "a", "b", 0.9),
		edge("e2", "b", "c", 0.9),
		edge("e3", "a", "c", 0.9),
	}
	if got := ClusteringCoefficient(ids, edges); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected clustering 1 for a triangle, got %f", got)
	}
}

func TestClusteringCoefficient_Path(t *testing.T) {
	ids := []string{"a", "b", "c"}
	edges := []domain.Edge{
		edge("e1", "a", "b", 0.9),
		edge("e2", "b", "c", 0.9),
	}
	if got := ClusteringCoefficient(ids, edges); got != 0 {
		t.Fatalf("expected clustering 0 for a path, got %f", got)
	}
}

func TestAvgShortestPath(t *testing.T) {
	// Two nodes joined by a full-weight edge: length 1/(0.01+1) each way.
	ids := []string{"a", "b"}
	edges := []domain.Edge{edge("e1", "a", "b", 1.0)}
	want := 1.0 / 1.01
	if got := AvgShortestPath(ids, edges); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}

	// Disconnected pair contributes nothing.
	if got := AvgShortestPath([]string{"a", "b"}, nil); got != 0 {
		t.Fatalf("expected 0 for disconnected nodes, got %f", got)
	}
}

func TestAvgShortestPath_PrefersStrongRoute(t *testing.T) {
	// Direct weak edge a-c versus strong two-hop route a-b-c.
	ids := []string{"a", "c"}
	edges := []domain.Edge{
		edge("e1", "a", "c", 0.05),
		edge("e2", "a", "b", 1.0),
		edge("e3", "b", "c", 1.0),
	}
	twoHop := 2.0 / 1.01
	if got := AvgShortestPath(ids, edges); math.Abs(got-twoHop) > 1e-9 {
		t.Fatalf("expected the strong two-hop route %f, got %f", twoHop, got)
	}
}

func TestCentralization_Star(t *testing.T) {
	// Star on 4 nodes: hub degree 3, leaves 1 each, mean 1.5.
	ids := []string{"hub", "a", "b", "c"}
	edges := []domain.Edge{
		edge("e1", "hub", "a", 0.8),
		edge("e2", "hub", "b", 0.8),
		edge("e3", "hub", "c", 0.8),
	}
	want := (3.0 - 1.5) / 3.0
	if got := Centralization(ids, edges); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}

	if got := Centralization(ids, nil); got != 0 {
		t.Fatalf("expected 0 with no edges, got %f", got)
	}
}

func TestCentralNodes(t *testing.T) {
	nodes := []domain.Node{
		{ID: "hub", Label: "Hub"},
		{ID: "a", Label: "A"},
		{ID: "b", Label: "B"},
		{ID: "c", Label: "C"},
	}
	edges := []domain.Edge{
		edge("e1", "hub", "a", 0.8),
		edge("e2", "hub", "b", 0.8),
		edge("e3", "hub", "c", 0.8),
	}

	top := CentralNodes(nodes, edges, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 results, got %d", len(top))
	}
	if top[0].NodeID != "hub" || math.Abs(top[0].Centrality-1) > 1e-9 {
		t.Fatalf("expected hub with centrality 1 first, got %+v", top[0])
	}
	// Leaves tie at 1/3; ids break the tie.
	if top[1].NodeID != "a" {
		t.Fatalf("expected a second by id tiebreak, got %s", top[1].NodeID)
	}
}
