package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/graph"
)

const (
	// Edges below this confidence are removed in stage 5.
	pruneEdgeConfidenceFloor = 0.4

	// Two hypotheses merge when their label embeddings agree this closely,
	// or, without embeddings, when their label token sets overlap this much.
	mergeEmbeddingThreshold    = 0.9
	mergeTokenJaccardThreshold = 0.6
)

// runPruningMerging removes low-confidence edges, merges similar hypothesis
// nodes onto a representative, and drops any node left without edges. The
// root node is always retained.
func (p *Pipeline) runPruningMerging() (string, float64, error) {
	edgesPruned := p.pruneWeakEdges()
	merged := p.mergeSimilarHypotheses()
	orphansRemoved := p.removeOrphans()

	content := fmt.Sprintf("Pruned %d weak edges, merged %d hypotheses, removed %d orphaned nodes.",
		edgesPruned, merged, orphansRemoved)
	return content, p.graphConfidence(), nil
}

func (p *Pipeline) pruneWeakEdges() int {
	pruned := 0
	for _, e := range p.arena.Edges() {
		if e.Confidence < pruneEdgeConfidenceFloor {
			p.arena.RemoveEdge(e.ID)
			pruned++
		}
	}
	return pruned
}

// mergeSimilarHypotheses groups similar hypotheses with union-find, keeps
// each group's highest-confidence member as representative (ties broken by
// id), re-points all edges to it and removes the rest. Returns the number
// of nodes merged away.
func (p *Pipeline) mergeSimilarHypotheses() int {
	hypotheses := p.arena.NodesByKind(domain.NodeHypothesis)
	if len(hypotheses) < 2 {
		return 0
	}
	sort.Slice(hypotheses, func(i, j int) bool { return hypotheses[i].ID < hypotheses[j].ID })

	ids := make([]string, len(hypotheses))
	for i, h := range hypotheses {
		ids[i] = h.ID
	}
	uf := graph.NewUnionFind(ids)
	for i := 0; i < len(hypotheses); i++ {
		for j := i + 1; j < len(hypotheses); j++ {
			if hypothesesSimilar(hypotheses[i], hypotheses[j]) {
				uf.Union(hypotheses[i].ID, hypotheses[j].ID)
			}
		}
	}

	byID := make(map[string]domain.Node, len(hypotheses))
	for _, h := range hypotheses {
		byID[h.ID] = h
	}

	merged := 0
	for _, group := range uf.Components() {
		if len(group) < 2 {
			continue
		}
		sort.Strings(group)
		rep := group[0]
		for _, id := range group[1:] {
			if better(byID[id], byID[rep]) {
				rep = id
			}
		}
		for _, id := range group {
			if id == rep {
				continue
			}
			p.arena.RepointEdges(id, rep)
			p.arena.RemoveNode(id)
			merged++
		}
		p.logger.Debug("merged similar hypotheses",
			zap.String("representative", rep),
			zap.Int("group_size", len(group)))
	}
	return merged
}

// better prefers the higher mean confidence; the sorted group order already
// breaks ties by id.
func better(candidate, current domain.Node) bool {
	return candidate.Confidence.Mean() > current.Confidence.Mean()
}

func hypothesesSimilar(a, b domain.Node) bool {
	if len(a.Embedding) > 0 && len(b.Embedding) > 0 {
		return embeddingCosine(a.Embedding, b.Embedding) >= mergeEmbeddingThreshold
	}
	return tokenJaccard(a.Label, b.Label) >= mergeTokenJaccardThreshold
}

func embeddingCosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(s)) {
		t = strings.Trim(t, ".,;:!?()[]\"'")
		if t != "" {
			out[t] = true
		}
	}
	return out
}

// removeOrphans drops every node with no remaining valid edges, except root.
func (p *Pipeline) removeOrphans() int {
	deg := p.arena.Degree()
	removed := 0
	for _, n := range p.arena.Nodes() {
		if n.Kind == domain.NodeRoot {
			continue
		}
		if deg[n.ID] == 0 {
			p.arena.RemoveNode(n.ID)
			removed++
		}
	}
	return removed
}
