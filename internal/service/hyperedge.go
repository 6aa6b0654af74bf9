package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/graph"
)

// Fixed confidences of the three synthesis rules.
const (
	interdisciplinaryConfidence = 0.7
	multiCausalConfidence       = 0.8
	complexClusterConfidence    = 0.85

	complexClusterMinConfidence = 0.8
	complexClusterMinNodes      = 3
)

// SynthesizeHyperedges derives multi-node hyperedges from the current graph
// with three independent, additive rules: shared disciplinary tags across
// evidence nodes, multi-causal support for a hypothesis, and clusters of
// high-confidence evidence. Deterministic ids make the operation idempotent
// when re-run over the same graph.
func SynthesizeHyperedges(a *graph.Arena) []domain.HyperEdge {
	var created []domain.HyperEdge
	created = append(created, synthesizeInterdisciplinary(a)...)
	created = append(created, synthesizeMultiCausal(a)...)
	created = append(created, synthesizeComplexClusters(a)...)
	return created
}

// synthesizeInterdisciplinary groups evidence nodes by disciplinary tag;
// any tag shared by at least two nodes yields one hyperedge over all of them.
func synthesizeInterdisciplinary(a *graph.Arena) []domain.HyperEdge {
	byTag := make(map[string][]string)
	for _, n := range a.NodesByKind(domain.NodeEvidence) {
		for _, tag := range n.Meta.DisciplinaryTags {
			byTag[tag] = append(byTag[tag], n.ID)
		}
	}

	tags := make([]string, 0, len(byTag))
	for tag, members := range byTag {
		if len(members) >= 2 {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	var out []domain.HyperEdge
	for _, tag := range tags {
		h := a.AddHyperEdge(domain.HyperEdge{
			ID:         "hyper_inter_" + slug(tag),
			Nodes:      byTag[tag],
			Kind:       domain.HyperInterdisciplinary,
			Confidence: interdisciplinaryConfidence,
			Meta:       domain.EdgeMeta{Description: fmt.Sprintf("evidence sharing disciplinary tag %q", tag)},
		})
		out = append(out, *h)
	}
	return out
}

// synthesizeMultiCausal emits one hyperedge per hypothesis with at least
// two evidence nodes connected by a supporting edge.
func synthesizeMultiCausal(a *graph.Arena) []domain.HyperEdge {
	hypotheses := a.NodesByKind(domain.NodeHypothesis)
	sort.Slice(hypotheses, func(i, j int) bool { return hypotheses[i].ID < hypotheses[j].ID })

	var out []domain.HyperEdge
	for _, hyp := range hypotheses {
		var evidence []string
		for _, e := range a.EdgesBySource(hyp.ID) {
			if !domain.SupportingEdgeKinds[e.Kind] {
				continue
			}
			if target, ok := a.Node(e.Target); ok && target.Kind == domain.NodeEvidence {
				evidence = append(evidence, e.Target)
			}
		}
		if len(evidence) < 2 {
			continue
		}
		sort.Strings(evidence)
		h := a.AddHyperEdge(domain.HyperEdge{
			ID:         "hyper_multi_" + hyp.ID,
			Nodes:      append([]string{hyp.ID}, evidence...),
			Kind:       domain.HyperMultiCausal,
			Confidence: multiCausalConfidence,
			Meta:       domain.EdgeMeta{Description: "hypothesis supported by multiple evidence nodes"},
		})
		out = append(out, *h)
	}
	return out
}

// synthesizeComplexClusters emits a single hyperedge over all evidence
// nodes whose mean confidence exceeds 0.8, when at least three qualify.
func synthesizeComplexClusters(a *graph.Arena) []domain.HyperEdge {
	var members []string
	for _, n := range a.NodesByKind(domain.NodeEvidence) {
		if n.Confidence.Mean() > complexClusterMinConfidence {
			members = append(members, n.ID)
		}
	}
	if len(members) < complexClusterMinNodes {
		return nil
	}
	sort.Strings(members)
	h := a.AddHyperEdge(domain.HyperEdge{
		ID:         "hyper_complex_evidence",
		Nodes:      members,
		Kind:       domain.HyperComplexRelation,
		Confidence: complexClusterConfidence,
		Meta:       domain.EdgeMeta{Description: "high-confidence evidence cluster"},
	})
	return []domain.HyperEdge{*h}
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
