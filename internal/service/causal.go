package service

import (
	"strings"
	"time"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// Temporal classification thresholds.
const (
	sequentialWindow = 5 * time.Minute
	delayedThreshold = 7 * 24 * time.Hour
)

// ClassifyCausal maps free-form causal-analysis text onto an edge kind.
// The match order is fixed; anything unmatched is supportive, the default.
func ClassifyCausal(analysis string) domain.EdgeKind {
	text := strings.ToLower(analysis)
	switch {
	case strings.Contains(text, "direct causal") || strings.Contains(text, "causal_direct"):
		return domain.EdgeCausalDirect
	case strings.Contains(text, "counterfactual"):
		return domain.EdgeCausalCounterfact
	case strings.Contains(text, "confound"):
		return domain.EdgeCausalConfounded
	case strings.Contains(text, "contradict"):
		return domain.EdgeContradictory
	case strings.Contains(text, "correlat"):
		return domain.EdgeCorrelative
	default:
		return domain.EdgeSupportive
	}
}

// ClassifyTemporal compares the creation timestamps of the two endpoints.
// The sequential window applies to the absolute difference, so a target
// created shortly before its source still reads as sequential; only a
// target predating its source by more than the window flags a potential
// causal loop.
func ClassifyTemporal(source, target time.Time) domain.EdgeKind {
	diff := target.Sub(source)
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < sequentialWindow:
		return domain.EdgeTemporalSequential
	case diff < 0:
		return domain.EdgeTemporalCyclic
	case diff > delayedThreshold:
		return domain.EdgeTemporalDelayed
	default:
		return domain.EdgeTemporalPrecedence
	}
}

// ClassifyEdge resolves the final edge kind for a hypothesis/evidence pair.
// The causal result wins unless it is the supportive default, in which case
// the temporal result applies. Classification never fails the pipeline: a
// failed analysis call degrades to supportive with an analysis_error
// annotation.
func ClassifyEdge(analysis string, analysisErr error, source, target domain.Node) (domain.EdgeKind, domain.EdgeMeta) {
	if analysisErr != nil {
		return domain.EdgeSupportive, domain.EdgeMeta{AnalysisError: analysisErr.Error()}
	}

	causal := ClassifyCausal(analysis)
	if causal != domain.EdgeSupportive {
		return causal, domain.EdgeMeta{Description: "causal classification"}
	}
	return ClassifyTemporal(source.CreatedAt, target.CreatedAt), domain.EdgeMeta{Description: "temporal classification"}
}
