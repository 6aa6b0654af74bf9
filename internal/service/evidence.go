package service

import (
	"regexp"
	"strings"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// Defaults used for any dimension with no matching trigger in the evidence
// text, and for all dimensions when text is absent.
const (
	DefaultEmpiricalSupport    = 0.8
	DefaultTheoreticalBasis    = 0.7
	DefaultMethodologicalRigor = 0.9
	DefaultConsensusAlignment  = 0.6
	DefaultStatisticalPower    = 0.85

	// A triggered dimension is rebuilt from this baseline plus its deltas.
	triggerBaseline = 0.5
)

// Evidence quality categories derived from the mean confidence.
const (
	QualityHigh     = "high"
	QualityModerate = "moderate"
	QualityLow      = "low"
)

// scoreDim identifies the target of a scoring rule: one of the four
// confidence dimensions or the statistical-power estimate.
type scoreDim int

const (
	dimEmpirical scoreDim = iota
	dimTheoretical
	dimRigor
	dimConsensus
	dimPower
	scoreDims
)

type scoringRule struct {
	Pattern *regexp.Regexp
	Dim     scoreDim
	Delta   float64
}

func rule(pattern string, dim scoreDim, delta float64) scoringRule {
	return scoringRule{Pattern: regexp.MustCompile(pattern), Dim: dim, Delta: delta}
}

// ScoringRuleVersion identifies the rule table; bump when rules change.
const ScoringRuleVersion = "v1"

// scoringRules is the ordered, versioned trigger table. Each rule adds its
// delta to the triggered dimension, which restarts at the 0.5 baseline; the
// result is clamped into [0,1]. Patterns match case-insensitively.
var scoringRules = []scoringRule{
	// empirical_support
	rule(`(?i)meta-analysis`, dimEmpirical, 0.30),
	rule(`(?i)systematic review`, dimEmpirical, 0.25),
	rule(`(?i)randomized controlled trial|\brct\b`, dimEmpirical, 0.25),
	rule(`(?i)longitudinal`, dimEmpirical, 0.15),
	rule(`(?i)replicat`, dimEmpirical, 0.20),
	rule(`(?i)in vitro`, dimEmpirical, -0.10),
	rule(`(?i)case study`, dimEmpirical, -0.20),
	rule(`(?i)anecdot`, dimEmpirical, -0.30),

	// theoretical_basis
	rule(`(?i)well-established theory`, dimTheoretical, 0.25),
	rule(`(?i)mechanis`, dimTheoretical, 0.20),
	rule(`(?i)theoretical framework`, dimTheoretical, 0.15),
	rule(`(?i)first principles`, dimTheoretical, 0.15),
	rule(`(?i)speculat`, dimTheoretical, -0.25),

	// methodological_rigor
	rule(`(?i)randomized controlled trial|\brct\b`, dimRigor, 0.20),
	rule(`(?i)double-blind`, dimRigor, 0.20),
	rule(`(?i)preregistered`, dimRigor, 0.15),
	rule(`(?i)p\s*<\s*0\.001`, dimRigor, 0.15),
	rule(`(?i)peer-reviewed`, dimRigor, 0.10),
	rule(`(?i)small sample`, dimRigor, -0.20),
	rule(`(?i)no control group`, dimRigor, -0.25),

	// consensus_alignment
	rule(`(?i)widely accepted`, dimConsensus, 0.25),
	rule(`(?i)consensus`, dimConsensus, 0.20),
	rule(`(?i)textbook`, dimConsensus, 0.15),
	rule(`(?i)controversi`, dimConsensus, -0.20),
	rule(`(?i)disputed`, dimConsensus, -0.25),
	rule(`(?i)fringe`, dimConsensus, -0.30),

	// statistical_power
	rule(`(?i)p\s*<\s*0\.001`, dimPower, 0.15),
	rule(`(?i)p\s*<\s*0\.05`, dimPower, 0.05),
	rule(`(?i)large cohort|large sample`, dimPower, 0.15),
	rule(`(?i)well-powered`, dimPower, 0.20),
	rule(`(?i)underpowered`, dimPower, -0.30),
	rule(`(?i)small sample`, dimPower, -0.15),
}

var scoreDefaults = [scoreDims]float64{
	DefaultEmpiricalSupport,
	DefaultTheoreticalBasis,
	DefaultMethodologicalRigor,
	DefaultConsensusAlignment,
	DefaultStatisticalPower,
}

// EvidenceScore is the output of the scoring heuristic.
type EvidenceScore struct {
	Confidence       domain.ConfidenceVector
	StatisticalPower float64
	Quality          string
}

// ScoreEvidence derives a confidence vector, a statistical-power estimate
// and an evidence-quality category from free-form evidence text. The
// heuristic is deterministic: absent text yields the documented defaults;
// a dimension with at least one trigger is recomputed as 0.5 plus the sum
// of its deltas, clamped into [0,1].
func ScoreEvidence(text string) EvidenceScore {
	var scores [scoreDims]float64
	copy(scores[:], scoreDefaults[:])

	if strings.TrimSpace(text) != "" {
		var fired [scoreDims]bool
		var deltas [scoreDims]float64
		for _, r := range scoringRules {
			if r.Pattern.MatchString(text) {
				fired[r.Dim] = true
				deltas[r.Dim] += r.Delta
			}
		}
		for d := scoreDim(0); d < scoreDims; d++ {
			if fired[d] {
				scores[d] = domain.ClampUnit(triggerBaseline + deltas[d])
			}
		}
	}

	vector := domain.ConfidenceVector{
		scores[dimEmpirical],
		scores[dimTheoretical],
		scores[dimRigor],
		scores[dimConsensus],
	}.Clamp()

	return EvidenceScore{
		Confidence:       vector,
		StatisticalPower: domain.ClampUnit(scores[dimPower]),
		Quality:          qualityFor(vector.Mean()),
	}
}

func qualityFor(mean float64) string {
	switch {
	case mean >= 0.75:
		return QualityHigh
	case mean >= 0.5:
		return QualityModerate
	default:
		return QualityLow
	}
}
