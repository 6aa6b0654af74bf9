package domain

import "math"

// ConfidenceVector dimensions, in order.
const (
	DimEmpiricalSupport = iota
	DimTheoreticalBasis
	DimMethodologicalRigor
	DimConsensusAlignment
	ConfidenceDimensions
)

// ConfidenceVector scores a node along four epistemic dimensions:
// [empirical_support, theoretical_basis, methodological_rigor, consensus_alignment].
// Every component is kept in [0,1] by Clamp after any heuristic update.
type ConfidenceVector [ConfidenceDimensions]float64

func NewConfidenceVector(empirical, theoretical, rigor, consensus float64) ConfidenceVector {
	return ConfidenceVector{empirical, theoretical, rigor, consensus}.Clamp()
}

// ClampUnit projects a scalar into [0,1], mapping NaN to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp returns a copy with every component projected into [0,1].
func (c ConfidenceVector) Clamp() ConfidenceVector {
	for i := range c {
		c[i] = ClampUnit(c[i])
	}
	return c
}

// Mean returns the scalar average of the four components.
func (c ConfidenceVector) Mean() float64 {
	var sum float64
	for _, v := range c {
		sum += v
	}
	return sum / ConfidenceDimensions
}

// Cosine returns the cosine similarity of two vectors, 0 when either is zero.
func (c ConfidenceVector) Cosine(other ConfidenceVector) float64 {
	var dot, na, nb float64
	for i := range c {
		dot += c[i] * other[i]
		na += c[i] * c[i]
		nb += other[i] * other[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// WeightedStageAverage aggregates per-stage confidence scores into a single
// session confidence. Later stages carry linearly increasing weight
// (weight = position+1) so downstream synthesis dominates early scaffolding.
func WeightedStageAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum, weightSum float64
	for i, s := range scores {
		w := float64(i + 1)
		sum += ClampUnit(s) * w
		weightSum += w
	}
	return sum / weightSum
}
