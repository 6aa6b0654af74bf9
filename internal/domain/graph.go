package domain

import "time"

type NodeKind string

const (
	NodeRoot       NodeKind = "root"
	NodeKnowledge  NodeKind = "knowledge"
	NodeDimension  NodeKind = "dimension"
	NodeHypothesis NodeKind = "hypothesis"
	NodeEvidence   NodeKind = "evidence"
	NodeReflection NodeKind = "reflection"
)

func ValidNodeKind(k string) bool {
	switch NodeKind(k) {
	case NodeRoot, NodeKnowledge, NodeDimension, NodeHypothesis, NodeEvidence, NodeReflection:
		return true
	}
	return false
}

type EdgeKind string

const (
	EdgeSupportive         EdgeKind = "supportive"
	EdgeCausalDirect       EdgeKind = "causal_direct"
	EdgeCausalCounterfact  EdgeKind = "causal_counterfactual"
	EdgeCausalConfounded   EdgeKind = "causal_confounded"
	EdgeCorrelative        EdgeKind = "correlative"
	EdgeContradictory      EdgeKind = "contradictory"
	EdgeTemporalSequential EdgeKind = "temporal_sequential"
	EdgeTemporalPrecedence EdgeKind = "temporal_precedence"
	EdgeTemporalDelayed    EdgeKind = "temporal_delayed"
	EdgeTemporalCyclic     EdgeKind = "temporal_cyclic"
)

// SupportingEdgeKinds marks the edge kinds that count as supporting a
// hypothesis when synthesizing multi-causal hyperedges. Contradictory and
// confounded links do not support.
var SupportingEdgeKinds = map[EdgeKind]bool{
	EdgeSupportive:         true,
	EdgeCausalDirect:       true,
	EdgeCausalCounterfact:  true,
	EdgeCorrelative:        true,
	EdgeTemporalSequential: true,
	EdgeTemporalPrecedence: true,
	EdgeTemporalDelayed:    true,
}

type HyperEdgeKind string

const (
	HyperInterdisciplinary HyperEdgeKind = "interdisciplinary"
	HyperMultiCausal       HyperEdgeKind = "multi_causal"
	HyperComplexRelation   HyperEdgeKind = "complex_relationship"
)

// EvidenceMeta carries the scored properties of an evidence node.
type EvidenceMeta struct {
	StatisticalPower float64 `json:"statistical_power"`
	Quality          string  `json:"evidence_quality"`
}

// HypothesisMeta carries hypothesis-only fields. FalsificationCriteria is
// mandatory: stage 3 substitutes a generated placeholder rather than ever
// leaving it empty.
type HypothesisMeta struct {
	FalsificationCriteria string `json:"falsification_criteria"`
}

// NodeMeta is a closed metadata variant: common provenance fields plus at
// most one kind-specific block, instead of an open map.
type NodeMeta struct {
	SourceDescription string          `json:"source_description"`
	Value             string          `json:"value,omitempty"`
	ImpactScore       float64         `json:"impact_score"`
	DisciplinaryTags  []string        `json:"disciplinary_tags,omitempty"`
	Hypothesis        *HypothesisMeta `json:"hypothesis,omitempty"`
	Evidence          *EvidenceMeta   `json:"evidence,omitempty"`
}

type Node struct {
	ID         string           `json:"id"`
	Label      string           `json:"label"`
	Kind       NodeKind         `json:"kind"`
	Confidence ConfidenceVector `json:"confidence"`
	Meta       NodeMeta         `json:"metadata"`
	Embedding  []float32        `json:"-"`
	CreatedAt  time.Time        `json:"created_at"`
}

// EdgeMeta annotates an edge with classifier provenance.
type EdgeMeta struct {
	Description   string `json:"description,omitempty"`
	AnalysisError string `json:"analysis_error,omitempty"`
}

type Edge struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Target     string    `json:"target"`
	Kind       EdgeKind  `json:"kind"`
	Confidence float64   `json:"confidence"`
	Weight     float64   `json:"weight,omitempty"`
	Meta       EdgeMeta  `json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

type HyperEdge struct {
	ID         string        `json:"id"`
	Nodes      []string      `json:"nodes"`
	Kind       HyperEdgeKind `json:"kind"`
	Confidence float64       `json:"confidence"`
	Meta       EdgeMeta      `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}

// GraphStats summarizes a graph snapshot for exports and stage chaining.
type GraphStats struct {
	Stage           int              `json:"stage"`
	TotalNodes      int              `json:"total_nodes"`
	TotalEdges      int              `json:"total_edges"`
	TotalHyperEdges int              `json:"total_hyperedges"`
	NodesByKind     map[NodeKind]int `json:"nodes_by_kind"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// GraphData is the full export handed across the persistence boundary after
// each stage. Edges and hyperedges are always the validity-filtered views.
type GraphData struct {
	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
	HyperEdges []HyperEdge `json:"hyperedges"`
	Stats      GraphStats  `json:"metadata"`
}
