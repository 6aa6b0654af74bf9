package domain

import "fmt"

type LayerKind string

const (
	LayerEvidence    LayerKind = "evidence"
	LayerHypothesis  LayerKind = "hypothesis"
	LayerTheory      LayerKind = "theory"
	LayerMetaTheory  LayerKind = "meta_theory"
	LayerMethodology LayerKind = "methodology"
)

type EpistemicStatus string

const (
	StatusEmpirical       EpistemicStatus = "empirical"
	StatusTheoretical     EpistemicStatus = "theoretical"
	StatusMetaTheoretical EpistemicStatus = "meta_theoretical"
)

// EpistemicStatusFor derives a layer's epistemic status from its kind.
func EpistemicStatusFor(kind LayerKind) EpistemicStatus {
	switch kind {
	case LayerEvidence:
		return StatusEmpirical
	case LayerHypothesis, LayerTheory:
		return StatusTheoretical
	default:
		return StatusMetaTheoretical
	}
}

// NetworkLayer is a partition of the graph at one abstraction level,
// holding the matching nodes and their induced edges.
type NetworkLayer struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Level           int             `json:"level"`
	Kind            LayerKind       `json:"kind"`
	Nodes           []Node          `json:"nodes"`
	Edges           []Edge          `json:"edges"`
	Complexity      float64         `json:"complexity"`
	EpistemicStatus EpistemicStatus `json:"epistemic_status"`
}

type ConnectionKind string

const (
	ConnAbstraction    ConnectionKind = "abstraction"
	ConnInstantiation  ConnectionKind = "instantiation"
	ConnEmergence      ConnectionKind = "emergence"
	ConnReduction      ConnectionKind = "reduction"
	ConnCorrespondence ConnectionKind = "correspondence"
)

// ConnectionKindFor derives the connection kind from the relative levels of
// the two layers: lower to higher is abstraction, higher to lower is
// instantiation, equal levels correspond.
func ConnectionKindFor(sourceLevel, targetLevel int) ConnectionKind {
	switch {
	case sourceLevel < targetLevel:
		return ConnAbstraction
	case sourceLevel > targetLevel:
		return ConnInstantiation
	default:
		return ConnCorrespondence
	}
}

type InterLayerConnection struct {
	ID            string         `json:"id"`
	SourceLayer   string         `json:"source_layer"`
	TargetLayer   string         `json:"target_layer"`
	SourceNode    string         `json:"source_node"`
	TargetNode    string         `json:"target_node"`
	Kind          ConnectionKind `json:"kind"`
	Strength      float64        `json:"strength"`
	Confidence    float64        `json:"confidence"`
	Bidirectional bool           `json:"bidirectional"`
}

// LayerDefinition selects nodes into a layer.
type LayerDefinition struct {
	ID      string
	Name    string
	Level   int
	Kind    LayerKind
	Matches func(n Node) bool
}

// LayerDefinitionSpec is the wire-friendly form of a layer definition:
// a node joins the layer when its kind is listed and its impact score
// reaches MinImpact.
type LayerDefinitionSpec struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Level     int        `json:"level"`
	Kind      LayerKind  `json:"kind"`
	NodeKinds []NodeKind `json:"node_kinds"`
	MinImpact float64    `json:"min_impact,omitempty"`
}

// CompileLayerDefinitions validates specs and turns them into matchable
// definitions.
func CompileLayerDefinitions(specs []LayerDefinitionSpec) ([]LayerDefinition, error) {
	defs := make([]LayerDefinition, 0, len(specs))
	for i, spec := range specs {
		if spec.ID == "" {
			return nil, NewValidationError("definitions", fmt.Sprintf("definition %d has no id", i))
		}
		if spec.Level < 1 {
			return nil, NewValidationError("definitions", fmt.Sprintf("definition %s: level must be positive", spec.ID))
		}
		if len(spec.NodeKinds) == 0 {
			return nil, NewValidationError("definitions", fmt.Sprintf("definition %s lists no node kinds", spec.ID))
		}
		for _, k := range spec.NodeKinds {
			if !ValidNodeKind(string(k)) {
				return nil, NewValidationError("definitions", fmt.Sprintf("definition %s: unknown node kind %q", spec.ID, k))
			}
		}

		kinds := make(map[NodeKind]bool, len(spec.NodeKinds))
		for _, k := range spec.NodeKinds {
			kinds[k] = true
		}
		minImpact := spec.MinImpact
		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		defs = append(defs, LayerDefinition{
			ID:    spec.ID,
			Name:  name,
			Level: spec.Level,
			Kind:  spec.Kind,
			Matches: func(n Node) bool {
				return kinds[n.Kind] && n.Meta.ImpactScore >= minImpact
			},
		})
	}
	return defs, nil
}

// CentralNode is a node ranked by normalized degree within a layer.
type CentralNode struct {
	NodeID     string  `json:"node_id"`
	Label      string  `json:"label"`
	Centrality float64 `json:"centrality"`
}

// LayerMetrics holds the per-layer structural analysis.
type LayerMetrics struct {
	LayerID         string          `json:"layer_id"`
	NodeCount       int             `json:"node_count"`
	EdgeCount       int             `json:"edge_count"`
	Density         float64         `json:"density"`
	ClusteringCoeff float64         `json:"clustering_coefficient"`
	AvgPathLength   float64         `json:"avg_path_length"`
	Centralization  float64         `json:"centralization"`
	CentralNodes    []CentralNode   `json:"central_nodes"`
	EpistemicStatus EpistemicStatus `json:"epistemic_status"`
}

// InformationFlow estimates the directed flow along one inter-layer
// connection: flow = strength * confidence, direction from relative level.
type InformationFlow struct {
	ConnectionID string  `json:"connection_id"`
	FromLayer    string  `json:"from_layer"`
	ToLayer      string  `json:"to_layer"`
	Flow         float64 `json:"flow"`
	Upward       bool    `json:"upward"`
}

// ReductionMapping records a higher-level node grounded in a lower one.
type ReductionMapping struct {
	HigherNode string  `json:"higher_node"`
	LowerNode  string  `json:"lower_node"`
	Strength   float64 `json:"strength"`
}

// CrossLayerAnalysis aggregates emergent properties, reduction mappings and
// information-flow estimates across all inter-layer connections.
type CrossLayerAnalysis struct {
	EmergentProperties []InterLayerConnection `json:"emergent_properties"`
	Reductions         []ReductionMapping     `json:"reductions"`
	Flows              []InformationFlow      `json:"information_flows"`
	TotalFlow          float64                `json:"total_flow"`
	NetUpwardFlow      float64                `json:"net_upward_flow"`
}
