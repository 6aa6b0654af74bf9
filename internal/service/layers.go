package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/graph"
)

const (
	interLayerSimilarityThreshold = 0.6
	emergenceStrengthThreshold    = 0.8
	centralNodesPerLayer          = 5
)

// LayerService partitions a graph into abstraction layers and analyzes
// their internal structure and cross-layer relationships.
type LayerService struct {
	definitions []domain.LayerDefinition
	logger      *zap.Logger
}

func NewLayerService(definitions []domain.LayerDefinition, logger *zap.Logger) *LayerService {
	if len(definitions) == 0 {
		definitions = DefaultLayerDefinitions()
	}
	return &LayerService{definitions: definitions, logger: logger}
}

// DefaultLayerDefinitions maps node kinds to four abstraction levels, from
// empirical evidence up to methodology.
func DefaultLayerDefinitions() []domain.LayerDefinition {
	return []domain.LayerDefinition{
		{
			ID: "layer_evidence", Name: "Evidence", Level: 1, Kind: domain.LayerEvidence,
			Matches: func(n domain.Node) bool { return n.Kind == domain.NodeEvidence },
		},
		{
			ID: "layer_hypothesis", Name: "Hypotheses", Level: 2, Kind: domain.LayerHypothesis,
			Matches: func(n domain.Node) bool { return n.Kind == domain.NodeHypothesis },
		},
		{
			ID: "layer_theory", Name: "Theoretical Framing", Level: 3, Kind: domain.LayerTheory,
			Matches: func(n domain.Node) bool {
				switch n.Kind {
				case domain.NodeRoot, domain.NodeKnowledge, domain.NodeDimension, domain.NodeReflection:
					return true
				}
				return false
			},
		},
		{
			ID: "layer_methodology", Name: "Methodology", Level: 4, Kind: domain.LayerMethodology,
			Matches: func(n domain.Node) bool {
				return n.Kind == domain.NodeDimension && n.Meta.ImpactScore >= 0.9
			},
		},
	}
}

// CreateLayers partitions the graph into layers using the service's
// definitions. Each layer holds its matching nodes and the edges induced
// among them; complexity is the edge-to-node ratio clamped to the unit
// interval.
func (s *LayerService) CreateLayers(data *domain.GraphData) []domain.NetworkLayer {
	return s.CreateLayersWith(data, s.definitions)
}

// CreateLayersWith partitions the graph with caller-supplied definitions,
// for requests that override the defaults.
func (s *LayerService) CreateLayersWith(data *domain.GraphData, definitions []domain.LayerDefinition) []domain.NetworkLayer {
	layers := make([]domain.NetworkLayer, 0, len(definitions))
	for _, def := range definitions {
		var nodes []domain.Node
		include := make(map[string]bool)
		for _, n := range data.Nodes {
			if def.Matches(n) {
				nodes = append(nodes, n)
				include[n.ID] = true
			}
		}
		var edges []domain.Edge
		for _, e := range data.Edges {
			if include[e.Source] && include[e.Target] {
				edges = append(edges, e)
			}
		}
		nodeCount := len(nodes)
		if nodeCount == 0 {
			nodeCount = 1
		}
		layers = append(layers, domain.NetworkLayer{
			ID:              def.ID,
			Name:            def.Name,
			Level:           def.Level,
			Kind:            def.Kind,
			Nodes:           nodes,
			Edges:           edges,
			Complexity:      domain.ClampUnit(float64(len(edges)) / float64(nodeCount)),
			EpistemicStatus: domain.EpistemicStatusFor(def.Kind),
		})
	}
	return layers
}

// InferInterLayerConnections compares every node pair across distinct layers
// and connects those whose similarity clears the threshold. Similarity blends
// kind agreement, disciplinary-tag overlap and confidence proximity.
func (s *LayerService) InferInterLayerConnections(layers []domain.NetworkLayer) []domain.InterLayerConnection {
	var conns []domain.InterLayerConnection
	seq := 0
	for i := 0; i < len(layers); i++ {
		for j := i + 1; j < len(layers); j++ {
			a, b := layers[i], layers[j]
			for _, na := range a.Nodes {
				for _, nb := range b.Nodes {
					sim := nodeSimilarity(na, nb)
					if sim <= interLayerSimilarityThreshold {
						continue
					}
					kind := domain.ConnectionKindFor(a.Level, b.Level)
					seq++
					conns = append(conns, domain.InterLayerConnection{
						ID:            fmt.Sprintf("conn_%d", seq),
						SourceLayer:   a.ID,
						TargetLayer:   b.ID,
						SourceNode:    na.ID,
						TargetNode:    nb.ID,
						Kind:          kind,
						Strength:      sim,
						Confidence:    (na.Confidence.Mean() + nb.Confidence.Mean()) / 2,
						Bidirectional: kind == domain.ConnCorrespondence,
					})
				}
			}
		}
	}
	if s.logger != nil {
		s.logger.Debug("inferred inter-layer connections", zap.Int("count", len(conns)))
	}
	return conns
}

// nodeSimilarity is a weighted blend normalized to [0, 1]: 0.3 for matching
// node kind, up to 1.0 for tag overlap, 0.3 for confidence proximity,
// divided by the 1.6 maximum.
func nodeSimilarity(a, b domain.Node) float64 {
	score := 0.0
	if a.Kind == b.Kind {
		score += 0.3
	}
	score += tagJaccard(a.Meta.DisciplinaryTags, b.Meta.DisciplinaryTags)
	diff := a.Confidence.Mean() - b.Confidence.Mean()
	if diff < 0 {
		diff = -diff
	}
	score += 0.3 * (1 - diff)
	return score / 1.6
}

func tagJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	intersection := 0
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		if setB[t] {
			continue
		}
		setB[t] = true
		if setA[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// AnalyzeLayer computes the structural metrics of a single layer.
func (s *LayerService) AnalyzeLayer(layer domain.NetworkLayer) domain.LayerMetrics {
	ids := make([]string, 0, len(layer.Nodes))
	for _, n := range layer.Nodes {
		ids = append(ids, n.ID)
	}
	return domain.LayerMetrics{
		LayerID:         layer.ID,
		NodeCount:       len(layer.Nodes),
		EdgeCount:       len(layer.Edges),
		Density:         graph.Density(len(layer.Nodes), len(layer.Edges)),
		ClusteringCoeff: graph.ClusteringCoefficient(ids, layer.Edges),
		AvgPathLength:   graph.AvgShortestPath(ids, layer.Edges),
		Centralization:  graph.Centralization(ids, layer.Edges),
		CentralNodes:    graph.CentralNodes(layer.Nodes, layer.Edges, centralNodesPerLayer),
		EpistemicStatus: layer.EpistemicStatus,
	}
}

// AnalyzeCrossLayer derives information flows, emergent properties and
// reduction mappings from the inter-layer connections.
func (s *LayerService) AnalyzeCrossLayer(layers []domain.NetworkLayer, conns []domain.InterLayerConnection) domain.CrossLayerAnalysis {
	levels := make(map[string]int, len(layers))
	for _, l := range layers {
		levels[l.ID] = l.Level
	}

	analysis := domain.CrossLayerAnalysis{}
	for _, c := range conns {
		upward := levels[c.TargetLayer] > levels[c.SourceLayer]
		flow := c.Strength * c.Confidence
		analysis.Flows = append(analysis.Flows, domain.InformationFlow{
			ConnectionID: c.ID,
			FromLayer:    c.SourceLayer,
			ToLayer:      c.TargetLayer,
			Flow:         flow,
			Upward:       upward,
		})
		analysis.TotalFlow += flow
		if upward {
			analysis.NetUpwardFlow += flow
		} else {
			analysis.NetUpwardFlow -= flow
		}

		if upward && c.Strength > emergenceStrengthThreshold {
			emergent := c
			emergent.Kind = domain.ConnEmergence
			analysis.EmergentProperties = append(analysis.EmergentProperties, emergent)
		}
		if c.Kind == domain.ConnInstantiation {
			analysis.Reductions = append(analysis.Reductions, domain.ReductionMapping{
				HigherNode: c.SourceNode,
				LowerNode:  c.TargetNode,
				Strength:   c.Strength,
			})
		}
	}

	sort.Slice(analysis.Flows, func(i, j int) bool {
		return analysis.Flows[i].ConnectionID < analysis.Flows[j].ConnectionID
	})
	return analysis
}
