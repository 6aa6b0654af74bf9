// Package graph holds the in-memory reasoning graph arena and the
// structural metrics computed over it.
package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// Arena owns the nodes, edges and hyperedges of one reasoning session,
// keyed by stable string ids. The store may transiently contain dangling
// references while a stage runs; ValidEdges/ValidHyperEdges filter them at
// every export boundary. An Arena is not safe for concurrent use; each
// session serializes stage execution around its own arena.
type Arena struct {
	nodes      map[string]*domain.Node
	edges      map[string]*domain.Edge
	hyperedges map[string]*domain.HyperEdge

	nodeOrder  []string
	edgeOrder  []string
	hyperOrder []string

	edgeSeq int
}

func NewArena() *Arena {
	return &Arena{
		nodes:      make(map[string]*domain.Node),
		edges:      make(map[string]*domain.Edge),
		hyperedges: make(map[string]*domain.HyperEdge),
	}
}

func (a *Arena) AddNode(n domain.Node) (*domain.Node, error) {
	if n.ID == "" {
		return nil, fmt.Errorf("node id must not be empty")
	}
	if _, exists := a.nodes[n.ID]; exists {
		return nil, fmt.Errorf("node %s already exists", n.ID)
	}
	n.Confidence = n.Confidence.Clamp()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	a.nodes[n.ID] = &n
	a.nodeOrder = append(a.nodeOrder, n.ID)
	return &n, nil
}

func (a *Arena) Node(id string) (*domain.Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

func (a *Arena) HasNode(id string) bool {
	_, ok := a.nodes[id]
	return ok
}

// AddEdge inserts an edge. Endpoints are not required to resolve yet; the
// validity views filter dangling references later.
func (a *Arena) AddEdge(e domain.Edge) *domain.Edge {
	if e.ID == "" {
		a.edgeSeq++
		e.ID = fmt.Sprintf("edge_%d", a.edgeSeq)
	}
	e.Confidence = domain.ClampUnit(e.Confidence)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if _, exists := a.edges[e.ID]; !exists {
		a.edgeOrder = append(a.edgeOrder, e.ID)
	}
	a.edges[e.ID] = &e
	return &e
}

func (a *Arena) AddHyperEdge(h domain.HyperEdge) *domain.HyperEdge {
	if h.ID == "" {
		a.edgeSeq++
		h.ID = fmt.Sprintf("hyper_%d", a.edgeSeq)
	}
	h.Confidence = domain.ClampUnit(h.Confidence)
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	if _, exists := a.hyperedges[h.ID]; !exists {
		a.hyperOrder = append(a.hyperOrder, h.ID)
	}
	a.hyperedges[h.ID] = &h
	return &h
}

// RemoveNode deletes the node only. Edges touching it become dangling and
// are filtered by the validity views or removed by pruning.
func (a *Arena) RemoveNode(id string) {
	if _, ok := a.nodes[id]; !ok {
		return
	}
	delete(a.nodes, id)
	a.nodeOrder = removeID(a.nodeOrder, id)
}

func (a *Arena) RemoveEdge(id string) {
	if _, ok := a.edges[id]; !ok {
		return
	}
	delete(a.edges, id)
	a.edgeOrder = removeID(a.edgeOrder, id)
}

// RepointEdges rewrites every edge and hyperedge endpoint from oldID to
// newID, dropping edges that become self-loops. Used by hypothesis merging.
func (a *Arena) RepointEdges(oldID, newID string) {
	var drop []string
	for _, id := range a.edgeOrder {
		e := a.edges[id]
		if e.Source == oldID {
			e.Source = newID
		}
		if e.Target == oldID {
			e.Target = newID
		}
		if e.Source == e.Target {
			drop = append(drop, id)
		}
	}
	for _, id := range drop {
		a.RemoveEdge(id)
	}
	for _, id := range a.hyperOrder {
		h := a.hyperedges[id]
		seen := make(map[string]bool, len(h.Nodes))
		members := h.Nodes[:0]
		for _, m := range h.Nodes {
			if m == oldID {
				m = newID
			}
			if !seen[m] {
				seen[m] = true
				members = append(members, m)
			}
		}
		h.Nodes = members
	}
}

// Nodes returns all nodes in insertion order.
func (a *Arena) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(a.nodeOrder))
	for _, id := range a.nodeOrder {
		out = append(out, *a.nodes[id])
	}
	return out
}

// NodesByKind returns nodes of one kind in insertion order.
func (a *Arena) NodesByKind(kind domain.NodeKind) []domain.Node {
	var out []domain.Node
	for _, id := range a.nodeOrder {
		if n := a.nodes[id]; n.Kind == kind {
			out = append(out, *n)
		}
	}
	return out
}

// Edges returns every stored edge, including dangling ones.
func (a *Arena) Edges() []domain.Edge {
	out := make([]domain.Edge, 0, len(a.edgeOrder))
	for _, id := range a.edgeOrder {
		out = append(out, *a.edges[id])
	}
	return out
}

// ValidEdges filters edges to those whose endpoints both resolve, and
// back-fills a missing weight from confidence. Every export and traversal
// goes through this view.
func (a *Arena) ValidEdges() []domain.Edge {
	out := make([]domain.Edge, 0, len(a.edgeOrder))
	for _, id := range a.edgeOrder {
		e := a.edges[id]
		if !a.HasNode(e.Source) || !a.HasNode(e.Target) {
			continue
		}
		v := *e
		if v.Weight == 0 {
			v.Weight = v.Confidence
		}
		out = append(out, v)
	}
	return out
}

// ValidHyperEdges filters hyperedges to those with at least two resolvable
// member nodes, dropping unresolvable members.
func (a *Arena) ValidHyperEdges() []domain.HyperEdge {
	out := make([]domain.HyperEdge, 0, len(a.hyperOrder))
	for _, id := range a.hyperOrder {
		h := a.hyperedges[id]
		resolved := make([]string, 0, len(h.Nodes))
		for _, m := range h.Nodes {
			if a.HasNode(m) {
				resolved = append(resolved, m)
			}
		}
		if len(resolved) < 2 {
			continue
		}
		v := *h
		v.Nodes = resolved
		out = append(out, v)
	}
	return out
}

// EdgesBySource returns valid edges whose source is the given node.
func (a *Arena) EdgesBySource(nodeID string) []domain.Edge {
	var out []domain.Edge
	for _, e := range a.ValidEdges() {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Degree returns the valid-edge degree of each node id.
func (a *Arena) Degree() map[string]int {
	deg := make(map[string]int, len(a.nodes))
	for _, e := range a.ValidEdges() {
		deg[e.Source]++
		deg[e.Target]++
	}
	return deg
}

// Snapshot exports the graph through the validity views, stamped with the
// producing stage.
func (a *Arena) Snapshot(stage int) *domain.GraphData {
	nodes := a.Nodes()
	edges := a.ValidEdges()
	hypers := a.ValidHyperEdges()

	byKind := make(map[domain.NodeKind]int)
	for _, n := range nodes {
		byKind[n.Kind]++
	}

	return &domain.GraphData{
		Nodes:      nodes,
		Edges:      edges,
		HyperEdges: hypers,
		Stats: domain.GraphStats{
			Stage:           stage,
			TotalNodes:      len(nodes),
			TotalEdges:      len(edges),
			TotalHyperEdges: len(hypers),
			NodesByKind:     byKind,
			GeneratedAt:     time.Now(),
		},
	}
}

// Components returns the connected components over the valid-edge view,
// each sorted by node id for deterministic output.
func (a *Arena) Components(nodeIDs []string) [][]string {
	include := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		include[id] = true
	}
	uf := NewUnionFind(nodeIDs)
	for _, e := range a.ValidEdges() {
		if include[e.Source] && include[e.Target] {
			uf.Union(e.Source, e.Target)
		}
	}
	comps := uf.Components()
	for _, c := range comps {
		sort.Strings(c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
