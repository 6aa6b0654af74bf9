package graph

import (
	"container/heap"
	"sort"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// adjacency builds an undirected weighted adjacency map over the given
// edge set, keeping the strongest weight for parallel edges.
func adjacency(edges []domain.Edge) map[string]map[string]float64 {
	adj := make(map[string]map[string]float64)
	add := func(a, b string, w float64) {
		if adj[a] == nil {
			adj[a] = make(map[string]float64)
		}
		if w > adj[a][b] {
			adj[a][b] = w
		}
	}
	for _, e := range edges {
		w := e.Weight
		if w == 0 {
			w = e.Confidence
		}
		add(e.Source, e.Target, w)
		add(e.Target, e.Source, w)
	}
	return adj
}

// Density is the ratio of edges present to edges possible in an
// undirected simple graph.
func Density(nodeCount, edgeCount int) float64 {
	if nodeCount < 2 {
		return 0
	}
	possible := float64(nodeCount*(nodeCount-1)) / 2
	d := float64(edgeCount) / possible
	return domain.ClampUnit(d)
}

// ClusteringCoefficient is the mean local clustering coefficient:
// triangle counting over the unweighted adjacency derived from the layer's
// weighted edge set.
func ClusteringCoefficient(nodeIDs []string, edges []domain.Edge) float64 {
	adj := adjacency(edges)
	if len(nodeIDs) == 0 {
		return 0
	}
	var total float64
	for _, id := range nodeIDs {
		neighbors := make([]string, 0, len(adj[id]))
		for nb := range adj[id] {
			neighbors = append(neighbors, nb)
		}
		k := len(neighbors)
		if k < 2 {
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if _, ok := adj[neighbors[i]][neighbors[j]]; ok {
					links++
				}
			}
		}
		total += float64(2*links) / float64(k*(k-1))
	}
	return total / float64(len(nodeIDs))
}

// edgeLength converts an edge weight into a Dijkstra distance: stronger
// edges are shorter paths.
func edgeLength(weight float64) float64 {
	return 1.0 / (0.01 + domain.ClampUnit(weight))
}

type pqItem struct {
	id   string
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)        { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra returns shortest distances from source over the adjacency map.
func dijkstra(source string, adj map[string]map[string]float64) map[string]float64 {
	dist := map[string]float64{source: 0}
	pq := &priorityQueue{{id: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if cur.dist > dist[cur.id] {
			continue
		}
		for nb, w := range adj[cur.id] {
			next := cur.dist + edgeLength(w)
			if d, seen := dist[nb]; !seen || next < d {
				dist[nb] = next
				heap.Push(pq, pqItem{id: nb, dist: next})
			}
		}
	}
	return dist
}

// AvgShortestPath runs Dijkstra from every node and averages the distance
// over all reachable ordered pairs. Returns 0 when no pair is reachable.
func AvgShortestPath(nodeIDs []string, edges []domain.Edge) float64 {
	adj := adjacency(edges)
	var total float64
	var pairs int
	for _, src := range nodeIDs {
		dist := dijkstra(src, adj)
		for _, dst := range nodeIDs {
			if dst == src {
				continue
			}
			if d, ok := dist[dst]; ok {
				total += d
				pairs++
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// Centralization measures how dominated the graph is by its highest-degree
// node: (max degree - mean degree) / max degree.
func Centralization(nodeIDs []string, edges []domain.Edge) float64 {
	if len(nodeIDs) == 0 {
		return 0
	}
	adj := adjacency(edges)
	maxDeg, sum := 0, 0
	for _, id := range nodeIDs {
		d := len(adj[id])
		sum += d
		if d > maxDeg {
			maxDeg = d
		}
	}
	if maxDeg == 0 {
		return 0
	}
	mean := float64(sum) / float64(len(nodeIDs))
	return (float64(maxDeg) - mean) / float64(maxDeg)
}

// CentralNodes ranks nodes by normalized degree (degree / (n-1)),
// descending, ties broken by id, truncated to topN.
func CentralNodes(nodes []domain.Node, edges []domain.Edge, topN int) []domain.CentralNode {
	if len(nodes) < 2 {
		return nil
	}
	adj := adjacency(edges)
	out := make([]domain.CentralNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, domain.CentralNode{
			NodeID:     n.ID,
			Label:      n.Label,
			Centrality: float64(len(adj[n.ID])) / float64(len(nodes)-1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Centrality != out[j].Centrality {
			return out[i].Centrality > out[j].Centrality
		}
		return out[i].NodeID < out[j].NodeID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
