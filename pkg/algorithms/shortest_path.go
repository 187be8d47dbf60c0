package algorithms

import (
	"container/heap"
	"math"
	"slices"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// ShortestPath finds a minimum-hop path between two nodes using bidirectional
// BFS. Returns nil when either node is missing or no path exists.
func ShortestPath(g *graph.Graph, startID, endID graph.NodeID) []graph.NodeID {
	if !g.HasNode(startID) || !g.HasNode(endID) {
		return nil
	}
	if startID == endID {
		return []graph.NodeID{startID}
	}

	// node -> parent, the root is its own parent
	forward := map[graph.NodeID]graph.NodeID{startID: startID}
	backward := map[graph.NodeID]graph.NodeID{endID: endID}
	forwardQueue := []graph.NodeID{startID}
	backwardQueue := []graph.NodeID{endID}

	for len(forwardQueue) > 0 && len(backwardQueue) > 0 {
		var meeting graph.NodeID
		var met bool

		forwardQueue, meeting, met = expandFrontier(g, forwardQueue, forward, backward)
		if met {
			return reconstructPath(meeting, forward, backward)
		}

		backwardQueue, meeting, met = expandFrontier(g, backwardQueue, backward, forward)
		if met {
			return reconstructPath(meeting, forward, backward)
		}
	}

	return nil
}

// expandFrontier expands one BFS level and reports the node where the two
// searches meet, if any.
func expandFrontier(
	g *graph.Graph,
	queue []graph.NodeID,
	visited map[graph.NodeID]graph.NodeID,
	otherVisited map[graph.NodeID]graph.NodeID,
) ([]graph.NodeID, graph.NodeID, bool) {
	next := make([]graph.NodeID, 0, len(queue))
	for _, current := range queue {
		for _, nb := range g.Neighbors(current) {
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = current
			if _, found := otherVisited[nb]; found {
				return nil, nb, true
			}
			next = append(next, nb)
		}
	}
	return next, 0, false
}

// reconstructPath joins the two half paths at the meeting node
func reconstructPath(meeting graph.NodeID, forward, backward map[graph.NodeID]graph.NodeID) []graph.NodeID {
	path := []graph.NodeID{meeting}
	for node := meeting; forward[node] != node; {
		node = forward[node]
		path = append(path, node)
	}
	slices.Reverse(path)

	for node := meeting; backward[node] != node; {
		node = backward[node]
		path = append(path, node)
	}
	return path
}

// ShortestPathCount returns the hop distance between two nodes and the number
// of distinct minimum-hop paths. hops is -1 (and count 0) when there is no path.
func ShortestPathCount(g *graph.Graph, src, dst graph.NodeID) (hops int, count float64) {
	ix := graph.NewIndex(g)
	s, ok := ix.Handle(src)
	if !ok {
		return -1, 0
	}
	t, ok := ix.Handle(dst)
	if !ok {
		return -1, 0
	}

	dist := make([]int, ix.Len())
	sigma := make([]float64, ix.Len())
	for i := range dist {
		dist[i] = -1
	}
	dist[s] = 0
	sigma[s] = 1

	queue := []int{s}
	for head := 0; head < len(queue); head++ {
		v := queue[head]
		if dist[t] >= 0 && dist[v] >= dist[t] {
			break
		}
		for _, w := range ix.Adj[v] {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
			}
		}
	}

	if dist[t] < 0 {
		return -1, 0
	}
	return dist[t], sigma[t]
}

// WeightFunc returns the traversal cost of an edge
type WeightFunc func(u, v graph.NodeID, attrs graph.EdgeAttrs) float64

// WeightedPath is the result of a weighted shortest path search
type WeightedPath struct {
	Nodes    []graph.NodeID `json:"nodes"`
	Distance float64        `json:"distance"`
}

// Hops returns the number of edges on the path
func (p WeightedPath) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

type dijkstraItem struct {
	handle int
	dist   float64
}

type dijkstraHeap []dijkstraItem

func (h dijkstraHeap) Len() int { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].handle < h[j].handle
}
func (h dijkstraHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *dijkstraHeap) Push(x any) {
	*h = append(*h, x.(dijkstraItem))
}

func (h *dijkstraHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// WeightedShortestPath runs Dijkstra from src to dst with non-negative edge
// costs from weight. Returns false when no path exists.
func WeightedShortestPath(g *graph.Graph, src, dst graph.NodeID, weight WeightFunc) (WeightedPath, bool) {
	ix := graph.NewIndex(g)
	s, ok := ix.Handle(src)
	if !ok {
		return WeightedPath{}, false
	}
	t, ok := ix.Handle(dst)
	if !ok {
		return WeightedPath{}, false
	}

	dist := make([]float64, ix.Len())
	parent := make([]int, ix.Len())
	done := make([]bool, ix.Len())
	for i := range dist {
		dist[i] = math.Inf(1)
		parent[i] = -1
	}
	dist[s] = 0

	h := &dijkstraHeap{{handle: s, dist: 0}}
	for h.Len() > 0 {
		item := heap.Pop(h).(dijkstraItem)
		v := item.handle
		if done[v] {
			continue
		}
		done[v] = true
		if v == t {
			break
		}

		for _, w := range ix.Adj[v] {
			if done[w] {
				continue
			}
			attrs, _ := g.Edge(ix.IDs[v], ix.IDs[w])
			alt := dist[v] + weight(ix.IDs[v], ix.IDs[w], attrs)
			if alt < dist[w] {
				dist[w] = alt
				parent[w] = v
				heap.Push(h, dijkstraItem{handle: w, dist: alt})
			}
		}
	}

	if math.IsInf(dist[t], 1) {
		return WeightedPath{}, false
	}

	var nodes []graph.NodeID
	for v := t; v >= 0; v = parent[v] {
		nodes = append(nodes, ix.IDs[v])
	}
	slices.Reverse(nodes)
	return WeightedPath{Nodes: nodes, Distance: dist[t]}, true
}
