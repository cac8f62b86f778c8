package analytics

import (
	"sort"
	"strconv"
	"strings"
)

// kindWeights assigns per-kind traversal weight used only to rank
// candidate paths once found, per spec §4.10 step 4. Pathfinding itself
// is unweighted BFS; weight is purely a tie-break/ranking signal.
var kindWeights = map[string]float64{
	"call": 1.0, "uses": 1.0, "inherits": 1.0, "implements": 1.0,
	"uses_trait": 1.0, "template": 1.0,
	"import":    1.1,
	"reference": 1.2,
}

func kindWeight(kind string) float64 {
	if w, ok := kindWeights[kind]; ok {
		return w
	}
	return 1.0
}

// Path is a sequence of nodes with its aggregate weight.
type Path struct {
	Nodes  []int64
	Weight float64
}

// edgeKindLookup resolves the kind label of an edge between two nodes;
// callers populate it from the richer graph (symbol/file edges carry
// string kinds distinct from this package's bare Edge).
type edgeKindLookup func(from, to int64) string

// KShortestPaths implements spec §4.10's Yen's-algorithm variant: an
// initial BFS shortest path (retried as undirected if none exists
// directed), then up to k-1 further deviations found by excluding
// edges/nodes along shared prefixes from each spur search (per-search
// exclusion sets) and re-running BFS from the spur node. The graph itself
// is never modified, so the caller observes it unchanged.
func KShortestPaths(g *Graph, source, target int64, k int, kindOf edgeKindLookup) []Path {
	first, ok := bfsPath(g, source, target, nil, nil)
	if !ok {
		first, ok = bfsPathUndirected(g, source, target)
		if !ok {
			return nil
		}
		return []Path{{Nodes: first, Weight: pathWeight(g, first, kindOf)}}
	}

	A := []Path{{Nodes: first, Weight: pathWeight(g, first, kindOf)}}
	var B []Path
	seen := map[string]bool{pathKey(first): true}

	for len(A) < k {
		prev := A[len(A)-1].Nodes
		for i := 0; i < len(prev)-1; i++ {
			spurNode := prev[i]
			rootPath := prev[:i+1]

			removedEdges := make(map[[2]int64]bool)
			for _, p := range A {
				if len(p.Nodes) > i && pathPrefixEquals(p.Nodes[:i+1], rootPath) {
					removedEdges[[2]int64{p.Nodes[i], p.Nodes[i+1]}] = true
				}
			}
			excluded := make(map[int64]bool)
			for _, n := range rootPath[:len(rootPath)-1] {
				excluded[n] = true
			}

			spurPath, ok := bfsPath(g, spurNode, target, removedEdges, excluded)
			if !ok {
				continue
			}

			candidate := append(append([]int64(nil), rootPath[:len(rootPath)-1]...), spurPath...)
			key := pathKey(candidate)
			if seen[key] {
				continue
			}
			seen[key] = true
			B = append(B, Path{Nodes: candidate, Weight: pathWeight(g, candidate, kindOf)})
		}

		if len(B) == 0 {
			break
		}
		sort.Slice(B, func(i, j int) bool {
			if B[i].Weight != B[j].Weight {
				return B[i].Weight < B[j].Weight
			}
			return len(B[i].Nodes) < len(B[j].Nodes)
		})
		A = append(A, B[0])
		B = B[1:]
	}

	sort.Slice(A, func(i, j int) bool {
		if A[i].Weight != A[j].Weight {
			return A[i].Weight < A[j].Weight
		}
		return len(A[i].Nodes) < len(A[j].Nodes)
	})
	if len(A) > k {
		A = A[:k]
	}
	return A
}

func bfsPath(g *Graph, source, target int64, removedEdges map[[2]int64]bool, excluded map[int64]bool) ([]int64, bool) {
	if excluded[source] {
		return nil, false
	}
	prev := map[int64]int64{source: source}
	visited := map[int64]bool{source: true}
	queue := []int64{source}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == target {
			return reconstruct(prev, source, target), true
		}
		for _, e := range g.Out[v] {
			if excluded[e.To] || removedEdges[[2]int64{v, e.To}] || visited[e.To] {
				continue
			}
			visited[e.To] = true
			prev[e.To] = v
			queue = append(queue, e.To)
		}
	}
	if visited[target] {
		return reconstruct(prev, source, target), true
	}
	return nil, false
}

func bfsPathUndirected(g *Graph, source, target int64) ([]int64, bool) {
	adj := g.Undirected()
	prev := map[int64]int64{source: source}
	visited := map[int64]bool{source: true}
	queue := []int64{source}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == target {
			return reconstruct(prev, source, target), true
		}
		neighbors := make([]int64, 0, len(adj[v]))
		for nb := range adj[v] {
			neighbors = append(neighbors, nb)
		}
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		for _, nb := range neighbors {
			if !visited[nb] {
				visited[nb] = true
				prev[nb] = v
				queue = append(queue, nb)
			}
		}
	}
	return nil, false
}

func reconstruct(prev map[int64]int64, source, target int64) []int64 {
	var path []int64
	cur := target
	for {
		path = append([]int64{cur}, path...)
		if cur == source {
			break
		}
		cur = prev[cur]
	}
	return path
}

func pathWeight(g *Graph, nodes []int64, kindOf edgeKindLookup) float64 {
	w := 0.0
	for i := 0; i < len(nodes)-1; i++ {
		if kindOf != nil {
			w += kindWeight(kindOf(nodes[i], nodes[i+1]))
		} else {
			w += 1.0
		}
	}
	return w
}

func pathKey(nodes []int64) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(strconv.FormatInt(n, 10))
		b.WriteByte('|')
	}
	return b.String()
}

func pathPrefixEquals(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
