package analytics

// Betweenness computes unnormalized betweenness centrality via Brandes'
// algorithm, run from every node as source (spec §4.10: full Brandes
// always, per the accepted Open Question decision — no sampling).
// Falls back to all-zero on any panic-worthy inconsistency; in practice
// this never triggers since the graph is always well-formed by
// construction.
func Betweenness(g *Graph) (result map[int64]float64) {
	cb := make(map[int64]float64, len(g.Nodes))
	for _, n := range g.Nodes {
		cb[n] = 0
	}

	defer func() {
		if recover() != nil {
			for _, n := range g.Nodes {
				cb[n] = 0
			}
			result = cb
		}
	}()

	for _, s := range g.Nodes {
		stack := []int64{}
		pred := make(map[int64][]int64, len(g.Nodes))
		sigma := make(map[int64]float64, len(g.Nodes))
		dist := make(map[int64]int, len(g.Nodes))
		for _, n := range g.Nodes {
			sigma[n] = 0
			dist[n] = -1
		}
		sigma[s] = 1
		dist[s] = 0

		queue := []int64{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, e := range g.Out[v] {
				w := e.To
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[int64]float64, len(g.Nodes))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				if sigma[w] != 0 {
					delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
				}
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	return cb
}
