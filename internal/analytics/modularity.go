package analytics

// Modularity computes Newman modularity on the directed graph using
// out/in-degree for the pair expectation, per spec §4.10:
// Q = (1/m) * sum over edges [ 1{same cluster} - (k_out(u)*k_in(v))/m ].
func Modularity(g *Graph, community map[int64]int) float64 {
	m := 0.0
	for _, n := range g.Nodes {
		m += float64(len(g.Out[n]))
	}
	if m == 0 {
		return 0
	}

	q := 0.0
	for _, u := range g.Nodes {
		kOut := float64(len(g.Out[u]))
		for _, e := range g.Out[u] {
			kIn := float64(len(g.In[e.To]))
			same := 0.0
			if community[u] == community[e.To] {
				same = 1.0
			}
			q += same - (kOut*kIn)/m
		}
	}
	return round4(q / m)
}
