package analytics

// Condensation is the DAG of strongly connected components.
type Condensation struct {
	SCCs       []SCC
	NodeToSCC  map[int64]int
	Successors map[int]map[int]bool
	Predecessors map[int]map[int]bool
}

// Condense maps each node to its SCC id and adds one condensation edge
// per distinct SCC pair observed among the original graph's edges,
// per spec §4.10.
func Condense(g *Graph, sccs []SCC) *Condensation {
	c := &Condensation{
		SCCs:         sccs,
		NodeToSCC:    make(map[int64]int, len(g.Nodes)),
		Successors:   make(map[int]map[int]bool, len(sccs)),
		Predecessors: make(map[int]map[int]bool, len(sccs)),
	}
	for _, s := range sccs {
		for _, m := range s.Members {
			c.NodeToSCC[m] = s.ID
		}
		c.Successors[s.ID] = make(map[int]bool)
		c.Predecessors[s.ID] = make(map[int]bool)
	}

	for _, n := range g.Nodes {
		srcSCC := c.NodeToSCC[n]
		for _, e := range g.Out[n] {
			dstSCC, ok := c.NodeToSCC[e.To]
			if !ok || dstSCC == srcSCC {
				continue
			}
			c.Successors[srcSCC][dstSCC] = true
			c.Predecessors[dstSCC][srcSCC] = true
		}
	}
	return c
}
