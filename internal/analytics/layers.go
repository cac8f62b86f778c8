package analytics

// Violation is an edge whose source layer exceeds its target layer.
type Violation struct {
	From, To int64
	Severity float64
}

// LayerResult holds per-node layer assignment and detected violations.
type LayerResult struct {
	Layer      map[int64]int
	MaxLayer   int
	Violations []Violation
}

// AssignLayers implements spec §4.10's layer assignment: for each SCC in
// topological order, layer = 0 if no predecessor else 1+max(layer(pred));
// every node inherits its SCC's layer. An edge whose source layer exceeds
// its target layer is a violation with severity (src-tgt)/max_layer.
func AssignLayers(g *Graph, c *Condensation, order []int) LayerResult {
	sccLayer := make(map[int]int, len(c.SCCs))
	maxLayer := 0

	for _, id := range order {
		layer := 0
		for pred := range c.Predecessors[id] {
			if l := sccLayer[pred] + 1; l > layer {
				layer = l
			}
		}
		sccLayer[id] = layer
		if layer > maxLayer {
			maxLayer = layer
		}
	}

	nodeLayer := make(map[int64]int, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeLayer[n] = sccLayer[c.NodeToSCC[n]]
	}

	var violations []Violation
	denom := maxLayer
	if denom == 0 {
		denom = 1
	}
	for _, n := range g.Nodes {
		for _, e := range g.Out[n] {
			srcLayer, dstLayer := nodeLayer[n], nodeLayer[e.To]
			if srcLayer > dstLayer {
				violations = append(violations, Violation{
					From:     n,
					To:       e.To,
					Severity: round3(float64(srcLayer-dstLayer) / float64(denom)),
				})
			}
		}
	}

	return LayerResult{Layer: nodeLayer, MaxLayer: maxLayer, Violations: violations}
}
