package analytics

import "sort"

// SCC is one strongly connected component.
type SCC struct {
	ID      int
	Members []int64
}

// frame is one stack frame of the iterative Tarjan walk, replacing the
// call stack so arbitrarily deep graphs (spec §4.10: "must tolerate >=100k
// nodes") never overflow Go's goroutine stack via recursion.
type frame struct {
	node     int64
	childIdx int
}

// Tarjan computes strongly connected components via an iterative,
// explicit-stack version of Tarjan's algorithm. Output order is reverse
// topological, as spec §4.10 requires.
func Tarjan(g *Graph) []SCC {
	index := make(map[int64]int, len(g.Nodes))
	lowlink := make(map[int64]int, len(g.Nodes))
	onStack := make(map[int64]bool, len(g.Nodes))
	var indexStack []int64
	var sccs []SCC
	nextIndex := 0

	nodes := append([]int64(nil), g.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, start := range nodes {
		if _, visited := index[start]; visited {
			continue
		}

		var work []frame
		work = append(work, frame{node: start})
		index[start] = nextIndex
		lowlink[start] = nextIndex
		nextIndex++
		indexStack = append(indexStack, start)
		onStack[start] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			v := top.node

			if top.childIdx < len(g.Out[v]) {
				w := g.Out[v][top.childIdx].To
				top.childIdx++
				if _, visited := index[w]; !visited {
					index[w] = nextIndex
					lowlink[w] = nextIndex
					nextIndex++
					indexStack = append(indexStack, w)
					onStack[w] = true
					work = append(work, frame{node: w})
				} else if onStack[w] {
					if index[w] < lowlink[v] {
						lowlink[v] = index[w]
					}
				}
				continue
			}

			// Children exhausted: pop, propagate lowlink to parent.
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[v] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var members []int64
				for {
					n := len(indexStack) - 1
					w := indexStack[n]
					indexStack = indexStack[:n]
					onStack[w] = false
					members = append(members, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, SCC{Members: members})
			}
		}
	}

	// Tarjan emits components in reverse topological order naturally;
	// assign ids in that emission order.
	for i := range sccs {
		sccs[i].ID = i
	}
	return sccs
}
