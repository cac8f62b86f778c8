package analytics

import "sort"

// TopoSort runs Kahn's algorithm over the condensation DAG. Ties (multiple
// zero-in-degree SCCs available at once) break by ascending SCC id, per
// spec §4.10.
func TopoSort(c *Condensation) []int {
	inDegree := make(map[int]int, len(c.SCCs))
	for id := range c.Successors {
		inDegree[id] = len(c.Predecessors[id])
	}

	var ready []int
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Ints(ready)

	var order []int
	for len(ready) > 0 {
		sort.Ints(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		succIDs := make([]int, 0, len(c.Successors[n]))
		for s := range c.Successors[n] {
			succIDs = append(succIDs, s)
		}
		sort.Ints(succIDs)
		for _, s := range succIDs {
			inDegree[s]--
			if inDegree[s] == 0 {
				ready = append(ready, s)
			}
		}
	}
	return order
}
