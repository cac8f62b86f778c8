package analytics

import "sort"

// Louvain runs deterministic (no random node order) Louvain community
// detection on the undirected projection of g, per spec §4.10. On
// failure (a degenerate graph where modularity cannot be computed, e.g.
// zero total edge weight) it falls back to one cluster per weakly
// connected component.
func Louvain(g *Graph) map[int64]int {
	adj := g.Undirected()
	totalWeight := 0.0
	for _, neighbors := range adj {
		for _, w := range neighbors {
			totalWeight += w
		}
	}
	totalWeight /= 2 // each undirected edge counted from both endpoints

	if totalWeight == 0 {
		return weaklyConnectedComponents(g)
	}

	community := make(map[int64]int, len(g.Nodes))
	nodes := sortedKeys(adj)
	for i, n := range nodes {
		community[n] = i
	}

	degree := make(map[int64]float64, len(nodes))
	for _, n := range nodes {
		for _, w := range adj[n] {
			degree[n] += w
		}
	}

	improved := true
	for pass := 0; pass < 50 && improved; pass++ {
		improved = false
		communityDegreeSum := make(map[int]float64)
		for _, n := range nodes {
			communityDegreeSum[community[n]] += degree[n]
		}

		for _, n := range nodes {
			currentComm := community[n]
			communityDegreeSum[currentComm] -= degree[n]

			neighborComms := make(map[int]float64) // comm -> weight from n
			for nb, w := range adj[n] {
				if nb == n {
					continue
				}
				neighborComms[community[nb]] += w
			}

			bestComm := currentComm
			bestGain := 0.0
			commIDs := make([]int, 0, len(neighborComms))
			for c := range neighborComms {
				commIDs = append(commIDs, c)
			}
			sort.Ints(commIDs)
			for _, c := range commIDs {
				kIn := neighborComms[c]
				gain := kIn - (communityDegreeSum[c]*degree[n])/(2*totalWeight)
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			community[n] = bestComm
			communityDegreeSum[bestComm] += degree[n]
			if bestComm != currentComm {
				improved = true
			}
		}
	}

	return renumberCommunities(community, nodes)
}

func sortedKeys(m map[int64]map[int64]float64) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// renumberCommunities maps arbitrary community labels to dense, ascending
// ids ordered by each community's smallest member, so output is stable
// across runs for the same input.
func renumberCommunities(community map[int64]int, nodes []int64) map[int64]int {
	minMember := make(map[int]int64)
	for _, n := range nodes {
		c := community[n]
		if existing, ok := minMember[c]; !ok || n < existing {
			minMember[c] = n
		}
	}
	comms := make([]int, 0, len(minMember))
	for c := range minMember {
		comms = append(comms, c)
	}
	sort.Slice(comms, func(i, j int) bool { return minMember[comms[i]] < minMember[comms[j]] })

	remap := make(map[int]int, len(comms))
	for newID, oldID := range comms {
		remap[oldID] = newID
	}

	out := make(map[int64]int, len(nodes))
	for _, n := range nodes {
		out[n] = remap[community[n]]
	}
	return out
}

// weaklyConnectedComponents is Louvain's documented failure fallback.
func weaklyConnectedComponents(g *Graph) map[int64]int {
	adj := g.Undirected()
	visited := make(map[int64]bool, len(g.Nodes))
	result := make(map[int64]int, len(g.Nodes))
	nodes := sortedKeys(adj)

	compID := 0
	for _, start := range nodes {
		if visited[start] {
			continue
		}
		queue := []int64{start}
		visited[start] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			result[v] = compID
			neighbors := make([]int64, 0, len(adj[v]))
			for nb := range adj[v] {
				neighbors = append(neighbors, nb)
			}
			sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		compID++
	}
	return result
}
