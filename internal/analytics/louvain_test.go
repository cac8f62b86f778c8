package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLouvain_TwoDenseCliquesSplitIntoTwoCommunities(t *testing.T) {
	// Clique A: 1,2,3 fully connected. Clique B: 4,5,6 fully connected.
	// One bridge edge 3->4 links them weakly.
	edges := []Edge{
		{From: 1, To: 2, Weight: 1}, {From: 2, To: 1, Weight: 1},
		{From: 2, To: 3, Weight: 1}, {From: 3, To: 2, Weight: 1},
		{From: 1, To: 3, Weight: 1}, {From: 3, To: 1, Weight: 1},
		{From: 4, To: 5, Weight: 1}, {From: 5, To: 4, Weight: 1},
		{From: 5, To: 6, Weight: 1}, {From: 6, To: 5, Weight: 1},
		{From: 4, To: 6, Weight: 1}, {From: 6, To: 4, Weight: 1},
		{From: 3, To: 4, Weight: 1},
	}
	g := NewGraph([]int64{1, 2, 3, 4, 5, 6}, edges)

	communities := Louvain(g)

	assert.Equal(t, communities[1], communities[2])
	assert.Equal(t, communities[2], communities[3])
	assert.Equal(t, communities[4], communities[5])
	assert.Equal(t, communities[5], communities[6])
	assert.NotEqual(t, communities[1], communities[4])
}

func TestLouvain_EmptyGraphFallsBackToComponents(t *testing.T) {
	g := NewGraph([]int64{1, 2, 3}, nil)
	communities := Louvain(g)
	assert.Equal(t, 3, len(map[int]bool{communities[1]: true, communities[2]: true, communities[3]: true}))
}

func TestModularity_HigherForCorrectPartitionThanRandom(t *testing.T) {
	edges := []Edge{
		{From: 1, To: 2, Weight: 1}, {From: 2, To: 3, Weight: 1}, {From: 3, To: 1, Weight: 1},
		{From: 4, To: 5, Weight: 1}, {From: 5, To: 6, Weight: 1}, {From: 6, To: 4, Weight: 1},
	}
	g := NewGraph([]int64{1, 2, 3, 4, 5, 6}, edges)

	good := map[int64]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1, 6: 1}
	bad := map[int64]int{1: 0, 2: 1, 3: 0, 4: 1, 5: 0, 6: 1}

	assert.Greater(t, Modularity(g, good), Modularity(g, bad))
}
