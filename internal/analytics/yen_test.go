package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKShortestPaths_DiamondFindsBothRoutes(t *testing.T) {
	g := diamondGraph()
	paths := KShortestPaths(g, 1, 4, 2, nil)

	require.Len(t, paths, 2)
	assert.Equal(t, []int64{1, 2, 4}, paths[0].Nodes)
	assert.ElementsMatch(t, []int64{1, 3, 4}, paths[1].Nodes)
}

func TestKShortestPaths_NoPathFallsBackToUndirected(t *testing.T) {
	// 1 -> 2 directed only; asking for a path 2 -> 1 has no directed
	// route but one exists in the undirected projection.
	g := NewGraph([]int64{1, 2}, []Edge{{From: 1, To: 2, Weight: 1}})
	paths := KShortestPaths(g, 2, 1, 3, nil)

	require.Len(t, paths, 1)
	assert.Equal(t, []int64{2, 1}, paths[0].Nodes)
}

func TestKShortestPaths_UnreachableReturnsNil(t *testing.T) {
	g := NewGraph([]int64{1, 2}, nil)
	paths := KShortestPaths(g, 1, 2, 3, nil)
	assert.Nil(t, paths)
}

func TestKShortestPaths_WeightedRankingPrefersLowerKindWeight(t *testing.T) {
	g := diamondGraph()
	kindOf := func(from, to int64) string {
		if from == 1 && to == 3 {
			return "reference" // heavier weight (1.2) makes this route worse
		}
		return "call"
	}
	paths := KShortestPaths(g, 1, 4, 2, kindOf)

	require.Len(t, paths, 2)
	assert.Equal(t, []int64{1, 2, 4}, paths[0].Nodes, "cheaper call-weighted route ranks first")
}
