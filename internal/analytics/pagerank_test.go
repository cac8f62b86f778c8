package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRank_SumsToApproximatelyOne(t *testing.T) {
	g := diamondGraph()
	sccs := Tarjan(g)
	ranks := PageRank(g, sccs)

	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestPageRank_SinkHasHigherRankThanSource(t *testing.T) {
	g := diamondGraph()
	sccs := Tarjan(g)
	ranks := PageRank(g, sccs)
	assert.Greater(t, ranks[4], ranks[1], "node 4 receives rank from both 2 and 3")
}

func TestBetweenness_MiddleOfChainIsHighest(t *testing.T) {
	g := chainGraph()
	cb := Betweenness(g)
	assert.Greater(t, cb[2], cb[1])
	assert.Greater(t, cb[3], cb[4])
}

func TestPropagationCost_ChainIsPositiveFullyConnectedIsMax(t *testing.T) {
	chain := PropagationCost(chainGraph())
	assert.Greater(t, chain, 0.0)

	full := NewGraph([]int64{1, 2, 3}, []Edge{
		{From: 1, To: 2, Weight: 1}, {From: 1, To: 3, Weight: 1},
		{From: 2, To: 1, Weight: 1}, {From: 2, To: 3, Weight: 1},
		{From: 3, To: 1, Weight: 1}, {From: 3, To: 2, Weight: 1},
	})
	assert.Equal(t, 1.0, PropagationCost(full))
}
