package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelClusters_PrefersAnchorOverHigherPageRankNonAnchor(t *testing.T) {
	members := map[int][]ClusterMember{
		0: {
			{SymbolID: 1, Name: "helper", Dir: "internal/store", PageRank: 0.9, IsAnchor: false},
			{SymbolID: 2, Name: "Store", Dir: "internal/store", PageRank: 0.2, IsAnchor: true},
		},
		// Two more clusters keep cluster 0 at 2 of 6 clustered nodes, under
		// the 40% share that would make it a mega-cluster.
		1: {
			{SymbolID: 3, Name: "a", Dir: "internal/other", PageRank: 0.1},
			{SymbolID: 4, Name: "b", Dir: "internal/other", PageRank: 0.1},
		},
		2: {
			{SymbolID: 5, Name: "c", Dir: "internal/other", PageRank: 0.1},
			{SymbolID: 6, Name: "d", Dir: "internal/other", PageRank: 0.1},
		},
	}
	labels := LabelClusters(members)
	require.Len(t, labels, 3)
	assert.Equal(t, "store/Store", labels[0].Label)
}

func TestLabelClusters_MegaClusterUsesDominantDirectories(t *testing.T) {
	members := make(map[int][]ClusterMember)
	var ms []ClusterMember
	for i := 0; i < 60; i++ {
		ms = append(ms, ClusterMember{SymbolID: int64(i), Name: "f", Dir: "internal/a", PageRank: 0.1})
	}
	for i := 60; i < 101; i++ {
		ms = append(ms, ClusterMember{SymbolID: int64(i), Name: "f", Dir: "internal/b", PageRank: 0.1})
	}
	members[0] = ms

	labels := LabelClusters(members)
	require.Len(t, labels, 1)
	assert.Contains(t, labels[0].Label, "a ")
	assert.Contains(t, labels[0].Label, "+")
}

func TestLabelClusters_FallsBackToHighestPageRankWhenNoAnchor(t *testing.T) {
	members := map[int][]ClusterMember{
		0: {
			{SymbolID: 1, Name: "low", Dir: "pkg", PageRank: 0.1},
			{SymbolID: 2, Name: "high", Dir: "pkg", PageRank: 0.9},
		},
		// Two more clusters keep cluster 0 under the 40% mega-cluster share.
		1: {
			{SymbolID: 3, Name: "a", Dir: "other", PageRank: 0.1},
			{SymbolID: 4, Name: "b", Dir: "other", PageRank: 0.1},
		},
		2: {
			{SymbolID: 5, Name: "c", Dir: "other", PageRank: 0.1},
			{SymbolID: 6, Name: "d", Dir: "other", PageRank: 0.1},
		},
	}
	labels := LabelClusters(members)
	require.Len(t, labels, 3)
	assert.Equal(t, "pkg/high", labels[0].Label)
}
