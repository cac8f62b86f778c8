package graphbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roam/internal/model"
)

func TestBuildSymbolGraph_MergesDuplicateEdges(t *testing.T) {
	symbols := []model.Symbol{
		{ID: 1, FileID: 10, Name: "A", Kind: model.SymbolFunction, QualifiedName: "A"},
		{ID: 2, FileID: 10, Name: "B", Kind: model.SymbolFunction, QualifiedName: "B"},
	}
	files := map[int64]model.File{10: {ID: 10, Path: "pkg/a.go"}}
	edges := []model.Edge{
		{SourceSymbolID: 1, TargetSymbolID: 2, Kind: model.EdgeCall, Line: 3},
		{SourceSymbolID: 1, TargetSymbolID: 2, Kind: model.EdgeCall, Line: 9},
	}

	g := BuildSymbolGraph(symbols, files, edges)

	require.Contains(t, g.Nodes, int64(1))
	assert.Equal(t, "pkg/a.go", g.Nodes[1].FilePath)
	require.Len(t, g.Out[1], 1, "duplicate (source,target,kind) edges merge into one")
	assert.ElementsMatch(t, []int64{2}, g.Successors(1))
}

func TestBuildSymbolGraph_IsolatedNodeHasEmptyAdjacency(t *testing.T) {
	symbols := []model.Symbol{{ID: 1, FileID: 10, Name: "Lonely"}}
	g := BuildSymbolGraph(symbols, map[int64]model.File{}, nil)

	assert.Empty(t, g.Successors(1))
	assert.Contains(t, g.Out, int64(1))
}

func TestBuildFileGraph_CarriesAggregatedSymbolCount(t *testing.T) {
	files := []model.File{
		{ID: 1, Path: "a.go", Language: model.LangGo},
		{ID: 2, Path: "b.go", Language: model.LangGo},
	}
	fileEdges := []model.FileEdge{
		{SourceFileID: 1, TargetFileID: 2, Kind: model.FileEdgeImports, SymbolCount: 3},
	}

	g := BuildFileGraph(files, fileEdges)

	require.Len(t, g.Out[1], 1)
	assert.Equal(t, 3, g.Out[1][0].SymbolCount)
	assert.Equal(t, model.FileEdgeImports, g.Out[1][0].Kind)
	require.Len(t, g.In[2], 1)
}
