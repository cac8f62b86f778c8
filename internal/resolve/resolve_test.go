package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roam/internal/model"
)

func TestResolveAll_PrefersSameFileOverExported(t *testing.T) {
	files := []model.File{
		{ID: 1, Path: "a/main.go"},
		{ID: 2, Path: "b/other.go"},
	}
	symbols := []model.Symbol{
		{ID: 10, FileID: 1, Name: "Caller", Kind: model.SymbolFunction},
		{ID: 11, FileID: 1, Name: "Target", Kind: model.SymbolFunction, IsExported: true},
		{ID: 12, FileID: 2, Name: "Target", Kind: model.SymbolFunction, IsExported: true},
	}
	r := NewResolver(files, symbols)
	callerName := "Caller"

	edges := r.ResolveAll([]model.Reference{
		{SourceName: &callerName, TargetName: "Target", Kind: model.EdgeCall, Line: 5, SourceFile: "a/main.go"},
	}, map[string]int64{"a/main.go": 1, "b/other.go": 2})

	require.Len(t, edges, 1)
	assert.Equal(t, int64(10), edges[0].SourceSymbolID)
	assert.Equal(t, int64(11), edges[0].TargetSymbolID, "same-file candidate must win over the other-file exported one")
}

func TestResolveAll_DropsUnresolvedAndSelfEdges(t *testing.T) {
	files := []model.File{{ID: 1, Path: "a.go"}}
	symbols := []model.Symbol{
		{ID: 10, FileID: 1, Name: "Only", Kind: model.SymbolFunction},
	}
	r := NewResolver(files, symbols)
	onlyName := "Only"

	edges := r.ResolveAll([]model.Reference{
		{SourceName: &onlyName, TargetName: "Only", Kind: model.EdgeCall, Line: 1, SourceFile: "a.go"}, // self-edge
		{SourceName: &onlyName, TargetName: "DoesNotExist", Kind: model.EdgeCall, Line: 2, SourceFile: "a.go"},
	}, map[string]int64{"a.go": 1})

	assert.Empty(t, edges)
}

func TestResolveAll_SourceNameFallsBackToSoleTopLevelSymbol(t *testing.T) {
	files := []model.File{{ID: 1, Path: "a.go"}, {ID: 2, Path: "b.go"}}
	symbols := []model.Symbol{
		{ID: 10, FileID: 1, Name: "Entry", Kind: model.SymbolFunction},
		{ID: 11, FileID: 2, Name: "Used", Kind: model.SymbolFunction, IsExported: true},
	}
	r := NewResolver(files, symbols)

	edges := r.ResolveAll([]model.Reference{
		{SourceName: nil, TargetName: "Used", Kind: model.EdgeReference, Line: 1, SourceFile: "a.go"},
	}, map[string]int64{"a.go": 1, "b.go": 2})

	require.Len(t, edges, 1)
	assert.Equal(t, int64(10), edges[0].SourceSymbolID)
}

func TestResolveAll_DedupesByTriple(t *testing.T) {
	files := []model.File{{ID: 1, Path: "a.go"}}
	symbols := []model.Symbol{
		{ID: 10, FileID: 1, Name: "Caller", Kind: model.SymbolFunction},
		{ID: 11, FileID: 1, Name: "Target", Kind: model.SymbolFunction},
	}
	r := NewResolver(files, symbols)
	callerName := "Caller"

	edges := r.ResolveAll([]model.Reference{
		{SourceName: &callerName, TargetName: "Target", Kind: model.EdgeCall, Line: 3, SourceFile: "a.go"},
		{SourceName: &callerName, TargetName: "Target", Kind: model.EdgeCall, Line: 7, SourceFile: "a.go"},
	}, map[string]int64{"a.go": 1})

	assert.Len(t, edges, 1, "same (source,target,kind) triple must dedupe even at different lines")
}

func TestBuildFileEdges_AggregatesAndClassifiesImports(t *testing.T) {
	fileOf := map[int64]int64{10: 1, 11: 2, 12: 2}
	edges := []model.Edge{
		{SourceSymbolID: 10, TargetSymbolID: 11, Kind: model.EdgeCall},
		{SourceSymbolID: 10, TargetSymbolID: 12, Kind: model.EdgeImport},
	}

	fileEdges := BuildFileEdges(edges, fileOf)
	require.Len(t, fileEdges, 1, "both symbol edges point file 1 -> file 2 and must aggregate to one row")
	assert.Equal(t, 2, fileEdges[0].SymbolCount)
	assert.Equal(t, model.FileEdgeImports, fileEdges[0].Kind, "any underlying import edge promotes the aggregate to imports")
}
