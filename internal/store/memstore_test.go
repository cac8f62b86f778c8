package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roam/internal/model"
)

func TestMemStore_UpsertFileIsIdempotentByPath(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.InitSchema(ctx))

	id1, err := s.UpsertFile(ctx, model.File{Path: "a.go", Language: model.LangGo, ContentHash: "h1", Mtime: 1})
	require.NoError(t, err)

	id2, err := s.UpsertFile(ctx, model.File{Path: "a.go", Language: model.LangGo, ContentHash: "h2", Mtime: 2})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "re-upserting the same path must reuse its id")

	f, err := s.GetFileByPath(ctx, "a.go")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "h2", f.ContentHash)
}

func TestMemStore_DeleteFileCascadesSymbolsEdgesMetrics(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.InitSchema(ctx))

	fileA, err := s.UpsertFile(ctx, model.File{Path: "a.go", Language: model.LangGo})
	require.NoError(t, err)
	fileB, err := s.UpsertFile(ctx, model.File{Path: "b.go", Language: model.LangGo})
	require.NoError(t, err)

	ids, err := s.InsertSymbols(ctx, []model.Symbol{
		{FileID: fileA, Name: "Foo", Kind: model.SymbolFunction},
		{FileID: fileB, Name: "Bar", Kind: model.SymbolFunction},
	})
	require.NoError(t, err)
	fooID, barID := ids[0], ids[1]

	require.NoError(t, s.ReplaceEdges(ctx, []model.Edge{
		{SourceSymbolID: fooID, TargetSymbolID: barID, Kind: model.EdgeCall, Line: 10},
	}))
	require.NoError(t, s.ReplaceFileEdges(ctx, []model.FileEdge{
		{SourceFileID: fileA, TargetFileID: fileB, Kind: model.FileEdgeUses, SymbolCount: 1},
	}))
	require.NoError(t, s.WriteSymbolGraphMetrics(ctx, []model.SymbolGraphMetric{
		{SymbolID: fooID, PageRank: 0.5},
	}))

	require.NoError(t, s.DeleteFile(ctx, "a.go"))

	syms, err := s.AllSymbols(ctx)
	require.NoError(t, err)
	assert.Len(t, syms, 1, "Foo must be dropped along with its file")
	assert.Equal(t, "Bar", syms[0].Name)

	edges, err := s.AllEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, edges, "edge touching the deleted symbol must cascade")

	fedges, err := s.AllFileEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, fedges, "file edge touching the deleted file must cascade")
}

func TestMemStore_PriorFileStateReflectsUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.InitSchema(ctx))

	_, err := s.UpsertFile(ctx, model.File{Path: "a.go", Mtime: 42, ContentHash: "abc"})
	require.NoError(t, err)

	prior, err := s.PriorFileState(ctx)
	require.NoError(t, err)
	require.Contains(t, prior, "a.go")
	assert.Equal(t, int64(42), prior["a.go"].Mtime)
	assert.Equal(t, "abc", prior["a.go"].ContentHash)
}

func TestMemStore_StatsCountsDistinctClusters(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.InitSchema(ctx))

	fileA, err := s.UpsertFile(ctx, model.File{Path: "a.go"})
	require.NoError(t, err)
	ids, err := s.InsertSymbols(ctx, []model.Symbol{
		{FileID: fileA, Name: "A", Kind: model.SymbolFunction},
		{FileID: fileA, Name: "B", Kind: model.SymbolFunction},
	})
	require.NoError(t, err)

	require.NoError(t, s.WriteClusters(ctx, []model.ClusterAssignment{
		{SymbolID: ids[0], ClusterID: 1, ClusterLabel: "cluster-1"},
		{SymbolID: ids[1], ClusterID: 1, ClusterLabel: "cluster-1"},
	}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, 2, stats.SymbolCount)
	assert.Equal(t, 1, stats.ClusterCount)
}

func TestChunkIDs(t *testing.T) {
	ids := make([]int64, 1200)
	for i := range ids {
		ids[i] = int64(i)
	}
	chunks := ChunkIDs(ids, 500)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 200)
}
