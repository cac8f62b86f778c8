// Package store implements spec component C6: the relational store. It
// defines a backend-agnostic Store interface (adapted from
// onedusk-pd/internal/graph.Store, re-cut from a graph-DB interface to a
// relational one) with two implementations — SQLiteStore (production,
// cgo-gated) and MemStore (tests, no cgo required) — mirroring the
// teacher's KuzuStore/MemStore split.
package store

import (
	"context"
	"io"

	"github.com/dusk-indust/roam/internal/model"
)

// Store is the interface every persistence backend implements. All
// persisted state in the system flows through this interface; in-memory
// graphs built by graphbuild are derived views, never written back except
// through Store's metric/cluster setters.
type Store interface {
	io.Closer

	InitSchema(ctx context.Context) error

	// Truncate clears the file, symbol, edge, file-edge, metric and
	// cluster tables (the --force path). It issues no delete against the
	// git tables (see TruncateGit), but in SQLiteStore deleting the file
	// rows cascades to file-keyed git rows (git_cochange,
	// git_hyperedge_members, file_stats) and nulls git_file_changes.file_id.
	Truncate(ctx context.Context) error
	TruncateGit(ctx context.Context) error

	// File lifecycle.
	UpsertFile(ctx context.Context, f model.File) (int64, error)
	DeleteFile(ctx context.Context, path string) error // cascades
	GetFileByPath(ctx context.Context, path string) (*model.File, error)
	ListFiles(ctx context.Context) ([]model.File, error)
	PriorFileState(ctx context.Context) (map[string]PriorFile, error)

	// Symbols.
	InsertSymbols(ctx context.Context, syms []model.Symbol) ([]int64, error)
	// SetSymbolParents patches parent_id on already-inserted symbols,
	// keyed by symbol id. Needed because a symbol's ParentName (e.g. a
	// method's receiver type) can only be resolved to a numeric ParentID
	// once its siblings have been assigned real ids by InsertSymbols.
	SetSymbolParents(ctx context.Context, parents map[int64]int64) error
	SymbolsByFile(ctx context.Context, fileID int64) ([]model.Symbol, error)
	AllSymbols(ctx context.Context) ([]model.Symbol, error)
	FindSymbolsByName(ctx context.Context, name string) ([]model.Symbol, error)

	// Edges.
	ReplaceEdges(ctx context.Context, edges []model.Edge) error
	AllEdges(ctx context.Context) ([]model.Edge, error)
	ReplaceFileEdges(ctx context.Context, edges []model.FileEdge) error
	AllFileEdges(ctx context.Context) ([]model.FileEdge, error)

	// Derived metrics.
	WriteSymbolGraphMetrics(ctx context.Context, metrics []model.SymbolGraphMetric) error
	WriteSymbolComplexity(ctx context.Context, metrics []model.SymbolComplexityMetric) error
	WriteClusters(ctx context.Context, assignments []model.ClusterAssignment) error
	// ComplexityByFile averages each file's symbols' cognitive complexity
	// from the persisted symbol_metrics table, keyed by file id. Reading
	// from storage (rather than a per-run transient map) is what makes
	// this correct on incremental runs: a file untouched this run still
	// has a complexity figure to fold into its FileStats row.
	ComplexityByFile(ctx context.Context) (map[int64]float64, error)

	// Git tables (each independently re-runnable and truncated by its
	// own writer before rewrite, per spec §4.8).
	InsertCommits(ctx context.Context, commits []model.Commit) error
	InsertFileChanges(ctx context.Context, changes []model.FileChange) error
	ReplaceCochange(ctx context.Context, pairs []model.Cochange) error
	ReplaceHyperedges(ctx context.Context, edges []model.Hyperedge, members []model.HyperedgeMember) error
	WriteFileStats(ctx context.Context, stats []model.FileStats) error

	// RecordSnapshot appends one row to the snapshots table, capturing the
	// store's aggregate shape at the end of a completed run.
	RecordSnapshot(ctx context.Context, runID string, createdAt int64) error

	Stats(ctx context.Context) (Stats, error)
}

// PriorFile is the subset of a File row the change detector needs.
type PriorFile struct {
	Mtime       int64
	ContentHash string
}

// Stats summarizes the current store content.
type Stats struct {
	FileCount    int
	SymbolCount  int
	EdgeCount    int
	ClusterCount int
	CommitCount  int
}

// ChunkIDs splits ids into chunks of at most size, the batching helper
// spec §4.6 requires for large IN-lists (≤ ~500 ids per chunk).
func ChunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = 500
	}
	var chunks [][]int64
	for len(ids) > 0 {
		n := size
		if n > len(ids) {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}
