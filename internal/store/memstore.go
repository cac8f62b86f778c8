// In-memory Store, grounded in onedusk-pd/internal/graph/memstore.go: a
// sync.RWMutex-guarded set of maps/slices standing in for the database so
// tests and non-cgo builds don't need sqlite. Unlike the teacher's version
// (which stored denormalized graph nodes), this reimplements the cascade
// and auto-increment semantics SQLiteStore gets from SQLite itself.
package store

import (
	"context"
	"sync"

	"github.com/dusk-indust/roam/internal/model"
)

// MemStore implements Store using Go maps.
type MemStore struct {
	mu sync.RWMutex

	nextFileID   int64
	nextSymbolID int64
	nextHyperID  int64

	filesByPath map[string]int64
	files       map[int64]model.File

	symbols map[int64]model.Symbol // symbols by id
	edges   []model.Edge
	fedges  []model.FileEdge

	graphMetrics map[int64]model.SymbolGraphMetric
	complexity   map[int64]model.SymbolComplexityMetric
	clusters     map[int64]model.ClusterAssignment

	commits      map[string]model.Commit
	fileChanges  []model.FileChange
	cochange     map[[2]int64]model.Cochange
	hyperedges   map[int64]model.Hyperedge
	hyperMembers map[int64][]model.HyperedgeMember
	fileStats    map[int64]model.FileStats

	snapshots []snapshot
}

// snapshot mirrors one row of the snapshots table.
type snapshot struct {
	RunID     string
	CreatedAt int64
	Stats     Stats
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		filesByPath:  make(map[string]int64),
		files:        make(map[int64]model.File),
		symbols:      make(map[int64]model.Symbol),
		graphMetrics: make(map[int64]model.SymbolGraphMetric),
		complexity:   make(map[int64]model.SymbolComplexityMetric),
		clusters:     make(map[int64]model.ClusterAssignment),
		commits:      make(map[string]model.Commit),
		cochange:     make(map[[2]int64]model.Cochange),
		hyperedges:   make(map[int64]model.Hyperedge),
		hyperMembers: make(map[int64][]model.HyperedgeMember),
		fileStats:    make(map[int64]model.FileStats),
	}
}

func (m *MemStore) Close() error { return nil }

func (m *MemStore) InitSchema(_ context.Context) error { return nil }

func (m *MemStore) Truncate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filesByPath = make(map[string]int64)
	m.files = make(map[int64]model.File)
	m.symbols = make(map[int64]model.Symbol)
	m.edges = nil
	m.fedges = nil
	m.graphMetrics = make(map[int64]model.SymbolGraphMetric)
	m.complexity = make(map[int64]model.SymbolComplexityMetric)
	m.clusters = make(map[int64]model.ClusterAssignment)
	return nil
}

func (m *MemStore) TruncateGit(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits = make(map[string]model.Commit)
	m.fileChanges = nil
	m.cochange = make(map[[2]int64]model.Cochange)
	m.hyperedges = make(map[int64]model.Hyperedge)
	m.hyperMembers = make(map[int64][]model.HyperedgeMember)
	m.fileStats = make(map[int64]model.FileStats)
	return nil
}

func (m *MemStore) UpsertFile(_ context.Context, f model.File) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.filesByPath[f.Path]; ok {
		f.ID = id
		m.files[id] = f
		return id, nil
	}
	m.nextFileID++
	f.ID = m.nextFileID
	m.filesByPath[f.Path] = f.ID
	m.files[f.ID] = f
	return f.ID, nil
}

func (m *MemStore) DeleteFile(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.filesByPath[path]
	if !ok {
		return nil
	}
	delete(m.filesByPath, path)
	delete(m.files, id)

	remainingSymbols := make(map[int64]bool)
	for sid, sym := range m.symbols {
		if sym.FileID == id {
			delete(m.symbols, sid)
		} else {
			remainingSymbols[sid] = true
		}
	}
	m.cascadeDropEdges(remainingSymbols)
	m.cascadeDropFileEdges(id)
	return nil
}

func (m *MemStore) cascadeDropEdges(remainingSymbols map[int64]bool) {
	kept := m.edges[:0]
	for _, e := range m.edges {
		if remainingSymbols[e.SourceSymbolID] && remainingSymbols[e.TargetSymbolID] {
			kept = append(kept, e)
		}
	}
	m.edges = kept

	for sid, metric := range m.graphMetrics {
		if !remainingSymbols[sid] {
			_ = metric
			delete(m.graphMetrics, sid)
		}
	}
	for sid, cm := range m.complexity {
		if !remainingSymbols[sid] {
			_ = cm
			delete(m.complexity, sid)
		}
	}
	for sid, ca := range m.clusters {
		if !remainingSymbols[sid] {
			_ = ca
			delete(m.clusters, sid)
		}
	}
}

func (m *MemStore) cascadeDropFileEdges(fileID int64) {
	kept := m.fedges[:0]
	for _, e := range m.fedges {
		if e.SourceFileID != fileID && e.TargetFileID != fileID {
			kept = append(kept, e)
		}
	}
	m.fedges = kept
}

func (m *MemStore) GetFileByPath(_ context.Context, path string) (*model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.filesByPath[path]
	if !ok {
		return nil, nil
	}
	f := m.files[id]
	return &f, nil
}

func (m *MemStore) ListFiles(_ context.Context) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.File, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f)
	}
	return out, nil
}

func (m *MemStore) PriorFileState(_ context.Context) (map[string]PriorFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]PriorFile, len(m.files))
	for path, id := range m.filesByPath {
		f := m.files[id]
		out[path] = PriorFile{Mtime: f.Mtime, ContentHash: f.ContentHash}
	}
	return out, nil
}

func (m *MemStore) InsertSymbols(_ context.Context, syms []model.Symbol) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, len(syms))
	for i, sym := range syms {
		m.nextSymbolID++
		sym.ID = m.nextSymbolID
		m.symbols[sym.ID] = sym
		ids[i] = sym.ID
	}
	return ids, nil
}

func (m *MemStore) SetSymbolParents(_ context.Context, parents map[int64]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for symID, parentID := range parents {
		sym, ok := m.symbols[symID]
		if !ok {
			continue
		}
		p := parentID
		sym.ParentID = &p
		m.symbols[symID] = sym
	}
	return nil
}

func (m *MemStore) SymbolsByFile(_ context.Context, fileID int64) ([]model.Symbol, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Symbol
	for _, sym := range m.symbols {
		if sym.FileID == fileID {
			out = append(out, sym)
		}
	}
	return out, nil
}

func (m *MemStore) AllSymbols(_ context.Context) ([]model.Symbol, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Symbol, 0, len(m.symbols))
	for _, sym := range m.symbols {
		out = append(out, sym)
	}
	return out, nil
}

func (m *MemStore) FindSymbolsByName(_ context.Context, name string) ([]model.Symbol, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Symbol
	for _, sym := range m.symbols {
		if sym.Name == name {
			out = append(out, sym)
		}
	}
	return out, nil
}

func (m *MemStore) ReplaceEdges(_ context.Context, edges []model.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append([]model.Edge(nil), edges...)
	return nil
}

func (m *MemStore) AllEdges(_ context.Context) ([]model.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Edge(nil), m.edges...), nil
}

func (m *MemStore) ReplaceFileEdges(_ context.Context, edges []model.FileEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fedges = append([]model.FileEdge(nil), edges...)
	return nil
}

func (m *MemStore) AllFileEdges(_ context.Context) ([]model.FileEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.FileEdge(nil), m.fedges...), nil
}

func (m *MemStore) WriteSymbolGraphMetrics(_ context.Context, metrics []model.SymbolGraphMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range metrics {
		m.graphMetrics[mm.SymbolID] = mm
	}
	return nil
}

func (m *MemStore) WriteSymbolComplexity(_ context.Context, metrics []model.SymbolComplexityMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range metrics {
		m.complexity[mm.SymbolID] = mm
	}
	return nil
}

func (m *MemStore) WriteClusters(_ context.Context, assignments []model.ClusterAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = make(map[int64]model.ClusterAssignment, len(assignments))
	for _, a := range assignments {
		m.clusters[a.SymbolID] = a
	}
	return nil
}

func (m *MemStore) InsertCommits(_ context.Context, commits []model.Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range commits {
		if _, exists := m.commits[c.Hash]; !exists {
			m.commits[c.Hash] = c
		}
	}
	return nil
}

func (m *MemStore) InsertFileChanges(_ context.Context, changes []model.FileChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileChanges = append(m.fileChanges, changes...)
	return nil
}

func (m *MemStore) ReplaceCochange(_ context.Context, pairs []model.Cochange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cochange = make(map[[2]int64]model.Cochange, len(pairs))
	for _, p := range pairs {
		m.cochange[[2]int64{p.FileA, p.FileB}] = p
	}
	return nil
}

func (m *MemStore) ReplaceHyperedges(_ context.Context, edges []model.Hyperedge, members []model.HyperedgeMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hyperedges = make(map[int64]model.Hyperedge, len(edges))
	m.hyperMembers = make(map[int64][]model.HyperedgeMember, len(edges))
	idByCommit := make(map[string]int64, len(edges))
	for _, e := range edges {
		m.nextHyperID++
		e.ID = m.nextHyperID
		m.hyperedges[e.ID] = e
		idByCommit[e.CommitHash] = e.ID
	}
	for _, mem := range members {
		m.hyperMembers[mem.HyperedgeID] = append(m.hyperMembers[mem.HyperedgeID], mem)
	}
	return nil
}

func (m *MemStore) WriteFileStats(_ context.Context, stats []model.FileStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range stats {
		m.fileStats[st.FileID] = st
	}
	return nil
}

func (m *MemStore) ComplexityByFile(_ context.Context) (map[int64]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := make(map[int64]float64)
	count := make(map[int64]int)
	for _, cm := range m.complexity {
		sym, ok := m.symbols[cm.SymbolID]
		if !ok {
			continue
		}
		sum[sym.FileID] += float64(cm.CognitiveComplexity)
		count[sym.FileID]++
	}
	out := make(map[int64]float64, len(sum))
	for fileID, total := range sum {
		out[fileID] = total / float64(count[fileID])
	}
	return out, nil
}

func (m *MemStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statsLocked(), nil
}

func (m *MemStore) statsLocked() Stats {
	clusterIDs := make(map[int]bool)
	for _, c := range m.clusters {
		clusterIDs[c.ClusterID] = true
	}
	return Stats{
		FileCount:    len(m.files),
		SymbolCount:  len(m.symbols),
		EdgeCount:    len(m.edges),
		ClusterCount: len(clusterIDs),
		CommitCount:  len(m.commits),
	}
}

func (m *MemStore) RecordSnapshot(_ context.Context, runID string, createdAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshot{RunID: runID, CreatedAt: createdAt, Stats: m.statsLocked()})
	return nil
}

var _ Store = (*MemStore)(nil)
