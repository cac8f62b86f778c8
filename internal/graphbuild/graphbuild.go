// Package graphbuild implements spec component C9: materializing the
// in-memory directed symbol and file graphs that internal/analytics runs
// over, as derived views pulled from the store. Grounded in
// onedusk-pd/internal/graph/cluster.go's buildAdjacency (single pass over
// all edges, one adjacency map entry per known node).
package graphbuild

import "github.com/dusk-indust/roam/internal/model"

// SymbolNode is a symbol graph node's carried attributes (spec §4.9).
type SymbolNode struct {
	ID            int64
	Name          string
	Kind          model.SymbolKind
	QualifiedName string
	FilePath      string
}

// SymbolEdge merges duplicate (source, target, kind) triples into one.
type SymbolEdge struct {
	Source int64
	Target int64
	Kind   model.EdgeKind
}

// SymbolGraph is a directed graph keyed by symbol id.
type SymbolGraph struct {
	Nodes map[int64]SymbolNode
	Out    map[int64][]SymbolEdge
	In     map[int64][]SymbolEdge
}

// Successors returns the distinct node ids reachable via one outgoing edge.
func (g *SymbolGraph) Successors(id int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, e := range g.Out[id] {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	return out
}

// BuildSymbolGraph materializes the symbol graph from store rows, merging
// duplicate edges into one per (source, target, kind).
func BuildSymbolGraph(symbols []model.Symbol, files map[int64]model.File, edges []model.Edge) *SymbolGraph {
	g := &SymbolGraph{
		Nodes: make(map[int64]SymbolNode, len(symbols)),
		Out:   make(map[int64][]SymbolEdge),
		In:    make(map[int64][]SymbolEdge),
	}

	for _, s := range symbols {
		path := ""
		if f, ok := files[s.FileID]; ok {
			path = f.Path
		}
		g.Nodes[s.ID] = SymbolNode{
			ID:            s.ID,
			Name:          s.Name,
			Kind:          s.Kind,
			QualifiedName: s.QualifiedName,
			FilePath:      path,
		}
		if _, ok := g.Out[s.ID]; !ok {
			g.Out[s.ID] = nil
		}
		if _, ok := g.In[s.ID]; !ok {
			g.In[s.ID] = nil
		}
	}

	seen := make(map[[3]int64]bool, len(edges))
	for _, e := range edges {
		key := [3]int64{e.SourceSymbolID, e.TargetSymbolID, int64(kindOrdinal(e.Kind))}
		if seen[key] {
			continue
		}
		seen[key] = true
		se := SymbolEdge{Source: e.SourceSymbolID, Target: e.TargetSymbolID, Kind: e.Kind}
		g.Out[e.SourceSymbolID] = append(g.Out[e.SourceSymbolID], se)
		g.In[e.TargetSymbolID] = append(g.In[e.TargetSymbolID], se)
	}
	return g
}

// FileNode is a file graph node's carried attributes (spec §4.9).
type FileNode struct {
	ID       int64
	Path     string
	Language model.Language
}

// FileGraphEdge carries the aggregated kind and symbol count.
type FileGraphEdge struct {
	Source      int64
	Target      int64
	Kind        model.FileEdgeKind
	SymbolCount int
}

// FileGraph is a directed graph keyed by file id.
type FileGraph struct {
	Nodes map[int64]FileNode
	Out   map[int64][]FileGraphEdge
	In    map[int64][]FileGraphEdge
}

func (g *FileGraph) Successors(id int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, e := range g.Out[id] {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	return out
}

// BuildFileGraph materializes the file graph from already-aggregated
// FileEdge rows (one per source/target pair per resolve.BuildFileEdges).
func BuildFileGraph(files []model.File, fileEdges []model.FileEdge) *FileGraph {
	g := &FileGraph{
		Nodes: make(map[int64]FileNode, len(files)),
		Out:   make(map[int64][]FileGraphEdge),
		In:    make(map[int64][]FileGraphEdge),
	}
	for _, f := range files {
		g.Nodes[f.ID] = FileNode{ID: f.ID, Path: f.Path, Language: f.Language}
		if _, ok := g.Out[f.ID]; !ok {
			g.Out[f.ID] = nil
		}
		if _, ok := g.In[f.ID]; !ok {
			g.In[f.ID] = nil
		}
	}
	for _, fe := range fileEdges {
		e := FileGraphEdge{Source: fe.SourceFileID, Target: fe.TargetFileID, Kind: fe.Kind, SymbolCount: fe.SymbolCount}
		g.Out[fe.SourceFileID] = append(g.Out[fe.SourceFileID], e)
		g.In[fe.TargetFileID] = append(g.In[fe.TargetFileID], e)
	}
	return g
}

func kindOrdinal(k model.EdgeKind) int {
	switch k {
	case model.EdgeCall:
		return 1
	case model.EdgeUses:
		return 2
	case model.EdgeInherits:
		return 3
	case model.EdgeImplements:
		return 4
	case model.EdgeUsesTrait:
		return 5
	case model.EdgeTemplate:
		return 6
	case model.EdgeImport:
		return 7
	case model.EdgeReference:
		return 8
	case model.EdgeTemplateRef:
		return 9
	default:
		return 0
	}
}
