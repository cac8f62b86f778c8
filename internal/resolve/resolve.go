// Package resolve implements spec component C5: turning the raw,
// unresolved model.Reference records extractors produce into resolved
// model.Edge rows between symbol ids, plus the file-level edge
// aggregation that follows from them.
//
// The algorithm is freshly written to spec.md §4.5's candidate-ranking
// rules; only the overall shape — a Resolver built once per run from
// known-file/known-symbol indexes, exposing a bulk ResolveAll — is
// grounded in onedusk-pd/internal/graph/resolve.go, which solves a
// different problem (import-specifier-to-file-path resolution for the
// teacher's graph builder, not symbol-reference resolution).
package resolve

import (
	"path/filepath"
	"sort"

	"github.com/dusk-indust/roam/internal/model"
)

// Resolver holds the indexes needed to resolve a batch of references:
// symbol name lookup, and each symbol's owning file and directory.
type Resolver struct {
	byName     map[string][]model.Symbol
	fileOfSym  map[int64]int64  // symbol id -> file id
	dirOfSym   map[int64]string // symbol id -> directory of its file
	fileDir    map[int64]string // file id -> directory
	topLevel   map[int64][]model.Symbol // file id -> its file-scope symbols
}

// NewResolver indexes every known file and symbol once, ahead of
// resolving the whole batch of references produced by extraction.
func NewResolver(files []model.File, symbols []model.Symbol) *Resolver {
	r := &Resolver{
		byName:    make(map[string][]model.Symbol),
		fileOfSym: make(map[int64]int64, len(symbols)),
		dirOfSym:  make(map[int64]string, len(symbols)),
		fileDir:   make(map[int64]string, len(files)),
		topLevel:  make(map[int64][]model.Symbol),
	}

	for _, f := range files {
		r.fileDir[f.ID] = filepath.Dir(f.Path)
	}
	for _, s := range symbols {
		r.byName[s.Name] = append(r.byName[s.Name], s)
		r.fileOfSym[s.ID] = s.FileID
		r.dirOfSym[s.ID] = r.fileDir[s.FileID]
		if s.ParentID == nil {
			r.topLevel[s.FileID] = append(r.topLevel[s.FileID], s)
		}
	}
	return r
}

// ResolveAll resolves every reference against the index, drops unresolved
// and self-edges, and dedupes by (source, target, kind).
func (r *Resolver) ResolveAll(refs []model.Reference, pathToFileID map[string]int64) []model.Edge {
	seen := make(map[[3]int64]bool)
	var edges []model.Edge

	for _, ref := range refs {
		sourceFileID, ok := pathToFileID[ref.SourceFile]
		if !ok {
			continue
		}

		sourceID, ok := r.resolveSource(ref, sourceFileID)
		if !ok {
			continue
		}
		targetID, ok := r.resolveTarget(ref.TargetName, ref.Kind, sourceFileID)
		if !ok {
			continue
		}
		if sourceID == targetID {
			continue // drop self-edges
		}

		key := [3]int64{sourceID, targetID, int64(hashKind(ref.Kind))}
		if seen[key] {
			continue
		}
		seen[key] = true

		edges = append(edges, model.Edge{
			SourceSymbolID: sourceID,
			TargetSymbolID: targetID,
			Kind:           ref.Kind,
			Line:           ref.Line,
		})
	}
	return edges
}

// resolveSource resolves a reference's source side: by name within the
// source file when given, else the file's unique top-level symbol.
func (r *Resolver) resolveSource(ref model.Reference, sourceFileID int64) (int64, bool) {
	if ref.SourceName != nil {
		candidates := r.byName[*ref.SourceName]
		for _, c := range candidates {
			if c.FileID == sourceFileID {
				return c.ID, true
			}
		}
		return 0, false
	}

	top := r.topLevel[sourceFileID]
	if len(top) == 1 {
		return top[0].ID, true
	}
	return 0, false // ambiguous or file has no top-level symbol
}

// resolveTarget applies spec.md §4.5's candidate ranking: same-file >
// same-directory exported > any exported; tie-break by callable-kind
// match, then ascending id.
func (r *Resolver) resolveTarget(name string, kind model.EdgeKind, sourceFileID int64) (int64, bool) {
	candidates := r.byName[name]
	if len(candidates) == 0 {
		return 0, false
	}

	sourceDir := r.fileDir[sourceFileID]
	wantsCallable := kind == model.EdgeCall

	bucket := func(s model.Symbol) int {
		switch {
		case s.FileID == sourceFileID:
			return 0
		case s.IsExported && r.fileDir[s.FileID] == sourceDir:
			return 1
		case s.IsExported:
			return 2
		default:
			return 3
		}
	}

	best := -1
	var bestSym model.Symbol
	for _, c := range candidates {
		b := bucket(c)
		if b == 3 {
			continue // not visible: neither same-file nor exported
		}
		if best == -1 || better(c, bestSym, b, best, wantsCallable) {
			best = b
			bestSym = c
		}
	}
	if best == -1 {
		return 0, false
	}
	return bestSym.ID, true
}

// better reports whether candidate c (in bucket cb) should replace the
// current best (in bucket bb), applying the tie-break rules: lower bucket
// wins; within a bucket, callable-kind match wins; then lowest id.
func better(c, best model.Symbol, cb, bb int, wantsCallable bool) bool {
	if cb != bb {
		return cb < bb
	}
	cCallable := model.CallableKinds[c.Kind]
	bCallable := model.CallableKinds[best.Kind]
	if wantsCallable && cCallable != bCallable {
		return cCallable
	}
	return c.ID < best.ID
}

func hashKind(k model.EdgeKind) int {
	// Small, stable per-process ordinal; only used as a dedup key
	// component, never persisted or compared across runs.
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

// BuildFileEdges aggregates resolved symbol edges into file-level edges
// per spec.md §4.5: pairs with source_file != target_file, symbol_count
// = distinct underlying symbol edges, kind = "imports" if any underlying
// kind is import/reference, else "uses".
func BuildFileEdges(edges []model.Edge, fileOfSymbol map[int64]int64) []model.FileEdge {
	type key struct{ src, dst int64 }
	agg := make(map[key]*model.FileEdge)

	for _, e := range edges {
		srcFile, ok1 := fileOfSymbol[e.SourceSymbolID]
		dstFile, ok2 := fileOfSymbol[e.TargetSymbolID]
		if !ok1 || !ok2 || srcFile == dstFile {
			continue
		}
		k := key{srcFile, dstFile}
		fe, exists := agg[k]
		if !exists {
			fe = &model.FileEdge{SourceFileID: srcFile, TargetFileID: dstFile, Kind: model.FileEdgeUses}
			agg[k] = fe
		}
		fe.SymbolCount++
		if e.Kind == model.EdgeImport || e.Kind == model.EdgeReference {
			fe.Kind = model.FileEdgeImports
		}
	}

	out := make([]model.FileEdge, 0, len(agg))
	for _, fe := range agg {
		out = append(out, *fe)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceFileID != out[j].SourceFileID {
			return out[i].SourceFileID < out[j].SourceFileID
		}
		return out[i].TargetFileID < out[j].TargetFileID
	})
	return out
}
