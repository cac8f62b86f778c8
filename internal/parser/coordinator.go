package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/roam/internal/errs"
	"github.com/dusk-indust/roam/internal/extract"
	"github.com/dusk-indust/roam/internal/model"
)

// Coordinator dispatches each file to its language's tree-sitter grammar
// and extractor. Grounded in onedusk-pd/internal/graph/treesitter.go's
// TreeSitterParser, generalized with the extension map, embedded-script
// preprocessing, and a bounded worker pool for ParseAll (spec §5).
type Coordinator struct {
	languages map[model.Language]*tree_sitter.Language
}

// NewCoordinator registers the four Tier-1 grammars.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		languages: map[model.Language]*tree_sitter.Language{
			model.LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			model.LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			model.LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			model.LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

// Parse parses a single in-memory source buffer and returns the combined
// symbol/reference extraction for it.
func (c *Coordinator) Parse(path string, source []byte, lang model.Language) (*Result, error) {
	tsLang, ok := c.languages[lang]
	if !ok {
		return nil, fmt.Errorf("parser: unsupported language %s", lang)
	}
	ext := extract.For(lang)
	if ext == nil {
		return nil, fmt.Errorf("parser: no extractor for language %s", lang)
	}

	tsParser := tree_sitter.NewParser()
	defer tsParser.Close()
	if err := tsParser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("parser: set language %s: %w", lang, err)
	}

	tree := tsParser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser: tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	out := ext.Extract(tree.RootNode(), source, path)
	return &Result{
		Path:    path,
		Lang:    lang,
		LOC:     countLOC(source),
		Symbols: out.Symbols,
		Refs:    out.Refs,
	}, nil
}

// ParseTree parses source for lang and returns its root node alongside a
// closer the caller must invoke once done walking it. Used by the indexer
// to run internal/complexity over the same AST extraction already
// traversed, without ParseAll needing to keep every file's tree resident
// in memory at once.
func (c *Coordinator) ParseTree(source []byte, lang model.Language) (*tree_sitter.Node, func(), error) {
	tsLang, ok := c.languages[lang]
	if !ok {
		return nil, nil, fmt.Errorf("parser: unsupported language %s", lang)
	}

	tsParser := tree_sitter.NewParser()
	if err := tsParser.SetLanguage(tsLang); err != nil {
		tsParser.Close()
		return nil, nil, fmt.Errorf("parser: set language %s: %w", lang, err)
	}

	tree := tsParser.Parse(source, nil)
	if tree == nil {
		tsParser.Close()
		return nil, nil, fmt.Errorf("parser: tree-sitter returned nil tree")
	}

	closer := func() {
		tree.Close()
		tsParser.Close()
	}
	return tree.RootNode(), closer, nil
}

// FileResult pairs a discovered path with its parse outcome (nil Result when
// the file could not be read or has no grammar; both are recorded in the
// summary and are non-fatal).
type FileResult struct {
	Path   string
	Result *Result
}

// ParseAll parses every path under root concurrently, bounded to
// runtime.NumCPU() workers (capped at 8, matching spec §5's resource
// model), and records per-file failures in summary instead of aborting
// the run.
func (c *Coordinator) ParseAll(ctx context.Context, root string, paths []string, summary *errs.Summary) []FileResult {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = FileResult{Path: p}
			r, err := c.parseFile(root, p, summary)
			if err != nil {
				return nil // recorded in summary; not fatal to the batch
			}
			results[i].Result = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Coordinator) parseFile(root, relPath string, summary *errs.Summary) (*Result, error) {
	source, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		summary.Record(errs.KindUnreadableSource)
		return nil, err
	}

	if IsHostForEmbeddedScripts(relPath) {
		return c.parseEmbedded(relPath, source, summary)
	}

	lang, ok := LanguageForPath(relPath)
	if !ok {
		summary.Record(errs.KindNoGrammar)
		return nil, fmt.Errorf("parser: no grammar for %s", relPath)
	}

	r, err := c.Parse(relPath, source, lang)
	if err != nil {
		// Counted; the file is still recorded, with no symbols or references.
		summary.Record(errs.KindParseError)
		return &Result{Path: relPath, Lang: lang, LOC: countLOC(source)}, nil
	}
	return r, nil
}

// parseEmbedded parses every recognized script block in a host document
// and merges the results, tagging the merged result with the host
// document's own line count.
func (c *Coordinator) parseEmbedded(relPath string, source []byte, summary *errs.Summary) (*Result, error) {
	blocks := ExtractEmbeddedBlocks(source)
	if len(blocks) == 0 {
		return &Result{Path: relPath, Lang: model.LangUnknown, LOC: countLOC(source)}, nil
	}

	merged := &Result{Path: relPath, LOC: countLOC(source)}
	for lang, buf := range blocks {
		r, err := c.Parse(relPath, buf, lang)
		if err != nil {
			summary.Record(errs.KindParseError)
			continue
		}
		if merged.Lang == "" {
			merged.Lang = lang
		}
		merged.Symbols = append(merged.Symbols, r.Symbols...)
		merged.Refs = append(merged.Refs, r.Refs...)
	}
	return merged, nil
}

func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	return bytes.Count(source, []byte{'\n'}) + 1
}
