// Package extract implements spec component C4: per-language symbol and
// reference extraction over a parsed tree-sitter AST. It generalizes
// onedusk-pd's per-language walkers (treesitter_go.go et al.) to emit the
// richer Symbol/Reference records spec.md §4.4 requires, deferring all
// cross-file resolution to internal/resolve.
package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/roam/internal/model"
)

// Output is what one file's extraction pass produces.
type Output struct {
	Symbols []model.Symbol
	Refs    []model.Reference
}

// Extractor walks a parsed AST and produces symbols/references for one
// file. FileID is not yet known at extraction time (symbols aren't
// inserted until after the whole batch parses), so extractors tag output
// with the file's path; the indexer fills in FileID once the file row is
// upserted, before the symbols are inserted.
type Extractor interface {
	Extract(root *tree_sitter.Node, source []byte, filePath string) Output
}

// registry is populated at process start by each language file's init().
var registry = map[model.Language]Extractor{}

// register is called from each language's init() function.
func register(lang model.Language, e Extractor) {
	registry[lang] = e
}

// For returns the extractor registered for lang, or nil if none is.
func For(lang model.Language) Extractor {
	return registry[lang]
}

// lineOf converts a tree-sitter 0-indexed row to a 1-indexed source line.
func lineOf(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func endLineOf(n *tree_sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}
