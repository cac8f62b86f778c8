// Package parser implements spec component C3: dispatching each discovered
// file to the tree-sitter grammar for its language and handing the parsed
// AST to the matching internal/extract.Extractor. Grounded in
// onedusk-pd/internal/graph/{parser,treesitter}.go, generalized with an
// extension→language map, embedded-script-block preprocessing, and a
// bounded errgroup worker pool (spec §5). There is no regex-only language
// set: every mapped extension is parsed with a tree-sitter grammar.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/roam/internal/model"
)

// Result holds everything one file's parse pass produced.
type Result struct {
	Path    string
	Lang    model.Language
	LOC     int
	Symbols []model.Symbol
	Refs    []model.Reference
}

// extByLanguage maps a lowercase file extension to the language whose
// grammar should parse it. A file whose extension is not present here (and
// that is not an embedded-script host) is counted as no_grammar in the run
// summary and skipped by the coordinator, with no Result; the run continues.
var extByLanguage = map[string]model.Language{
	".go":    model.LangGo,
	".ts":    model.LangTypeScript,
	".tsx":   model.LangTypeScript,
	".js":    model.LangTypeScript, // tree-sitter-typescript parses plain JS too
	".jsx":   model.LangTypeScript,
	".mjs":   model.LangTypeScript,
	".cjs":   model.LangTypeScript,
	".py":    model.LangPython,
	".pyi":   model.LangPython,
	".rs":    model.LangRust,
}

// LanguageForPath returns the language a path's extension maps to, and
// false if the extension is not recognized.
func LanguageForPath(path string) (model.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extByLanguage[ext]
	return lang, ok
}

// IsHostForEmbeddedScripts reports whether path may contain fenced or
// tagged script blocks in a non-Tier-1 host document (markdown, HTML,
// Vue/Svelte single-file components) that embedded.go should scan.
func IsHostForEmbeddedScripts(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx", ".html", ".vue", ".svelte":
		return true
	default:
		return false
	}
}
