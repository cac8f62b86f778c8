package parser

import (
	"regexp"
	"strings"

	"github.com/dusk-indust/roam/internal/model"
)

// fencedBlockRE matches a markdown fenced code block, capturing the info
// string (for language detection) and the body.
var fencedBlockRE = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\\n(.*?)\\n```")

// scriptTagRE matches a <script> or <script lang="..."> tag's contents, as
// used by Vue/Svelte single-file components and plain HTML.
var scriptTagRE = regexp.MustCompile(`(?s)<script(?:\s+lang=["']?(\w+)["']?)?[^>]*>(.*?)</script>`)

// scriptLangAlias maps a fence info-string or lang= attribute to the
// language whose grammar should parse the extracted block.
var scriptLangAlias = map[string]model.Language{
	"go": model.LangGo, "golang": model.LangGo,
	"ts": model.LangTypeScript, "typescript": model.LangTypeScript,
	"tsx": model.LangTypeScript, "jsx": model.LangTypeScript,
	"js": model.LangTypeScript, "javascript": model.LangTypeScript,
	"py": model.LangPython, "python": model.LangPython,
	"rs": model.LangRust, "rust": model.LangRust,
}

// ExtractEmbeddedBlocks scans a host document (markdown, HTML, Vue/Svelte
// SFC) for fenced or tagged script blocks and returns one pseudo-source
// buffer per language found, with every line outside that language's
// blocks blanked out so tree-sitter's node line numbers still map back to
// the original file.
func ExtractEmbeddedBlocks(source []byte) map[model.Language][]byte {
	text := string(source)
	lineCount := strings.Count(text, "\n") + 1
	blanks := make([][]byte, 0, lineCount)
	_ = blanks

	byLang := map[model.Language][]byte{}
	lineOf := func(offset int) int {
		return strings.Count(text[:offset], "\n")
	}

	applyMatch := func(lang model.Language, bodyStart, bodyEnd int) {
		buf, ok := byLang[lang]
		if !ok {
			buf = blankLines(text)
		}
		start := lineOf(bodyStart)
		end := lineOf(bodyEnd)
		srcLines := strings.Split(text, "\n")
		dstLines := strings.Split(string(buf), "\n")
		for i := start; i <= end && i < len(srcLines) && i < len(dstLines); i++ {
			dstLines[i] = srcLines[i]
		}
		byLang[lang] = []byte(strings.Join(dstLines, "\n"))
	}

	for _, m := range fencedBlockRE.FindAllSubmatchIndex(source, -1) {
		info := strings.ToLower(strings.TrimSpace(string(source[m[2]:m[3]])))
		lang, ok := scriptLangAlias[info]
		if !ok {
			continue
		}
		applyMatch(lang, m[4], m[5])
	}

	for _, m := range scriptTagRE.FindAllSubmatchIndex(source, -1) {
		langAttr := "js"
		if m[2] != -1 {
			langAttr = strings.ToLower(string(source[m[2]:m[3]]))
		}
		lang, ok := scriptLangAlias[langAttr]
		if !ok {
			continue
		}
		applyMatch(lang, m[4], m[5])
	}

	return byLang
}

// blankLines returns a copy of text with every line replaced by an
// empty string, preserving the original line count.
func blankLines(text string) []byte {
	n := strings.Count(text, "\n")
	return []byte(strings.Repeat("\n", n))
}
