package complexity

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGo(t *testing.T, src string) (*tree_sitter.Node, []byte) {
	t.Helper()
	p := tree_sitter.NewParser()
	defer p.Close()
	require.NoError(t, p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_go.Language())))
	tree := p.Parse([]byte(src), nil)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	return tree.RootNode(), []byte(src)
}

func TestWalk_FlatFunctionHasZeroComplexity(t *testing.T) {
	src := `package main

func Flat() {
	x := 1
	_ = x
}
`
	root, source := parseGo(t, src)
	node := FindNode(root, 3, 6)
	require.NotNil(t, node)

	m := Walk(node, source, 3, 6)
	assert.Equal(t, 0, m.CognitiveComplexity)
}

func TestWalk_NestedIfIncreasesComplexityWithNesting(t *testing.T) {
	src := `package main

func Nested(a, b int) int {
	if a > 0 {
		if b > 0 {
			return a + b
		}
	}
	return 0
}
`
	root, source := parseGo(t, src)
	node := FindNode(root, 3, 10)
	require.NotNil(t, node)

	m := Walk(node, source, 3, 10)
	// outer if: 1 + 0 nesting = 1; inner if: 1 + 1 nesting = 2; total 3.
	assert.Equal(t, 3, m.CognitiveComplexity)
	assert.Equal(t, 2, m.NestingDepth)
	assert.Equal(t, 2, m.ParamCount)
	assert.Equal(t, 2, m.ReturnCount)
}

func TestDerive_CyclomaticDensity(t *testing.T) {
	m := Metrics{CognitiveComplexity: 4, LineCount: 8}
	d := Derive(m)
	assert.Equal(t, 0.5, d.CyclomaticDensity)
}

func TestEstimateDegraded_CountsControlKeywords(t *testing.T) {
	lines := []string{
		"if condition:",
		"    for x in range(10):",
		"        pass",
	}
	m := EstimateDegraded(lines)
	assert.Equal(t, 2, m.CognitiveComplexity)
	assert.Equal(t, 3, m.LineCount)
}
