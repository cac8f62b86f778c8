package extract

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roam/internal/model"
)

func parseGo(t *testing.T, source string) *tree_sitter.Node {
	t.Helper()
	p := tree_sitter.NewParser()
	defer p.Close()
	require.NoError(t, p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_go.Language())))
	tree := p.Parse([]byte(source), nil)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

func findSymbol(symbols []model.Symbol, name string) *model.Symbol {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func TestGoExtractor_FunctionAndCall(t *testing.T) {
	src := `package main

func Helper() {}

func Main() {
	Helper()
}
`
	root := parseGo(t, src)
	out := (&goExtractor{}).Extract(root, []byte(src), "main.go")

	helper := findSymbol(out.Symbols, "Helper")
	require.NotNil(t, helper)
	assert.Equal(t, model.SymbolFunction, helper.Kind)
	assert.True(t, helper.IsExported)

	var callRef *model.Reference
	for i := range out.Refs {
		if out.Refs[i].Kind == model.EdgeCall && out.Refs[i].TargetName == "Helper" {
			callRef = &out.Refs[i]
		}
	}
	require.NotNil(t, callRef)
	require.NotNil(t, callRef.SourceName)
	assert.Equal(t, "Main", *callRef.SourceName)
}

func TestGoExtractor_MethodParentedToReceiver(t *testing.T) {
	src := `package main

type Server struct{}

func (s *Server) Start() {}
`
	root := parseGo(t, src)
	out := (&goExtractor{}).Extract(root, []byte(src), "server.go")

	start := findSymbol(out.Symbols, "Start")
	require.NotNil(t, start)
	assert.Equal(t, model.SymbolMethod, start.Kind)
	assert.Equal(t, "Server", start.ParentName)
	assert.Equal(t, "Server.Start", start.QualifiedName)
}

func TestGoExtractor_UnexportedIsPrivate(t *testing.T) {
	src := `package main

func helper() {}
`
	root := parseGo(t, src)
	out := (&goExtractor{}).Extract(root, []byte(src), "p.go")

	helper := findSymbol(out.Symbols, "helper")
	require.NotNil(t, helper)
	assert.False(t, helper.IsExported)
	assert.Equal(t, "private", helper.Visibility)
}

func TestGoExtractor_Import(t *testing.T) {
	src := `package main

import "fmt"

func main() { fmt.Println("hi") }
`
	root := parseGo(t, src)
	out := (&goExtractor{}).Extract(root, []byte(src), "main.go")

	var found bool
	for _, r := range out.Refs {
		if r.Kind == model.EdgeImport && r.TargetName == "fmt" {
			found = true
		}
	}
	assert.True(t, found, "expected an import reference for fmt")
}
