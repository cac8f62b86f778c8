package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/roam/internal/model"
)

func init() {
	register(model.LangTypeScript, &tsExtractor{})
}

// tsExtractor is grounded in onedusk-pd/internal/graph/treesitter_ts.go,
// widened to walk class bodies for methods (parented to the class) and to
// attribute calls to their enclosing function.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) Output {
	var out Output
	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, "", "", &out)
	return out
}

func (e *tsExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, filePath, enclosingClass, enclosingFunc string, out *Output) {
	node := cursor.Node()
	nextClass, nextFunc := enclosingClass, enclosingFunc

	switch node.Kind() {
	case "function_declaration":
		if sym := e.named(node, source, model.SymbolFunction, ""); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
			nextFunc = sym.QualifiedName
		}

	case "class_declaration":
		if sym := e.named(node, source, model.SymbolClass, ""); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
			nextClass = sym.Name
		}

	case "interface_declaration":
		if sym := e.named(node, source, model.SymbolInterface, ""); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}

	case "enum_declaration":
		if sym := e.named(node, source, model.SymbolEnum, ""); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}

	case "type_alias_declaration":
		if sym := e.named(node, source, model.SymbolInterface, ""); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}

	case "method_definition":
		if sym := e.named(node, source, model.SymbolMethod, enclosingClass); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
			nextFunc = sym.QualifiedName
		}

	case "lexical_declaration":
		out.Symbols = append(out.Symbols, e.extractArrowFunctions(node, source)...)

	case "import_statement":
		if ref := e.extractImport(node, source, filePath); ref != nil {
			out.Refs = append(out.Refs, *ref)
		}

	case "call_expression":
		if ref := e.extractCall(node, source, filePath, nextFunc); ref != nil {
			out.Refs = append(out.Refs, *ref)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, filePath, nextClass, nextFunc, out)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, filePath, nextClass, nextFunc, out)
		}
		cursor.GotoParent()
	}
}

func (e *tsExtractor) named(node *tree_sitter.Node, source []byte, kind model.SymbolKind, parent string) *model.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	qualified := name
	if parent != "" {
		qualified = parent + "." + name
	}
	return &model.Symbol{
		Name: name, QualifiedName: qualified, Kind: kind,
		LineStart: lineOf(node), LineEnd: endLineOf(node),
		IsExported: isTSExported(node),
		Visibility: visibilityOf(isTSExported(node)),
		ParentName: parent,
	}
}

func (e *tsExtractor) extractArrowFunctions(node *tree_sitter.Node, source []byte) []model.Symbol {
	var result []model.Symbol
	exported := isTSExported(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		valueNode := child.ChildByFieldName("value")
		if valueNode == nil || valueNode.Kind() != "arrow_function" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		result = append(result, model.Symbol{
			Name: name, QualifiedName: name, Kind: model.SymbolFunction,
			LineStart: lineOf(child), LineEnd: endLineOf(child),
			IsExported: exported, Visibility: visibilityOf(exported),
		})
	}
	return result
}

func (e *tsExtractor) extractImport(node *tree_sitter.Node, source []byte, filePath string) *model.Reference {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return nil
	}
	importPath := strings.Trim(sourceNode.Utf8Text(source), "\"'`")
	if importPath == "" {
		return nil
	}
	return &model.Reference{TargetName: importPath, Kind: model.EdgeImport, Line: lineOf(node), SourceFile: filePath}
}

func (e *tsExtractor) extractCall(node *tree_sitter.Node, source []byte, filePath, enclosingFunc string) *model.Reference {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}
	var callee string
	switch fnNode.Kind() {
	case "identifier", "member_expression":
		callee = fnNode.Utf8Text(source)
	default:
		return nil
	}
	if idx := strings.LastIndex(callee, "."); idx != -1 {
		callee = callee[idx+1:]
	}
	if callee == "" {
		return nil
	}
	var sourceName *string
	if enclosingFunc != "" {
		s := enclosingFunc
		sourceName = &s
	}
	return &model.Reference{SourceName: sourceName, TargetName: callee, Kind: model.EdgeCall, Line: lineOf(node), SourceFile: filePath}
}

// isTSExported checks whether node's parent is an export_statement.
func isTSExported(node *tree_sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}
