package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/roam/internal/model"
)

func init() {
	register(model.LangPython, &pyExtractor{})
}

// pyExtractor is grounded in onedusk-pd/internal/graph/treesitter_py.go,
// widened to track the enclosing class (for method parent linkage) and
// enclosing def (for call-site attribution).
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) Output {
	var out Output
	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, "", "", &out)
	return out
}

func (e *pyExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, filePath, enclosingClass, enclosingFunc string, out *Output) {
	node := cursor.Node()
	nextClass, nextFunc := enclosingClass, enclosingFunc

	switch node.Kind() {
	case "function_definition":
		name := fieldText(node, "name", source)
		if name != "" {
			kind := model.SymbolFunction
			qualified := name
			if enclosingClass != "" {
				kind = model.SymbolMethod
				qualified = enclosingClass + "." + name
			}
			out.Symbols = append(out.Symbols, model.Symbol{
				Name: name, QualifiedName: qualified, Kind: kind,
				LineStart: lineOf(node), LineEnd: endLineOf(node),
				Docstring:  pyDocstring(node, source),
				IsExported: isPyExported(name),
				Visibility: visibilityOf(isPyExported(name)),
				ParentName: enclosingClass,
			})
			nextFunc = qualified
		}

	case "class_definition":
		name := fieldText(node, "name", source)
		if name != "" {
			out.Symbols = append(out.Symbols, model.Symbol{
				Name: name, QualifiedName: name, Kind: model.SymbolClass,
				LineStart: lineOf(node), LineEnd: endLineOf(node),
				Docstring:  pyDocstring(node, source),
				IsExported: isPyExported(name),
				Visibility: visibilityOf(isPyExported(name)),
			})
			nextClass = name
		}

	case "import_statement":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "dotted_name" {
				if mod := child.Utf8Text(source); mod != "" {
					out.Refs = append(out.Refs, model.Reference{
						TargetName: mod, Kind: model.EdgeImport, Line: lineOf(node), SourceFile: filePath,
					})
				}
			}
		}

	case "import_from_statement":
		if mod := fieldText(node, "module_name", source); mod != "" {
			out.Refs = append(out.Refs, model.Reference{
				TargetName: mod, Kind: model.EdgeImport, Line: lineOf(node), SourceFile: filePath,
			})
		}

	case "call":
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			callee := fnNode.Utf8Text(source)
			if idx := strings.LastIndex(callee, "."); idx != -1 {
				callee = callee[idx+1:]
			}
			if callee != "" {
				var sourceName *string
				if nextFunc != "" {
					s := nextFunc
					sourceName = &s
				}
				out.Refs = append(out.Refs, model.Reference{
					SourceName: sourceName, TargetName: callee, Kind: model.EdgeCall,
					Line: lineOf(node), SourceFile: filePath,
				})
			}
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

func fieldText(node *tree_sitter.Node, field string, source []byte) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return n.Utf8Text(source)
}

// pyDocstring returns the first statement's string literal if it looks
// like a docstring, per PEP 257.
func pyDocstring(node *tree_sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first == nil || first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}
	text := strings.Trim(str.Utf8Text(source), "\"'")
	return strings.TrimSpace(text)
}

func isPyExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}
