package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/roam/internal/model"
)

func init() {
	register(model.LangRust, &rsExtractor{})
}

// rsExtractor is grounded in onedusk-pd/internal/graph/treesitter_rs.go,
// widened to emit model.Symbol/model.Reference and to attribute impl-block
// methods to their receiver type via ParentName.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) Output {
	var out Output
	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, &out)
	return out
}

func (e *rsExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, filePath string, out *Output) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_item":
		if sym := e.named(node, source, model.SymbolFunction); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}
	case "struct_item":
		if sym := e.named(node, source, model.SymbolStruct); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}
	case "enum_item":
		if sym := e.named(node, source, model.SymbolEnum); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}
	case "trait_item":
		if sym := e.named(node, source, model.SymbolTrait); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
		}
	case "impl_item":
		e.extractImpl(node, source, filePath, out)
	case "use_declaration":
		if ref := e.extractUse(node, source, filePath); ref != nil {
			out.Refs = append(out.Refs, *ref)
		}
	case "call_expression":
		if ref := e.extractCall(node, source, filePath); ref != nil {
			out.Refs = append(out.Refs, *ref)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, filePath, out)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, filePath, out)
		}
		cursor.GotoParent()
	}
}

func (e *rsExtractor) named(node *tree_sitter.Node, source []byte, kind model.SymbolKind) *model.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	return &model.Symbol{
		Name: name, QualifiedName: name, Kind: kind,
		LineStart: lineOf(node), LineEnd: endLineOf(node),
		IsExported: isRustPub(node),
		Visibility: visibilityOf(isRustPub(node)),
	}
}

func (e *rsExtractor) extractImpl(node *tree_sitter.Node, source []byte, filePath string, out *Output) {
	typeNode := node.ChildByFieldName("type")
	var typeName string
	if typeNode != nil {
		typeName = typeNode.Utf8Text(source)
	}

	if traitNode := node.ChildByFieldName("trait"); traitNode != nil && typeNode != nil {
		traitName := traitNode.Utf8Text(source)
		if traitName != "" && typeName != "" {
			out.Refs = append(out.Refs, model.Reference{
				SourceName: &typeName, TargetName: traitName, Kind: model.EdgeImplements,
				Line: lineOf(node), SourceFile: filePath,
			})
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil || child.Kind() != "function_item" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		qualified := name
		if typeName != "" {
			qualified = typeName + "::" + name
		}
		out.Symbols = append(out.Symbols, model.Symbol{
			Name: name, QualifiedName: qualified, Kind: model.SymbolMethod,
			LineStart: lineOf(child), LineEnd: endLineOf(child),
			IsExported: isRustPub(child),
			Visibility: visibilityOf(isRustPub(child)),
			ParentName: typeName,
		})
	}
}

func (e *rsExtractor) extractUse(node *tree_sitter.Node, source []byte, filePath string) *model.Reference {
	argNode := node.ChildByFieldName("argument")
	var path string
	if argNode != nil {
		path = argNode.Utf8Text(source)
	} else {
		path = node.Utf8Text(source)
	}
	if path == "" {
		return nil
	}
	return &model.Reference{TargetName: path, Kind: model.EdgeImport, Line: lineOf(node), SourceFile: filePath}
}

func (e *rsExtractor) extractCall(node *tree_sitter.Node, source []byte, filePath string) *model.Reference {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}
	callee := fnNode.Utf8Text(source)
	if idx := strings.LastIndex(callee, "::"); idx != -1 {
		callee = callee[idx+2:]
	}
	if callee == "" {
		return nil
	}
	return &model.Reference{TargetName: callee, Kind: model.EdgeCall, Line: lineOf(node), SourceFile: filePath}
}

// isRustPub reports whether node has a leading "pub" visibility_modifier
// among its immediate children.
func isRustPub(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "visibility_modifier" {
			return true
		}
	}
	return false
}
