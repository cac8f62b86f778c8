package extract

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/roam/internal/model"
)

func init() {
	register(model.LangGo, &goExtractor{})
}

// goExtractor walks a Go AST, adapted from
// onedusk-pd/internal/graph/treesitter_go.go's cursor-based walk, widened
// to track enclosing-function context (for call-site source names) and
// method receivers (for parent struct linkage).
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) Output {
	var out Output
	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, "", &out)
	return out
}

// walk descends the AST, threading enclosingFunc (the qualified name of
// the nearest enclosing function/method, or "" at file scope) so call
// expressions can be attributed to their caller.
func (e *goExtractor) walk(cursor *tree_sitter.TreeCursor, source []byte, filePath, enclosingFunc string, out *Output) {
	node := cursor.Node()
	nextEnclosing := enclosingFunc

	switch node.Kind() {
	case "function_declaration":
		if sym := e.extractFunction(node, source); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
			nextEnclosing = sym.QualifiedName
		}

	case "method_declaration":
		if sym := e.extractMethod(node, source); sym != nil {
			out.Symbols = append(out.Symbols, *sym)
			nextEnclosing = sym.QualifiedName
		}

	case "type_declaration":
		out.Symbols = append(out.Symbols, e.extractTypeDeclaration(node, source)...)

	case "const_declaration", "var_declaration":
		out.Symbols = append(out.Symbols, e.extractValueDeclaration(node, source)...)

	case "import_spec":
		if ref := e.extractImport(node, source, filePath); ref != nil {
			out.Refs = append(out.Refs, *ref)
		}

	case "call_expression":
		if ref := e.extractCall(node, source, filePath, enclosingFunc); ref != nil {
			out.Refs = append(out.Refs, *ref)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, filePath, nextEnclosing, out)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, filePath, nextEnclosing, out)
		}
		cursor.GotoParent()
	}
}

func (e *goExtractor) extractFunction(node *tree_sitter.Node, source []byte) *model.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	return &model.Symbol{
		Name:          name,
		QualifiedName: name,
		Kind:          model.SymbolFunction,
		Signature:     signatureOf(node, source),
		LineStart:     lineOf(node),
		LineEnd:       endLineOf(node),
		Docstring:     leadingComment(node, source),
		IsExported:    isGoExported(name),
		Visibility:    visibilityOf(isGoExported(name)),
	}
}

func (e *goExtractor) extractMethod(node *tree_sitter.Node, source []byte) *model.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	receiver := receiverTypeName(node, source)
	qualified := name
	if receiver != "" {
		qualified = receiver + "." + name
	}
	return &model.Symbol{
		Name:          name,
		QualifiedName: qualified,
		Kind:          model.SymbolMethod,
		Signature:     signatureOf(node, source),
		LineStart:     lineOf(node),
		LineEnd:       endLineOf(node),
		Docstring:     leadingComment(node, source),
		IsExported:    isGoExported(name),
		Visibility:    visibilityOf(isGoExported(name)),
		ParentName:    receiver,
	}
}

// receiverTypeName extracts "Foo" from a receiver clause like "(f *Foo)".
func receiverTypeName(node *tree_sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := recv.Utf8Text(source)
	text = strings.Trim(text, "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	typ := fields[len(fields)-1]
	return strings.TrimPrefix(typ, "*")
}

func (e *goExtractor) extractTypeDeclaration(node *tree_sitter.Node, source []byte) []model.Symbol {
	var result []model.Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}
		if sym := e.extractTypeSpec(child, source); sym != nil {
			result = append(result, *sym)
		}
	}
	return result
}

func (e *goExtractor) extractTypeSpec(node *tree_sitter.Node, source []byte) *model.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)

	kind := model.SymbolStruct
	if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Kind() == "interface_type" {
		kind = model.SymbolInterface
	}

	return &model.Symbol{
		Name:          name,
		QualifiedName: name,
		Kind:          kind,
		LineStart:     lineOf(node),
		LineEnd:       endLineOf(node),
		Docstring:     leadingComment(node, source),
		IsExported:    isGoExported(name),
		Visibility:    visibilityOf(isGoExported(name)),
	}
}

func (e *goExtractor) extractValueDeclaration(node *tree_sitter.Node, source []byte) []model.Symbol {
	kind := model.SymbolVariable
	if node.Kind() == "const_declaration" {
		kind = model.SymbolConstant
	}

	var result []model.Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "const_spec" && spec.Kind() != "var_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		var defaultValue string
		if valueNode := spec.ChildByFieldName("value"); valueNode != nil {
			defaultValue = valueNode.Utf8Text(source)
		}
		result = append(result, model.Symbol{
			Name:          name,
			QualifiedName: name,
			Kind:          kind,
			LineStart:     lineOf(spec),
			LineEnd:       endLineOf(spec),
			IsExported:    isGoExported(name),
			Visibility:    visibilityOf(isGoExported(name)),
			DefaultValue:  defaultValue,
		})
	}
	return result
}

func (e *goExtractor) extractImport(node *tree_sitter.Node, source []byte, filePath string) *model.Reference {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return nil
	}
	importPath, err := strconv.Unquote(pathNode.Utf8Text(source))
	if err != nil || importPath == "" {
		return nil
	}
	return &model.Reference{
		TargetName: importPath,
		Kind:       model.EdgeImport,
		Line:       lineOf(node),
		SourceFile: filePath,
	}
}

func (e *goExtractor) extractCall(node *tree_sitter.Node, source []byte, filePath, enclosingFunc string) *model.Reference {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}

	var callee string
	switch fnNode.Kind() {
	case "identifier", "selector_expression":
		callee = fnNode.Utf8Text(source)
	default:
		return nil
	}
	if callee == "" {
		return nil
	}
	// Use only the final selector segment ("pkg.Foo" -> "Foo") since
	// cross-file resolution works on symbol names, not import-qualified
	// paths; when several symbols share the name, the resolver's
	// same-file / same-directory / exported ranking picks one.
	if idx := strings.LastIndex(callee, "."); idx != -1 {
		callee = callee[idx+1:]
	}

	var sourceName *string
	if enclosingFunc != "" {
		s := enclosingFunc
		sourceName = &s
	}

	return &model.Reference{
		SourceName: sourceName,
		TargetName: callee,
		Kind:       model.EdgeCall,
		Line:       lineOf(node),
		SourceFile: filePath,
	}
}

func isGoExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func visibilityOf(exported bool) string {
	if exported {
		return "public"
	}
	return "private"
}

// signatureOf renders a function/method's parameter and result clause
// verbatim from source, skipping the body.
func signatureOf(node *tree_sitter.Node, source []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	if nameNode == nil || paramsNode == nil {
		return ""
	}
	sig := nameNode.Utf8Text(source) + paramsNode.Utf8Text(source)
	if resultNode := node.ChildByFieldName("result"); resultNode != nil {
		sig += " " + resultNode.Utf8Text(source)
	}
	return sig
}

// leadingComment returns the text of a comment node immediately preceding
// node, if tree-sitter attached one as a previous sibling.
func leadingComment(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	text := prev.Utf8Text(source)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}
