// Package complexity implements spec component C7: per-symbol cognitive
// complexity and Halstead metrics, walked over the same tree-sitter node
// ranges internal/extract already visited. Grounded in the teacher's
// extractor style (cursor-based recursive walk keyed on node.Kind()) since
// no complexity-analysis library appears anywhere in the retrieval pack.
package complexity

import (
	"math"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// controlFlowKinds adds 1+nesting and increments nesting for the body.
// Union across Go, Python, Rust, TypeScript grammars, matching spec §4.7's
// "language-neutral... fixed union of AST node types."
var controlFlowKinds = map[string]bool{
	"if_statement": true, "if_expression": true,
	"for_statement": true, "for_expression": true, "for_in_statement": true,
	"while_statement": true, "while_expression": true,
	"switch_statement": true, "switch_expression": true, "match_expression": true,
	"try_statement": true, "catch_clause": true,
	"conditional_expression": true, "ternary_expression": true,
}

// continuationKinds add 1 flat, no nesting increment.
var continuationKinds = map[string]bool{
	"else_clause": true, "elif_clause": true, "else_if_clause": true,
	"case_clause": true, "match_arm": true, "when_clause": true,
}

// flowBreakKinds add 1 flat.
var flowBreakKinds = map[string]bool{
	"break_statement": true, "continue_statement": true, "goto_statement": true,
}

// boolOps identify boolean short-circuit operators; matched by the
// literal operator text since most grammars fold them into a generic
// "binary_expression"/"binary_operator" node.
var boolOps = map[string]bool{"&&": true, "||": true, "and": true, "or": true}

// functionKinds are nested function/lambda/closure definitions, which add
// 1 and increment nesting (spec §4.7).
var functionKinds = map[string]bool{
	"function_declaration": true, "function_definition": true, "function_item": true,
	"method_declaration": true, "method_definition": true,
	"arrow_function": true, "lambda": true, "closure_expression": true,
	"function_expression": true,
}

// binaryExprKinds mark nodes whose operator child should be counted for
// Halstead n1/N1 (operators) when a leaf operator token can't otherwise be
// classified directly.
var binaryExprKinds = map[string]bool{
	"binary_expression": true, "binary_operator": true, "boolean_operator": true,
}

// operandKinds are leaf node types counted as Halstead operands (n2/N2).
var operandKinds = map[string]bool{
	"identifier": true, "field_identifier": true, "type_identifier": true,
	"integer_literal": true, "float_literal": true, "string_literal": true,
	"interpreted_string_literal": true, "raw_string_literal": true,
	"true": true, "false": true, "none": true, "nil": true,
	"number": true, "string": true,
}

// Metrics is the raw walk output, before the derived Halstead formulas.
type Metrics struct {
	CognitiveComplexity int
	NestingDepth        int
	ParamCount          int
	LineCount           int
	ReturnCount         int
	BoolOpCount         int
	CallbackDepth       int

	n1, n2     int // distinct operators, operands
	bigN1      int // total operator occurrences
	bigN2      int // total operand occurrences
}

// Walk computes raw metrics for the AST subtree rooted at node, which must
// cover [lineStart, lineEnd] within the ±3-line tolerance spec §4.7 allows
// for decorators/attributes.
func Walk(node *tree_sitter.Node, source []byte, lineStart, lineEnd int) Metrics {
	m := Metrics{LineCount: lineEnd - lineStart + 1}
	ops := make(map[string]bool)
	operands := make(map[string]bool)

	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		m.ParamCount = countParams(paramsNode)
	}

	walkNode(node, source, 0, &m, ops, operands)

	m.n1 = len(ops)
	m.n2 = len(operands)
	return m
}

func walkNode(node *tree_sitter.Node, source []byte, nesting int, m *Metrics, ops, operands map[string]bool) {
	kind := node.Kind()

	switch {
	case controlFlowKinds[kind]:
		m.CognitiveComplexity += 1 + nesting
		nesting++
		if nesting > m.NestingDepth {
			m.NestingDepth = nesting
		}
	case continuationKinds[kind]:
		m.CognitiveComplexity++
	case flowBreakKinds[kind]:
		m.CognitiveComplexity++
	case functionKinds[kind] && nesting > 0:
		// Only nested functions/closures count; the symbol's own
		// top-level function node is excluded by starting nesting at 0
		// and checking nesting > 0 here.
		m.CognitiveComplexity++
		m.CallbackDepth++
		nesting++
		if nesting > m.NestingDepth {
			m.NestingDepth = nesting
		}
	}

	if kind == "return_statement" || kind == "return_expression" {
		m.ReturnCount++
	}

	if binaryExprKinds[kind] {
		if opNode := node.ChildByFieldName("operator"); opNode != nil {
			opText := opNode.Utf8Text(source)
			ops[opText] = true
			m.bigN1++
			if boolOps[strings.TrimSpace(opText)] {
				m.CognitiveComplexity++
				m.BoolOpCount++
			}
		}
	}

	if operandKinds[kind] && node.ChildCount() == 0 {
		text := node.Utf8Text(source)
		operands[text] = true
		m.bigN2++
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			walkNode(child, source, nesting, m, ops, operands)
		}
	}
}

func countParams(paramsNode *tree_sitter.Node) int {
	count := 0
	for i := uint(0); i < paramsNode.ChildCount(); i++ {
		child := paramsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "parameter_declaration":
			// Go groups a shared-type identifier list into one
			// parameter_declaration ("a, b int"); count each name.
			n := 0
			for j := uint(0); j < child.ChildCount(); j++ {
				if gc := child.Child(j); gc != nil && gc.Kind() == "identifier" {
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			count += n
		case "parameter", "typed_parameter",
			"default_parameter", "required_parameter", "optional_parameter":
			count++
		}
	}
	return count
}

// Derived holds the formulas spec §4.7 computes from raw Halstead counts.
type Derived struct {
	CyclomaticDensity  float64
	HalsteadVolume     float64
	HalsteadDifficulty float64
	HalsteadEffort     float64
	HalsteadBugs       float64
}

// Derive applies spec §4.7's formulas, rounding as specified (1 decimal,
// 3 for bugs).
func Derive(m Metrics) Derived {
	var d Derived
	if m.LineCount > 0 {
		d.CyclomaticDensity = round1(float64(m.CognitiveComplexity) / float64(m.LineCount))
	}

	n := m.n1 + m.n2
	bigN := m.bigN1 + m.bigN2
	if n > 0 && bigN > 0 {
		d.HalsteadVolume = round1(float64(bigN) * math.Log2(float64(n)))
	}
	if m.n2 > 0 {
		d.HalsteadDifficulty = round1((float64(m.n1) / 2) * (float64(m.bigN2) / float64(m.n2)))
	}
	d.HalsteadEffort = round1(d.HalsteadDifficulty * d.HalsteadVolume)
	d.HalsteadBugs = round3(d.HalsteadVolume / 3000)
	return d
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

// FindNode locates the descendant of root whose start and end lines each
// lie within the ±3-line tolerance spec §4.7 allows for decorators and
// attribute blocks, preferring the node whose range deviates least from
// [lineStart, lineEnd] and, among equally close nodes, the narrowest.
// Returns nil if nothing qualifies, signaling the caller to fall back to
// EstimateDegraded.
func FindNode(root *tree_sitter.Node, lineStart, lineEnd int) *tree_sitter.Node {
	const tolerance = 3
	var best *tree_sitter.Node
	bestDev, bestSpan := -1, -1

	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		nStart := int(n.StartPosition().Row) + 1
		nEnd := int(n.EndPosition().Row) + 1
		dStart, dEnd := nStart-lineStart, nEnd-lineEnd
		if dStart < 0 {
			dStart = -dStart
		}
		if dEnd < 0 {
			dEnd = -dEnd
		}
		if dStart <= tolerance && dEnd <= tolerance {
			dev, span := dStart+dEnd, nEnd-nStart
			if best == nil || dev < bestDev || (dev == bestDev && span < bestSpan) {
				best, bestDev, bestSpan = n, dev, span
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(root)
	return best
}

// EstimateDegraded is the fallback used when no AST node covers the
// symbol's line range within tolerance: indentation peaks and keyword
// counts over the raw source slice.
func EstimateDegraded(lines []string) Metrics {
	var m Metrics
	m.LineCount = len(lines)
	maxIndent := 0
	keywords := []string{"if ", "for ", "while ", "switch ", "match ", "else", "case ", "catch", "except"}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)
		if indent/2 > maxIndent {
			maxIndent = indent / 2
		}
		for _, kw := range keywords {
			if strings.Contains(trimmed, kw) {
				m.CognitiveComplexity++
				break
			}
		}
		if strings.Contains(trimmed, "return") {
			m.ReturnCount++
		}
		if strings.Contains(trimmed, "&&") || strings.Contains(trimmed, "||") {
			m.BoolOpCount++
			m.CognitiveComplexity++
		}
	}
	m.NestingDepth = maxIndent
	return m
}
