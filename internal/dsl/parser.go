package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates condition node variants.
type Kind int

const (
	KindComparison Kind = iota
	KindAnd
	KindOr
	KindComplex
	KindDefault
)

func (k Kind) String() string {
	switch k {
	case KindComparison:
		return "COMPARISON"
	case KindAnd:
		return "AND"
	case KindOr:
		return "OR"
	case KindComplex:
		return "COMPLEX"
	case KindDefault:
		return "DEFAULT"
	}
	return "UNKNOWN"
}

// ParseError reports a malformed condition expression. It is raised at
// catalog load time only; a validated catalog never parses at explain time.
type ParseError struct {
	Expr string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Expr, e.Msg)
}

// Operand is one side of a comparison: either a field reference or a
// literal (numeric when it parses as a number, raw text otherwise).
type Operand struct {
	FieldRef string
	Literal  string
	Number   float64
	IsNumber bool
}

// IsField reports whether the operand references a snapshot field.
func (o Operand) IsField() bool { return o.FieldRef != "" }

// Node is a parsed condition tree. Parsing is pure and deterministic:
// the same expression always yields a structurally identical tree.
type Node struct {
	Kind     Kind
	Raw      string
	Op       string
	Left     Operand
	Right    Operand
	Children []*Node
}

// FieldRefs returns the deduplicated set of field references the tree
// touches, in order of first appearance.
func (n *Node) FieldRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	var walk func(node *Node)
	walk = func(node *Node) {
		switch node.Kind {
		case KindComparison:
			for _, op := range []Operand{node.Left, node.Right} {
				if op.IsField() && !seen[op.FieldRef] {
					seen[op.FieldRef] = true
					refs = append(refs, op.FieldRef)
				}
			}
		case KindComplex:
			for _, ref := range ExtractRefs(node.Raw) {
				if !seen[ref] {
					seen[ref] = true
					refs = append(refs, ref)
				}
			}
		case KindAnd, KindOr:
			for _, child := range node.Children {
				walk(child)
			}
		}
	}
	walk(n)
	return refs
}

// complexFunctions are sheet functions the explanation layer does not
// evaluate. Their presence marks a condition as COMPLEX.
var complexFunctions = []string{"ABS(", "AVERAGE(", "MAX(", "MIN(", "SUM("}

// comparison operators, longest match first so ">=" never splits as ">".
var operators = []string{">=", "<=", ">", "<", "="}

// Parse converts a condition expression into its node tree. Empty
// expressions are rejected.
func Parse(expr string) (*Node, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, &ParseError{Expr: expr, Msg: "empty expression"}
	}

	upper := strings.ToUpper(trimmed)
	if upper == "TRUE" {
		return &Node{Kind: KindDefault, Raw: trimmed}, nil
	}

	if body, ok := compositeBody(trimmed, "AND"); ok {
		return parseComposite(KindAnd, trimmed, body)
	}
	if body, ok := compositeBody(trimmed, "OR"); ok {
		return parseComposite(KindOr, trimmed, body)
	}

	return parseComparison(trimmed)
}

// compositeBody strips "AND(...)" / "OR(...)" wrappers, verifying the
// closing paren matches the opening one.
func compositeBody(expr, keyword string) (string, bool) {
	prefix := keyword + "("
	if !strings.HasPrefix(strings.ToUpper(expr), prefix) || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	body := expr[len(prefix) : len(expr)-1]
	// The trailing paren must close the keyword's paren, not a nested one.
	depth := 1
	for _, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return "", false
			}
		}
	}
	return body, true
}

func parseComposite(kind Kind, raw, body string) (*Node, error) {
	parts, err := splitTopLevel(raw, body)
	if err != nil {
		return nil, err
	}
	node := &Node{Kind: kind, Raw: raw, Children: make([]*Node, 0, len(parts))}
	for _, part := range parts {
		child, err := Parse(part)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// splitTopLevel splits the body on commas at paren depth zero. Commas
// inside nested AND/OR or function calls do not split.
func splitTopLevel(raw, body string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, &ParseError{Expr: raw, Msg: "unbalanced parentheses"}
			}
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &ParseError{Expr: raw, Msg: "unbalanced parentheses"}
	}
	parts = append(parts, body[start:])

	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, &ParseError{Expr: raw, Msg: fmt.Sprintf("empty sub-condition at position %d", i+1)}
		}
	}
	if len(parts) == 0 {
		return nil, &ParseError{Expr: raw, Msg: "no sub-conditions"}
	}
	return parts, nil
}

func parseComparison(expr string) (*Node, error) {
	if isComplex(expr) {
		if len(ExtractRefs(expr)) == 0 {
			return nil, &ParseError{Expr: expr, Msg: "complex expression references no fields"}
		}
		return &Node{Kind: KindComplex, Raw: expr}, nil
	}

	opIdx, op := findOperator(expr)
	if opIdx < 0 {
		return nil, &ParseError{Expr: expr, Msg: "no comparison operator"}
	}

	left, err := parseOperand(expr, expr[:opIdx])
	if err != nil {
		return nil, err
	}
	right, err := parseOperand(expr, expr[opIdx+len(op):])
	if err != nil {
		return nil, err
	}

	return &Node{Kind: KindComparison, Raw: expr, Op: op, Left: left, Right: right}, nil
}

// isComplex reports whether the expression needs arithmetic the
// explanation layer does not perform: a recognized sheet function, or
// arithmetic operators outside of field references.
func isComplex(expr string) bool {
	upper := strings.ToUpper(expr)
	for _, fn := range complexFunctions {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	stripped := refPattern.ReplaceAllString(expr, "")
	// Strip numeric literals so "-0.3" style thresholds don't read as
	// subtraction.
	for _, r := range stripped {
		switch r {
		case '+', '*', '/':
			return true
		}
	}
	// A '-' is arithmetic unless it only introduces a negative literal.
	for i, r := range stripped {
		if r != '-' {
			continue
		}
		if i == 0 || isOperatorByte(stripped[i-1]) || stripped[i-1] == ',' || stripped[i-1] == '(' {
			continue
		}
		return true
	}
	return false
}

func isOperatorByte(b byte) bool {
	return b == '<' || b == '>' || b == '='
}

// findOperator locates the first comparison operator, longest match first.
func findOperator(expr string) (int, string) {
	for i := 0; i < len(expr); i++ {
		for _, op := range operators {
			if strings.HasPrefix(expr[i:], op) {
				return i, op
			}
		}
	}
	return -1, ""
}

func parseOperand(expr, raw string) (Operand, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Operand{}, &ParseError{Expr: expr, Msg: "missing operand"}
	}

	if strings.HasPrefix(text, "$") {
		if refPattern.FindString(text) != text {
			return Operand{}, &ParseError{Expr: expr, Msg: fmt.Sprintf("malformed field reference %q", text)}
		}
		return Operand{FieldRef: text}, nil
	}

	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return Operand{Literal: text, Number: v, IsNumber: true}, nil
	}
	return Operand{Literal: text}, nil
}
