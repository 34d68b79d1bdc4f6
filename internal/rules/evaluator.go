// Package rules evaluates parsed condition trees against snapshots and
// performs reverse branch resolution.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"SignalSentinel/internal/dsl"
	"SignalSentinel/internal/model"
)

// Reasons attached to evaluation results.
const (
	ReasonDataUnavailable = "data unavailable"
	ReasonNonNumeric      = "non-numeric operand"
	ReasonComplexAssumed  = "composite expression not re-evaluated"
)

// Value is a resolved operand.
type Value struct {
	Num     float64
	Str     string
	IsNum   bool
	Missing bool
}

// Display renders the value for diagnostics.
func (v Value) Display() string {
	if v.Missing {
		return "(missing)"
	}
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Result is the outcome of evaluating one condition node. AND/OR results
// carry all child results: evaluation never short-circuits, because the
// narrator reports every sub-condition.
type Result struct {
	Node     *dsl.Node
	Passed   bool
	Op       string
	Left     Value
	Right    Value
	Reason   string
	Children []*Result
}

// Leaves returns the comparison/complex leaf results in evaluation order.
func (r *Result) Leaves() []*Result {
	if len(r.Children) == 0 {
		if r.Node != nil && (r.Node.Kind == dsl.KindComparison || r.Node.Kind == dsl.KindComplex) {
			return []*Result{r}
		}
		return nil
	}
	var leaves []*Result
	for _, child := range r.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// Evaluate walks a condition tree against a snapshot. It never panics to
// the caller: any internal failure becomes a failed result with a reason.
func Evaluate(node *dsl.Node, snap *model.IndicatorSnapshot) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res = &Result{Node: node, Passed: false, Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	switch node.Kind {
	case dsl.KindDefault:
		return &Result{Node: node, Passed: true}

	case dsl.KindComplex:
		// Composite arithmetic depends on rolling data the explanation
		// layer does not hold. The upstream label is authoritative, so the
		// condition is assumed satisfied and flagged as such.
		return &Result{Node: node, Passed: true, Reason: ReasonComplexAssumed}

	case dsl.KindAnd, dsl.KindOr:
		res = &Result{Node: node, Children: make([]*Result, 0, len(node.Children))}
		for _, child := range node.Children {
			res.Children = append(res.Children, Evaluate(child, snap))
		}
		res.Passed = combine(node.Kind, res.Children)
		return res

	case dsl.KindComparison:
		left := resolveOperand(node.Left, snap)
		right := resolveOperand(node.Right, snap)
		passed, reason := compare(left, right, node.Op)
		return &Result{Node: node, Op: node.Op, Left: left, Right: right, Passed: passed, Reason: reason}
	}

	return &Result{Node: node, Passed: false, Reason: fmt.Sprintf("unknown node kind %v", node.Kind)}
}

func combine(kind dsl.Kind, children []*Result) bool {
	if kind == dsl.KindAnd {
		for _, c := range children {
			if !c.Passed {
				return false
			}
		}
		return true
	}
	for _, c := range children {
		if c.Passed {
			return true
		}
	}
	return false
}

func resolveOperand(op dsl.Operand, snap *model.IndicatorSnapshot) Value {
	if op.IsField() {
		field, ok := dsl.Lookup(op.FieldRef)
		if !ok {
			// Unreachable with a validated catalog; treated as missing data
			// rather than a crash.
			return Value{Missing: true}
		}
		if field.IsNumeric() {
			v := field.Numeric(snap)
			if !v.Valid {
				return Value{Missing: true}
			}
			return Value{Num: v.Value, IsNum: true}
		}
		text := field.Text(snap)
		if text == "" {
			return Value{Missing: true}
		}
		return Value{Str: text}
	}

	if op.IsNumber {
		return Value{Num: op.Number, IsNum: true}
	}
	return Value{Str: op.Literal}
}

func compare(left, right Value, op string) (bool, string) {
	if left.Missing || right.Missing {
		return false, ReasonDataUnavailable
	}

	if op == "=" {
		return looseEqual(left, right), ""
	}

	if !left.IsNum || !right.IsNum {
		return false, ReasonNonNumeric
	}

	switch op {
	case "<":
		return left.Num < right.Num, ""
	case "<=":
		return left.Num <= right.Num, ""
	case ">":
		return left.Num > right.Num, ""
	case ">=":
		return left.Num >= right.Num, ""
	}
	return false, fmt.Sprintf("unknown operator %q", op)
}

// looseEqual coerces across numeric and text representations, matching
// the tolerant equality of the source system.
func looseEqual(left, right Value) bool {
	if left.IsNum && right.IsNum {
		return left.Num == right.Num
	}
	return strings.EqualFold(strings.TrimSpace(left.Display()), strings.TrimSpace(right.Display()))
}
