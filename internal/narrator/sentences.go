package narrator

import (
	"fmt"
	"math"
	"strings"

	"SignalSentinel/internal/dsl"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/rules"
)

// describeLeaf synthesizes one sentence for a leaf evaluation result and
// picks its category from the left-hand field (falling back to the right
// operand, then PRICE).
func describeLeaf(leaf *rules.Result) (model.FactorCategory, string) {
	if leaf.Node.Kind == dsl.KindComplex {
		return complexCategory(leaf.Node), fmt.Sprintf(
			"Composite criterion %s is taken as satisfied; its derived values are not re-evaluated here.",
			leaf.Node.Raw)
	}

	leftField, hasLeft := fieldOf(leaf.Node.Left)
	rightField, hasRight := fieldOf(leaf.Node.Right)

	cat := model.CategoryPrice
	if hasLeft {
		cat = leftField.Category
	} else if hasRight {
		cat = rightField.Category
	}

	switch leaf.Reason {
	case rules.ReasonDataUnavailable:
		return cat, fmt.Sprintf("Data unavailable for comparison (%s vs %s).",
			operandPhrase(leaf.Node.Left, leftField, hasLeft),
			operandPhrase(leaf.Node.Right, rightField, hasRight))
	case "":
		// evaluated normally
	default:
		return cat, fmt.Sprintf("Could not evaluate %s vs %s: %s.",
			operandPhrase(leaf.Node.Left, leftField, hasLeft),
			operandPhrase(leaf.Node.Right, rightField, hasRight),
			leaf.Reason)
	}

	if leaf.Op == "=" || !leaf.Left.IsNum || !leaf.Right.IsNum {
		return cat, equalitySentence(leaf, leftField, hasLeft)
	}
	return cat, numericSentence(leaf, leftField, hasLeft, rightField, hasRight)
}

func complexCategory(node *dsl.Node) model.FactorCategory {
	for _, ref := range node.FieldRefs() {
		if f, ok := dsl.Lookup(ref); ok {
			return f.Category
		}
	}
	return model.CategoryPrice
}

func fieldOf(op dsl.Operand) (dsl.Field, bool) {
	if !op.IsField() {
		return dsl.Field{}, false
	}
	return dsl.Lookup(op.FieldRef)
}

// operandPhrase names an operand for diagnostics: field name when known,
// literal text otherwise.
func operandPhrase(op dsl.Operand, field dsl.Field, hasField bool) string {
	if hasField {
		return field.Name
	}
	if op.IsField() {
		return op.FieldRef
	}
	return op.Literal
}

func numericSentence(leaf *rules.Result, leftField dsl.Field, hasLeft bool, rightField dsl.Field, hasRight bool) string {
	l, r := leaf.Left.Num, leaf.Right.Num

	relation := "equal to"
	if l > r {
		relation = "above"
	} else if l < r {
		relation = "below"
	}

	var b strings.Builder
	b.WriteString(subjectPhrase(leaf, leftField, hasLeft))

	// Field-vs-field price comparisons read as a percent distance.
	if hasLeft && hasRight && leftField.Unit == dsl.UnitCurrency && rightField.Unit == dsl.UnitCurrency && r != 0 && relation != "equal to" {
		pct := math.Abs((l - r) / r * 100)
		b.WriteString(fmt.Sprintf(" is %.1f%% %s %s (%s)", pct, relation,
			withArticle(rightField.Name), formatValue(rightField.Unit, r)))
	} else if hasRight {
		b.WriteString(fmt.Sprintf(" is %s %s (%s)", relation,
			withArticle(rightField.Name), formatValue(rightField.Unit, r)))
	} else {
		// Literal thresholds display in the left field's unit.
		unit := dsl.UnitRatio
		if hasLeft {
			unit = leftField.Unit
		}
		b.WriteString(fmt.Sprintf(" is %s %s", relation, formatValue(unit, r)))
	}

	if leaf.Passed {
		if c := sentimentClause(leaf.Node.Left.FieldRef, leaf.Node.Right.FieldRef, leaf.Left, relation == "above"); c != "" {
			b.WriteString(": " + c)
		}
	} else {
		b.WriteString(fmt.Sprintf("; this setup wants it %s", expectWord(leaf.Op)))
	}
	b.WriteString(".")
	return b.String()
}

func equalitySentence(leaf *rules.Result, leftField dsl.Field, hasLeft bool) string {
	subject := subjectPhraseName(leftField, hasLeft, leaf.Node.Left)
	if leaf.Passed {
		return fmt.Sprintf("%s is %q, as this setup requires.", subject, leaf.Right.Display())
	}
	return fmt.Sprintf("%s is %q, not the required %q.", subject, leaf.Left.Display(), leaf.Right.Display())
}

// subjectPhrase renders "Price 230.50" / "RSI 55.1" style openers.
func subjectPhrase(leaf *rules.Result, field dsl.Field, hasField bool) string {
	if !hasField {
		return leaf.Left.Display()
	}
	return fmt.Sprintf("%s %s", capitalize(field.Name), formatValue(field.Unit, leaf.Left.Num))
}

func subjectPhraseName(field dsl.Field, hasField bool, op dsl.Operand) string {
	if hasField {
		return capitalize(field.Name)
	}
	if op.IsField() {
		return op.FieldRef
	}
	return op.Literal
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func withArticle(name string) string {
	if strings.HasSuffix(name, "average") || name == "consensus price" || name == "target" {
		return "the " + name
	}
	return name
}

func formatValue(unit dsl.Unit, v float64) string {
	switch unit {
	case dsl.UnitCurrency:
		return fmt.Sprintf("%.2f", v)
	case dsl.UnitFraction:
		return fmt.Sprintf("%.1f%%", v*100)
	case dsl.UnitIndex:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func expectWord(op string) string {
	switch op {
	case ">", ">=":
		return "higher"
	case "<", "<=":
		return "lower"
	}
	return "equal"
}

// sentimentClause gives the interpretive tail for a passed comparison,
// chosen by what is being compared and which side the value landed on.
func sentimentClause(leftRef, rightRef string, left rules.Value, above bool) string {
	// Field-vs-field pairs first.
	if leftRef == "$G" {
		switch rightRef {
		case "$I", "$J", "$Q":
			if above {
				return "bullish"
			}
			return "bearish"
		case "$AC":
			if above {
				return "holding above support"
			}
			return "a structural breakdown below support"
		case "$AD":
			if above {
				return "a breakout above resistance"
			}
			return "still capped below resistance"
		case "$AE":
			if above {
				return "already beyond its target"
			}
			return "short of its target"
		case "$AH":
			if above {
				return "rich to consensus"
			}
			return "cheap to consensus"
		}
	}
	if isAverageRef(leftRef) && isAverageRef(rightRef) {
		if above {
			return "a bullish alignment"
		}
		return "a bearish alignment"
	}

	// Single-field interpretation against literal thresholds.
	switch leftRef {
	case "$R":
		switch {
		case left.Num >= 70:
			return "overbought territory"
		case left.Num <= 30:
			return "oversold territory"
		case left.Num >= 50:
			return "constructive momentum"
		default:
			return "soft momentum"
		}
	case "$U":
		switch {
		case left.Num >= 25:
			return "a strong trend"
		case left.Num < 15:
			return "no meaningful trend"
		default:
			return "a developing trend"
		}
	case "$S":
		if left.Num > 0 {
			return "positive momentum"
		}
		return "negative momentum"
	case "$T":
		switch {
		case left.Num <= 0.2:
			return "an oversold stochastic"
		case left.Num >= 0.8:
			return "an overbought stochastic"
		}
	case "$V":
		switch {
		case left.Num > 1:
			return "outside the upper Bollinger band"
		case left.Num < 0:
			return "outside the lower Bollinger band"
		}
	case "$X":
		switch {
		case left.Num >= 1.5:
			return "heavy participation"
		case left.Num < 0.7:
			return "thin participation"
		}
	case "$AG":
		if left.Num < 0 {
			return fmt.Sprintf("%.0f%% below its all-time high", math.Abs(left.Num*100))
		}
	}
	return ""
}

func isAverageRef(ref string) bool {
	return ref == "$I" || ref == "$J" || ref == "$Q"
}
