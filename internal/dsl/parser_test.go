package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Default(t *testing.T) {
	for _, expr := range []string{"TRUE", "true", "  TRUE  "} {
		node, err := Parse(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, KindDefault, node.Kind, expr)
	}
}

func TestParse_EmptyRejected(t *testing.T) {
	for _, expr := range []string{"", "   "} {
		_, err := Parse(expr)
		require.Error(t, err)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr)
	}
}

func TestParse_SimpleComparison(t *testing.T) {
	node, err := Parse("$G<$AC")
	require.NoError(t, err)
	assert.Equal(t, KindComparison, node.Kind)
	assert.Equal(t, "<", node.Op)
	assert.Equal(t, "$G", node.Left.FieldRef)
	assert.Equal(t, "$AC", node.Right.FieldRef)
}

func TestParse_LongestMatchOperator(t *testing.T) {
	node, err := Parse("$R>=70")
	require.NoError(t, err)
	assert.Equal(t, ">=", node.Op)
	require.True(t, node.Right.IsNumber)
	assert.Equal(t, 70.0, node.Right.Number)
}

func TestParse_NegativeLiteral(t *testing.T) {
	node, err := Parse("$AG<-0.25")
	require.NoError(t, err)
	assert.Equal(t, KindComparison, node.Kind)
	assert.Equal(t, "<", node.Op)
	require.True(t, node.Right.IsNumber)
	assert.Equal(t, -0.25, node.Right.Number)
}

func TestParse_TextLiteral(t *testing.T) {
	node, err := Parse("$Y=BULL")
	require.NoError(t, err)
	assert.Equal(t, "=", node.Op)
	assert.False(t, node.Right.IsNumber)
	assert.Equal(t, "BULL", node.Right.Literal)
}

func TestParse_And(t *testing.T) {
	node, err := Parse("AND($G>$Q,$R>40,$R<70)")
	require.NoError(t, err)
	assert.Equal(t, KindAnd, node.Kind)
	require.Len(t, node.Children, 3)
	for _, child := range node.Children {
		assert.Equal(t, KindComparison, child.Kind)
	}
}

func TestParse_NestedCommaSplitting(t *testing.T) {
	// The comma inside OR(...) must not split the outer AND.
	node, err := Parse("AND(OR($R<30,$T<0.2),$G>$I)")
	require.NoError(t, err)
	assert.Equal(t, KindAnd, node.Kind)
	require.Len(t, node.Children, 2)
	assert.Equal(t, KindOr, node.Children[0].Kind)
	assert.Len(t, node.Children[0].Children, 2)
	assert.Equal(t, KindComparison, node.Children[1].Kind)
}

func TestParse_ComplexByFunction(t *testing.T) {
	node, err := Parse("ABS($G-$AH)/$AH<0.05")
	require.NoError(t, err)
	assert.Equal(t, KindComplex, node.Kind)
	assert.ElementsMatch(t, []string{"$G", "$AH"}, node.FieldRefs())
}

func TestParse_ComplexByArithmetic(t *testing.T) {
	node, err := Parse("$G*1.05<$AD")
	require.NoError(t, err)
	assert.Equal(t, KindComplex, node.Kind)
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"AND($G>$Q,)",          // trailing empty part
		"AND($G>$Q,OR($R<30)",  // unbalanced nested paren
		"$G",                   // no operator
		"$G<",                  // missing right operand
		"<$AC",                 // missing left operand
	}
	for _, expr := range cases {
		_, err := Parse(expr)
		assert.Error(t, err, expr)
	}
}

func TestParse_Deterministic(t *testing.T) {
	expr := "AND(OR($R<30,$T<0.2),$G>$I,$X>1.5)"
	a, err := Parse(expr)
	require.NoError(t, err)
	b, err := Parse(expr)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFieldRefs_Deduplicated(t *testing.T) {
	node, err := Parse("AND($R>40,$R<70,$G>$Q)")
	require.NoError(t, err)
	assert.Equal(t, []string{"$R", "$G", "$Q"}, node.FieldRefs())
}

func TestExtractRefs_TwoLetterColumns(t *testing.T) {
	assert.Equal(t, []string{"$G", "$AC"}, ExtractRefs("$G<$AC"))
	assert.Equal(t, []string{"$AG"}, ExtractRefs("$AG<-0.4"))
}

func TestLookup_AllTableEntriesResolve(t *testing.T) {
	for _, f := range fieldTable {
		got, ok := Lookup(f.Ref)
		require.True(t, ok, f.Ref)
		assert.Equal(t, f.Name, got.Name)
		// Exactly one of Numeric/Text is set.
		assert.NotEqual(t, got.Numeric == nil, got.Text == nil, f.Ref)
	}
}
