package narrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/rules"
)

var testSet = catalog.MustLoad()

func holdSnapshot() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		Ticker:     "AMZN",
		Price:      model.F(230.50),
		SMA20:      model.F(228.10),
		SMA50:      model.F(226.40),
		SMA200:     model.F(225.00),
		RSI:        model.F(55),
		ADX:        model.F(22),
		Support:    model.F(215.00),
		Resistance: model.F(240.00),
		TrendState: model.TrendBull,
	}
}

func resolveAndExplain(t *testing.T, cat *catalog.Catalog, label string, snap *model.IndicatorSnapshot) *model.Narrative {
	t.Helper()
	ctx := rules.ContextFor(snap)
	b, err := rules.Resolve(cat, label, ctx)
	require.NoError(t, err)
	res := rules.EvaluateDecision(b, snap, snap.Signal, ctx)
	return Explain(cat.Classifier, b, res, snap, snap.Signal)
}

func TestExplain_Hold(t *testing.T) {
	snap := holdSnapshot()
	n := resolveAndExplain(t, testSet.SignalTrade, "HOLD", snap)

	assert.Equal(t, "HOLD", n.Header)
	assert.Equal(t, "Final signal: HOLD", n.Verdict)
	assert.Equal(t, 3, n.FactorCount())

	// AND($G>$Q,$R>40,$R<70): one price factor as percent distance above
	// the 200-day average, two momentum factors on RSI.
	require.Len(t, n.Factors[model.CategoryPrice], 1)
	assert.Equal(t,
		"Price 230.50 is 2.4% above the 200-day average (225.00): bullish.",
		n.Factors[model.CategoryPrice][0])

	require.Len(t, n.Factors[model.CategoryMomentum], 2)
	assert.Equal(t, "RSI 55.0 is above 40.0: constructive momentum.", n.Factors[model.CategoryMomentum][0])
	assert.Equal(t, "RSI 55.0 is below 70.0: constructive momentum.", n.Factors[model.CategoryMomentum][1])
}

func TestExplain_StopOut(t *testing.T) {
	snap := holdSnapshot()
	snap.Price = model.F(95.00)
	snap.Support = model.F(100.00)
	n := resolveAndExplain(t, testSet.SignalTrade, "STOP OUT", snap)

	require.Len(t, n.Factors[model.CategoryPrice], 1)
	assert.Equal(t,
		"Price 95.00 is 5.0% below support (100.00): a structural breakdown below support.",
		n.Factors[model.CategoryPrice][0])
	assert.Equal(t, "Final signal: STOP OUT", n.Verdict)
}

func TestExplain_MissingData(t *testing.T) {
	snap := holdSnapshot()
	snap.RSI = model.Missing()
	n := resolveAndExplain(t, testSet.SignalTrade, "HOLD", snap)

	require.Len(t, n.Factors[model.CategoryMomentum], 2)
	assert.Equal(t, "Data unavailable for comparison (RSI vs 40).", n.Factors[model.CategoryMomentum][0])
}

func TestExplain_FailedComparisonStatesExpectation(t *testing.T) {
	snap := holdSnapshot()
	snap.RSI = model.F(35)
	n := resolveAndExplain(t, testSet.SignalTrade, "HOLD", snap)

	assert.Equal(t, "RSI 35.0 is below 40.0; this setup wants it higher.", n.Factors[model.CategoryMomentum][0])
}

func TestExplain_Complex(t *testing.T) {
	snap := holdSnapshot()
	snap.ConsensusPrice = model.F(235.00)
	n := resolveAndExplain(t, testSet.SignalInvest, "FAIR VALUE", snap)

	// The composite first sub-condition is reported as assumed, not computed.
	require.NotEmpty(t, n.Factors[model.CategoryPrice])
	assert.Equal(t,
		"Composite criterion ABS($G-$AH)/$AH<0.05 is taken as satisfied; its derived values are not re-evaluated here.",
		n.Factors[model.CategoryPrice][0])
}

func TestExplain_DefaultBranch(t *testing.T) {
	snap := holdSnapshot()
	n := resolveAndExplain(t, testSet.SignalTrade, "NEUTRAL", snap)

	assert.Zero(t, n.FactorCount())
	require.Len(t, n.Context, 1)
	assert.Equal(t, "No specific technical criteria were required for this result; it is the fallback classification.", n.Context[0])
	assert.Equal(t, "Final signal: NEUTRAL", n.Verdict)
}

func TestExplain_DecisionSignalMembership(t *testing.T) {
	snap := holdSnapshot()
	snap.IsPurchased = true
	snap.Signal = "OVERBOUGHT"
	n := resolveAndExplain(t, testSet.DecisionTrade, "TAKE PROFIT", snap)

	require.Len(t, n.Context, 1)
	assert.Equal(t,
		`Current setup "OVERBOUGHT" is one of the qualifying setups for this action (OVERBOUGHT, STRETCHED).`,
		n.Context[0])
	assert.Equal(t, "Final decision: TAKE PROFIT", n.Verdict)
}

func TestExplain_DecisionPattern(t *testing.T) {
	snap := holdSnapshot()
	snap.Signal = "BREAKOUT"
	snap.Patterns = "bull flag forming"
	n := resolveAndExplain(t, testSet.DecisionTrade, "TRADE LONG", snap)

	require.Len(t, n.Context, 2)
	assert.Contains(t, n.Context[0], "qualifying setups")
	assert.Equal(t, `Detected chart pattern "BULL FLAG" satisfies the required bullish pattern type.`, n.Context[1])
}

func TestExplain_DecisionPatternMismatch(t *testing.T) {
	snap := holdSnapshot()
	snap.Signal = "BREAKOUT"
	snap.Patterns = "double top"
	n := resolveAndExplain(t, testSet.DecisionTrade, "TRADE LONG", snap)

	require.Len(t, n.Context, 2)
	assert.Equal(t, `Detected chart pattern "DOUBLE TOP" is bearish, but this action requires a bullish pattern.`, n.Context[1])
}

func TestExplain_DecisionPurchased(t *testing.T) {
	snap := holdSnapshot()
	snap.IsPurchased = true
	n := resolveAndExplain(t, testSet.DecisionTrade, "HOLD POSITION", snap)

	require.Len(t, n.Context, 1)
	assert.Equal(t, "A position in this ticker is currently held.", n.Context[0])
}

func TestExplain_Idempotent(t *testing.T) {
	snap := holdSnapshot()
	first := resolveAndExplain(t, testSet.SignalTrade, "HOLD", snap)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, resolveAndExplain(t, testSet.SignalTrade, "HOLD", snap))
	}
}

func TestNarrativeRender(t *testing.T) {
	snap := holdSnapshot()
	n := resolveAndExplain(t, testSet.SignalTrade, "HOLD", snap)
	out := n.Render()

	assert.Contains(t, out, `Why "HOLD":`)
	assert.Contains(t, out, "Price:\n  - Price 230.50 is 2.4% above the 200-day average (225.00): bullish.")
	assert.Contains(t, out, "Momentum:\n  - RSI 55.0 is above 40.0")
	// Price section precedes momentum.
	assert.Less(t, strings.Index(out, "Price:"), strings.Index(out, "Momentum:"))
	assert.True(t, strings.HasSuffix(out, "Final signal: HOLD\n"))
}
