package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/model"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	set, _, err := catalog.Load()
	require.NoError(t, err)
	return New(set)
}

func amznSnapshot() *model.IndicatorSnapshot {
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
		Signal:     "HOLD",
		Decision:   "WAIT",
		Mode:       model.ModeTrade,
	}
}

func TestExplainSignal(t *testing.T) {
	e := newEngine(t)
	exp := e.ExplainSignal(amznSnapshot())

	assert.True(t, exp.Resolved)
	assert.Equal(t, "HOLD", exp.Label)
	assert.Equal(t, model.ModeTrade, exp.Mode)
	assert.Contains(t, exp.Narrative, `Why "HOLD":`)
	assert.Contains(t, exp.Narrative, "Price 230.50 is 2.4% above the 200-day average (225.00): bullish.")
	assert.Contains(t, exp.Narrative, "Final signal: HOLD")
}

func TestExplainSignal_ModeFallback(t *testing.T) {
	e := newEngine(t)
	snap := amznSnapshot()
	snap.Signal = "DEEP VALUE" // INVEST-only label on a TRADE snapshot
	snap.ATHDistance = model.F(-0.45)
	snap.RSI = model.F(32)

	exp := e.ExplainSignal(snap)
	assert.True(t, exp.Resolved)
	assert.Equal(t, model.ModeInvest, exp.Mode)
	assert.Equal(t, "DEEP VALUE", exp.Label)
}

func TestExplainSignal_UnknownLabel(t *testing.T) {
	e := newEngine(t)
	snap := amznSnapshot()
	snap.Signal = "MOON SHOT"

	exp := e.ExplainSignal(snap)
	assert.False(t, exp.Resolved)
	assert.Equal(t, "MOON SHOT", exp.Label)
	assert.Equal(t, "Signal criteria: MOON SHOT (detailed rule unavailable).", exp.Narrative)
}

func TestExplainSignal_EmptyLabel(t *testing.T) {
	e := newEngine(t)
	snap := amznSnapshot()
	snap.Signal = ""

	exp := e.ExplainSignal(snap)
	assert.False(t, exp.Resolved)
	assert.Equal(t, "Signal criteria: (none) (detailed rule unavailable).", exp.Narrative)
}

func TestExplainDecision(t *testing.T) {
	e := newEngine(t)
	snap := amznSnapshot()
	snap.IsPurchased = true
	snap.Decision = "HOLD POSITION"

	exp := e.ExplainDecision(snap, "HOLD")
	assert.True(t, exp.Resolved)
	assert.Equal(t, "HOLD POSITION", exp.Label)
	assert.Contains(t, exp.Narrative, "A position in this ticker is currently held.")
	assert.Contains(t, exp.Narrative, "Final decision: HOLD POSITION")
}

func TestExplainDecision_SignalContext(t *testing.T) {
	e := newEngine(t)
	snap := amznSnapshot()
	snap.IsPurchased = true
	snap.Decision = "TAKE PROFIT"

	exp := e.ExplainDecision(snap, "OVERBOUGHT")
	assert.True(t, exp.Resolved)
	assert.Contains(t, exp.Narrative, `Current setup "OVERBOUGHT" is one of the qualifying setups`)
}

func TestExplainDecision_GatingBlocksResolution(t *testing.T) {
	// TAKE PROFIT only exists behind the purchased gate; without a position
	// the label cannot be resolved in either mode.
	e := newEngine(t)
	snap := amznSnapshot()
	snap.Decision = "TAKE PROFIT"

	exp := e.ExplainDecision(snap, "OVERBOUGHT")
	assert.False(t, exp.Resolved)
	assert.Equal(t, "Decision criteria: TAKE PROFIT (detailed rule unavailable).", exp.Narrative)
}

func TestExplain_Deterministic(t *testing.T) {
	e := newEngine(t)
	snap := amznSnapshot()
	first := e.ExplainSignal(snap)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, e.ExplainSignal(snap))
	}
}
