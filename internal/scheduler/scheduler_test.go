package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/engine"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/store"
)

func testScheduler(t *testing.T) (*Scheduler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return New(zerolog.Nop(), engine.New(catalog.MustLoad()), st), st
}

func TestRegister(t *testing.T) {
	s, _ := testScheduler(t)
	assert.NoError(t, s.Register("0 0 7 * * 1-5"))
	assert.Error(t, s.Register("not a cron spec"))
}

func TestRunSweepNow(t *testing.T) {
	s, st := testScheduler(t)

	require.NoError(t, st.SaveSnapshot(&model.IndicatorSnapshot{
		Ticker:     "AMZN",
		Price:      model.F(230.50),
		SMA200:     model.F(225.00),
		RSI:        model.F(55),
		Support:    model.F(215.00),
		Signal:     "HOLD",
		Decision:   "WAIT",
		Mode:       model.ModeTrade,
	}))
	require.NoError(t, st.SaveSnapshot(&model.IndicatorSnapshot{
		Ticker: "NVDA",
		Signal: "UNKNOWN LABEL",
		Mode:   model.ModeTrade,
	}))

	s.RunSweepNow()

	// Two audit rows per ticker, one SIGNAL and one DECISION.
	records := st.Explanations()
	require.Len(t, records, 4)

	byTicker := map[string][]store.ExplanationRecord{}
	for _, r := range records {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}
	require.Len(t, byTicker["AMZN"], 2)
	assert.Equal(t, "SIGNAL", byTicker["AMZN"][0].Classifier)
	assert.True(t, byTicker["AMZN"][0].Resolved)
	assert.Equal(t, "DECISION", byTicker["AMZN"][1].Classifier)

	// Unresolved labels still produce audit rows, flagged unresolved.
	require.Len(t, byTicker["NVDA"], 2)
	assert.False(t, byTicker["NVDA"][0].Resolved)
}

func TestSweep_EmptyStore(t *testing.T) {
	s, st := testScheduler(t)
	s.RunSweepNow()
	assert.Empty(t, st.Explanations())
}
