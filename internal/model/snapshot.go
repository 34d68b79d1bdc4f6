package model

import (
	"encoding/json"
	"math"
)

// Mode selects which rule-set variant applies: short-horizon trading or
// long-horizon investing.
type Mode string

const (
	ModeTrade  Mode = "TRADE"
	ModeInvest Mode = "INVEST"
)

// Opposite returns the alternate mode. The branch resolver retries against
// it when a label cannot be found under the requested mode.
func (m Mode) Opposite() Mode {
	if m == ModeInvest {
		return ModeTrade
	}
	return ModeInvest
}

// ParseMode maps a config/query string to a Mode. Unknown values fall back
// to TRADE.
func ParseMode(s string) Mode {
	if Mode(s) == ModeInvest || s == "invest" {
		return ModeInvest
	}
	return ModeTrade
}

// Trend state labels as stored upstream.
const (
	TrendBull = "BULL"
	TrendBear = "BEAR"
)

// Float is a numeric indicator value that may be missing. Upstream leaves
// cells blank when a feed has no data, so absence must be explicit rather
// than a zero or NaN.
type Float struct {
	Value float64
	Valid bool
}

// F wraps a known value. Non-finite inputs are treated as missing.
func F(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

// Missing returns the explicit absent value.
func Missing() Float { return Float{} }

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = F(v)
	return nil
}

// IndicatorSnapshot is the per-ticker, point-in-time record the engine
// explains. All indicator values are computed upstream; the snapshot is
// treated as immutable once constructed. Ratio fields (changePct,
// stochasticK, bollingerPercentB, athDistance) are fractions, never
// pre-multiplied by 100.
type IndicatorSnapshot struct {
	Ticker string `json:"ticker"`

	// Price / volume
	Price       Float `json:"price"`
	ChangePct   Float `json:"changePct"`
	VolumeRatio Float `json:"volumeRatio"`

	// Trend
	SMA20      Float  `json:"sma20"`
	SMA50      Float  `json:"sma50"`
	SMA200     Float  `json:"sma200"`
	TrendState string `json:"trendState"`

	// Momentum
	RSI           Float  `json:"rsi"`
	MACDHistogram Float  `json:"macdHistogram"`
	ADX           Float  `json:"adx"`
	StochasticK   Float  `json:"stochasticK"`
	Divergence    string `json:"divergence"`

	// Volatility / levels
	ATR               Float `json:"atr"`
	BollingerPercentB Float `json:"bollingerPercentB"`
	Support           Float `json:"support"`
	Resistance        Float `json:"resistance"`
	Target            Float `json:"target"`
	RiskRewardQuality Float `json:"riskRewardQuality"`

	// Context
	ATHDistance       Float  `json:"athDistance"`
	FundamentalBucket string `json:"fundamentalBucket"`
	VolatilityRegime  string `json:"volatilityRegime"`
	Patterns          string `json:"patterns"`
	ConsensusPrice    Float  `json:"consensusPrice"`

	// State
	Signal      string `json:"signal"`
	Decision    string `json:"decision"`
	IsPurchased bool   `json:"isPurchased"`
	Mode        Mode   `json:"mode"`
}
