// Package dsl parses rule condition expressions into typed trees.
//
// Conditions come from the original sheet-formula rule tables, so operands
// reference indicator fields by sigil-prefixed column letter ($G is price,
// $Q is the 200-day average, and so on). The field table below is the fixed
// reference-to-attribute map; catalog validation rejects any condition that
// references a column not listed here.
package dsl

import (
	"regexp"

	"SignalSentinel/internal/model"
)

// Unit describes how a field's value is scaled, which drives display
// formatting. Fraction fields are multiplied by 100 for humans.
type Unit int

const (
	UnitCurrency Unit = iota // price-like, instrument currency
	UnitFraction             // 0.05 means 5%
	UnitIndex                // 0..100 oscillator
	UnitRatio                // plain ratio, 1.0 = parity
	UnitText
)

// Field describes one referencable snapshot attribute.
type Field struct {
	Ref      string
	Name     string
	Category model.FactorCategory
	Unit     Unit
	Numeric  func(*model.IndicatorSnapshot) model.Float
	Text     func(*model.IndicatorSnapshot) string
}

// IsNumeric reports whether the field holds a numeric value.
func (f Field) IsNumeric() bool { return f.Numeric != nil }

var fieldTable = []Field{
	{Ref: "$G", Name: "price", Category: model.CategoryPrice, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.Price }},
	{Ref: "$H", Name: "daily change", Category: model.CategoryPrice, Unit: UnitFraction,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.ChangePct }},
	{Ref: "$I", Name: "20-day average", Category: model.CategoryTrend, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.SMA20 }},
	{Ref: "$J", Name: "50-day average", Category: model.CategoryTrend, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.SMA50 }},
	{Ref: "$Q", Name: "200-day average", Category: model.CategoryTrend, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.SMA200 }},
	{Ref: "$R", Name: "RSI", Category: model.CategoryMomentum, Unit: UnitIndex,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.RSI }},
	{Ref: "$S", Name: "MACD histogram", Category: model.CategoryMomentum, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.MACDHistogram }},
	{Ref: "$T", Name: "stochastic %K", Category: model.CategoryMomentum, Unit: UnitFraction,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.StochasticK }},
	{Ref: "$U", Name: "ADX", Category: model.CategoryMomentum, Unit: UnitIndex,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.ADX }},
	{Ref: "$V", Name: "Bollinger %B", Category: model.CategoryVolatility, Unit: UnitFraction,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.BollingerPercentB }},
	{Ref: "$W", Name: "ATR", Category: model.CategoryVolatility, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.ATR }},
	{Ref: "$X", Name: "volume ratio", Category: model.CategoryVolume, Unit: UnitRatio,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.VolumeRatio }},
	{Ref: "$Y", Name: "trend state", Category: model.CategoryTrend, Unit: UnitText,
		Text: func(s *model.IndicatorSnapshot) string { return s.TrendState }},
	{Ref: "$Z", Name: "divergence", Category: model.CategoryMomentum, Unit: UnitText,
		Text: func(s *model.IndicatorSnapshot) string { return s.Divergence }},
	{Ref: "$AC", Name: "support", Category: model.CategoryPrice, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.Support }},
	{Ref: "$AD", Name: "resistance", Category: model.CategoryPrice, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.Resistance }},
	{Ref: "$AE", Name: "target", Category: model.CategoryPrice, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.Target }},
	{Ref: "$AF", Name: "risk/reward quality", Category: model.CategoryPrice, Unit: UnitRatio,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.RiskRewardQuality }},
	{Ref: "$AG", Name: "distance from all-time high", Category: model.CategoryPrice, Unit: UnitFraction,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.ATHDistance }},
	{Ref: "$AH", Name: "consensus price", Category: model.CategoryPrice, Unit: UnitCurrency,
		Numeric: func(s *model.IndicatorSnapshot) model.Float { return s.ConsensusPrice }},
}

var fieldByRef = func() map[string]Field {
	m := make(map[string]Field, len(fieldTable))
	for _, f := range fieldTable {
		m[f.Ref] = f
	}
	return m
}()

// Lookup returns the field for a sigil reference.
func Lookup(ref string) (Field, bool) {
	f, ok := fieldByRef[ref]
	return f, ok
}

var refPattern = regexp.MustCompile(`\$[A-Z]{1,2}`)

// ExtractRefs returns all sigil references in an expression, deduplicated,
// in order of first appearance.
func ExtractRefs(expr string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, ref := range refPattern.FindAllString(expr, -1) {
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}
