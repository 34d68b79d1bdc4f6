package model

import (
	"fmt"
	"strings"
)

// FactorCategory groups explanation sentences by the aspect of the market
// they describe.
type FactorCategory string

const (
	CategoryPrice      FactorCategory = "PRICE"
	CategoryTrend      FactorCategory = "TREND"
	CategoryMomentum   FactorCategory = "MOMENTUM"
	CategoryVolume     FactorCategory = "VOLUME"
	CategoryVolatility FactorCategory = "VOLATILITY"
)

// CategoryOrder is the fixed emission order for narrative sections.
var CategoryOrder = []FactorCategory{
	CategoryPrice,
	CategoryTrend,
	CategoryMomentum,
	CategoryVolume,
	CategoryVolatility,
}

// Title returns the section heading for a category.
func (c FactorCategory) Title() string {
	switch c {
	case CategoryPrice:
		return "Price"
	case CategoryTrend:
		return "Trend"
	case CategoryMomentum:
		return "Momentum"
	case CategoryVolume:
		return "Volume"
	case CategoryVolatility:
		return "Volatility"
	}
	return string(c)
}

// Narrative is the structured explanation of one resolved label. It is
// constructed fresh per request and never mutated afterwards.
type Narrative struct {
	Header  string
	Factors map[FactorCategory][]string
	Context []string
	Verdict string
}

// NewNarrative creates an empty narrative for the given label.
func NewNarrative(header string) *Narrative {
	return &Narrative{
		Header:  header,
		Factors: make(map[FactorCategory][]string),
	}
}

// AddFactor appends a categorized explanation sentence.
func (n *Narrative) AddFactor(cat FactorCategory, line string) {
	n.Factors[cat] = append(n.Factors[cat], line)
}

// AddContext appends an uncategorized context line (signal membership,
// pattern match, position state).
func (n *Narrative) AddContext(line string) {
	n.Context = append(n.Context, line)
}

// FactorCount returns the number of categorized sentences.
func (n *Narrative) FactorCount() int {
	total := 0
	for _, lines := range n.Factors {
		total += len(lines)
	}
	return total
}

// Render assembles the narrative into display text. Categories appear in
// the fixed order and only when non-empty.
func (n *Narrative) Render() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Why %q:\n", n.Header))

	for _, cat := range CategoryOrder {
		lines := n.Factors[cat]
		if len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s:\n", cat.Title()))
		for _, line := range lines {
			b.WriteString(fmt.Sprintf("  - %s\n", line))
		}
	}

	if len(n.Context) > 0 {
		b.WriteString("\n")
		for _, line := range n.Context {
			b.WriteString(fmt.Sprintf("%s\n", line))
		}
	}

	b.WriteString(fmt.Sprintf("\n%s\n", n.Verdict))
	return b.String()
}
