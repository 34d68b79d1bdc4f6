// Package catalog holds the static SIGNAL and DECISION rule tables and
// validates them once at startup.
package catalog

import (
	"SignalSentinel/internal/dsl"
	"SignalSentinel/internal/model"
)

// Classifier names one of the two rule families.
type Classifier string

const (
	ClassifierSignal   Classifier = "SIGNAL"
	ClassifierDecision Classifier = "DECISION"
)

// PatternType classifies a detected chart pattern.
type PatternType int

const (
	PatternNone PatternType = iota
	PatternBullish
	PatternBearish
	PatternAny
)

func (t PatternType) String() string {
	switch t {
	case PatternBullish:
		return "bullish"
	case PatternBearish:
		return "bearish"
	case PatternAny:
		return "any"
	}
	return "none"
}

// CheckKind is the closed set of branch evaluation variants. SIGNAL
// branches are always CheckCondition; DECISION branches use the typed
// checks. The loader rejects anything outside this set, so resolver
// switches can be exhaustive.
type CheckKind int

const (
	CheckCondition CheckKind = iota // generic DSL condition tree
	CheckStopOut                    // price below support
	CheckSignal                     // snapshot signal in Signals set
	CheckPattern                    // signal match plus pattern-type match
	CheckPurchased                  // position currently held
	CheckDefault                    // always passes (catch-all)
)

// Branch is one prioritized rule. Order encodes priority: upstream forward
// evaluation picks the first passing branch, and reverse resolution scans
// in the same order.
type Branch struct {
	Order     int
	Condition string
	Result    string

	RequiresPurchased    bool
	RequiresNotPurchased bool

	Check      CheckKind
	Signals    []string    // CheckSignal, CheckPattern
	PatternReq PatternType // CheckPattern

	// Tree is the parsed form of Condition, attached by Load. Catalogs are
	// immutable after loading, so the tree doubles as the shared parse
	// cache and is safe for concurrent reads.
	Tree *dsl.Node
}

// MatchesGating reports whether the branch applies to the given
// purchased state.
func (b *Branch) MatchesGating(purchased bool) bool {
	if b.RequiresPurchased && !purchased {
		return false
	}
	if b.RequiresNotPurchased && purchased {
		return false
	}
	return true
}

// Catalog is one ordered branch list for a (classifier, mode) pair.
type Catalog struct {
	Classifier Classifier
	Mode       model.Mode
	Branches   []*Branch
}

// Name returns a short identifier for logs and lint findings.
func (c *Catalog) Name() string {
	return string(c.Classifier) + "/" + string(c.Mode)
}

// Set bundles the four loaded catalogs.
type Set struct {
	SignalTrade    *Catalog
	SignalInvest   *Catalog
	DecisionTrade  *Catalog
	DecisionInvest *Catalog
}

// Signal returns the SIGNAL catalog for a mode.
func (s *Set) Signal(m model.Mode) *Catalog {
	if m == model.ModeInvest {
		return s.SignalInvest
	}
	return s.SignalTrade
}

// Decision returns the DECISION catalog for a mode.
func (s *Set) Decision(m model.Mode) *Catalog {
	if m == model.ModeInvest {
		return s.DecisionInvest
	}
	return s.DecisionTrade
}

// Catalog returns the catalog for a classifier and mode.
func (s *Set) Catalog(cls Classifier, m model.Mode) *Catalog {
	if cls == ClassifierDecision {
		return s.Decision(m)
	}
	return s.Signal(m)
}
