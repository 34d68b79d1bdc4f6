package catalog

import (
	"fmt"
	"strings"

	"SignalSentinel/internal/dsl"
	"SignalSentinel/internal/model"
)

// Lint is a non-fatal data-quality finding from catalog loading.
type Lint struct {
	Catalog string
	Order   int
	Label   string
	Note    string
}

func (l Lint) String() string {
	return fmt.Sprintf("%s order %d %q: %s", l.Catalog, l.Order, l.Label, l.Note)
}

// Load builds and validates the four catalogs. Every condition is parsed
// here, once; a ParseError or unknown field reference fails the load so
// defects surface at startup, never during an explain call. Duplicate rows
// are removed and reported as lint findings.
func Load() (*Set, []Lint, error) {
	var lints []Lint

	build := func(cls Classifier, mode model.Mode, raw []*Branch) (*Catalog, error) {
		cat := &Catalog{Classifier: cls, Mode: mode}

		seen := make(map[string]bool)
		for _, b := range raw {
			key := fmt.Sprintf("%d|%s|%s", b.Order, b.Condition, b.Result)
			if seen[key] {
				lints = append(lints, Lint{
					Catalog: cat.Name(), Order: b.Order, Label: b.Result,
					Note: "duplicate branch removed",
				})
				continue
			}
			seen[key] = true
			copied := *b
			cat.Branches = append(cat.Branches, &copied)
		}

		if err := validate(cat); err != nil {
			return nil, err
		}
		return cat, nil
	}

	var set Set
	var err error
	if set.SignalTrade, err = build(ClassifierSignal, model.ModeTrade, signalTradeBranches); err != nil {
		return nil, nil, err
	}
	if set.SignalInvest, err = build(ClassifierSignal, model.ModeInvest, signalInvestBranches); err != nil {
		return nil, nil, err
	}
	if set.DecisionTrade, err = build(ClassifierDecision, model.ModeTrade, decisionTradeBranches); err != nil {
		return nil, nil, err
	}
	if set.DecisionInvest, err = build(ClassifierDecision, model.ModeInvest, decisionInvestBranches); err != nil {
		return nil, nil, err
	}
	return &set, lints, nil
}

// MustLoad is Load for static catalog data known to be valid; any error is
// a programmer error.
func MustLoad() *Set {
	set, _, err := Load()
	if err != nil {
		panic(err)
	}
	return set
}

func validate(cat *Catalog) error {
	if len(cat.Branches) == 0 {
		return fmt.Errorf("catalog %s: no branches", cat.Name())
	}

	labels := make(map[string]bool)
	prevOrder := 0
	for i, b := range cat.Branches {
		if b.Order <= prevOrder {
			return fmt.Errorf("catalog %s: branch %q order %d not strictly increasing", cat.Name(), b.Result, b.Order)
		}
		prevOrder = b.Order

		if b.RequiresPurchased && b.RequiresNotPurchased {
			return fmt.Errorf("catalog %s: branch %q gates on both purchased states", cat.Name(), b.Result)
		}

		labelKey := fmt.Sprintf("%s|%v|%v", strings.ToUpper(strings.TrimSpace(b.Result)), b.RequiresPurchased, b.RequiresNotPurchased)
		if labels[labelKey] {
			return fmt.Errorf("catalog %s: ambiguous reverse lookup, label %q repeats under identical gating", cat.Name(), b.Result)
		}
		labels[labelKey] = true

		if err := validateCheck(cat, b); err != nil {
			return err
		}

		if i == len(cat.Branches)-1 && !isCatchAll(b) {
			return fmt.Errorf("catalog %s: last branch %q is not the catch-all", cat.Name(), b.Result)
		}
	}
	return nil
}

// validateCheck parses condition trees and verifies kind-specific fields.
// The switch is exhaustive over CheckKind; anything else is rejected.
func validateCheck(cat *Catalog, b *Branch) error {
	switch b.Check {
	case CheckCondition, CheckStopOut:
		tree, err := dsl.Parse(b.Condition)
		if err != nil {
			return fmt.Errorf("catalog %s: branch %q: %w", cat.Name(), b.Result, err)
		}
		for _, ref := range tree.FieldRefs() {
			if _, ok := dsl.Lookup(ref); !ok {
				return fmt.Errorf("catalog %s: branch %q: unknown field reference %s", cat.Name(), b.Result, ref)
			}
		}
		b.Tree = tree
	case CheckSignal:
		if len(b.Signals) == 0 {
			return fmt.Errorf("catalog %s: branch %q: signal check with empty signal set", cat.Name(), b.Result)
		}
	case CheckPattern:
		if len(b.Signals) == 0 {
			return fmt.Errorf("catalog %s: branch %q: pattern check with empty signal set", cat.Name(), b.Result)
		}
		if b.PatternReq == PatternNone {
			return fmt.Errorf("catalog %s: branch %q: pattern check without pattern requirement", cat.Name(), b.Result)
		}
	case CheckPurchased, CheckDefault:
		// no extra fields
	default:
		return fmt.Errorf("catalog %s: branch %q: unknown check kind %d", cat.Name(), b.Result, b.Check)
	}
	return nil
}

func isCatchAll(b *Branch) bool {
	if b.Check == CheckDefault {
		return true
	}
	return b.Tree != nil && b.Tree.Kind == dsl.KindDefault
}
