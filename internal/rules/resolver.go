package rules

import (
	"errors"
	"strings"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/model"
)

// ErrBranchNotFound means no branch in either mode's catalog yields the
// target label under the given gating context. Callers surface this as an
// "explanation unavailable" result, never a guess.
var ErrBranchNotFound = errors.New("no rule branch matches label")

// Context carries the gating inputs for reverse resolution.
type Context struct {
	Purchased bool
	Pattern   catalog.PatternType
}

// ContextFor derives the resolution context from a snapshot.
func ContextFor(snap *model.IndicatorSnapshot) Context {
	return Context{
		Purchased: snap.IsPurchased,
		Pattern:   catalog.DetectPatternType(snap.Patterns),
	}
}

// Resolve scans a catalog in priority order for the branch that produced
// the target label. Gating mismatches are skipped. Label comparison is
// trimmed and case-insensitive: upstream labels come from sheet cells with
// inconsistent casing.
func Resolve(cat *catalog.Catalog, label string, ctx Context) (*catalog.Branch, error) {
	target := strings.TrimSpace(label)
	if target == "" {
		return nil, ErrBranchNotFound
	}
	for _, b := range cat.Branches {
		if !b.MatchesGating(ctx.Purchased) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(b.Result), target) {
			return b, nil
		}
	}
	return nil, ErrBranchNotFound
}

// ResolveWithFallback resolves in the requested mode, then retries the
// opposite mode. The fallback covers snapshots whose stored label was
// computed under a different mode setting than the current flag.
func ResolveWithFallback(set *catalog.Set, cls catalog.Classifier, mode model.Mode, label string, ctx Context) (*catalog.Branch, model.Mode, error) {
	if b, err := Resolve(set.Catalog(cls, mode), label, ctx); err == nil {
		return b, mode, nil
	}
	alt := mode.Opposite()
	if b, err := Resolve(set.Catalog(cls, alt), label, ctx); err == nil {
		return b, alt, nil
	}
	return nil, mode, ErrBranchNotFound
}

// EvaluateDecision evaluates a DECISION branch per its check kind against
// the snapshot and the (re-resolved) signal label. The switch is
// exhaustive over the kinds the catalog loader accepts.
func EvaluateDecision(b *catalog.Branch, snap *model.IndicatorSnapshot, signal string, ctx Context) *Result {
	switch b.Check {
	case catalog.CheckCondition, catalog.CheckStopOut:
		return Evaluate(b.Tree, snap)

	case catalog.CheckSignal:
		return &Result{Passed: signalInSet(signal, b.Signals)}

	case catalog.CheckPattern:
		return &Result{Passed: signalInSet(signal, b.Signals) && ctx.Pattern.Satisfies(b.PatternReq)}

	case catalog.CheckPurchased:
		return &Result{Passed: ctx.Purchased}

	case catalog.CheckDefault:
		return &Result{Passed: true}
	}
	// Unreachable with a validated catalog.
	return &Result{Passed: false, Reason: "unknown check kind"}
}

func signalInSet(signal string, set []string) bool {
	target := strings.TrimSpace(signal)
	for _, s := range set {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}
