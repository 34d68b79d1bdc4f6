// Package engine is the caller-facing façade: resolve the branch behind a
// snapshot's stored label, re-evaluate it, and narrate the outcome.
package engine

import (
	"fmt"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/narrator"
	"SignalSentinel/internal/rules"
)

// Engine explains SIGNAL and DECISION labels against loaded catalogs. The
// catalog set is immutable, so a single Engine is safe for concurrent use;
// each call works only on its own snapshot.
type Engine struct {
	set *catalog.Set
}

// New creates an engine over a validated catalog set.
func New(set *catalog.Set) *Engine {
	return &Engine{set: set}
}

// Explanation is the result of one explain call. Expected failures
// (unknown label, missing data) degrade the narrative text; they never
// surface as errors.
type Explanation struct {
	Label     string     `json:"label"`
	Mode      model.Mode `json:"mode"`
	Resolved  bool       `json:"resolved"`
	Narrative string     `json:"narrative"`
}

// ExplainSignal resolves and explains the snapshot's SIGNAL label.
func (e *Engine) ExplainSignal(snap *model.IndicatorSnapshot) Explanation {
	ctx := rules.ContextFor(snap)
	branch, mode, err := rules.ResolveWithFallback(e.set, catalog.ClassifierSignal, snap.Mode, snap.Signal, ctx)
	if err != nil {
		return fallback(catalog.ClassifierSignal, snap.Signal, snap.Mode)
	}

	res := rules.Evaluate(branch.Tree, snap)
	n := narrator.Explain(catalog.ClassifierSignal, branch, res, snap, "")
	return Explanation{Label: branch.Result, Mode: mode, Resolved: true, Narrative: n.Render()}
}

// ExplainDecision resolves and explains the snapshot's DECISION label,
// using the already-resolved signal label as context.
func (e *Engine) ExplainDecision(snap *model.IndicatorSnapshot, signal string) Explanation {
	ctx := rules.ContextFor(snap)
	branch, mode, err := rules.ResolveWithFallback(e.set, catalog.ClassifierDecision, snap.Mode, snap.Decision, ctx)
	if err != nil {
		return fallback(catalog.ClassifierDecision, snap.Decision, snap.Mode)
	}

	res := rules.EvaluateDecision(branch, snap, signal, ctx)
	n := narrator.Explain(catalog.ClassifierDecision, branch, res, snap, signal)
	return Explanation{Label: branch.Result, Mode: mode, Resolved: true, Narrative: n.Render()}
}

// fallback is the lowest-fidelity narrative, used when no branch in either
// mode matches the stored label. It is clearly labeled as such rather than
// fabricating a rationale.
func fallback(cls catalog.Classifier, label string, mode model.Mode) Explanation {
	kind := "Signal"
	if cls == catalog.ClassifierDecision {
		kind = "Decision"
	}
	display := label
	if display == "" {
		display = "(none)"
	}
	return Explanation{
		Label:     label,
		Mode:      mode,
		Resolved:  false,
		Narrative: fmt.Sprintf("%s criteria: %s (detailed rule unavailable).", kind, display),
	}
}
