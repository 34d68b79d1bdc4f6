// Package narrator turns evaluated rule branches into categorized,
// human-readable justifications.
package narrator

import (
	"fmt"
	"strings"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/rules"
)

// Explain builds the narrative for a resolved branch and its evaluation.
// For DECISION branches the signal argument is the (re-resolved) SIGNAL
// label used as context; it is ignored for SIGNAL branches. Output is a
// pure function of the inputs: no timestamps, no randomness.
func Explain(cls catalog.Classifier, branch *catalog.Branch, res *rules.Result, snap *model.IndicatorSnapshot, signal string) *model.Narrative {
	n := model.NewNarrative(branch.Result)

	switch branch.Check {
	case catalog.CheckCondition, catalog.CheckStopOut:
		for _, leaf := range res.Leaves() {
			cat, line := describeLeaf(leaf)
			n.AddFactor(cat, line)
		}

	case catalog.CheckSignal:
		n.AddContext(signalMembershipLine(signal, branch.Signals, res.Passed))

	case catalog.CheckPattern:
		n.AddContext(signalMembershipLine(signal, branch.Signals, signalMatched(signal, branch.Signals)))
		n.AddContext(patternLine(branch, snap))

	case catalog.CheckPurchased:
		if res.Passed {
			n.AddContext("A position in this ticker is currently held.")
		} else {
			n.AddContext("No position in this ticker is currently held.")
		}

	case catalog.CheckDefault:
		// fall through to the no-criteria statement below
	}

	if n.FactorCount() == 0 && len(n.Context) == 0 {
		n.AddContext("No specific technical criteria were required for this result; it is the fallback classification.")
	}

	n.Verdict = verdictLine(cls, branch.Result)
	return n
}

func verdictLine(cls catalog.Classifier, label string) string {
	if cls == catalog.ClassifierDecision {
		return fmt.Sprintf("Final decision: %s", label)
	}
	return fmt.Sprintf("Final signal: %s", label)
}

func signalMatched(signal string, set []string) bool {
	for _, s := range set {
		if strings.EqualFold(s, strings.TrimSpace(signal)) {
			return true
		}
	}
	return false
}

func signalMembershipLine(signal string, set []string, matched bool) string {
	if matched {
		return fmt.Sprintf("Current setup %q is one of the qualifying setups for this action (%s).",
			signal, strings.Join(set, ", "))
	}
	return fmt.Sprintf("Current setup %q is not among the setups this action expects (%s).",
		signal, strings.Join(set, ", "))
}

func patternLine(branch *catalog.Branch, snap *model.IndicatorSnapshot) string {
	detected := catalog.DetectPatternType(snap.Patterns)
	name := catalog.FirstPattern(snap.Patterns)
	if detected.Satisfies(branch.PatternReq) && name != "" {
		return fmt.Sprintf("Detected chart pattern %q satisfies the required %s pattern type.", name, branch.PatternReq)
	}
	if name != "" {
		return fmt.Sprintf("Detected chart pattern %q is %s, but this action requires a %s pattern.", name, detected, branch.PatternReq)
	}
	return fmt.Sprintf("No chart pattern was detected, but this action requires a %s pattern.", branch.PatternReq)
}
