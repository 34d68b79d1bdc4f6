package catalog

import "strings"

// Fixed pattern vocabularies. The upstream scanner writes detected chart
// patterns into the snapshot's free-text patterns field; type detection is
// substring matching against these lists.
var bullishPatterns = []string{
	"CUP AND HANDLE",
	"ASCENDING TRIANGLE",
	"BULL FLAG",
	"BULL PENNANT",
	"DOUBLE BOTTOM",
	"INVERSE HEAD AND SHOULDERS",
	"FALLING WEDGE",
	"GOLDEN CROSS",
}

var bearishPatterns = []string{
	"HEAD AND SHOULDERS",
	"DESCENDING TRIANGLE",
	"BEAR FLAG",
	"BEAR PENNANT",
	"DOUBLE TOP",
	"RISING WEDGE",
	"DEATH CROSS",
}

// DetectPatternType classifies the snapshot's patterns text. Bullish
// matching runs first because "INVERSE HEAD AND SHOULDERS" contains
// "HEAD AND SHOULDERS"; the specific inverse form must win over the plain
// bearish one.
func DetectPatternType(patterns string) PatternType {
	text := strings.ToUpper(patterns)
	if text == "" {
		return PatternNone
	}
	for _, p := range bullishPatterns {
		if strings.Contains(text, p) {
			return PatternBullish
		}
	}
	for _, p := range bearishPatterns {
		if strings.Contains(text, p) {
			return PatternBearish
		}
	}
	return PatternNone
}

// FirstPattern returns the first vocabulary pattern found in the text, for
// narrative display. Empty when nothing matched.
func FirstPattern(patterns string) string {
	text := strings.ToUpper(patterns)
	for _, p := range append(append([]string{}, bullishPatterns...), bearishPatterns...) {
		if strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

// Satisfies reports whether a detected pattern type meets a branch's
// requirement.
func (t PatternType) Satisfies(req PatternType) bool {
	switch req {
	case PatternNone:
		return true
	case PatternAny:
		return t != PatternNone
	default:
		return t == req
	}
}
