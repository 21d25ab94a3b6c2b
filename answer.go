package rbl

import "strings"

// NormalizeAnswer folds an answer for comparison: lower-cased, trimmed,
// and with all internal whitespace removed. "  Tea Pot " and "teapot"
// compare equal. Catalog answers keep their internal spacing for display;
// this fold is applied to both sides at check time.
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// AnswerMatches reports whether the submitted text matches any of the
// accepted answers after both sides are normalized.
func AnswerMatches(submitted string, accepted []string) bool {
	got := NormalizeAnswer(submitted)
	for _, want := range accepted {
		if NormalizeAnswer(want) == got {
			return true
		}
	}
	return false
}
