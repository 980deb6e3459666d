// Package evidence implements the evidence validator from spec §4.1: exact
// match preferred, similarity >= 90 accepted as Fuzzy, anything else
// classified Invalid. Callers log Fuzzy and Invalid outcomes as warnings;
// neither is treated as an error.
package evidence

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"insightify/internal/model"
	"insightify/internal/source"
)

// SimilarityThreshold is the minimum character-level ratio (0-100) at which
// a non-exact quote is still accepted, per spec §4.1 step 5.
const SimilarityThreshold = 90.0

// Outcome classifies the result of checking one Evidence item against a
// ParsedSource.
type Outcome int

const (
	Exact Outcome = iota
	Fuzzy
	Invalid
)

// Result carries the outcome plus enough detail to build a human-readable
// warning or error message.
type Result struct {
	Outcome    Outcome
	Similarity float64 // 0-100, meaningful for Fuzzy and Invalid
	Actual     string
	Expected   string
	Message    string
}

// Check verifies e against p following spec §4.1 steps 1-6.
func Check(p *source.ParsedSource, e model.Evidence) Result {
	if e.LineStart < 1 || e.LineEnd > p.LineCount() || e.LineStart > e.LineEnd {
		return Result{
			Outcome: Invalid,
			Message: fmt.Sprintf("evidence line range [%d,%d] out of bounds (source has %d lines)", e.LineStart, e.LineEnd, p.LineCount()),
		}
	}
	actual, err := p.Slice(e.LineStart, e.LineEnd)
	if err != nil {
		return Result{Outcome: Invalid, Message: err.Error()}
	}
	expected := normalizeQuote(e.Quote)

	if actual == expected {
		return Result{Outcome: Exact, Similarity: 100, Actual: actual, Expected: expected}
	}

	sim := Ratio(actual, expected)
	if sim >= SimilarityThreshold {
		return Result{
			Outcome:    Fuzzy,
			Similarity: sim,
			Actual:     actual,
			Expected:   expected,
			Message:    fmt.Sprintf("evidence quote is a fuzzy match (similarity=%.1f)", sim),
		}
	}
	return Result{
		Outcome:    Invalid,
		Similarity: sim,
		Actual:     actual,
		Expected:   expected,
		Message:    fmt.Sprintf("evidence quote does not match source (similarity=%.1f < %.0f)\n  actual:   %q\n  expected: %q", sim, SimilarityThreshold, actual, expected),
	}
}

// Ratio computes a character-level similarity percentage in [0,100] using
// the same SequenceMatcher.ratio() algorithm difflib.SequenceMatcher
// implements, ported to Go by github.com/pmezard/go-difflib.
func Ratio(a, b string) float64 {
	matcher := difflib.NewMatcher(splitChars(a), splitChars(b))
	return matcher.Ratio() * 100
}

func splitChars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func normalizeQuote(quote string) string {
	normalized := source.Parse("", []byte(quote))
	lines := make([]string, len(normalized.Lines))
	for i, l := range normalized.Lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
