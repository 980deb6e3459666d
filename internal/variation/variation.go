// Package variation implements the pairwise-covering variation router from
// spec §4.6: a fixed, case-specific set of parameter axes is combinatorially
// reduced to a pairwise-covering set, padded deterministically up to a
// configured minimum, and each combination's "interesting" axes are
// computed for parameter_variation_axes.
package variation

import (
	"sort"

	"insightify/internal/model"
)

// Axis is a named parameter with an enumerated value domain.
type Axis struct {
	Name   string
	Values []string
}

// defaultValues identifies the axis values considered "uninteresting" per
// spec §4.6 step 3's heuristic.
var defaultValues = map[string]struct{}{
	"none": {}, "neutral": {}, "false": {}, "no": {}, "ru": {},
}

// Combination is one point in the parameter space, plus the axes spec §4.6
// step 3 singles out as non-default.
type Combination struct {
	Parameters map[string]string
	AxisNames  []string
}

// AxesForCase returns the fixed axis set for c (spec §4.6's table).
func AxesForCase(c model.Case) []Axis {
	switch c {
	case model.CaseOperatorQuality:
		return []Axis{
			{Name: "phrase_length", Values: []string{"short", "medium", "long"}},
			{Name: "punctuation_errors", Values: []string{"none", "minor", "severe"}},
			{Name: "slang_profanity_emoji", Values: []string{"none", "moderate", "excessive"}},
			{Name: "medical_terms", Values: []string{"none", "present"}},
			{Name: "user_aggression", Values: []string{"neutral", "frustrated", "angry"}},
			{Name: "escalation_needed", Values: []string{"no", "yes"}},
		}
	default: // support_bot, doctor_booking
		return []Axis{
			{Name: "tone", Values: []string{"neutral", "negative", "aggressive"}},
			{Name: "has_order_id", Values: []string{"true", "false"}},
			{Name: "requires_account_access", Values: []string{"true", "false"}},
			{Name: "language", Values: []string{"ru", "en"}},
			{Name: "adversarial", Values: []string{"none", "profanity", "injection", "garbage"}},
		}
	}
}

// Route produces the pairwise-covering combination set for c, padded up to
// minTestCases with combinations drawn from rng, so the padding is
// deterministic for a given rng seed (spec §4.6).
func Route(c model.Case, minTestCases int, rng interface{ IntN(int) int }) []Combination {
	axes := AxesForCase(c)
	combos := pairwiseCover(axes)
	combos = pad(combos, axes, minTestCases, rng)
	out := make([]Combination, 0, len(combos))
	for _, params := range combos {
		out = append(out, Combination{Parameters: params, AxisNames: interestingAxes(axes, params)})
	}
	return out
}

// pairwiseCover generates a combination set in which every pair of
// (axis A value, axis B value) appears at least once, using a simple greedy
// covering-array construction: repeatedly pick the combination that covers
// the most still-uncovered pairs.
func pairwiseCover(axes []Axis) []map[string]string {
	pairs := allPairs(axes)
	uncovered := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		uncovered[p] = struct{}{}
	}

	var combos []map[string]string
	for len(uncovered) > 0 {
		best := greedyBest(axes, uncovered)
		combos = append(combos, best)
		for _, p := range pairsCoveredBy(axes, best) {
			delete(uncovered, p)
		}
	}
	return combos
}

// allPairs enumerates every distinct-axis (axisA=valA, axisB=valB) pair key.
func allPairs(axes []Axis) []string {
	var pairs []string
	for i := 0; i < len(axes); i++ {
		for j := i + 1; j < len(axes); j++ {
			for _, va := range axes[i].Values {
				for _, vb := range axes[j].Values {
					pairs = append(pairs, pairKey(axes[i].Name, va, axes[j].Name, vb))
				}
			}
		}
	}
	return pairs
}

func pairKey(nameA, valA, nameB, valB string) string {
	return nameA + "=" + valA + "&" + nameB + "=" + valB
}

// pairsCoveredBy returns every pair key the given full assignment covers.
func pairsCoveredBy(axes []Axis, combo map[string]string) []string {
	var pairs []string
	for i := 0; i < len(axes); i++ {
		for j := i + 1; j < len(axes); j++ {
			pairs = append(pairs, pairKey(axes[i].Name, combo[axes[i].Name], axes[j].Name, combo[axes[j].Name]))
		}
	}
	return pairs
}

// greedyBest enumerates all full value assignments (the product space is
// small: at most a few hundred combinations for these axis sets) and keeps
// the one covering the most still-uncovered pairs, breaking ties by the
// first assignment found for reproducibility.
func greedyBest(axes []Axis, uncovered map[string]struct{}) map[string]string {
	var best map[string]string
	bestScore := -1
	enumerate(axes, 0, map[string]string{}, func(combo map[string]string) {
		score := 0
		for _, p := range pairsCoveredBy(axes, combo) {
			if _, ok := uncovered[p]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = cloneMap(combo)
		}
	})
	return best
}

func enumerate(axes []Axis, idx int, acc map[string]string, visit func(map[string]string)) {
	if idx == len(axes) {
		visit(acc)
		return
	}
	for _, v := range axes[idx].Values {
		acc[axes[idx].Name] = v
		enumerate(axes, idx+1, acc, visit)
	}
	delete(acc, axes[idx].Name)
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// pad adds further combinations, chosen deterministically via rng, until
// len(combos) reaches minTestCases (spec §4.6 step 2).
func pad(combos []map[string]string, axes []Axis, minTestCases int, rng interface{ IntN(int) int }) []map[string]string {
	for len(combos) < minTestCases {
		acc := make(map[string]string, len(axes))
		for _, a := range axes {
			acc[a.Name] = a.Values[rng.IntN(len(a.Values))]
		}
		combos = append(combos, acc)
	}
	return combos
}

// interestingAxes picks the 2-3 axes whose value is non-default (spec §4.6
// step 3); if fewer than 2 qualify, falls back to the first two axes in
// declaration order.
func interestingAxes(axes []Axis, params map[string]string) []string {
	var names []string
	for _, a := range axes {
		if _, isDefault := defaultValues[params[a.Name]]; !isDefault {
			names = append(names, a.Name)
		}
	}
	if len(names) < 2 {
		names = nil
		for i := 0; i < len(axes) && i < 2; i++ {
			names = append(names, axes[i].Name)
		}
		return names
	}
	sort.Strings(names)
	if len(names) > 3 {
		names = names[:3]
	}
	return names
}
