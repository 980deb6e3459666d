// Package coverage implements the coverage and referential-integrity checks
// from spec §4.10. The same checks run at two severities: the orchestrator
// and pipeline driver log them as warnings during generation; the standalone
// validator (internal/validate) treats them as hard errors.
package coverage

import (
	"fmt"
	"strings"

	"insightify/internal/model"
)

// Report is the result of running every check in this package against one
// completed run's artifacts.
type Report struct {
	Issues []string
}

func (r *Report) add(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// CheckUseCase verifies the per-use-case minimums from spec §4.10: at least
// minTestCases test cases, each with 2-3 non-empty axis names.
func CheckUseCase(useCaseID string, testCases []model.TestCase, minTestCases int) *Report {
	r := &Report{}
	owned := 0
	for _, tc := range testCases {
		if tc.UseCaseID != useCaseID {
			continue
		}
		owned++
		if n := len(tc.ParameterVariationAxes); n < 2 || n > 3 {
			r.add("test case %s: parameter_variation_axes has %d entries, want 2-3", tc.ID, n)
		}
		for _, axis := range tc.ParameterVariationAxes {
			if strings.TrimSpace(axis) == "" {
				r.add("test case %s: parameter_variation_axes contains an empty axis name", tc.ID)
			}
		}
	}
	if owned < minTestCases {
		r.add("use case %s: only %d test cases, want at least %d", useCaseID, owned, minTestCases)
	}
	return r
}

// CheckExample verifies the per-example minimums: at least 3 evaluation
// criteria and at least 1 resolvable policy id.
func CheckExample(ex model.DatasetExample, policyIDs map[string]struct{}) *Report {
	r := &Report{}
	if len(ex.EvaluationCriteria) < 3 {
		r.add("example %s: only %d evaluation criteria, want at least 3", ex.ID, len(ex.EvaluationCriteria))
	}
	if len(ex.PolicyIDs) < 1 {
		r.add("example %s: no policy_ids", ex.ID)
	}
	for _, id := range ex.PolicyIDs {
		if _, ok := policyIDs[id]; !ok {
			r.add("example %s: policy_id %s does not resolve", ex.ID, id)
		}
	}
	return r
}

// CheckPipeline runs the run-wide checks from spec §4.10: format coverage,
// support_bot source coverage, and cross-artifact referential integrity.
func CheckPipeline(detectedCase model.Case, useCases []model.UseCase, policies []model.Policy, testCases []model.TestCase, examples []model.DatasetExample) *Report {
	r := &Report{}

	useCaseIDs := idSet(useCases, func(u model.UseCase) string { return u.ID })
	policyIDs := idSet(policies, func(p model.Policy) string { return p.ID })
	testCaseIDs := idSet(testCases, func(t model.TestCase) string { return t.ID })

	for _, tc := range testCases {
		if _, ok := useCaseIDs[tc.UseCaseID]; !ok {
			r.add("test case %s: use_case_id %s does not resolve", tc.ID, tc.UseCaseID)
		}
	}

	formats := map[model.Format]struct{}{}
	sources := map[model.Source]struct{}{}
	for _, ex := range examples {
		if _, ok := useCaseIDs[ex.UseCaseID]; !ok {
			r.add("example %s: use_case_id %s does not resolve", ex.ID, ex.UseCaseID)
		}
		if _, ok := testCaseIDs[ex.TestCaseID]; !ok {
			r.add("example %s: test_case_id %s does not resolve", ex.ID, ex.TestCaseID)
		}
		for _, id := range ex.PolicyIDs {
			if _, ok := policyIDs[id]; !ok {
				r.add("example %s: policy_id %s does not resolve", ex.ID, id)
			}
		}
		formats[ex.Format] = struct{}{}
		if s, ok := ex.Metadata[model.MetaSource]; ok {
			sources[model.Source(s)] = struct{}{}
		}
	}

	switch detectedCase {
	case model.CaseOperatorQuality:
		for _, f := range []model.Format{model.FormatSingleUtteranceCorrection, model.FormatDialogLastTurnCorrection} {
			if _, ok := formats[f]; !ok {
				r.add("operator_quality run missing format %s in dataset.json", f)
			}
		}
	case model.CaseSupportBot:
		if _, ok := formats[model.FormatSingleTurnQA]; !ok {
			r.add("support_bot run missing format %s in dataset.json", model.FormatSingleTurnQA)
		}
		for _, s := range []model.Source{model.SourceTickets, model.SourceFAQParaphrase, model.SourceCorner} {
			if _, ok := sources[s]; !ok {
				r.add("support_bot run missing source %s across dataset.json examples", s)
			}
		}
	}

	return r
}

func idSet[T any](items []T, idOf func(T) string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[idOf(item)] = struct{}{}
	}
	return out
}
