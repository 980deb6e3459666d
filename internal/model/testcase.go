package model

import "strings"

// TestCase is synthesised by the variation router + orchestrator for a given
// UseCase (spec §3, §4.6, §4.9).
type TestCase struct {
	ID                     string            `json:"id"`
	Case                   Case              `json:"case"`
	UseCaseID              string            `json:"use_case_id"`
	Name                   string            `json:"name"`
	Description            string            `json:"description"`
	ParameterVariationAxes []string          `json:"parameter_variation_axes"`
	Parameters             map[string]string `json:"parameters"`
	PolicyIDs              []string          `json:"policy_ids"`
}

func (tc TestCase) Validate() []string {
	var issues []string
	if err := CheckID(tc.ID, PrefixTestCase, "test_case"); err != nil {
		issues = append(issues, err.Error())
	}
	if err := CheckID(tc.UseCaseID, PrefixUseCase, "test_case.use_case_id"); err != nil {
		issues = append(issues, err.Error())
	}
	if strings.TrimSpace(tc.Name) == "" {
		issues = append(issues, "test_case.name is empty")
	}
	if n := len(tc.ParameterVariationAxes); n < 2 || n > 3 {
		issues = append(issues, "test_case.parameter_variation_axes must have 2 or 3 entries")
	}
	for _, axis := range tc.ParameterVariationAxes {
		if strings.TrimSpace(axis) == "" {
			issues = append(issues, "test_case.parameter_variation_axes contains an empty axis name")
		}
	}
	for _, id := range tc.PolicyIDs {
		if err := CheckID(id, PrefixPolicy, "test_case.policy_ids"); err != nil {
			issues = append(issues, err.Error())
		}
	}
	return issues
}
