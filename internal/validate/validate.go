// Package validate implements the standalone validator from spec §4.11: it
// re-loads the five JSON artifacts, runs the same checks
// internal/coverage applies as warnings during generation, but as hard
// errors here, and reports structural/referential-integrity problems the
// coverage package doesn't already cover.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"insightify/internal/coverage"
	"insightify/internal/model"
)

// Report is the structured result spec §6 names: validate(out_dir) ->
// {errors, warnings, counts}.
type Report struct {
	Counts   model.Counts `json:"counts"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
}

// OK reports whether the run disposition is success: zero errors, warnings
// permitted (spec §6's exit disposition rule).
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Run loads the five artifacts from outDir and validates them.
func Run(outDir string) (Report, error) {
	var useCases model.UseCasesFile
	var policies model.PoliciesFile
	var testCases model.TestCasesFile
	var dataset model.DatasetFile
	var manifest model.RunManifest

	if err := loadJSON(outDir, "use_cases.json", &useCases); err != nil {
		return Report{}, err
	}
	if err := loadJSON(outDir, "policies.json", &policies); err != nil {
		return Report{}, err
	}
	if err := loadJSON(outDir, "test_cases.json", &testCases); err != nil {
		return Report{}, err
	}
	if err := loadJSON(outDir, "dataset.json", &dataset); err != nil {
		return Report{}, err
	}
	if err := loadJSON(outDir, "run_manifest.json", &manifest); err != nil {
		return Report{}, err
	}

	var errs []string

	for _, uc := range useCases.UseCases {
		errs = append(errs, uc.Validate()...)
	}
	for _, p := range policies.Policies {
		errs = append(errs, p.Validate()...)
	}
	for _, tc := range testCases.TestCases {
		errs = append(errs, tc.Validate()...)
	}
	for _, ex := range dataset.Examples {
		errs = append(errs, ex.Validate()...)
	}

	if dups := model.UniqueIDs(useCases.UseCases, func(u model.UseCase) string { return u.ID }); len(dups) > 0 {
		errs = append(errs, fmt.Sprintf("use_cases.json: duplicate ids: %v", dups))
	}
	if dups := model.UniqueIDs(policies.Policies, func(p model.Policy) string { return p.ID }); len(dups) > 0 {
		errs = append(errs, fmt.Sprintf("policies.json: duplicate ids: %v", dups))
	}
	if dups := model.UniqueIDs(testCases.TestCases, func(t model.TestCase) string { return t.ID }); len(dups) > 0 {
		errs = append(errs, fmt.Sprintf("test_cases.json: duplicate ids: %v", dups))
	}
	if dups := model.UniqueIDs(dataset.Examples, func(e model.DatasetExample) string { return e.ID }); len(dups) > 0 {
		errs = append(errs, fmt.Sprintf("dataset.json: duplicate ids: %v", dups))
	}

	for _, uc := range useCases.UseCases {
		// minTestCases=0: validate(out_dir) takes no generation-time minimum
		// (spec §6), so only the per-test-case axis-count checks apply here.
		report := coverage.CheckUseCase(uc.ID, testCases.TestCases, 0)
		errs = append(errs, report.Issues...)
	}

	policyIDSet := make(map[string]struct{}, len(policies.Policies))
	for _, p := range policies.Policies {
		policyIDSet[p.ID] = struct{}{}
	}
	for _, ex := range dataset.Examples {
		report := coverage.CheckExample(ex, policyIDSet)
		errs = append(errs, report.Issues...)
	}

	pipelineReport := coverage.CheckPipeline(manifest.DetectedCase, useCases.UseCases, policies.Policies, testCases.TestCases, dataset.Examples)
	errs = append(errs, pipelineReport.Issues...)

	counts := model.Counts{
		UseCases:        len(useCases.UseCases),
		Policies:        len(policies.Policies),
		TestCases:       len(testCases.TestCases),
		DatasetExamples: len(dataset.Examples),
	}
	if counts != manifest.Counts {
		errs = append(errs, fmt.Sprintf("run_manifest.json: counts %+v do not match artifact lengths %+v", manifest.Counts, counts))
	}

	return Report{Counts: counts, Errors: errs}, nil
}

func loadJSON(dir, name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("validate: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("validate: parse %s: %w", name, err)
	}
	return nil
}
