package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"insightify/internal/model"
	"insightify/internal/tester"
)

func writeArtifacts(t *testing.T, dir string, ex model.DatasetExample) {
	t.Helper()
	// CaseDoctorBooking carries the same per-example invariants as
	// support_bot but none of its source-coverage requirements, so a
	// single example is enough to exercise a genuinely clean run.
	useCases := model.UseCasesFile{UseCases: []model.UseCase{
		{ID: "uc_001", Case: model.CaseDoctorBooking, Name: "Book appointment", Description: "Book a doctor's appointment.",
			Evidence: []model.Evidence{{InputFile: "doc.md", LineStart: 1, LineEnd: 1, Quote: "q"}}},
	}}
	policies := model.PoliciesFile{Policies: []model.Policy{
		{ID: "pol_001", Case: model.CaseDoctorBooking, Type: model.PolicyMust, Description: "must confirm the slot",
			Evidence: []model.Evidence{{InputFile: "doc.md", LineStart: 1, LineEnd: 1, Quote: "q"}}},
	}}
	testCases := model.TestCasesFile{TestCases: []model.TestCase{
		{ID: "tc_001", Case: model.CaseDoctorBooking, UseCaseID: "uc_001", Name: "variation 1", Description: "d",
			ParameterVariationAxes: []string{"tone", "language"}, Parameters: map[string]string{"tone": "neutral"}},
	}}
	dataset := model.DatasetFile{Examples: []model.DatasetExample{ex}}
	manifest := model.RunManifest{
		Counts:          model.Counts{UseCases: 1, Policies: 1, TestCases: 1, DatasetExamples: 1},
		DetectedCase:    model.CaseDoctorBooking,
		DetectedFormats: []model.Format{model.FormatSingleTurnQA},
	}

	for name, v := range map[string]any{
		"use_cases.json":    useCases,
		"policies.json":     policies,
		"test_cases.json":   testCases,
		"dataset.json":      dataset,
		"run_manifest.json": manifest,
	} {
		raw, err := json.Marshal(v)
		tester.NoErr(t, err)
		tester.NoErr(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
	}
}

func validExample() model.DatasetExample {
	return model.DatasetExample{
		ID: "ex_001", Case: model.CaseDoctorBooking, Format: model.FormatSingleTurnQA,
		UseCaseID: "uc_001", TestCaseID: "tc_001",
		Input:              model.InputData{Messages: []model.Message{{Role: model.RoleUser, Content: "Где мой заказ?"}}},
		ExpectedOutput:     "Ваш заказ в пути.",
		EvaluationCriteria: []string{"a", "b", "c"},
		PolicyIDs:          []string{"pol_001"},
		Metadata:           map[string]string{"generator": "format_adapter"},
	}
}

func TestRun_CleanArtifactsPassWithoutErrors(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, validExample())

	report, err := Run(dir)
	tester.NoErr(t, err)
	tester.Eq(t, len(report.Errors), 0)
}

func TestRun_UnresolvedPolicyIDIsHardError(t *testing.T) {
	dir := t.TempDir()
	ex := validExample()
	ex.PolicyIDs = []string{"pol_999"}
	writeArtifacts(t, dir, ex)

	report, err := Run(dir)
	tester.NoErr(t, err)
	tester.True(t, len(report.Errors) > 0, "expected an integrity error for an unresolved policy id")
	tester.False(t, report.OK())
}

func TestRun_CountMismatchIsError(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, validExample())

	var manifest model.RunManifest
	raw, err := os.ReadFile(filepath.Join(dir, "run_manifest.json"))
	tester.NoErr(t, err)
	tester.NoErr(t, json.Unmarshal(raw, &manifest))
	manifest.Counts.DatasetExamples = 99
	raw, err = json.Marshal(manifest)
	tester.NoErr(t, err)
	tester.NoErr(t, os.WriteFile(filepath.Join(dir, "run_manifest.json"), raw, 0o644))

	report, err := Run(dir)
	tester.NoErr(t, err)
	tester.True(t, len(report.Errors) > 0, "expected a counts mismatch error")
}
