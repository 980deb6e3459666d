package coverage

import (
	"testing"

	"insightify/internal/model"
	"insightify/internal/tester"
)

func TestCheckUseCase_FlagsShortfall(t *testing.T) {
	tcs := []model.TestCase{
		{ID: "tc_001", UseCaseID: "uc_001", ParameterVariationAxes: []string{"tone", "language"}},
	}
	r := CheckUseCase("uc_001", tcs, 3)
	tester.True(t, len(r.Issues) == 1)
}

func TestCheckUseCase_FlagsBadAxisCount(t *testing.T) {
	tcs := []model.TestCase{
		{ID: "tc_001", UseCaseID: "uc_001", ParameterVariationAxes: []string{"tone"}},
		{ID: "tc_002", UseCaseID: "uc_001", ParameterVariationAxes: []string{"tone", "language"}},
	}
	r := CheckUseCase("uc_001", tcs, 2)
	tester.True(t, len(r.Issues) == 1)
}

func TestCheckExample_FlagsUnresolvedPolicy(t *testing.T) {
	ex := model.DatasetExample{ID: "ex_001", EvaluationCriteria: []string{"a", "b", "c"}, PolicyIDs: []string{"pol_999"}}
	r := CheckExample(ex, map[string]struct{}{"pol_001": {}})
	tester.True(t, len(r.Issues) == 1)
}

func TestCheckPipeline_FlagsMissingFormatAndSource(t *testing.T) {
	ucs := []model.UseCase{{ID: "uc_001"}}
	pols := []model.Policy{{ID: "pol_001"}}
	tcs := []model.TestCase{{ID: "tc_001", UseCaseID: "uc_001"}}
	examples := []model.DatasetExample{
		{ID: "ex_001", UseCaseID: "uc_001", TestCaseID: "tc_001", Format: model.FormatSingleTurnQA, PolicyIDs: []string{"pol_001"}, Metadata: map[string]string{"source": "tickets"}},
	}
	r := CheckPipeline(model.CaseSupportBot, ucs, pols, tcs, examples)
	foundFAQGap, foundCornerGap := false, false
	for _, issue := range r.Issues {
		if issue == "support_bot run missing source faq_paraphrase across dataset.json examples" {
			foundFAQGap = true
		}
		if issue == "support_bot run missing source corner across dataset.json examples" {
			foundCornerGap = true
		}
	}
	tester.True(t, foundFAQGap)
	tester.True(t, foundCornerGap)
}

func TestCheckPipeline_CleanRunHasNoIssues(t *testing.T) {
	ucs := []model.UseCase{{ID: "uc_001"}}
	pols := []model.Policy{{ID: "pol_001"}}
	tcs := []model.TestCase{{ID: "tc_001", UseCaseID: "uc_001"}}
	examples := []model.DatasetExample{
		{ID: "ex_001", UseCaseID: "uc_001", TestCaseID: "tc_001", Format: model.FormatSingleTurnQA, PolicyIDs: []string{"pol_001"}, Metadata: map[string]string{"source": "tickets"}},
		{ID: "ex_002", UseCaseID: "uc_001", TestCaseID: "tc_001", Format: model.FormatSingleTurnQA, PolicyIDs: []string{"pol_001"}, Metadata: map[string]string{"source": "faq_paraphrase"}},
		{ID: "ex_003", UseCaseID: "uc_001", TestCaseID: "tc_001", Format: model.FormatSingleTurnQA, PolicyIDs: []string{"pol_001"}, Metadata: map[string]string{"source": "corner"}},
	}
	r := CheckPipeline(model.CaseSupportBot, ucs, pols, tcs, examples)
	tester.Eq(t, len(r.Issues), 0)
}
