package orchestrate

import (
	"context"
	"encoding/json"
	"testing"

	"insightify/internal/adapter"
	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/tester"
)

type fakePrimary struct{}

func (fakePrimary) Name() string { return "fake-primary" }
func (fakePrimary) Close() error { return nil }
func (fakePrimary) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	return json.RawMessage(`{"messages":[{"role":"user","content":"Где мой заказ?"}],"expected_output":"Ваш заказ в пути.","evaluation_criteria":["a","b","c"],"policy_ids":["pol_001"]}`), nil
}

var _ llmclient.Client = fakePrimary{}

func TestRun_GeneratesTestCasesAndExamplesViaAdapters(t *testing.T) {
	uc := model.UseCase{ID: "uc_001", Case: model.CaseSupportBot, Name: "FAQ", Description: "Answer FAQ questions."}
	policies := []model.Policy{{ID: "pol_001", Type: model.PolicyMust}}
	cfg := Config{MinTestCases: 3, AdapterOptions: adapter.Options{}}

	result := Run(context.Background(), fakePrimary{}, nil, uc, policies, []model.Format{model.FormatSingleTurnQA}, cfg, 42)

	tester.True(t, len(result.TestCases) >= 3)
	tester.True(t, len(result.Examples) >= 3)
	for _, ex := range result.Examples {
		tester.Eq(t, ex.Metadata[model.MetaGenerator], "format_adapter")
		tester.True(t, ex.Metadata[model.MetaSource] != "", "support_bot examples must carry a source")
	}
	tester.Eq(t, result.FrameworksUsed, []string{"format_adapter"})
}

func TestRun_DeterministicForSameSeed(t *testing.T) {
	uc := model.UseCase{ID: "uc_002", Case: model.CaseSupportBot, Name: "FAQ", Description: "Answer FAQ questions."}
	policies := []model.Policy{{ID: "pol_001"}}
	cfg := Config{MinTestCases: 5}

	r1 := Run(context.Background(), fakePrimary{}, nil, uc, policies, []model.Format{model.FormatSingleTurnQA}, cfg, 7)
	r2 := Run(context.Background(), fakePrimary{}, nil, uc, policies, []model.Format{model.FormatSingleTurnQA}, cfg, 7)

	tester.Eq(t, len(r1.TestCases), len(r2.TestCases))
	for i := range r1.TestCases {
		tester.Eq(t, r1.TestCases[i].Parameters, r2.TestCases[i].Parameters)
	}
}
