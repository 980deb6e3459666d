package adapter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/tester"
)

type fakeClient struct {
	response json.RawMessage
	err      error
}

func (f *fakeClient) Name() string { return "fake" }
func (f *fakeClient) Close() error { return nil }
func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

var _ llmclient.Client = (*fakeClient)(nil)

var testUseCase = model.UseCase{ID: "uc_001", Case: model.CaseSupportBot, Name: "FAQ", Description: "Answer FAQ questions."}
var testPolicies = []model.Policy{{ID: "pol_001", Type: model.PolicyMust, Statement: "Be polite."}}

func TestFor_ResolvesRegisteredPairs(t *testing.T) {
	_, ok := For(model.FormatSingleTurnQA, model.CaseSupportBot)
	tester.True(t, ok)
	_, ok = For(model.FormatSingleUtteranceCorrection, model.CaseOperatorQuality)
	tester.True(t, ok)
	_, ok = For(model.FormatDialogLastTurnCorrection, model.CaseOperatorQuality)
	tester.True(t, ok)
	_, ok = For(model.FormatDialogLastTurnCorrection, model.CaseSupportBot)
	tester.False(t, ok)
}

func TestSingleTurnQA_GenerateExample(t *testing.T) {
	resp := `{"messages":[{"role":"user","content":"Где мой заказ?"}],"expected_output":"Ваш заказ в пути.","evaluation_criteria":["a","b","c"],"policy_ids":["pol_001"]}`
	a, _ := For(model.FormatSingleTurnQA, model.CaseSupportBot)
	cli := &fakeClient{response: json.RawMessage(resp)}

	ex, err := a.GenerateExample(context.Background(), cli, testUseCase, testPolicies, "tc_001", map[string]string{}, Options{}, nil)
	tester.NoErr(t, err)
	tester.Eq(t, ex.Format, model.FormatSingleTurnQA)
	tester.Eq(t, len(ex.Input.Messages), 1)
	tester.True(t, ex.Input.TargetMessageIndex == nil)
	tester.Eq(t, a.ValidateFormat(ex), []string(nil))
}

func TestSingleUtteranceCorrection_SetsTargetIndexZero(t *testing.T) {
	resp := `{"messages":[{"role":"operator","content":"жди блин"}],"expected_output":"Пожалуйста, подождите.","evaluation_criteria":["a","b","c"],"policy_ids":["pol_001"]}`
	a, _ := For(model.FormatSingleUtteranceCorrection, model.CaseOperatorQuality)
	cli := &fakeClient{response: json.RawMessage(resp)}

	ex, err := a.GenerateExample(context.Background(), cli, testUseCase, testPolicies, "tc_002", map[string]string{"punctuation_errors": "severe"}, Options{}, nil)
	tester.NoErr(t, err)
	tester.True(t, ex.Input.TargetMessageIndex != nil && *ex.Input.TargetMessageIndex == 0)
	tester.Eq(t, a.ValidateFormat(ex), []string(nil))
}

func TestDialogLastTurnCorrection_AppendsEscalationSentence(t *testing.T) {
	resp := `{"messages":[{"role":"user","content":"Здравствуйте"},{"role":"operator","content":"чо надо"}],"expected_output":"Добрый день, чем могу помочь?","evaluation_criteria":["a","b","c"],"policy_ids":["pol_001"]}`
	a, _ := For(model.FormatDialogLastTurnCorrection, model.CaseOperatorQuality)
	cli := &fakeClient{response: json.RawMessage(resp)}
	opts := Options{EscalationSentence: "Передаю ваш запрос специалисту."}

	ex, err := a.GenerateExample(context.Background(), cli, testUseCase, testPolicies, "tc_003", map[string]string{"escalation_needed": "yes"}, opts, nil)
	tester.NoErr(t, err)
	tester.True(t, ex.Input.TargetMessageIndex != nil && *ex.Input.TargetMessageIndex == len(ex.Input.Messages)-1)
	tester.True(t, strings.Contains(ex.ExpectedOutput, opts.EscalationSentence))
	tester.Eq(t, a.ValidateFormat(ex), []string(nil))
}
