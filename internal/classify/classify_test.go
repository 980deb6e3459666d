package classify

import (
	"context"
	"encoding/json"
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

func TestClassify_AdversarialIsAlwaysCorner(t *testing.T) {
	cli := &fakeClient{err: errBoom{}}
	for _, adv := range []string{"profanity", "injection", "garbage"} {
		src := Classify(context.Background(), cli, model.UseCase{}, map[string]string{"adversarial": adv}, nil)
		tester.Eq(t, src, model.SourceCorner)
	}
}

func TestClassify_FAQHeuristic(t *testing.T) {
	cli := &fakeClient{err: errBoom{}}
	uc := model.UseCase{Description: "Ответ на часто задаваемый вопрос (FAQ) о доставке."}
	src := Classify(context.Background(), cli, uc, map[string]string{"adversarial": "none"}, nil)
	tester.Eq(t, src, model.SourceFAQParaphrase)
}

func TestClassify_FallsBackToLLMThenTicketsOnFailure(t *testing.T) {
	cli := &fakeClient{err: errBoom{}}
	uc := model.UseCase{Description: "Обычный сценарий без признаков часто задаваемых вопросов."}
	src := Classify(context.Background(), cli, uc, map[string]string{"adversarial": "none"}, nil)
	tester.Eq(t, src, model.SourceTickets)
}

func TestClassify_UsesLLMResult(t *testing.T) {
	cli := &fakeClient{response: json.RawMessage(`{"source":"tickets","confidence":0.9}`)}
	uc := model.UseCase{Description: "Обычный сценарий без признаков часто задаваемых вопросов."}
	src := Classify(context.Background(), cli, uc, map[string]string{"adversarial": "none"}, nil)
	tester.Eq(t, src, model.SourceTickets)
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
