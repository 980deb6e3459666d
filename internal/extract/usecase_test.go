package extract

import (
	"context"
	"encoding/json"
	"testing"

	"insightify/internal/llmclient"
	"insightify/internal/source"
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

func TestUseCases_AssignsSequentialIDs(t *testing.T) {
	src := source.Parse("doc.md", []byte("1. Пользователь задаёт вопрос.\n2. Бот отвечает по базе знаний.\n"))
	resp := `{"use_cases":[
		{"name":"FAQ lookup","description":"User asks a question, bot answers from the knowledge base.","evidence":[{"input_file":"doc.md","line_start":1,"line_end":2,"quote":"1. Пользователь задаёт вопрос.\n2. Бот отвечает по базе знаний."}]},
		{"name":"Escalate unknown topic","description":"Unhandled topics are escalated.","evidence":[{"input_file":"doc.md","line_start":1,"line_end":1,"quote":"1. Пользователь задаёт вопрос."}]}
	]}`
	cli := &fakeClient{response: json.RawMessage(resp)}

	ucs, err := UseCases(context.Background(), cli, src, nil, 2)
	tester.NoErr(t, err)
	tester.Eq(t, len(ucs), 2)
	tester.Eq(t, ucs[0].ID, "uc_001")
	tester.Eq(t, ucs[1].ID, "uc_002")
	tester.Eq(t, len(ucs[0].Evidence), 1)
}

func TestUseCases_PropagatesCallError(t *testing.T) {
	src := source.Parse("doc.md", []byte("line one\n"))
	cli := &fakeClient{err: llmclient.NewPermanentError(errBoom{})}
	_, err := UseCases(context.Background(), cli, src, nil, 1)
	tester.Err(t, err)
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
