package rundriver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"insightify/internal/config"
	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/tester"
)

// fakeClient returns a fixed, schema-conforming response regardless of
// which stage called it, distinguishing use-case/policy/detection shape by
// inspecting the prompt text the caller built.
type fakeClient struct{}

func (fakeClient) Name() string { return "fake" }
func (fakeClient) Close() error { return nil }
func (fakeClient) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	switch {
	case strings.Contains(prompt, "Extract every distinct use case"):
		return json.RawMessage(`{"use_cases":[
			{"name":"FAQ delivery","description":"Answer a delivery FAQ question.","evidence":[{"input_file":"doc.md","line_start":1,"line_end":1,"quote":"Где мой заказ?"}]},
			{"name":"Order status","description":"Answer an order status question.","evidence":[{"input_file":"doc.md","line_start":2,"line_end":2,"quote":"Статус заказа"}]}
		]}`), nil
	case strings.Contains(prompt, "Extract every distinct behavioural policy"):
		return json.RawMessage(`{"policies":[
			{"type":"must","statement":"Always answer in Russian.","description":"language policy","evidence":[{"input_file":"doc.md","line_start":1,"line_end":1,"quote":"Где мой заказ?"}]},
			{"type":"must_not","statement":"Never promise refunds.","description":"refund policy","evidence":[{"input_file":"doc.md","line_start":2,"line_end":2,"quote":"Статус заказа"}]}
		]}`), nil
	case strings.Contains(prompt, "Classify the extracted use cases and policies"):
		return json.RawMessage(`{"case":"support_bot","formats":["single_turn_qa"],"reasoning":"FAQ-style Q&A"}`), nil
	case strings.Contains(prompt, "Classify a generated support-bot example"):
		return json.RawMessage(`{"source":"tickets","confidence":0.8}`), nil
	default:
		return json.RawMessage(`{"messages":[{"role":"user","content":"Где мой заказ?"}],"expected_output":"Ваш заказ в пути.","evaluation_criteria":["a","b","c"],"policy_ids":["pol_001"]}`), nil
	}
}

var _ llmclient.Client = fakeClient{}

func TestGenerate_WritesAllFiveArtifacts(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.md")
	tester.NoErr(t, os.WriteFile(docPath, []byte("Где мой заказ?\nСтатус заказа\n"), 0o644))
	outDir := filepath.Join(dir, "out")
	tester.NoErr(t, os.MkdirAll(outDir, 0o755))

	cfg := config.Default()
	cfg.InputPath = docPath
	cfg.OutDir = outDir
	cfg.MinUseCases = 1
	cfg.MinPolicies = 1
	cfg.MinTestCasesPerUC = 2
	cfg.MinExamplesPerTC = 2

	result, err := Generate(context.Background(), Clients{Primary: fakeClient{}}, cfg)
	tester.NoErr(t, err)
	tester.True(t, len(result.UseCases) >= 1)

	for _, name := range []string{"use_cases.json", "policies.json", "test_cases.json", "dataset.json", "run_manifest.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}

	var manifest model.RunManifest
	raw, err := os.ReadFile(filepath.Join(outDir, "run_manifest.json"))
	tester.NoErr(t, err)
	tester.NoErr(t, json.Unmarshal(raw, &manifest))
	tester.Eq(t, manifest.Counts.UseCases, len(result.UseCases))
}

func TestGenerate_TestCaseAndExampleIDsAreUnique(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.md")
	tester.NoErr(t, os.WriteFile(docPath, []byte("Где мой заказ?\nСтатус заказа\n"), 0o644))
	outDir := filepath.Join(dir, "out")
	tester.NoErr(t, os.MkdirAll(outDir, 0o755))

	cfg := config.Default()
	cfg.InputPath = docPath
	cfg.OutDir = outDir
	cfg.MinUseCases = 1
	cfg.MinPolicies = 1
	cfg.MinTestCasesPerUC = 2
	cfg.MinExamplesPerTC = 2

	_, err := Generate(context.Background(), Clients{Primary: fakeClient{}}, cfg)
	tester.NoErr(t, err)

	var tcs model.TestCasesFile
	raw, err := os.ReadFile(filepath.Join(outDir, "test_cases.json"))
	tester.NoErr(t, err)
	tester.NoErr(t, json.Unmarshal(raw, &tcs))
	tester.Eq(t, len(model.UniqueIDs(tcs.TestCases, func(tc model.TestCase) string { return tc.ID })), 0)

	var ds model.DatasetFile
	raw, err = os.ReadFile(filepath.Join(outDir, "dataset.json"))
	tester.NoErr(t, err)
	tester.NoErr(t, json.Unmarshal(raw, &ds))
	tester.Eq(t, len(model.UniqueIDs(ds.Examples, func(ex model.DatasetExample) string { return ex.ID })), 0)
}
