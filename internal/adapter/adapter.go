// Package adapter implements the three format adapters from spec §4.7 as a
// capability set {GenerateExample, ValidateFormat} dispatched by a
// (format, case) lookup table, per the REDESIGN FLAGS in spec §9: a tagged
// lookup table replaces the polymorphic class hierarchy of the source
// implementation.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
)

// Options carries run-level configuration every adapter may consult.
// EscalationSentence is the canonical escalation sentence the
// dialog_last_turn_correction adapter must reproduce verbatim when
// escalation_needed=yes (spec §4.7, §9's second open question: the exact
// sentence is configuration, not a hard-coded literal).
type Options struct {
	EscalationSentence string
}

// Adapter is the capability set every format implements.
type Adapter interface {
	// GenerateExample calls the LLM to synthesise a DatasetExample for one
	// (use case, test case parameters) combination.
	GenerateExample(ctx context.Context, cli llmclient.Client, useCase model.UseCase, policies []model.Policy, testCaseID string, params map[string]string, opts Options, seed *int64) (model.DatasetExample, error)
	// ValidateFormat checks the per-format structural invariants from §3,
	// returning issue strings (never panics, never mutates ex).
	ValidateFormat(ex model.DatasetExample) []string
}

// For returns the adapter registered for (format, case), or false if none
// exists — the factory from spec §4.7's closing sentence.
func For(format model.Format, c model.Case) (Adapter, bool) {
	a, ok := registry[key{format, c}]
	return a, ok
}

type key struct {
	format model.Format
	c      model.Case
}

var registry = map[key]Adapter{
	{model.FormatSingleTurnQA, model.CaseSupportBot}:                   singleTurnQA{},
	{model.FormatSingleTurnQA, model.CaseDoctorBooking}:                singleTurnQA{},
	{model.FormatSingleUtteranceCorrection, model.CaseOperatorQuality}: singleUtteranceCorrection{},
	{model.FormatDialogLastTurnCorrection, model.CaseOperatorQuality}:  dialogLastTurnCorrection{},
}

type rawMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rawExampleResponse struct {
	Messages           []rawMessage `json:"messages"`
	ExpectedOutput     string       `json:"expected_output"`
	EvaluationCriteria []string     `json:"evaluation_criteria"`
	PolicyIDs          []string     `json:"policy_ids"`
}

func toMessages(raw []rawMessage) []model.Message {
	out := make([]model.Message, 0, len(raw))
	for _, m := range raw {
		out = append(out, model.Message{Role: model.Role(m.Role), Content: m.Content})
	}
	return out
}

// callAdapterLLM runs the shared structured-call + unmarshal path every
// adapter uses, differing only in the prompt spec and input payload.
func callAdapterLLM(ctx context.Context, cli llmclient.Client, spec promptbuild.Spec, input map[string]any, seed *int64) (rawExampleResponse, error) {
	prompt, err := promptbuild.Build(spec, nil)
	if err != nil {
		return rawExampleResponse{}, err
	}
	raw, err := cli.GenerateJSON(ctx, prompt, input, seed)
	if err != nil {
		return rawExampleResponse{}, fmt.Errorf("adapter: generate call: %w", err)
	}
	var resp rawExampleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return rawExampleResponse{}, fmt.Errorf("%w: dataset example: %v", model.ErrSchemaValidation, err)
	}
	return resp, nil
}

func policySummaries(policies []model.Policy) []map[string]string {
	out := make([]map[string]string, 0, len(policies))
	for _, p := range policies {
		out = append(out, map[string]string{"id": p.ID, "type": string(p.Type), "statement": p.Statement})
	}
	return out
}
