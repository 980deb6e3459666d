package adapter

import (
	"context"
	"strings"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
)

// dialogLastTurnCorrection implements the operator_quality 2-5 turn dialog
// format ending in a mixed-error operator message. If escalation_needed=yes,
// the canonical escalation sentence must appear verbatim in the correction
// (spec §4.7).
type dialogLastTurnCorrection struct{}

func (dialogLastTurnCorrection) GenerateExample(ctx context.Context, cli llmclient.Client, uc model.UseCase, policies []model.Policy, testCaseID string, params map[string]string, opts Options, seed *int64) (model.DatasetExample, error) {
	escalate := params["escalation_needed"] == "yes"
	spec := promptbuild.Spec{
		Purpose: "Generate a 2-5 turn dialog ending in an operator message exhibiting mixed errors, and its correction.",
		Background: "Use case: " + uc.Description +
			". The final operator message must exhibit ALL supplied non-default parameter values at once.",
		OutputFields: []promptbuild.Field{
			{Name: "messages", Type: "array", Required: true, Description: "2 to 5 messages, the last with role=operator and the mixed-error utterance"},
			{Name: "expected_output", Type: "string", Required: true, Description: "the corrected last utterance, honouring the policies"},
			{Name: "evaluation_criteria", Type: "array", Required: true, Description: "at least 3 criteria"},
			{Name: "policy_ids", Type: "array", Required: true, Description: "at least 1 relevant policy id"},
		},
		Constraints:  buildDialogConstraints(escalate, opts.EscalationSentence),
		OutputFormat: "A single JSON object matching the OUTPUT fields exactly, nothing else.",
	}
	input := map[string]any{
		"use_case":   map[string]string{"id": uc.ID, "name": uc.Name, "description": uc.Description},
		"policies":   policySummaries(policies),
		"parameters": params,
	}
	resp, err := callAdapterLLM(ctx, cli, spec, input, seed)
	if err != nil {
		return model.DatasetExample{}, err
	}
	messages := toMessages(resp.Messages)
	expected := resp.ExpectedOutput
	if escalate && opts.EscalationSentence != "" && !strings.Contains(expected, opts.EscalationSentence) {
		expected = strings.TrimRight(expected, " \n") + " " + opts.EscalationSentence
	}
	idx := len(messages) - 1
	return model.DatasetExample{
		Case:       uc.Case,
		Format:     model.FormatDialogLastTurnCorrection,
		UseCaseID:  uc.ID,
		TestCaseID: testCaseID,
		Input: model.InputData{
			Messages:           messages,
			TargetMessageIndex: &idx,
		},
		ExpectedOutput:     expected,
		EvaluationCriteria: resp.EvaluationCriteria,
		PolicyIDs:          resp.PolicyIDs,
		Metadata:           map[string]string{},
	}, nil
}

func buildDialogConstraints(escalate bool, sentence string) []string {
	constraints := []string{
		"Output must be in Russian.",
		"The dialog must have between 2 and 5 messages, the last with role=operator.",
		"Combine every non-default parameter value into the last operator message; never isolate one error type.",
	}
	if escalate && sentence != "" {
		constraints = append(constraints, "The corrected output must include this exact sentence verbatim: \""+sentence+"\"")
	}
	return constraints
}

func (dialogLastTurnCorrection) ValidateFormat(ex model.DatasetExample) []string {
	return model.ValidateFormatInvariants(ex)
}
