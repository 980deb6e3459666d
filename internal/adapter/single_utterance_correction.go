package adapter

import (
	"context"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
)

// singleUtteranceCorrection implements the operator_quality correction
// format over one operator utterance carrying every non-default parameter
// value simultaneously — "mixed errors", never one type in isolation (spec
// §4.7). target_message_index is always 0.
type singleUtteranceCorrection struct{}

func (singleUtteranceCorrection) GenerateExample(ctx context.Context, cli llmclient.Client, uc model.UseCase, policies []model.Policy, testCaseID string, params map[string]string, opts Options, seed *int64) (model.DatasetExample, error) {
	spec := promptbuild.Spec{
		Purpose: "Generate one operator utterance exhibiting mixed errors, and its policy-compliant correction.",
		Background: "Use case: " + uc.Description +
			". The utterance must exhibit ALL of the supplied non-default parameter values at once, never just one in isolation.",
		OutputFields: []promptbuild.Field{
			{Name: "messages", Type: "array", Required: true, Description: "exactly one message, role=operator, containing the mixed-error utterance"},
			{Name: "expected_output", Type: "string", Required: true, Description: "the corrected utterance, honouring the policies"},
			{Name: "evaluation_criteria", Type: "array", Required: true, Description: "at least 3 criteria"},
			{Name: "policy_ids", Type: "array", Required: true, Description: "at least 1 relevant policy id"},
		},
		Constraints: []string{
			"Output must be in Russian.",
			"The single message must have role=operator.",
			"Combine every non-default parameter value into the same utterance; never isolate one error type.",
		},
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
	zero := 0
	return model.DatasetExample{
		Case:       uc.Case,
		Format:     model.FormatSingleUtteranceCorrection,
		UseCaseID:  uc.ID,
		TestCaseID: testCaseID,
		Input: model.InputData{
			Messages:           toMessages(resp.Messages),
			TargetMessageIndex: &zero,
		},
		ExpectedOutput:     resp.ExpectedOutput,
		EvaluationCriteria: resp.EvaluationCriteria,
		PolicyIDs:          resp.PolicyIDs,
		Metadata:           map[string]string{},
	}, nil
}

func (singleUtteranceCorrection) ValidateFormat(ex model.DatasetExample) []string {
	return model.ValidateFormatInvariants(ex)
}
