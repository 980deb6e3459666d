package adapter

import (
	"context"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
)

// singleTurnQA implements the support_bot/doctor_booking format: one user
// message, one model answer honouring the relevant policies, no
// target_message_index (spec §4.7).
type singleTurnQA struct{}

func (singleTurnQA) GenerateExample(ctx context.Context, cli llmclient.Client, uc model.UseCase, policies []model.Policy, testCaseID string, params map[string]string, opts Options, seed *int64) (model.DatasetExample, error) {
	spec := promptbuild.Spec{
		Purpose:    "Generate one evaluation example: a single user message and the answer the system should give.",
		Background: "Use case: " + uc.Description,
		OutputFields: []promptbuild.Field{
			{Name: "messages", Type: "array", Required: true, Description: "exactly one message, role=user"},
			{Name: "expected_output", Type: "string", Required: true, Description: "the policy-compliant answer"},
			{Name: "evaluation_criteria", Type: "array", Required: true, Description: "at least 3 criteria"},
			{Name: "policy_ids", Type: "array", Required: true, Description: "at least 1 relevant policy id"},
		},
		Constraints: []string{
			"Output must be in Russian.",
			"Do not use case-specific few-shot examples; rely on the use case description and policies.",
		},
		Rules:        []string{"The single message must have role=user."},
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
	return model.DatasetExample{
		Case:       uc.Case,
		Format:     model.FormatSingleTurnQA,
		UseCaseID:  uc.ID,
		TestCaseID: testCaseID,
		Input: model.InputData{
			Messages: toMessages(resp.Messages),
		},
		ExpectedOutput:     resp.ExpectedOutput,
		EvaluationCriteria: resp.EvaluationCriteria,
		PolicyIDs:          resp.PolicyIDs,
		Metadata:           map[string]string{},
	}, nil
}

func (singleTurnQA) ValidateFormat(ex model.DatasetExample) []string {
	return model.ValidateFormatInvariants(ex)
}
