// Package detect implements the content-only case/format detector from
// spec §4.5: a structured LLM call over the extracted use cases and
// policies (never the raw document, never the filename), with a safe
// default on any failure.
package detect

import (
	"context"
	"encoding/json"
	"log"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
)

// Detection is the detector's output: the classified case, the mandated
// output formats for that case, and the model's stated reasoning.
type Detection struct {
	Case      model.Case
	Formats   []model.Format
	Reasoning string
}

// DefaultDetection is returned whenever detection fails for any reason
// (API error, empty formats, schema violation) — spec §4.5, §7.
func DefaultDetection() Detection {
	return Detection{Case: model.CaseSupportBot, Formats: model.FormatsForCase(model.CaseSupportBot)}
}

type detectionResponse struct {
	Case      string   `json:"case"`
	Formats   []string `json:"formats"`
	Reasoning string   `json:"reasoning"`
}

// Detect classifies useCases and policies into a single case, per the fixed
// case->formats mapping in spec §4.5. Any failure yields DefaultDetection.
func Detect(ctx context.Context, cli llmclient.Client, useCases []model.UseCase, policies []model.Policy, seed *int64) Detection {
	prompt, err := promptbuild.Build(detectSpec(), nil)
	if err != nil {
		log.Printf("detect: build prompt: %v", err)
		return DefaultDetection()
	}
	input := map[string]any{
		"use_cases": summarizeUseCases(useCases),
		"policies":  summarizePolicies(policies),
	}
	raw, err := cli.GenerateJSON(ctx, prompt, input, seed)
	if err != nil {
		log.Printf("detect: call failed, defaulting: %v", err)
		return DefaultDetection()
	}
	var resp detectionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Printf("detect: schema violation, defaulting: %v", err)
		return DefaultDetection()
	}
	c := model.Case(resp.Case)
	if !c.Valid() {
		log.Printf("detect: unrecognized case %q, defaulting", resp.Case)
		return DefaultDetection()
	}
	if len(resp.Formats) == 0 {
		log.Printf("detect: empty formats, defaulting")
		return DefaultDetection()
	}
	return Detection{Case: c, Formats: model.FormatsForCase(c), Reasoning: resp.Reasoning}
}

// ApplyCase writes the detected case into every use case and policy in
// place. This is the single permitted post-extraction mutation (spec §4.5).
func ApplyCase(useCases []model.UseCase, policies []model.Policy, c model.Case) {
	for i := range useCases {
		useCases[i].Case = c
	}
	for i := range policies {
		policies[i].Case = c
	}
}

func summarizeUseCases(ucs []model.UseCase) []map[string]string {
	out := make([]map[string]string, 0, len(ucs))
	for _, uc := range ucs {
		out = append(out, map[string]string{"id": uc.ID, "name": uc.Name, "description": uc.Description})
	}
	return out
}

func summarizePolicies(pols []model.Policy) []map[string]string {
	out := make([]map[string]string, 0, len(pols))
	for _, p := range pols {
		out = append(out, map[string]string{"id": p.ID, "type": string(p.Type), "description": p.Description})
	}
	return out
}

func detectSpec() promptbuild.Spec {
	return promptbuild.Spec{
		Purpose: "Classify the extracted use cases and policies into exactly one document case, from content alone.",
		Background: "Valid cases and their mandated output formats: " +
			"support_bot -> [single_turn_qa]; " +
			"operator_quality -> [single_utterance_correction, dialog_last_turn_correction] (always both); " +
			"doctor_booking -> [single_turn_qa].",
		OutputFields: []promptbuild.Field{
			{Name: "case", Type: "string", Required: true, Description: "one of: support_bot, operator_quality, doctor_booking"},
			{Name: "formats", Type: "array", Required: true, Description: "the formats mandated for the chosen case"},
			{Name: "reasoning", Type: "string", Required: false},
		},
		Constraints: []string{
			"Base the decision only on the supplied use cases and policies, never on a filename.",
			"formats must exactly match the mandated set for the chosen case.",
		},
		OutputFormat: "A single JSON object matching the OUTPUT fields exactly, nothing else.",
	}
}
