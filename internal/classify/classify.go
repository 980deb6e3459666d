// Package classify implements the support_bot-only source classifier from
// spec §4.8: two cheap heuristics checked first, an LLM call as a last
// resort, defaulting to "tickets" on any failure. Never invoked for
// non-support_bot cases.
package classify

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
)

type sourceResponse struct {
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// Classify assigns metadata.source for one generated example (spec §4.8).
func Classify(ctx context.Context, cli llmclient.Client, uc model.UseCase, params map[string]string, seed *int64) model.Source {
	switch params["adversarial"] {
	case "profanity", "injection", "garbage":
		return model.SourceCorner
	}
	if params["adversarial"] == "none" && strings.Contains(strings.ToUpper(uc.Description), "FAQ") {
		return model.SourceFAQParaphrase
	}

	prompt, err := promptbuild.Build(classifySpec(), nil)
	if err != nil {
		log.Printf("classify: build prompt: %v", err)
		return model.SourceTickets
	}
	input := map[string]any{
		"use_case_description": uc.Description,
		"parameters":           params,
	}
	raw, err := cli.GenerateJSON(ctx, prompt, input, seed)
	if err != nil {
		log.Printf("classify: call failed, defaulting to tickets: %v", err)
		return model.SourceTickets
	}
	var resp sourceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Printf("classify: schema violation, defaulting to tickets: %v", err)
		return model.SourceTickets
	}
	src := model.Source(resp.Source)
	switch src {
	case model.SourceTickets, model.SourceFAQParaphrase, model.SourceCorner:
		return src
	default:
		log.Printf("classify: unrecognized source %q, defaulting to tickets", resp.Source)
		return model.SourceTickets
	}
}

func classifySpec() promptbuild.Spec {
	return promptbuild.Spec{
		Purpose: "Classify a generated support-bot example by its likely provenance.",
		Background: "Three labels are possible: tickets (realistic support-ticket-like phrasing), " +
			"faq_paraphrase (a paraphrase of an FAQ-style question), corner (adversarial or corner-case phrasing).",
		OutputFields: []promptbuild.Field{
			{Name: "source", Type: "string", Required: true, Description: "one of: tickets, faq_paraphrase, corner"},
			{Name: "confidence", Type: "number", Required: false},
		},
		OutputFormat: "A single JSON object matching the OUTPUT fields exactly, nothing else.",
	}
}
