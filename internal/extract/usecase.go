// Package extract implements the use-case and policy extractors from spec
// §4.3-§4.4: structured LLM calls over the prefixed source text, with every
// returned evidence item checked against internal/evidence; a failed check
// is logged and the extracted entity is kept.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"insightify/internal/evidence"
	"insightify/internal/idgen"
	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
	"insightify/internal/source"
)

type rawEvidence struct {
	InputFile string `json:"input_file"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	Quote     string `json:"quote"`
}

func (r rawEvidence) toModel() model.Evidence {
	return model.Evidence{InputFile: r.InputFile, LineStart: r.LineStart, LineEnd: r.LineEnd, Quote: r.Quote}
}

type rawUseCase struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Evidence    []rawEvidence `json:"evidence"`
}

type useCaseResponse struct {
	UseCases []rawUseCase `json:"use_cases"`
}

// UseCases calls the structured LLM client to extract use cases from src,
// verifying every evidence item and assigning uc_ prefixed ids in response
// order (spec §4.3, §5).
func UseCases(ctx context.Context, cli llmclient.Client, src *source.ParsedSource, seed *int64, minCount int) ([]model.UseCase, error) {
	prompt, err := promptbuild.Build(useCaseSpec(minCount), nil)
	if err != nil {
		return nil, err
	}
	input := map[string]any{
		"objective":         "identify every distinct use case a support/operator system must handle",
		"minimum_count":     minCount,
		"id_format":         "uc_NNN",
		"content_language":  "Russian",
		"evidence_accuracy": "CHARACTER-EXACT",
		"document":          src.Prefixed(),
	}
	raw, err := cli.GenerateJSON(ctx, prompt, input, seed)
	if err != nil {
		return nil, fmt.Errorf("extract: use case call: %w", err)
	}
	var resp useCaseResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: use_cases: %v", model.ErrSchemaValidation, err)
	}

	seq := idgen.NewSequence(model.PrefixUseCase)
	out := make([]model.UseCase, 0, len(resp.UseCases))
	for _, ruc := range resp.UseCases {
		uc := model.UseCase{
			ID:          seq.Next(),
			Name:        ruc.Name,
			Description: ruc.Description,
			Evidence:    make([]model.Evidence, 0, len(ruc.Evidence)),
		}
		for _, re := range ruc.Evidence {
			ev := re.toModel()
			uc.Evidence = append(uc.Evidence, ev)
			checkEvidence(src, ev, uc.ID)
		}
		out = append(out, uc)
	}
	return out, nil
}

func checkEvidence(src *source.ParsedSource, ev model.Evidence, owner string) {
	res := evidence.Check(src, ev)
	switch res.Outcome {
	case evidence.Exact:
	case evidence.Fuzzy:
		log.Printf("extract: %s: %s", owner, res.Message)
	case evidence.Invalid:
		log.Printf("extract: %s: %s", owner, res.Message)
	}
}

func useCaseSpec(minCount int) promptbuild.Spec {
	return promptbuild.Spec{
		Purpose: "Extract every distinct use case the requirements document describes for an automated support/operator system.",
		Background: "The document text is supplied with 1-based \"<n>: \" line-number prefixes. " +
			"Use cases surface as action-modality verbs, question-answer pairs, table-row intents, or prose describing an implicit scenario.",
		OutputFields: []promptbuild.Field{
			{Name: "use_cases", Type: "array", Required: true, Description: fmt.Sprintf("at least %d use cases", minCount)},
			{Name: "use_cases[].name", Type: "string", Required: true},
			{Name: "use_cases[].description", Type: "string", Required: true},
			{Name: "use_cases[].evidence", Type: "array", Required: true, Description: "at least one evidence item per use case"},
			{Name: "use_cases[].evidence[].input_file", Type: "string", Required: true},
			{Name: "use_cases[].evidence[].line_start", Type: "integer", Required: true, Description: "1-based, from the line-number prefixes"},
			{Name: "use_cases[].evidence[].line_end", Type: "integer", Required: true},
			{Name: "use_cases[].evidence[].quote", Type: "string", Required: true, Description: "verbatim text of the cited lines, punctuation and whitespace preserved"},
		},
		Constraints: []string{
			"Never refer to this document specifically; identify use cases from semantic patterns alone.",
			"Preserve all Markdown punctuation (*, **, bullets, pipes) inside quotes.",
			"Do not include the \"<n>: \" line-number prefix inside a quote.",
			"Join multi-line quotes with a literal newline.",
		},
		Rules: []string{
			"Do not truncate a quote; copy the full cited span.",
			"Return at least " + fmt.Sprintf("%d", minCount) + " use cases if the document supports it.",
		},
		OutputFormat: "A single JSON object matching the OUTPUT fields exactly, nothing else.",
	}
}
