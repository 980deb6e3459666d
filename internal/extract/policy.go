package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"insightify/internal/idgen"
	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
	"insightify/internal/source"
)

type rawPolicy struct {
	Type        string        `json:"type"`
	Statement   string        `json:"statement"`
	Description string        `json:"description"`
	Evidence    []rawEvidence `json:"evidence"`
}

type policyResponse struct {
	Policies []rawPolicy `json:"policies"`
}

// Policies calls the structured LLM client to extract policies from src,
// following the spec §4.4 decision tree (prohibition -> escalation -> style
// -> format -> must) and assigning pol_ prefixed ids in response order.
func Policies(ctx context.Context, cli llmclient.Client, src *source.ParsedSource, seed *int64, minCount int) ([]model.Policy, error) {
	prompt, err := promptbuild.Build(policySpec(minCount), nil)
	if err != nil {
		return nil, err
	}
	input := map[string]any{
		"objective":         "identify every distinct behavioural policy the system must follow",
		"minimum_count":     minCount,
		"id_format":         "pol_NNN",
		"content_language":  "Russian",
		"evidence_accuracy": "CHARACTER-EXACT",
		"document":          src.Prefixed(),
	}
	raw, err := cli.GenerateJSON(ctx, prompt, input, seed)
	if err != nil {
		return nil, fmt.Errorf("extract: policy call: %w", err)
	}
	var resp policyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: policies: %v", model.ErrSchemaValidation, err)
	}

	seq := idgen.NewSequence(model.PrefixPolicy)
	out := make([]model.Policy, 0, len(resp.Policies))
	for _, rp := range resp.Policies {
		p := model.Policy{
			ID:          seq.Next(),
			Type:        model.PolicyType(rp.Type),
			Statement:   rp.Statement,
			Description: rp.Description,
			Evidence:    make([]model.Evidence, 0, len(rp.Evidence)),
		}
		if !p.Type.Valid() {
			p.Type = model.PolicyMust
		}
		p.ApplyDefaults()
		for _, re := range rp.Evidence {
			ev := re.toModel()
			p.Evidence = append(p.Evidence, ev)
			checkEvidence(src, ev, p.ID)
		}
		out = append(out, p)
	}
	return out, nil
}

func policySpec(minCount int) promptbuild.Spec {
	return promptbuild.Spec{
		Purpose: "Extract every distinct behavioural policy the requirements document imposes on an automated support/operator system.",
		Background: "The document text is supplied with 1-based \"<n>: \" line-number prefixes. " +
			"Before emitting a policy's type, apply this decision tree in order and stop at the first match: " +
			"(1) is it a prohibition? -> must_not. " +
			"(2) otherwise, does it trigger escalation to a human? -> escalate. " +
			"(3) otherwise, is it a communication tone/language rule? -> style. " +
			"(4) otherwise, is it an output-structure rule? -> format. " +
			"(5) otherwise -> must.",
		OutputFields: []promptbuild.Field{
			{Name: "policies", Type: "array", Required: true, Description: fmt.Sprintf("at least %d policies spanning at least 2 distinct types", minCount)},
			{Name: "policies[].type", Type: "string", Required: true, Description: "one of: must, must_not, escalate, style, format"},
			{Name: "policies[].statement", Type: "string", Required: false, Description: "the policy's semantics; may be left blank to auto-derive from description"},
			{Name: "policies[].description", Type: "string", Required: true},
			{Name: "policies[].evidence", Type: "array", Required: true, Description: "at least one evidence item per policy"},
			{Name: "policies[].evidence[].input_file", Type: "string", Required: true},
			{Name: "policies[].evidence[].line_start", Type: "integer", Required: true},
			{Name: "policies[].evidence[].line_end", Type: "integer", Required: true},
			{Name: "policies[].evidence[].quote", Type: "string", Required: true, Description: "verbatim text of the cited lines"},
		},
		Constraints: []string{
			"Apply the decision tree in the stated order; special cases precede the general must type.",
			"Preserve all Markdown punctuation inside quotes.",
			"Do not include the \"<n>: \" line-number prefix inside a quote.",
		},
		Rules: []string{
			"Return at least " + fmt.Sprintf("%d", minCount) + " policies if the document supports it.",
			"Return policies of at least 2 distinct types.",
		},
		OutputFormat: "A single JSON object matching the OUTPUT fields exactly, nothing else.",
	}
}
