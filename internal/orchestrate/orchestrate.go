// Package orchestrate implements the function-calling orchestrator from
// spec §4.9: per use case, route variations, dispatch format adapters,
// supplement shortfalls through a tool-choice call to the supplementary
// provider, and fall back
// to a single direct structured call when everything else falls short.
package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"insightify/internal/adapter"
	"insightify/internal/classify"
	"insightify/internal/coverage"
	"insightify/internal/idgen"
	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/promptbuild"
	"insightify/internal/variation"
)

// Config bundles the knobs the pipeline driver threads into every run.
type Config struct {
	MinTestCases   int
	AdapterOptions adapter.Options
}

// Result is one use case's full output: the test cases the variation router
// and adapters produced, the examples generated for them, and the distinct
// engine names that contributed at least one example.
type Result struct {
	TestCases      []model.TestCase
	Examples       []model.DatasetExample
	FrameworksUsed []string
}

// Run executes the per-use-case pipeline stage from spec §4.9 steps 1-5.
// primary is the structured-call client used for adapters and source
// classification; supplement, if non-nil, is the function-calling provider
// used for supplementary engines (step 3) and the direct fallback (step 4).
// With a nil supplement, steps 3 and 4 are skipped.
func Run(ctx context.Context, primary llmclient.Client, supplement *llmclient.OpenAIClient, uc model.UseCase, policies []model.Policy, formats []model.Format, cfg Config, runSeed int64) Result {
	subSeed := idgen.DeriveSeed(runSeed, uc.ID)
	rng := idgen.NewRand(subSeed)
	combos := variation.Route(uc.Case, cfg.MinTestCases, rng)

	tcSeq := idgen.NewSequence(model.PrefixTestCase)
	exSeq := idgen.NewSequence(model.PrefixDatasetExample)

	var result Result
	seenEngines := map[string]struct{}{}
	var engineOrder []string
	markEngine := func(name string) {
		if _, ok := seenEngines[name]; ok {
			return
		}
		seenEngines[name] = struct{}{}
		engineOrder = append(engineOrder, name)
	}

	for _, format := range formats {
		a, ok := adapter.For(format, uc.Case)
		if !ok {
			log.Printf("orchestrate: no adapter registered for (%s,%s)", format, uc.Case)
			continue
		}
		for i, combo := range combos {
			tc := model.TestCase{
				ID:                     tcSeq.Next(),
				Case:                   uc.Case,
				UseCaseID:              uc.ID,
				Name:                   fmt.Sprintf("%s variation %d", uc.Name, i+1),
				Description:            uc.Description,
				ParameterVariationAxes: combo.AxisNames,
				Parameters:             combo.Parameters,
				PolicyIDs:              policyIDs(policies),
			}
			result.TestCases = append(result.TestCases, tc)

			seed := subSeed + int64(i)
			ex, err := a.GenerateExample(ctx, primary, uc, policies, tc.ID, combo.Parameters, cfg.AdapterOptions, &seed)
			if err != nil {
				log.Printf("orchestrate: use case %s: adapter generation failed: %v", uc.ID, err)
				continue
			}
			if issues := a.ValidateFormat(ex); len(issues) > 0 {
				log.Printf("orchestrate: use case %s: structural violation, discarding: %v", uc.ID, issues)
				continue
			}
			ex.ID = exSeq.Next()
			if uc.Case == model.CaseSupportBot {
				src := classify.Classify(ctx, primary, uc, combo.Parameters, &seed)
				if ex.Metadata == nil {
					ex.Metadata = map[string]string{}
				}
				ex.Metadata[model.MetaSource] = string(src)
			}
			if ex.Metadata == nil {
				ex.Metadata = map[string]string{}
			}
			ex.Metadata[model.MetaGenerator] = "format_adapter"
			markEngine("format_adapter")
			result.Examples = append(result.Examples, ex)
		}
	}

	if len(result.Examples) < cfg.MinTestCases && supplement != nil {
		supplementedTCs, supplemented := runSupplementaryEngines(ctx, supplement, uc, policies, cfg.MinTestCases-len(result.Examples), tcSeq, exSeq, subSeed)
		result.TestCases = append(result.TestCases, supplementedTCs...)
		for _, ex := range supplemented {
			markEngine(ex.Metadata[model.MetaGenerator])
			result.Examples = append(result.Examples, ex)
		}
	}

	if len(result.Examples) < cfg.MinTestCases && supplement != nil {
		fallbackTCs, fallback := runFallback(ctx, supplement, uc, policies, formats, cfg.MinTestCases-len(result.Examples), tcSeq, exSeq, subSeed)
		result.TestCases = append(result.TestCases, fallbackTCs...)
		for _, ex := range fallback {
			markEngine(ex.Metadata[model.MetaGenerator])
			result.Examples = append(result.Examples, ex)
		}
	}

	for _, issue := range coverage.CheckUseCase(uc.ID, result.TestCases, cfg.MinTestCases).Issues {
		log.Printf("WARN: orchestrate: %s", issue)
	}

	result.FrameworksUsed = engineOrder
	return result
}

func policyIDs(policies []model.Policy) []string {
	out := make([]string, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.ID)
	}
	return out
}

// engineTools describes the three supplementary synthesiser engines offered
// to the model by name: a document-based bulk synthesiser, a RAG-style
// multi-context generator, and a knowledge-base RAGET. No engine code runs
// behind these names: runSupplementaryEngines reads the examples from the
// arguments the model returns with its tool choice and converts them with
// one shared, hard-coded mapping (no further LLM call), tagging
// metadata.generator with the chosen tool's name.
var engineTools = []llmclient.ToolSpec{
	{
		Name:        "document_bulk_synthesizer",
		Description: "Synthesises additional examples in bulk directly from the use case description and policies.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"count": map[string]any{"type": "integer"},
			},
		},
	},
	{
		Name:        "rag_multi_context_generator",
		Description: "Synthesises examples by combining the use case with multiple retrieved policy contexts.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"count": map[string]any{"type": "integer"},
			},
		},
	},
	{
		Name:        "knowledge_base_raget",
		Description: "Synthesises examples via retrieval-augmented generation over the policy knowledge base.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"count": map[string]any{"type": "integer"},
			},
		},
	},
}

type engineOutput struct {
	Examples []struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ExpectedOutput     string   `json:"expected_output"`
		EvaluationCriteria []string `json:"evaluation_criteria"`
		PolicyRefs         []string `json:"policy_refs"`
	} `json:"examples"`
}

func runSupplementaryEngines(ctx context.Context, cli *llmclient.OpenAIClient, uc model.UseCase, policies []model.Policy, shortfall int, tcSeq, exSeq *idgen.Sequence, subSeed int64) ([]model.TestCase, []model.DatasetExample) {
	prompt, err := promptbuild.Build(engineRoutingSpec(shortfall), nil)
	if err != nil {
		log.Printf("orchestrate: use case %s: build engine prompt: %v", uc.ID, err)
		return nil, nil
	}
	input := map[string]any{
		"use_case":  map[string]string{"id": uc.ID, "name": uc.Name, "description": uc.Description},
		"policies":  policyIDs(policies),
		"shortfall": shortfall,
	}
	calls, err := cli.CallTools(ctx, prompt, input, engineTools)
	if err != nil {
		log.Printf("orchestrate: use case %s: supplementary engine call failed: %v", uc.ID, err)
		return nil, nil
	}
	var testCases []model.TestCase
	var out []model.DatasetExample
	for _, call := range calls {
		var eo engineOutput
		if err := json.Unmarshal(call.Arguments, &eo); err != nil {
			log.Printf("orchestrate: use case %s: engine %s returned unparseable arguments: %v", uc.ID, call.Name, err)
			continue
		}
		for _, raw := range eo.Examples {
			msgs := make([]model.Message, 0, len(raw.Messages))
			for _, m := range raw.Messages {
				msgs = append(msgs, model.Message{Role: model.Role(m.Role), Content: m.Content})
			}
			format := model.FormatSingleTurnQA
			if len(msgs) > 0 && msgs[len(msgs)-1].Role == model.RoleOperator {
				format = model.FormatDialogLastTurnCorrection
			}
			axisNames, parameters := placeholderCombo(uc.Case)
			tc := model.TestCase{
				ID:                     tcSeq.Next(),
				Case:                   uc.Case,
				UseCaseID:              uc.ID,
				Name:                   fmt.Sprintf("%s supplementary (%s)", uc.Name, call.Name),
				Description:            uc.Description,
				ParameterVariationAxes: axisNames,
				Parameters:             parameters,
				PolicyIDs:              policyIDs(policies),
			}
			testCases = append(testCases, tc)

			ex := model.DatasetExample{
				ID:                 exSeq.Next(),
				Case:               uc.Case,
				Format:             format,
				UseCaseID:          uc.ID,
				TestCaseID:         tc.ID,
				Input:              model.InputData{Messages: msgs},
				ExpectedOutput:     raw.ExpectedOutput,
				EvaluationCriteria: raw.EvaluationCriteria,
				PolicyIDs:          raw.PolicyRefs,
				Metadata:           map[string]string{model.MetaGenerator: call.Name},
			}
			if format == model.FormatDialogLastTurnCorrection && len(msgs) > 0 {
				idx := len(msgs) - 1
				ex.Input.TargetMessageIndex = &idx
			}
			out = append(out, ex)
		}
	}
	return testCases, out
}

// placeholderCombo builds a TestCase's parameter_variation_axes/parameters
// for examples produced outside the variation router (supplementary engines,
// direct fallback): every axis set to the first value of its domain, and
// the case's first two axes as the axis names, the same names
// interestingAxes falls back to when fewer than 2 axes are non-default.
func placeholderCombo(c model.Case) (axisNames []string, parameters map[string]string) {
	axes := variation.AxesForCase(c)
	parameters = make(map[string]string, len(axes))
	for _, a := range axes {
		parameters[a.Name] = a.Values[0]
	}
	for i := 0; i < len(axes) && i < 2; i++ {
		axisNames = append(axisNames, axes[i].Name)
	}
	return axisNames, parameters
}

// runFallback invokes the single hard direct-LLM structured call from spec
// §4.9 step 4, tagging every produced example metadata.generator =
// "openai_fallback".
func runFallback(ctx context.Context, cli *llmclient.OpenAIClient, uc model.UseCase, policies []model.Policy, formats []model.Format, shortfall int, tcSeq, exSeq *idgen.Sequence, subSeed int64) ([]model.TestCase, []model.DatasetExample) {
	prompt, err := promptbuild.Build(fallbackSpec(shortfall, formats), nil)
	if err != nil {
		log.Printf("orchestrate: use case %s: build fallback prompt: %v", uc.ID, err)
		return nil, nil
	}
	input := map[string]any{
		"use_case":  map[string]string{"id": uc.ID, "name": uc.Name, "description": uc.Description},
		"policies":  policyIDs(policies),
		"shortfall": shortfall,
	}
	seed := subSeed
	raw, err := cli.GenerateJSON(ctx, prompt, input, &seed)
	if err != nil {
		log.Printf("orchestrate: use case %s: fallback call failed: %v", uc.ID, err)
		return nil, nil
	}
	var eo engineOutput
	if err := json.Unmarshal(raw, &eo); err != nil {
		log.Printf("orchestrate: use case %s: fallback returned unparseable output: %v", uc.ID, err)
		return nil, nil
	}
	format := model.FormatSingleTurnQA
	if len(formats) > 0 {
		format = formats[0]
	}
	var testCases []model.TestCase
	var out []model.DatasetExample
	for _, raw := range eo.Examples {
		msgs := make([]model.Message, 0, len(raw.Messages))
		for _, m := range raw.Messages {
			msgs = append(msgs, model.Message{Role: model.Role(m.Role), Content: m.Content})
		}
		axisNames, parameters := placeholderCombo(uc.Case)
		tc := model.TestCase{
			ID:                     tcSeq.Next(),
			Case:                   uc.Case,
			UseCaseID:              uc.ID,
			Name:                   fmt.Sprintf("%s direct fallback", uc.Name),
			Description:            uc.Description,
			ParameterVariationAxes: axisNames,
			Parameters:             parameters,
			PolicyIDs:              policyIDs(policies),
		}
		testCases = append(testCases, tc)

		ex := model.DatasetExample{
			ID:                 exSeq.Next(),
			Case:               uc.Case,
			Format:             format,
			UseCaseID:          uc.ID,
			TestCaseID:         tc.ID,
			Input:              model.InputData{Messages: msgs},
			ExpectedOutput:     raw.ExpectedOutput,
			EvaluationCriteria: raw.EvaluationCriteria,
			PolicyIDs:          raw.PolicyRefs,
			Metadata:           map[string]string{model.MetaGenerator: "openai_fallback"},
		}
		if (format == model.FormatDialogLastTurnCorrection || format == model.FormatSingleUtteranceCorrection) && len(msgs) > 0 {
			idx := len(msgs) - 1
			ex.Input.TargetMessageIndex = &idx
		}
		out = append(out, ex)
	}
	return testCases, out
}

func engineRoutingSpec(shortfall int) promptbuild.Spec {
	return promptbuild.Spec{
		Purpose: fmt.Sprintf("Generate %d additional evaluation examples using whichever supplementary engine best fits, or decline.", shortfall),
		OutputFields: []promptbuild.Field{
			{Name: "tool", Type: "string", Required: true},
			{Name: "arguments", Type: "object", Required: true},
		},
		OutputFormat: "A single JSON object: {\"tool\": ..., \"arguments\": {\"examples\": [...]}}.",
	}
}

func fallbackSpec(shortfall int, formats []model.Format) promptbuild.Spec {
	return promptbuild.Spec{
		Purpose: fmt.Sprintf("Directly generate the remaining %d evaluation examples for this use case.", shortfall),
		OutputFields: []promptbuild.Field{
			{Name: "examples", Type: "array", Required: true},
			{Name: "examples[].messages", Type: "array", Required: true},
			{Name: "examples[].expected_output", Type: "string", Required: true},
			{Name: "examples[].evaluation_criteria", Type: "array", Required: true},
			{Name: "examples[].policy_refs", Type: "array", Required: true},
		},
		Constraints:  []string{"Output must be in Russian.", fmt.Sprintf("Target format: %v", formats)},
		OutputFormat: "A single JSON object matching the OUTPUT fields exactly, nothing else.",
	}
}
