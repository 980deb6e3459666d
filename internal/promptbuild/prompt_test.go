package promptbuild

import (
	"strings"
	"testing"

	"insightify/internal/tester"
)

func TestBuild_RendersSections(t *testing.T) {
	spec := Spec{
		Purpose:      "Extract use cases from a requirements document.",
		Background:   "Document is Russian-language, line-numbered.",
		OutputFormat: "JSON only.",
		OutputFields: []Field{
			{Name: "use_cases", Type: "[]object", Required: true, Description: "Extracted use cases."},
		},
		Constraints: []string{"Every use case must cite evidence."},
		Rules:       []string{"Do not invent requirements not present in the source."},
		Assumptions: []string{"If ambiguous, prefer the narrower interpretation."},
		Examples: []Example{
			{InputJSON: `{"lines":["1: hello"]}`, OutputJSON: `{"use_cases":[]}`},
		},
	}

	out, err := Build(spec, map[string]any{"lines": []string{"1: hello"}})
	tester.NoErr(t, err)

	wantSections := []string{
		"[PURPOSE]", "[BACKGROUND]", "[INPUT]", "[OUTPUT]",
		"[CONSTRAINTS]", "[RULES]", "[ASSUMPTIONS]", "[OUTPUT_FORMAT]",
		"[LANGUAGE]", "[EXAMPLES]",
	}
	for _, sec := range wantSections {
		tester.True(t, strings.Contains(out, sec), "expected section "+sec)
	}
}

func TestBuild_RequiresPurpose(t *testing.T) {
	spec := Spec{OutputFields: []Field{{Name: "x", Type: "string", Required: true}}}
	_, err := Build(spec, map[string]any{})
	tester.Err(t, err)
	tester.True(t, strings.Contains(err.Error(), "purpose"))
}

func TestBuild_RequiresOutputFields(t *testing.T) {
	spec := Spec{Purpose: "x"}
	_, err := Build(spec, map[string]any{})
	tester.Err(t, err)
	tester.True(t, strings.Contains(err.Error(), "output fields"))
}

func TestBuild_OmitsEmptySections(t *testing.T) {
	spec := Spec{
		Purpose:      "x",
		OutputFields: []Field{{Name: "x", Type: "string", Required: true}},
	}
	out, err := Build(spec, nil)
	tester.NoErr(t, err)
	tester.False(t, strings.Contains(out, "[BACKGROUND]"))
	tester.False(t, strings.Contains(out, "[EXAMPLES]"))
}
