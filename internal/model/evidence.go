package model

import "strings"

// Evidence is a verifiable citation: a quote paired with a 1-based line range
// in input_file. See spec §3 and the evidence validator in internal/evidence.
type Evidence struct {
	InputFile string `json:"input_file"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	Quote     string `json:"quote"`
}

// Validate checks the shape-level invariants only (range sanity, non-empty
// quote); line-content verification against a source is internal/evidence's job.
func (e Evidence) Validate() []string {
	var issues []string
	if strings.TrimSpace(e.InputFile) == "" {
		issues = append(issues, "evidence.input_file is empty")
	}
	if e.LineStart < 1 {
		issues = append(issues, "evidence.line_start must be >= 1")
	}
	if e.LineEnd < e.LineStart {
		issues = append(issues, "evidence.line_end must be >= line_start")
	}
	if strings.TrimSpace(e.Quote) == "" {
		issues = append(issues, "evidence.quote is empty")
	}
	return issues
}
