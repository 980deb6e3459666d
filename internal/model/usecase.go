package model

import (
	"strconv"
	"strings"
)

// UseCase is an extracted use case, produced by the use-case extractor and
// immutable thereafter, except for the single `case` write performed by the
// case/format detector (spec §4.5).
type UseCase struct {
	ID          string     `json:"id"`
	Case        Case       `json:"case"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Evidence    []Evidence `json:"evidence"`
}

// Validate checks the shape invariants from spec §3 (id prefix, non-empty
// fields, at least one evidence item). It does not re-verify evidence
// against the source; that is internal/evidence's job.
func (u UseCase) Validate() []string {
	var issues []string
	if err := CheckID(u.ID, PrefixUseCase, "use_case"); err != nil {
		issues = append(issues, err.Error())
	}
	if strings.TrimSpace(u.Name) == "" {
		issues = append(issues, "use_case.name is empty")
	}
	if strings.TrimSpace(u.Description) == "" {
		issues = append(issues, "use_case.description is empty")
	}
	if len(u.Evidence) == 0 {
		issues = append(issues, "use_case.evidence must have at least one item")
	}
	for i, e := range u.Evidence {
		for _, iss := range e.Validate() {
			issues = append(issues, "use_case.evidence["+strconv.Itoa(i)+"]: "+iss)
		}
	}
	return issues
}
