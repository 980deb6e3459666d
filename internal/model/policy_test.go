package model

import (
	"testing"

	"insightify/internal/tester"
)

func TestPolicy_ApplyDefaultsFillsStatementFromDescription(t *testing.T) {
	p := Policy{Description: "must confirm the slot"}
	p.ApplyDefaults()
	tester.Eq(t, p.Statement, "must confirm the slot")
}

func TestPolicy_ApplyDefaultsLeavesExplicitStatement(t *testing.T) {
	p := Policy{Description: "must confirm the slot", Statement: "Always confirm."}
	p.ApplyDefaults()
	tester.Eq(t, p.Statement, "Always confirm.")
}

func TestPolicy_ValidateRejectsUnknownType(t *testing.T) {
	p := Policy{ID: "pol_001", Type: PolicyType("bogus"), Description: "d",
		Evidence: []Evidence{{InputFile: "doc.md", LineStart: 1, LineEnd: 1, Quote: "q"}}}
	issues := p.Validate()
	tester.True(t, len(issues) == 1)
}

func TestPolicy_ValidateAcceptsWellFormed(t *testing.T) {
	p := Policy{ID: "pol_001", Type: PolicyMust, Description: "d",
		Evidence: []Evidence{{InputFile: "doc.md", LineStart: 1, LineEnd: 1, Quote: "q"}}}
	tester.Eq(t, len(p.Validate()), 0)
}

func TestDistinctTypes(t *testing.T) {
	policies := []Policy{
		{Type: PolicyMust}, {Type: PolicyMust}, {Type: PolicyMustNot},
	}
	distinct := DistinctTypes(policies)
	tester.Eq(t, len(distinct), 2)
}
