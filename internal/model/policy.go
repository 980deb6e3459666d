package model

import (
	"strconv"
	"strings"
)

// Policy is an extracted policy, produced by the policy extractor and
// immutable thereafter except for the detector's single `case` write.
type Policy struct {
	ID          string     `json:"id"`
	Case        Case       `json:"case"`
	Type        PolicyType `json:"type"`
	Statement   string     `json:"statement"`
	Description string     `json:"description"`
	Evidence    []Evidence `json:"evidence"`
}

// ApplyDefaults auto-populates Statement from Description when the extractor
// left it blank, per spec §3's Policy ownership note.
func (p *Policy) ApplyDefaults() {
	if strings.TrimSpace(p.Statement) == "" {
		p.Statement = p.Description
	}
}

func (p Policy) Validate() []string {
	var issues []string
	if err := CheckID(p.ID, PrefixPolicy, "policy"); err != nil {
		issues = append(issues, err.Error())
	}
	if !p.Type.Valid() {
		issues = append(issues, "policy.type is not a recognized value: "+string(p.Type))
	}
	if strings.TrimSpace(p.Description) == "" {
		issues = append(issues, "policy.description is empty")
	}
	if len(p.Evidence) == 0 {
		issues = append(issues, "policy.evidence must have at least one item")
	}
	for i, e := range p.Evidence {
		for _, iss := range e.Validate() {
			issues = append(issues, "policy.evidence["+strconv.Itoa(i)+"]: "+iss)
		}
	}
	return issues
}

// DistinctTypes returns the set of distinct PolicyType values present.
func DistinctTypes(policies []Policy) map[PolicyType]struct{} {
	out := map[PolicyType]struct{}{}
	for _, p := range policies {
		out[p.Type] = struct{}{}
	}
	return out
}
