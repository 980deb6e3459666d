package model

import "strings"

// DatasetExample is a generated evaluation example in one of the three
// formats (spec §3, §4.7).
type DatasetExample struct {
	ID                 string            `json:"id"`
	Case               Case              `json:"case"`
	Format             Format            `json:"format"`
	UseCaseID          string            `json:"use_case_id"`
	TestCaseID         string            `json:"test_case_id"`
	Input              InputData         `json:"input"`
	ExpectedOutput     string            `json:"expected_output"`
	EvaluationCriteria []string          `json:"evaluation_criteria"`
	PolicyIDs          []string          `json:"policy_ids"`
	Metadata           map[string]string `json:"metadata"`
}

// Reserved metadata keys (spec §3).
const (
	MetaGenerator = "generator"
	MetaSource    = "source"
)

func (ex DatasetExample) Validate() []string {
	var issues []string
	if err := CheckID(ex.ID, PrefixDatasetExample, "example"); err != nil {
		issues = append(issues, err.Error())
	}
	if !ex.Format.Valid() {
		issues = append(issues, "example.format is not a recognized value: "+string(ex.Format))
	}
	if err := CheckID(ex.UseCaseID, PrefixUseCase, "example.use_case_id"); err != nil {
		issues = append(issues, err.Error())
	}
	if err := CheckID(ex.TestCaseID, PrefixTestCase, "example.test_case_id"); err != nil {
		issues = append(issues, err.Error())
	}
	issues = append(issues, ex.Input.Validate()...)
	if strings.TrimSpace(ex.ExpectedOutput) == "" {
		issues = append(issues, "example.expected_output is empty")
	}
	if len(ex.EvaluationCriteria) < 3 {
		issues = append(issues, "example.evaluation_criteria must have at least 3 entries")
	}
	if len(ex.PolicyIDs) < 1 {
		issues = append(issues, "example.policy_ids must have at least 1 entry")
	}
	for _, id := range ex.PolicyIDs {
		if err := CheckID(id, PrefixPolicy, "example.policy_ids"); err != nil {
			issues = append(issues, err.Error())
		}
	}
	issues = append(issues, ValidateFormatInvariants(ex)...)
	return issues
}

// ValidateFormatInvariants checks the per-format table in spec §3.
func ValidateFormatInvariants(ex DatasetExample) []string {
	var issues []string
	msgs := ex.Input.Messages
	idx := ex.Input.TargetMessageIndex
	switch ex.Format {
	case FormatSingleTurnQA:
		if len(msgs) != 1 || msgs[0].Role != RoleUser {
			issues = append(issues, "single_turn_qa requires exactly one user message")
		}
		if idx != nil {
			issues = append(issues, "single_turn_qa must not set target_message_index")
		}
	case FormatSingleUtteranceCorrection:
		if len(msgs) != 1 || msgs[0].Role != RoleOperator {
			issues = append(issues, "single_utterance_correction requires exactly one operator message")
		}
		if idx == nil || *idx != 0 {
			issues = append(issues, "single_utterance_correction requires target_message_index == 0")
		}
	case FormatDialogLastTurnCorrection:
		if len(msgs) < 2 {
			issues = append(issues, "dialog_last_turn_correction requires at least 2 messages")
		} else if msgs[len(msgs)-1].Role != RoleOperator {
			issues = append(issues, "dialog_last_turn_correction requires the last message to be operator")
		}
		if idx == nil || *idx != len(msgs)-1 {
			issues = append(issues, "dialog_last_turn_correction requires target_message_index == len(messages)-1")
		}
	}
	return issues
}
