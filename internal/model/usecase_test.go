package model

import (
	"testing"

	"insightify/internal/tester"
)

func TestUseCase_ValidateRequiresEvidence(t *testing.T) {
	uc := UseCase{ID: "uc_001", Name: "FAQ", Description: "Answer FAQ questions."}
	issues := uc.Validate()
	tester.True(t, len(issues) == 1, "expected exactly the missing-evidence issue")
}

func TestUseCase_ValidateRejectsBadID(t *testing.T) {
	uc := UseCase{ID: "bad_001", Name: "FAQ", Description: "d",
		Evidence: []Evidence{{InputFile: "doc.md", LineStart: 1, LineEnd: 1, Quote: "q"}}}
	issues := uc.Validate()
	tester.True(t, len(issues) == 1)
}

func TestUseCase_ValidateAcceptsWellFormed(t *testing.T) {
	uc := UseCase{ID: "uc_001", Name: "FAQ", Description: "d",
		Evidence: []Evidence{{InputFile: "doc.md", LineStart: 1, LineEnd: 1, Quote: "q"}}}
	tester.Eq(t, len(uc.Validate()), 0)
}
