package model

import "strings"

// Message is a single turn in a dialog.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (m Message) Validate() []string {
	var issues []string
	if !m.Role.Valid() {
		issues = append(issues, "message.role is not a recognized value: "+string(m.Role))
	}
	if strings.TrimSpace(m.Content) == "" {
		issues = append(issues, "message.content is empty")
	}
	return issues
}

// InputData is the conversational input handed to the target agent.
type InputData struct {
	Messages           []Message `json:"messages"`
	TargetMessageIndex *int      `json:"target_message_index,omitempty"`
}

func (in InputData) Validate() []string {
	var issues []string
	if len(in.Messages) == 0 {
		issues = append(issues, "input.messages must have at least one message")
	}
	for _, m := range in.Messages {
		issues = append(issues, m.Validate()...)
	}
	if in.TargetMessageIndex != nil {
		idx := *in.TargetMessageIndex
		if idx < 0 || idx >= len(in.Messages) {
			issues = append(issues, "input.target_message_index out of range")
		} else if in.Messages[idx].Role != RoleOperator {
			issues = append(issues, "input.target_message_index must point at an operator message")
		}
	}
	return issues
}
