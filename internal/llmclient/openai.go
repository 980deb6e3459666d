package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient is the function-calling provider used by the orchestrator's
// supplementary synthesis engines (spec §4.9 step 3) and as the direct
// fallback generator (step 4, metadata.generator = "openai_fallback").
// Generalized from the teacher's assist.OpenAIProvider.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	apiKey  string
	baseURL string
}

// WithOpenAIAPIKey sets the API key explicitly. If unset, the SDK falls back
// to the OPENAI_API_KEY environment variable.
func WithOpenAIAPIKey(key string) OpenAIOption {
	return func(c *openaiConfig) { c.apiKey = key }
}

// WithOpenAIBaseURL points the client at an OpenAI-compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

func NewOpenAIClient(model string, opts ...OpenAIOption) *OpenAIClient {
	var cfg openaiConfig
	for _, o := range opts {
		o(&cfg)
	}
	var clientOpts []option.RequestOption
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &OpenAIClient{client: openai.NewClient(clientOpts...), model: model}
}

func (c *OpenAIClient) Name() string { return "OpenAI:" + c.model }
func (c *OpenAIClient) Close() error { return nil }

// GenerateJSON sends prompt+input as a single user message instructing
// strict JSON output, with temperature pinned to 0 and seed threaded through
// when present, per spec §4.2.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\nRespond with a single JSON value and nothing else.\n\n[INPUT JSON]\n" + string(in)

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(full)},
		Temperature: openai.Float(0),
	}
	if seed != nil {
		params.Seed = openai.Int(*seed)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isRateLimitErr(err) {
			return nil, NewRateLimitError(err)
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrInvalidJSON
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return json.RawMessage(strings.TrimSpace(content)), nil
}

// ToolSpec describes one supplementary synthesis engine the orchestrator
// offers the model a choice of (spec §4.9 step 3). Dispatch is modelled as a
// structured decision rather than the SDK's native tool-call wire format:
// the model is shown each tool's name/description/parameter shape and asked
// to either pick one (by name, with arguments) or decline, which keeps the
// orchestrator's contract to the single GenerateJSON surface every other
// provider implements.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is one supplementary engine the model chose to invoke.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

type toolDecision struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// CallTools presents tools to the model with tool_choice left to the model's
// discretion ("auto"): it may name at most one tool with arguments, or
// decline by returning an empty tool name. An empty result means the model
// declined every supplementary engine.
func (c *OpenAIClient) CallTools(ctx context.Context, prompt string, input any, tools []ToolSpec) ([]ToolCall, error) {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nYou may invoke at most one of the following tools if it would help, or decline by returning an empty \"tool\" field.\n")
	for _, t := range tools {
		params, _ := json.Marshal(t.Parameters)
		fmt.Fprintf(&b, "- %s: %s (parameters schema: %s)\n", t.Name, t.Description, params)
	}
	b.WriteString("\nRespond with a single JSON object: {\"tool\": \"<name or empty>\", \"arguments\": { ... }}.")

	raw, err := c.GenerateJSON(ctx, b.String(), input, nil)
	if err != nil {
		return nil, err
	}
	var decision toolDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		return nil, NewPermanentError(fmt.Errorf("openai tool decision: %w", err))
	}
	if decision.Tool == "" {
		return nil, nil
	}
	return []ToolCall{{Name: decision.Tool, Arguments: decision.Arguments}}, nil
}
