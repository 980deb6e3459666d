package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	genai "google.golang.org/genai"
)

var ErrInvalidJSON = errors.New("llmclient: invalid JSON from model")

// GeminiClient wraps the official genai client as the primary structured-call
// provider for extractors, the detector, format adapters, and the source
// classifier. Generalized from the teacher's internal/llm.GeminiClient to
// thread a seed through and to classify rate-limit errors for the retry
// middleware.
type GeminiClient struct {
	cli     *genai.Client
	model   string
	limiter *rpsLimiter
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithGeminiRateLimit throttles outbound calls to at most rps/second with
// the given burst.
func WithGeminiRateLimit(rps float64, burst int) GeminiOption {
	return func(g *GeminiClient) { g.limiter = newRPSLimiter(rps, burst) }
}

// NewGeminiClient dials the Gemini API backend. The API key is not passed
// explicitly: genai.NewClient picks it up from GEMINI_API_KEY/GOOGLE_API_KEY,
// matching how the teacher constructs its client.
func NewGeminiClient(ctx context.Context, model string, opts ...GeminiOption) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	g := &GeminiClient{cli: cli, model: model}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error {
	if g.limiter != nil {
		g.limiter.stop()
	}
	return nil
}

// GenerateJSON sends the concatenated prompt/input and requests
// application/json with temperature pinned to 0, per spec §4.2.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	g.limiter.acquire()

	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)
	log.Printf("llmclient: gemini request (%d bytes)", len(full))

	var temperature float32 = 0
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}
	if seed != nil {
		s := int32(*seed)
		cfg.Seed = &s
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}}, cfg)
	if err != nil {
		if isRateLimitErr(err) {
			return nil, NewRateLimitError(err)
		}
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	txt := resp.Candidates[0].Content.Parts[0].Text
	return json.RawMessage(txt), nil
}

func isRateLimitErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted")
}
