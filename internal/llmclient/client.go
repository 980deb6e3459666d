// Package llmclient is the structured-call client from spec §4.2: a single
// entry point that returns output conforming to a declared schema, with
// temperature pinned at 0, an optional seed, and bounded rate-limit retries.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

// Client is the structured-output LLM client contract every extractor,
// detector, adapter, and classifier calls through.
type Client interface {
	Name() string
	Close() error
	// GenerateJSON sends prompt+input and returns a JSON value conforming to
	// the caller's declared schema (validated by the caller after
	// unmarshalling, per spec §9's "parse -> either<Value, Errors>" surface).
	// seed is passed through when non-nil; temperature is always 0.
	GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error)
}

// PermanentError marks an error the retry middleware must never retry
// (schema violations, auth failures, malformed requests) — mirrors the
// teacher's llmClient.PermanentError.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// RateLimitError marks an error the retry middleware should retry with
// exponential backoff (spec §4.2, §7).
type RateLimitError struct{ Err error }

func (e *RateLimitError) Error() string { return e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

func NewRateLimitError(err error) error {
	if err == nil {
		return nil
	}
	return &RateLimitError{Err: err}
}

// IsRateLimit reports whether err (or something it wraps) is a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsPermanent reports whether err (or something it wraps) is a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
