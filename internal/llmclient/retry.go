package llmclient

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"time"
)

// Retry wraps a Client with the bounded, randomised-exponential-backoff
// retry policy from spec §4.2: retries only on rate-limit errors, minimum
// 1s backoff, capped at 60s, at most 6 attempts. All other errors (schema
// violations, permanent/transport/auth failures) surface immediately.
func Retry(next Client) Client {
	return &retrying{next: next, maxAttempts: 6, minDelay: time.Second, maxDelay: 60 * time.Second}
}

type retrying struct {
	next        Client
	maxAttempts int
	minDelay    time.Duration
	maxDelay    time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	var last error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		resp, err := r.next.GenerateJSON(ctx, prompt, input, seed)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		last = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		time.Sleep(backoff(attempt, r.minDelay, r.maxDelay))
	}
	return nil, last
}

// backoff computes a randomised exponential delay: base * 2^attempt, jittered
// within +/-25%, clamped to [min, max].
func backoff(attempt int, min, max time.Duration) time.Duration {
	d := min * time.Duration(1<<attempt)
	if d > max || d <= 0 {
		d = max
	}
	jitter := 0.75 + rand.Float64()*0.5
	d = time.Duration(float64(d) * jitter)
	if d > max {
		d = max
	}
	if d < min {
		d = min
	}
	return d
}
