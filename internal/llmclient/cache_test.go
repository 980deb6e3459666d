package llmclient

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"insightify/internal/cache/disk"
	"insightify/internal/tester"
)

type countingClient struct {
	calls int
	resp  json.RawMessage
}

func (c *countingClient) Name() string { return "counting" }
func (c *countingClient) Close() error { return nil }
func (c *countingClient) GenerateJSON(ctx context.Context, prompt string, input any, seed *int64) (json.RawMessage, error) {
	c.calls++
	return c.resp, nil
}

func TestCache_MemoryHitAvoidsCall(t *testing.T) {
	inner := &countingClient{resp: json.RawMessage(`{"ok":true}`)}
	cli := Cache(inner, DefaultCacheConfig())

	seed := int64(1)
	if _, err := cli.GenerateJSON(context.Background(), "p", map[string]string{"a": "b"}, &seed); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := cli.GenerateJSON(context.Background(), "p", map[string]string{"a": "b"}, &seed); err != nil {
		t.Fatalf("second call: %v", err)
	}
	tester.Eq(t, inner.calls, 1)
}

func TestCache_DifferentSeedMisses(t *testing.T) {
	inner := &countingClient{resp: json.RawMessage(`{"ok":true}`)}
	cli := Cache(inner, DefaultCacheConfig())

	s1, s2 := int64(1), int64(2)
	cli.GenerateJSON(context.Background(), "p", nil, &s1)
	cli.GenerateJSON(context.Background(), "p", nil, &s2)
	tester.Eq(t, inner.calls, 2)
}

func TestCache_DiskTierSurvivesMemoryMiss(t *testing.T) {
	store, err := disk.NewLRUTTLStore(disk.LRUTTLConfig{Root: t.TempDir(), MaxEntries: 10, TTL: time.Minute})
	tester.NoErr(t, err)

	inner := &countingClient{resp: json.RawMessage(`{"ok":true}`)}
	cfg := DefaultCacheConfig()
	cfg.Disk = store
	cli := Cache(inner, cfg).(*cached)

	seed := int64(9)
	if _, err := cli.GenerateJSON(context.Background(), "p", nil, &seed); err != nil {
		t.Fatalf("first call: %v", err)
	}
	// Evict the memory tier directly to force a disk-tier read.
	cli.mem.Clear()
	if _, err := cli.GenerateJSON(context.Background(), "p", nil, &seed); err != nil {
		t.Fatalf("second call: %v", err)
	}
	tester.Eq(t, inner.calls, 1)
}
