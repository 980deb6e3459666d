package config

import (
	"testing"
	"time"

	"insightify/internal/tester"
)

func TestLoadYAML_OverridesOnlyGivenFields(t *testing.T) {
	cfg := Default()
	raw := []byte("min_use_cases: 10\nupload_bucket: custom-bucket\n")

	tester.NoErr(t, LoadYAML(&cfg, raw))

	tester.Eq(t, cfg.MinUseCases, 10)
	tester.Eq(t, cfg.UploadBucket, "custom-bucket")
	tester.Eq(t, cfg.MinPolicies, 5)
	tester.Eq(t, cfg.GeminiModel, "gemini-2.5-flash")
}

func TestLoadYAML_ParsesDuration(t *testing.T) {
	cfg := Default()
	raw := []byte("cache_ttl: 1h\n") // yaml.v3 decodes time.Duration fields from duration strings, not integers

	tester.NoErr(t, LoadYAML(&cfg, raw))
	tester.Eq(t, cfg.CacheTTL, time.Hour)
}

func TestLoadYAML_RejectsMalformed(t *testing.T) {
	cfg := Default()
	err := LoadYAML(&cfg, []byte("min_use_cases: [not, a, number]\n"))
	tester.True(t, err != nil, "expected a parse error for a malformed field")
}
