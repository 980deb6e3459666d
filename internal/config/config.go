// Package config is the sole carrier of provider keys, model names, seed,
// and output paths into the pipeline. internal/... code never reads
// os.Getenv directly; only cmd/gendataset touches the environment and
// assembles a Config to pass in (spec §9 "process-wide state must be passed
// in, not imported").
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config bundles everything the pipeline driver needs for one run.
type Config struct {
	InputPath string `yaml:"input_path"`
	OutDir    string `yaml:"out_dir"`
	Seed      *int64 `yaml:"seed"`

	GeminiModel string `yaml:"gemini_model"`
	OpenAIModel string `yaml:"openai_model"`

	MinUseCases       int `yaml:"min_use_cases"`
	MinPolicies       int `yaml:"min_policies"`
	MinTestCasesPerUC int `yaml:"min_test_cases_per_uc"`
	MinExamplesPerTC  int `yaml:"min_examples_per_tc"`

	EscalationSentence string `yaml:"escalation_sentence"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	CacheDir string        `yaml:"cache_dir"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`

	UploadHost      string `yaml:"upload_host"`
	UploadAccessKey string `yaml:"-"`
	UploadSecretKey string `yaml:"-"`
	UploadBucket    string `yaml:"upload_bucket"`
}

// Default returns the fixed defaults cmd/gendataset seeds before applying a
// config file and flags on top.
func Default() Config {
	return Config{
		GeminiModel:       "gemini-2.5-flash",
		OpenAIModel:       "gpt-4o-mini",
		MinUseCases:       5,
		MinPolicies:       5,
		MinTestCasesPerUC: 3,
		MinExamplesPerTC:  3,
		RateLimitRPS:      2.0,
		RateLimitBurst:    4,
		CacheTTL:          30 * time.Minute,
		UploadBucket:      "datasets",
	}
}

// LoadYAML merges a YAML file's fields into cfg, leaving any field the file
// omits at its current value.
func LoadYAML(cfg *Config, raw []byte) error {
	return yaml.Unmarshal(raw, cfg)
}
