package model

// LLMInfo describes the model used for a run; temperature is always 0 per
// spec §4.2.
type LLMInfo struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Counts mirrors the length of each of the four generated collections.
type Counts struct {
	UseCases        int `json:"use_cases"`
	Policies        int `json:"policies"`
	TestCases       int `json:"test_cases"`
	DatasetExamples int `json:"dataset_examples"`
}

// RunManifest is written once at pipeline end (spec §3, §4.11).
type RunManifest struct {
	InputPath        string   `json:"input_path"`
	OutPath          string   `json:"out_path"`
	Seed             *int64   `json:"seed,omitempty"`
	Timestamp        string   `json:"timestamp"`
	GeneratorVersion string   `json:"generator_version"`
	LLM              LLMInfo  `json:"llm"`
	FrameworksUsed   []string `json:"frameworks_used"`
	Counts           Counts   `json:"counts"`
	DetectedCase     Case     `json:"detected_case"`
	DetectedFormats  []Format `json:"detected_formats"`
}

// Artifact file containers (spec §6 bit-exact layout).
type UseCasesFile struct {
	UseCases []UseCase `json:"use_cases"`
}

type PoliciesFile struct {
	Policies []Policy `json:"policies"`
}

type TestCasesFile struct {
	TestCases []TestCase `json:"test_cases"`
}

type DatasetFile struct {
	Examples []DatasetExample `json:"examples"`
}
