// Package rundriver implements the pipeline driver from spec §4.11: read
// source -> extract use cases -> extract policies -> detect case/formats ->
// write case into extracted items -> orchestrator per use case -> aggregate
// -> coverage enforcement -> write five JSON artifacts atomically -> write
// run_manifest.json. Failure of any stage is fatal and no partial artifacts
// are persisted, matching cmd/archflow/main.go's strict stage sequencing.
package rundriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"insightify/internal/adapter"
	"insightify/internal/config"
	"insightify/internal/coverage"
	"insightify/internal/detect"
	"insightify/internal/evidence"
	"insightify/internal/extract"
	"insightify/internal/idgen"
	"insightify/internal/llmclient"
	"insightify/internal/model"
	"insightify/internal/orchestrate"
	"insightify/internal/safeio"
	"insightify/internal/source"
)

// GeneratorVersion is written into every run_manifest.json.
const GeneratorVersion = "insightify-gendataset/1"

// Clients bundles the two structured-call providers the driver threads
// through every stage: primary is used by extractors, the detector, format
// adapters, and the classifier; supplement (optional) is used by the
// orchestrator's function-calling tools and direct fallback.
type Clients struct {
	Primary    llmclient.Client
	Supplement *llmclient.OpenAIClient
}

// Result is everything Generate produced, handed back so callers (tests,
// cmd/gendataset) can inspect it without re-reading the artifacts from disk.
type Result struct {
	UseCases []model.UseCase
	Policies []model.Policy
	Detected detect.Detection
	Manifest model.RunManifest
}

// Generate runs every stage in spec §4.11's fixed order and writes the five
// JSON artifacts plus run_manifest.json into cfg.OutDir. It returns the
// aggregated in-memory result alongside whatever the files on disk hold.
func Generate(ctx context.Context, clients Clients, cfg config.Config) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log.Printf("rundriver: run %s: reading source %s", runID, cfg.InputPath)

	src, err := source.Read(cfg.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("rundriver: read source: %w", err)
	}

	log.Printf("rundriver: run %s: extracting use cases", runID)
	useCases, err := extract.UseCases(ctx, clients.Primary, src, cfg.Seed, cfg.MinUseCases)
	if err != nil {
		return Result{}, fmt.Errorf("rundriver: extract use cases: %w", err)
	}

	log.Printf("rundriver: run %s: extracting policies", runID)
	policies, err := extract.Policies(ctx, clients.Primary, src, cfg.Seed, cfg.MinPolicies)
	if err != nil {
		return Result{}, fmt.Errorf("rundriver: extract policies: %w", err)
	}

	log.Printf("rundriver: run %s: detecting case/formats", runID)
	detection := detect.Detect(ctx, clients.Primary, useCases, policies, cfg.Seed)
	detect.ApplyCase(useCases, policies, detection.Case)
	log.Printf("rundriver: run %s: detected case=%s formats=%v", runID, detection.Case, detection.Formats)

	runSeed := int64(0)
	if cfg.Seed != nil {
		runSeed = *cfg.Seed
	}
	orchCfg := orchestrate.Config{
		MinTestCases:   cfg.MinTestCasesPerUC,
		AdapterOptions: adapter.Options{EscalationSentence: cfg.EscalationSentence},
	}

	testCases, examples, frameworks := runUseCasesInParallel(ctx, clients, useCases, policies, detection.Formats, orchCfg, runSeed)

	log.Printf("rundriver: run %s: coverage enforcement", runID)
	report := coverage.CheckPipeline(detection.Case, useCases, policies, testCases, examples)
	for _, issue := range report.Issues {
		log.Printf("WARN: rundriver: run %s: %s", runID, issue)
	}

	for _, ev := range collectEvidenceWarnings(src, useCases, policies) {
		log.Printf("WARN: rundriver: run %s: %s", runID, ev)
	}

	manifest := model.RunManifest{
		InputPath:        cfg.InputPath,
		OutPath:          cfg.OutDir,
		Seed:             cfg.Seed,
		Timestamp:        start.UTC().Format(time.RFC3339),
		GeneratorVersion: GeneratorVersion,
		LLM: model.LLMInfo{
			Provider:    "gemini",
			Model:       cfg.GeminiModel,
			Temperature: 0,
		},
		FrameworksUsed: frameworks,
		Counts: model.Counts{
			UseCases:        len(useCases),
			Policies:        len(policies),
			TestCases:       len(testCases),
			DatasetExamples: len(examples),
		},
		DetectedCase:    detection.Case,
		DetectedFormats: detection.Formats,
	}

	if err := writeArtifacts(cfg.OutDir, useCases, policies, testCases, examples, manifest); err != nil {
		return Result{}, fmt.Errorf("%w: %v", model.ErrWriteIO, err)
	}

	log.Printf("rundriver: run %s: wrote %d use cases, %d policies, %d test cases, %d examples",
		runID, len(useCases), len(policies), len(testCases), len(examples))

	return Result{UseCases: useCases, Policies: policies, Detected: detection, Manifest: manifest}, nil
}

// runUseCasesInParallel dispatches orchestrate.Run for each use case
// concurrently (spec §5: "embarrassingly-parallelisable across use cases"),
// each with a distinct seed-derived sub-seed, then reassembles output in
// the extractor's use-case order so ids and array order stay deterministic
// regardless of goroutine completion order.
func runUseCasesInParallel(ctx context.Context, clients Clients, useCases []model.UseCase, policies []model.Policy, formats []model.Format, cfg orchestrate.Config, runSeed int64) ([]model.TestCase, []model.DatasetExample, []string) {
	results := make([]orchestrate.Result, len(useCases))
	g, gctx := errgroup.WithContext(ctx)
	for i, uc := range useCases {
		i, uc := i, uc
		g.Go(func() error {
			results[i] = orchestrate.Run(gctx, clients.Primary, clients.Supplement, uc, relevantPolicies(policies, uc), formats, cfg, runSeed)
			return nil
		})
	}
	_ = g.Wait()

	var testCases []model.TestCase
	var examples []model.DatasetExample
	seen := map[string]struct{}{}
	var frameworks []string
	for _, r := range results {
		testCases = append(testCases, r.TestCases...)
		examples = append(examples, r.Examples...)
		for _, fw := range r.FrameworksUsed {
			if _, ok := seen[fw]; ok {
				continue
			}
			seen[fw] = struct{}{}
			frameworks = append(frameworks, fw)
		}
	}

	// Re-sequence tc_*/ex_* ids in use-case order so total ordering matches
	// spec §5 even though the goroutines above ran out of order: each
	// worker assigned ids starting from its own private sequence, so ids
	// collide across use cases and must be renumbered here.
	renumberIDs(testCases, examples)

	return testCases, examples, frameworks
}

func renumberIDs(testCases []model.TestCase, examples []model.DatasetExample) {
	tcSeq := idgen.NewSequence(model.PrefixTestCase)
	exSeq := idgen.NewSequence(model.PrefixDatasetExample)
	tcRemap := make(map[string]string, len(testCases))
	for i := range testCases {
		old := testCases[i].ID
		testCases[i].ID = tcSeq.Next()
		tcRemap[testCases[i].UseCaseID+"/"+old] = testCases[i].ID
	}
	for i := range examples {
		if newID, ok := tcRemap[examples[i].UseCaseID+"/"+examples[i].TestCaseID]; ok {
			examples[i].TestCaseID = newID
		}
		examples[i].ID = exSeq.Next()
	}
}

func relevantPolicies(policies []model.Policy, uc model.UseCase) []model.Policy {
	// Every policy extracted from the same document is in scope for every
	// use case; the document-level policy set isn't scoped to individual
	// use cases anywhere in spec §4.4.
	return policies
}

func collectEvidenceWarnings(src *source.ParsedSource, useCases []model.UseCase, policies []model.Policy) []string {
	var warnings []string
	for _, uc := range useCases {
		for _, ev := range uc.Evidence {
			if res := evidence.Check(src, ev); res.Outcome != evidence.Exact {
				warnings = append(warnings, fmt.Sprintf("use_case %s: %s", uc.ID, res.Message))
			}
		}
	}
	for _, p := range policies {
		for _, ev := range p.Evidence {
			if res := evidence.Check(src, ev); res.Outcome != evidence.Exact {
				warnings = append(warnings, fmt.Sprintf("policy %s: %s", p.ID, res.Message))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}

func writeArtifacts(outDir string, useCases []model.UseCase, policies []model.Policy, testCases []model.TestCase, examples []model.DatasetExample, manifest model.RunManifest) error {
	fs, err := safeio.NewSafeFS(outDir)
	if err != nil {
		return err
	}
	files := []struct {
		name string
		v    any
	}{
		{"use_cases.json", model.UseCasesFile{UseCases: useCases}},
		{"policies.json", model.PoliciesFile{Policies: policies}},
		{"test_cases.json", model.TestCasesFile{TestCases: testCases}},
		{"dataset.json", model.DatasetFile{Examples: examples}},
		{"run_manifest.json", manifest},
	}
	encoded := make([][]byte, len(files))
	for i, f := range files {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f.v); err != nil {
			return fmt.Errorf("marshal %s: %w", f.name, err)
		}
		encoded[i] = buf.Bytes()
	}
	for i, f := range files {
		if err := fs.WriteFileAtomic(f.name, encoded[i], 0o644); err != nil {
			for _, prev := range files[:i] {
				_ = os.Remove(filepath.Join(fs.Root(), prev.name))
			}
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}
