package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"insightify/internal/cache/disk"
	"insightify/internal/config"
	"insightify/internal/llmclient"
	"insightify/internal/rundriver"
	"insightify/internal/upload"
	"insightify/internal/validate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: gendataset <generate|validate|upload> [flags]")
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	_ = godotenv.Load()

	switch cmd {
	case "generate":
		runGenerate(args)
	case "validate":
		runValidate(args)
	case "upload":
		runUpload(args)
	default:
		log.Fatalf("unknown command %q: want generate, validate, or upload", cmd)
	}
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	input := fs.String("input", "", "path to the Russian-language requirements document")
	outDir := fs.String("out", "out", "output directory")
	configPath := fs.String("config", "", "optional YAML config file with non-secret defaults")
	seed := fs.Int64("seed", 0, "run seed; only used when --seeded is set")
	hasSeed := fs.Bool("seeded", false, "set to pin --seed, otherwise the run is unseeded")
	geminiModel := fs.String("gemini-model", "", "override the configured Gemini model")
	openaiModel := fs.String("openai-model", "", "override the configured OpenAI model")
	escalation := fs.String("escalation-sentence", "", "canonical escalation sentence dialog_last_turn_correction must include verbatim")
	fs.Parse(args)

	if *input == "" {
		log.Fatal("--input is required")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	cfg := config.Default()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		if err := config.LoadYAML(&cfg, raw); err != nil {
			log.Fatalf("parse config: %v", err)
		}
	}
	cfg.InputPath = *input
	cfg.OutDir = *outDir
	if *hasSeed {
		cfg.Seed = seed
	}
	if *geminiModel != "" {
		cfg.GeminiModel = *geminiModel
	}
	if *openaiModel != "" {
		cfg.OpenAIModel = *openaiModel
	}
	if *escalation != "" {
		cfg.EscalationSentence = *escalation
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	ctx := context.Background()
	primary, err := llmclient.NewGeminiClient(ctx, cfg.GeminiModel, llmclient.WithGeminiRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	if err != nil {
		log.Fatalf("init gemini client: %v", err)
	}
	defer primary.Close()

	var clientChain llmclient.Client = llmclient.Retry(primary)
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			log.Fatalf("prepare cache dir: %v", err)
		}
		diskStore, err := disk.NewLRUTTLStore(disk.LRUTTLConfig{
			Root:       cfg.CacheDir,
			MaxEntries: 100_000,
			MaxBytes:   512 * 1024 * 1024,
			TTL:        cfg.CacheTTL,
		})
		if err != nil {
			log.Fatalf("open disk cache: %v", err)
		}
		cacheCfg := llmclient.DefaultCacheConfig()
		cacheCfg.MemTTL = cfg.CacheTTL
		cacheCfg.Disk = diskStore
		clientChain = llmclient.Cache(clientChain, cacheCfg)
	}

	var supplement *llmclient.OpenAIClient
	if cfg.OpenAIAPIKey != "" {
		supplement = llmclient.NewOpenAIClient(cfg.OpenAIModel, llmclient.WithOpenAIAPIKey(cfg.OpenAIAPIKey))
		defer supplement.Close()
	}

	clients := rundriver.Clients{Primary: clientChain, Supplement: supplement}
	result, err := rundriver.Generate(ctx, clients, cfg)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	log.Printf("generate: wrote %+v", result.Manifest.Counts)
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	outDir := fs.String("out", "out", "output directory to validate")
	fs.Parse(args)

	report, err := validate.Run(*outDir)
	if err != nil {
		log.Fatalf("validate: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if !report.OK() {
		os.Exit(1)
	}
}

func runUpload(args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	outDir := fs.String("out", "out", "output directory holding dataset.json")
	datasetName := fs.String("dataset-name", "", "name the dataset is uploaded under")
	host := fs.String("host", "", "S3-compatible endpoint host:port")
	bucket := fs.String("bucket", "datasets", "bucket name")
	useSSL := fs.Bool("ssl", true, "use TLS when talking to host")
	fs.Parse(args)

	if *datasetName == "" {
		log.Fatal("--dataset-name is required")
	}

	u, err := upload.New(upload.Config{
		Host:      *host,
		AccessKey: os.Getenv("UPLOAD_ACCESS_KEY"),
		SecretKey: os.Getenv("UPLOAD_SECRET_KEY"),
		Bucket:    *bucket,
		UseSSL:    *useSSL,
	})
	if err != nil {
		log.Fatalf("init uploader: %v", err)
	}
	if err := u.Upload(context.Background(), *outDir, *datasetName); err != nil {
		log.Fatalf("upload: %v", err)
	}
	fmt.Printf("uploaded %s/dataset.json\n", *datasetName)
}
