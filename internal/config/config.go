package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every process-wide setting. It is built once in main and
// passed into component constructors; nothing reads the environment after
// Load returns.
type Config struct {
	// Generative endpoint.
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	MaxRetries  int

	// Directory layout.
	InputDir      string
	RulesPath     string
	OutputPath    string
	ASTCacheDir   string
	LLMCacheDir   string
	AnalyzerPath  string
	AnalyzerLimit time.Duration

	// Batch processing.
	MaxWorkers   int
	RequestDelay time.Duration

	Debug bool
}

// Load reads .env (if present) and the environment, fills defaults, and
// creates the data directories. The API key is only required when requireKey
// is set; the inference-only path never calls the model.
func Load(requireKey bool) (Config, error) {
	_ = godotenv.Load()

	root := firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_ROOT")), ".")

	cfg := Config{
		APIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:         firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_MODEL")), "gemini-2.5-flash"),
		MaxTokens:     int32(envInt("OBFUSKEEP_MAX_TOKENS", 8192)),
		Temperature:   envFloat32("OBFUSKEEP_TEMPERATURE", 0.2),
		MaxRetries:    envInt("OBFUSKEEP_MAX_RETRIES", 3),
		InputDir:      firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_INPUT_DIR")), filepath.Join(root, "data", "input_swift")),
		RulesPath:     firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_RULES")), filepath.Join(root, "data", "rules", "swift_exclusion_rules.yaml")),
		OutputPath:    firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_OUTPUT")), filepath.Join(root, "data", "output", "dataset.jsonl")),
		ASTCacheDir:   firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_AST_CACHE")), filepath.Join(root, "data", "ast_cache")),
		LLMCacheDir:   firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_LLM_CACHE")), filepath.Join(root, "data", "llm_cache")),
		AnalyzerPath:  firstNonEmpty(strings.TrimSpace(os.Getenv("OBFUSKEEP_ANALYZER")), filepath.Join(root, "SwiftASTAnalyzer", ".build", "release", "SwiftASTAnalyzer")),
		AnalyzerLimit: envDuration("OBFUSKEEP_ANALYZER_TIMEOUT", 60*time.Second),
		MaxWorkers:    envInt("OBFUSKEEP_MAX_WORKERS", 5),
		RequestDelay:  envDuration("OBFUSKEEP_REQUEST_DELAY", 500*time.Millisecond),
		Debug:         envBool("DEBUG", false),
	}

	if requireKey && cfg.APIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	for _, dir := range []string{cfg.InputDir, filepath.Dir(cfg.OutputPath), cfg.ASTCacheDir, cfg.LLMCacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Config{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return cfg, nil
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat32(key string, def float32) float32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
