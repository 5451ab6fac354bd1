package ast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"obfuskeep/internal/cache"
	"obfuskeep/internal/config"
	"obfuskeep/internal/util/jsonutil"
)

// Extraction failure causes. All of them mean "no structural context"; the
// orchestrator logs the cause and proceeds with a degraded prompt.
var (
	ErrAnalyzerMissing    = errors.New("ast: analyzer binary not found")
	ErrAnalyzerFailed     = errors.New("ast: analyzer exited non-zero")
	ErrAnalyzerTimeout    = errors.New("ast: analyzer timed out")
	ErrNoSourceRecognized = errors.New("ast: analyzer recognized no Swift files")
	ErrNoJSON             = errors.New("ast: no JSON in analyzer output")
	ErrBadJSON            = errors.New("ast: analyzer output is not valid JSON")
	ErrNoSymbols          = errors.New("ast: analyzer returned no symbols")
)

// decisionCategories are the analyzer's known symbol buckets, flattened in
// this order when the output carries a "decisions" object.
var decisionCategories = []string{
	"classes", "structs", "enums", "protocols",
	"methods", "properties", "variables", "enumCases",
	"initializers", "deinitializers", "subscripts", "extensions",
}

// Extractor runs the analyzer subprocess and caches results by source
// content hash, so re-runs over unchanged files never pay the subprocess.
type Extractor struct {
	analyzerPath string
	timeout      time.Duration
	cache        *cache.Store
	logger       *log.Logger
}

func NewExtractor(cfg config.Config, store *cache.Store, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.AnalyzerLimit
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{
		analyzerPath: cfg.AnalyzerPath,
		timeout:      timeout,
		cache:        store,
		logger:       logger,
	}
}

// Extract returns the flat symbol list for the file at path. Any of the
// sentinel errors above means extraction is unavailable for this file.
func (e *Extractor) Extract(ctx context.Context, path string) ([]Symbol, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ast: read %s: %w", path, err)
	}

	key := cache.Key(source)
	if raw, ok := e.cache.Get(ctx, key); ok {
		var cached []Symbol
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Corrupt cache entry: fall through and recompute.
	}

	if _, err := os.Stat(e.analyzerPath); err != nil {
		return nil, ErrAnalyzerMissing
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	out, err := exec.CommandContext(runCtx, e.analyzerPath, path).Output()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, ErrAnalyzerTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerFailed, err)
	}

	symbols, err := e.normalize(string(out))
	if err != nil {
		return nil, err
	}

	if blob, err := jsonutil.MarshalNoEscapeIndent(symbols, "", "  "); err == nil {
		if err := e.cache.Set(ctx, key, blob); err != nil {
			e.logger.Printf("ast: cache write failed for %s: %v", path, err)
		}
	}
	return symbols, nil
}

// ExtractSource analyzes a source string by writing it to a temporary .swift
// file and delegating to Extract. The temp file is removed on every path.
func (e *Extractor) ExtractSource(ctx context.Context, source string) ([]Symbol, error) {
	tmp, err := os.CreateTemp("", "obfuskeep-*.swift")
	if err != nil {
		return nil, fmt.Errorf("ast: temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.WriteString(source); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("ast: temp write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("ast: temp close: %w", err)
	}
	return e.Extract(ctx, name)
}

// normalize turns the analyzer's stdout into a flat symbol list. The binary
// prints log lines before the JSON, so decoding starts at the first brace
// or bracket.
func (e *Extractor) normalize(out string) ([]Symbol, error) {
	if strings.Contains(out, "No Swift files found") {
		return nil, ErrNoSourceRecognized
	}
	start := strings.IndexAny(out, "{[")
	if start == -1 {
		return nil, ErrNoJSON
	}
	payload := strings.TrimSpace(out[start:])

	var value any
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		e.logger.Printf("ast: JSON decode failed: %v (output preview: %.200s)", err, payload)
		return nil, ErrBadJSON
	}

	switch v := value.(type) {
	case map[string]any:
		if decisions, ok := v["decisions"].(map[string]any); ok {
			var flat []Symbol
			for _, category := range decisionCategories {
				items, ok := decisions[category].([]any)
				if !ok {
					continue
				}
				for _, item := range items {
					if m, ok := item.(map[string]any); ok {
						flat = append(flat, Symbol(m))
					}
				}
			}
			if len(flat) == 0 {
				return nil, ErrNoSymbols
			}
			return flat, nil
		}
		return []Symbol{Symbol(v)}, nil
	case []any:
		symbols := make([]Symbol, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				symbols = append(symbols, Symbol(m))
			}
		}
		if len(symbols) == 0 {
			return nil, ErrNoSymbols
		}
		return symbols, nil
	default:
		// Scalar output: keep it as a single wrapped record.
		return []Symbol{{"value": v}}, nil
	}
}
