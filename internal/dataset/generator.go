package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"obfuskeep/internal/ast"
	"obfuskeep/internal/config"
	"obfuskeep/internal/llm"
	"obfuskeep/internal/prompt"
	"obfuskeep/internal/rules"
	"obfuskeep/internal/scan"
	"obfuskeep/internal/util/jsonutil"
)

// Mode selects whether records carry a model-generated output field.
type Mode int

const (
	// ModeTraining calls the model per file and stores its answer.
	ModeTraining Mode = iota
	// ModeInference builds instruction/input pairs only; the model is
	// never called.
	ModeInference
)

// ErrEmptySource marks a file with no content worth processing.
var ErrEmptySource = errors.New("dataset: source file is empty")

// Summary is the end-of-run report.
type Summary struct {
	RunID     string
	Total     int
	Skipped   int
	Succeeded int
	Failed    int
	Exhausted int
	Elapsed   time.Duration
}

// Generator runs the per-file pipeline across a source tree: extract
// symbols, filter rules, assemble the prompt, query the model, persist the
// record.
type Generator struct {
	cfg       config.Config
	extractor *ast.Extractor
	filter    *rules.Filter
	handler   *llm.Handler
	writer    *Writer
	mode      Mode
	logger    *log.Logger

	// Progress, when set, is called once per finished file.
	Progress func()
}

func NewGenerator(cfg config.Config, extractor *ast.Extractor, filter *rules.Filter, handler *llm.Handler, writer *Writer, mode Mode, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		cfg:       cfg,
		extractor: extractor,
		filter:    filter,
		handler:   handler,
		writer:    writer,
		mode:      mode,
		logger:    logger,
	}
}

// ProcessFile runs one file through the pipeline and returns its record.
// Extraction failures other than a timeout degrade to a source-only prompt;
// a timed-out analyzer fails the file, since the source may be pathological
// and would stall every future run the same way.
func (g *Generator) ProcessFile(ctx context.Context, path string) (Entry, llm.Outcome, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, llm.OutcomeSucceeded, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	source := string(raw)
	if strings.TrimSpace(source) == "" {
		return Entry{}, llm.OutcomeSucceeded, ErrEmptySource
	}

	var input, full string
	symbols, err := g.extractor.Extract(ctx, path)
	switch {
	case err == nil:
		filtered := g.filter.FilterForFile(symbols, rules.DefaultMaxRules)
		rulesText := rules.FormatForPrompt(filtered)
		input = prompt.BuildInput(source, symbols, rulesText)
		full = prompt.BuildFull(source, symbols, rulesText)
	case errors.Is(err, ast.ErrAnalyzerTimeout):
		return Entry{}, llm.OutcomeSucceeded, err
	default:
		g.logger.Printf("dataset: %s: no structural context (%v), degraded prompt", filepath.Base(path), err)
		input = prompt.BuildDegradedInput(source)
		full = prompt.BuildDegraded(source)
	}

	entry := Entry{Instruction: prompt.Instruction, Input: input}
	outcome := llm.OutcomeSucceeded
	if g.mode == ModeTraining {
		var resp llm.Response
		resp, outcome = g.handler.GenerateWithRetry(ctx, full, g.cfg.MaxRetries)
		blob, err := jsonutil.MarshalNoEscape(resp)
		if err != nil {
			return Entry{}, outcome, fmt.Errorf("dataset: marshal response: %w", err)
		}
		entry.Output = string(blob)
	}
	return entry, outcome, nil
}

// Run processes every source file under the configured input directory.
// Files whose key already appears in the resume manifest are skipped. With
// parallel set, files run on a bounded worker pool with submissions
// throttled by the configured request delay; otherwise they run one at a
// time with the delay between files.
func (g *Generator) Run(ctx context.Context, limit int, parallel bool) (Summary, error) {
	files, err := scan.SourceFiles(g.cfg.InputDir, ".swift")
	if err != nil {
		return Summary{}, fmt.Errorf("dataset: list sources: %w", err)
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("dataset: no .swift files under %s", g.cfg.InputDir)
	}
	if limit > 0 && limit < len(files) {
		files = files[:limit]
	}

	summary := Summary{RunID: uuid.NewString(), Total: len(files)}
	start := time.Now()

	done := ProcessedKeys(g.cfg.OutputPath)
	var pending []string
	for _, path := range files {
		if _, ok := done[g.keyFor(path)]; ok {
			g.logger.Printf("dataset: skip %s (already processed)", filepath.Base(path))
			summary.Skipped++
			continue
		}
		pending = append(pending, path)
	}

	g.logger.Printf("dataset: run %s: %d files, %d already processed, %d to go",
		summary.RunID, summary.Total, summary.Skipped, len(pending))

	var mu sync.Mutex
	if parallel && len(pending) > 1 {
		limiter := rate.NewLimiter(rate.Every(g.cfg.RequestDelay), 1)
		sem := make(chan struct{}, g.cfg.MaxWorkers)
		var wg sync.WaitGroup
		for _, path := range pending {
			if err := limiter.Wait(ctx); err != nil {
				g.logger.Printf("dataset: run canceled: %v", err)
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				defer func() { <-sem }()
				g.processOne(ctx, path, &mu, &summary)
			}(path)
		}
		wg.Wait()
	} else {
		for i, path := range pending {
			g.processOne(ctx, path, &mu, &summary)
			if i < len(pending)-1 {
				time.Sleep(g.cfg.RequestDelay)
			}
		}
	}

	summary.Elapsed = time.Since(start)
	if summary.Succeeded == 0 && summary.Skipped == 0 {
		return summary, fmt.Errorf("dataset: no files processed successfully")
	}
	return summary, nil
}

// processOne is the per-file boundary: a panic or error here is logged and
// counted, never propagated, so one bad file cannot take down the run.
func (g *Generator) processOne(ctx context.Context, path string, mu *sync.Mutex, summary *Summary) {
	count := func(bump func(*Summary)) {
		mu.Lock()
		bump(summary)
		mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Printf("dataset: %s: panic: %v", filepath.Base(path), r)
			count(func(s *Summary) { s.Failed++ })
		}
		if g.Progress != nil {
			g.Progress()
		}
	}()

	entry, outcome, err := g.ProcessFile(ctx, path)
	switch {
	case errors.Is(err, ErrEmptySource):
		g.logger.Printf("dataset: skip %s: empty file", filepath.Base(path))
		count(func(s *Summary) { s.Skipped++ })
		return
	case err != nil:
		g.logger.Printf("dataset: %s failed: %v", filepath.Base(path), err)
		count(func(s *Summary) { s.Failed++ })
		return
	}

	if err := g.writer.Append(entry, g.keyFor(path)); err != nil {
		g.logger.Printf("dataset: %s: write failed: %v", filepath.Base(path), err)
		count(func(s *Summary) { s.Failed++ })
		return
	}
	count(func(s *Summary) {
		s.Succeeded++
		if outcome == llm.OutcomeExhausted {
			s.Exhausted++
		}
	})
	if outcome == llm.OutcomeExhausted {
		g.logger.Printf("dataset: %s: generation exhausted retries, recorded empty identifier list", filepath.Base(path))
	}
}

// keyFor is the resume-manifest key for a source file: its slash-separated
// path relative to the input directory, stable across runs and machines.
func (g *Generator) keyFor(path string) string {
	rel, err := filepath.Rel(g.cfg.InputDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
