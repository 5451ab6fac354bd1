package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"obfuskeep/internal/ast"
	"obfuskeep/internal/cache"
	"obfuskeep/internal/config"
	"obfuskeep/internal/dataset"
	"obfuskeep/internal/llm"
	"obfuskeep/internal/rules"
	"obfuskeep/internal/scan"
)

func main() {
	limit := flag.Int("limit", 0, "maximum number of files to process (0 = all)")
	noParallel := flag.Bool("no-parallel", false, "process files sequentially")
	inference := flag.Bool("inference", false, "build instruction/input pairs without calling the model")
	debug := flag.Bool("debug", false, "log every model request")
	flag.Parse()

	cfg, err := config.Load(!*inference)
	if err != nil {
		log.Fatal(err)
	}
	if *debug {
		cfg.Debug = true
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	ctx := context.Background()

	astStore, err := cache.New(cfg.ASTCacheDir, 256)
	if err != nil {
		log.Fatal(err)
	}
	llmStore, err := cache.New(cfg.LLMCacheDir, 256)
	if err != nil {
		log.Fatal(err)
	}

	mode := dataset.ModeTraining
	var handler *llm.Handler
	if *inference {
		mode = dataset.ModeInference
	} else {
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		client := llm.Client(gemini)
		if cfg.Debug {
			client = llm.Wrap(client, llm.WithLogging(logger))
		}
		defer client.Close()
		handler = llm.NewHandler(client, llmStore, logger)
	}

	extractor := ast.NewExtractor(cfg, astStore, logger)
	filter := rules.NewFilter(rules.LoadCorpus(cfg.RulesPath, logger))

	writer, err := dataset.NewWriter(cfg.OutputPath)
	if err != nil {
		log.Fatal(err)
	}
	defer writer.Close()

	gen := dataset.NewGenerator(cfg, extractor, filter, handler, writer, mode, logger)

	// Size the progress bar from what this run will actually touch.
	files, err := scan.SourceFiles(cfg.InputDir, ".swift")
	if err != nil {
		log.Fatal(err)
	}
	if *limit > 0 && *limit < len(files) {
		files = files[:*limit]
	}
	pending := len(files) - len(dataset.ProcessedKeys(cfg.OutputPath))
	if pending < 0 {
		pending = 0
	}
	bar := progressbar.Default(int64(pending), "files")
	gen.Progress = func() { _ = bar.Add(1) }

	summary, err := gen.Run(ctx, *limit, !*noParallel)
	if err != nil {
		log.Fatal(err)
	}

	logger.Printf("run %s finished in %s", summary.RunID, summary.Elapsed.Round(10*time.Millisecond))
	logger.Printf("  total:     %d", summary.Total)
	logger.Printf("  skipped:   %d", summary.Skipped)
	logger.Printf("  succeeded: %d", summary.Succeeded)
	logger.Printf("  failed:    %d", summary.Failed)
	if summary.Exhausted > 0 {
		logger.Printf("  exhausted: %d (recorded with empty identifier lists)", summary.Exhausted)
	}
	logger.Printf("output: %s", cfg.OutputPath)
}
