package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/kestrelcase/intakex/internal/cache"
	"github.com/kestrelcase/intakex/internal/config"
	"github.com/kestrelcase/intakex/internal/ocrengine"
	"github.com/kestrelcase/intakex/internal/pipeline"
	"github.com/kestrelcase/intakex/internal/remote"
	"github.com/kestrelcase/intakex/internal/schema"
)

const defaultQPS = 3

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "intakex INPUT_PATH OPENAI_API_KEY OUTPUT_JSON",
		Short: "Extracts structured fields from scanned legal-intake documents",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputPath = args[0]
			cfg.APIKey = args[1]
			cfg.OutputJSON = args[2]
			return run(cmd.Context(), cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Threads, "threads", 4, "worker pool size")
	flags.StringVar(&cfg.Lang, "lang", "eng", "tesseract language code")
	flags.StringVar(&cfg.Model, "model", "gpt-4o-mini", "remote model name")
	flags.BoolVar(&cfg.PerFile, "per-file", false, "write a <stem>.extracted.json next to each source")
	flags.StringVar(&cfg.JSONLPath, "jsonl", "", "append one JSON line per document to this path")
	flags.StringVar(&cfg.CacheDir, "cache", "", "content-addressed cache directory (disabled if empty)")
	flags.BoolVar(&cfg.Redact, "redact", false, "mask SSN/phone/email in the merged output")
	flags.BoolVar(&cfg.Audit, "audit", false, "include a raw OCR preview in the merged output")
	flags.IntVar(&cfg.TimeoutSeconds, "timeout", 120, "per-request timeout in seconds (minimum 30)")
	flags.IntVar(&cfg.MaxLines, "max-lines", 24, "maximum snippet lines (minimum 6)")
	flags.IntVar(&cfg.MaxChars, "max-chars", 4000, "maximum snippet characters (minimum 500)")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down, cancelling remote calls...")
		cancel()
	}()

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry, err := schema.NewRegistry()
	if err != nil {
		return fmt.Errorf("compile schemas: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(defaultQPS), 1)
	remoteClient := remote.NewClient(cfg.APIKey, cfg.Model, limiter, registry, log)
	remoteClient.SetTimeout(cfg.Timeout())

	var docCache *cache.Cache
	if cfg.CacheDir != "" {
		docCache, err = cache.New(cfg.CacheDir)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
	}

	newWorker := func() *pipeline.Worker {
		return pipeline.NewWorker(*cfg, ocrengine.New(cfg.Lang, log), remoteClient, docCache, log)
	}

	orch := pipeline.NewOrchestrator(*cfg, newWorker, log)

	summary, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("run complete",
		"processed", summary.Stats.Processed,
		"ok", summary.Stats.OK,
		"errors", summary.Stats.Errors,
		"output", cfg.OutputJSON,
	)
	return nil
}
