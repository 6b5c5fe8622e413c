package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docchunk/internal/advisor"
	"github.com/dgallion1/docchunk/internal/api"
	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

func main() {
	cfg := config.Load()
	if path := os.Getenv("DOCCHUNK_CONFIG"); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the chunking core and the optional advisor.
	est := chunker.NewEstimator(cfg.TokenizerModel, log)
	if tk, ok := est.(*chunker.TiktokenEstimator); ok {
		log.Info("using tiktoken estimator", "model", tk.Model())
	}
	var stats *advisor.LLMStats
	if cfg.UsesAdvisor() {
		stats = advisor.NewLLMStats(time.Hour)
	}
	adv, err := pipeline.NewAdvisor(cfg, stats, log)
	if err != nil {
		log.Error("llm advisor unavailable", "error", err)
		os.Exit(1)
	}
	ch := pipeline.NewChunker(adv, log)

	sink, closeSink, err := pipeline.OpenSink(cfg, est, log)
	if err != nil {
		log.Error("storage unavailable", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ch, sink, pipeline.OptionsFromConfig(cfg, est), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, ch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		closeSink()
	}()

	log.Info("starting docchunk", "port", cfg.Port, "min_tokens", cfg.MinTokens, "max_tokens", cfg.MaxTokens)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
