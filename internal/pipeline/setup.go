package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docchunk/internal/advisor"
	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/pathstore"
	"github.com/dgallion1/docchunk/internal/sqlitestore"
	"github.com/dgallion1/docchunk/internal/store"
)

// NewAdvisor builds the configured advisor with retries. It returns nil
// when neither advisory step is enabled.
func NewAdvisor(cfg config.Config, stats *advisor.LLMStats, log *slog.Logger) (*advisor.Advisor, error) {
	if !cfg.UsesAdvisor() {
		return nil, nil
	}
	p, err := advisor.ForProvider(cfg.LLMProvider, cfg.ProviderOptions())
	if err != nil {
		return nil, err
	}
	log.Info("llm advisor enabled",
		"provider", p.Name(),
		"strategy", cfg.LLMStrategy,
		"validate", cfg.LLMValidate,
	)
	return advisor.New(WithRetry(p, log), stats, log), nil
}

// OptionsFromConfig returns the default chunking options for cfg.
func OptionsFromConfig(cfg config.Config, est chunker.Estimator) Options {
	return Options{
		Config:   cfg.ChunkConfig(est),
		Strategy: cfg.LLMStrategy,
		Validate: cfg.LLMValidate,
		Language: cfg.Language,
	}
}

// OpenSink returns the configured persistence collaborator: pathstore when a
// URL is set, else SQLite when a path is set, else the output directory.
// The returned close function is never nil.
func OpenSink(cfg config.Config, est chunker.Estimator, log *slog.Logger) (Sink, func(), error) {
	switch {
	case cfg.PathstoreURL != "":
		s := pathstore.NewSink(pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey), cfg.PathstorePrefix)
		log.Info("storing chunks in pathstore", "url", cfg.PathstoreURL, "prefix", cfg.PathstorePrefix)
		return s, s.Close, nil
	case cfg.SQLitePath != "":
		s, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite sink: %w", err)
		}
		log.Info("storing chunks in sqlite", "path", cfg.SQLitePath)
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn("close sqlite sink", "error", err)
			}
		}, nil
	default:
		log.Info("storing chunks on disk", "dir", cfg.OutputDir)
		return store.NewFileStore(cfg.OutputDir, est), func() {}, nil
	}
}
