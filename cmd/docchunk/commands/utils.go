package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

// chunkFlags are the chunking overrides shared by convert and chunk.
type chunkFlags struct {
	minTokens     int
	maxTokens     int
	llmStrategy   bool
	llmValidate   bool
	llmProvider   string
	llmModel      string
	ollamaBaseURL string
}

func (f *chunkFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.minTokens, "min-tokens", 200, "Minimum tokens per chunk")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 1200, "Maximum tokens per chunk")
	cmd.Flags().BoolVar(&f.llmStrategy, "llm-strategy", false, "Ask the LLM to choose the chunking strategy")
	cmd.Flags().BoolVar(&f.llmValidate, "llm-validate", false, "Ask the LLM to review chunk boundaries")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "local", "LLM provider: local, ollama, openai, anthropic")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model (provider default when empty)")
	cmd.Flags().StringVar(&f.ollamaBaseURL, "ollama-base-url", "", "Ollama server URL")
}

// loadConfig reads the environment (and .env) and --config, applies the flags the user
// set, and validates the result.
func loadConfig(cmd *cobra.Command, f *chunkFlags) (config.Config, error) {
	cfg := config.Load()
	if configPath != "" {
		if err := config.LoadFile(configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("min-tokens") {
		cfg.MinTokens = f.minTokens
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if flags.Changed("llm-strategy") {
		cfg.LLMStrategy = f.llmStrategy
	}
	if flags.Changed("llm-validate") {
		cfg.LLMValidate = f.llmValidate
	}
	if flags.Changed("llm-provider") {
		cfg.LLMProvider = f.llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLMModel = f.llmModel
	}
	if flags.Changed("ollama-base-url") {
		cfg.OllamaBaseURL = f.ollamaBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readMarkdown reads path and converts it to Markdown when it is not already.
func readMarkdown(path string, cfg config.Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	conv := pipeline.Converter{PDFFallback: cfg.PDFFallbackPdftotext}
	return conv.Convert(filepath.Base(path), data)
}

// collectInputs returns path itself, or the supported documents directly
// inside it when it is a directory.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !parser.IsSupportedExtension(path) {
			return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(path, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported documents in %s", path)
	}
	return paths, nil
}
