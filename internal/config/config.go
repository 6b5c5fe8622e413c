package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dgallion1/docchunk/internal/advisor"
	"github.com/dgallion1/docchunk/internal/chunker"
)

// Providers lists the accepted LLM_PROVIDER values.
var Providers = []string{"local", "ollama", "openai", "anthropic"}

// Languages lists the accepted LANGUAGE values.
var Languages = []string{"auto", "en", "he"}

type Config struct {
	Port   string `toml:"port"`
	APIKey string `toml:"api_key"`
	Debug  bool   `toml:"debug"`

	// Chunking
	MinTokens      int    `toml:"min_tokens"`
	MaxTokens      int    `toml:"max_tokens"`
	MaxDepth       int    `toml:"max_depth"`
	TokenizerModel string `toml:"tokenizer_model"`
	OutputDir      string `toml:"output_dir"`

	// Advisor
	LLMStrategy     bool          `toml:"llm_strategy"`
	LLMValidate     bool          `toml:"llm_validate"`
	LLMProvider     string        `toml:"llm_provider"`
	LLMModel        string        `toml:"llm_model"`
	LLMTimeout      time.Duration `toml:"llm_timeout"`
	OllamaBaseURL   string        `toml:"ollama_base_url"`
	OpenAIAPIKey    string        `toml:"openai_api_key"`
	AnthropicAPIKey string        `toml:"anthropic_api_key"`
	Language        string        `toml:"language"`

	// Pathstore sink; empty URL means chunks go to OutputDir.
	PathstoreURL    string `toml:"pathstore_url"`
	PathstoreAPIKey string `toml:"pathstore_api_key"`
	PathstorePrefix string `toml:"pathstore_prefix"`

	// SQLite sink; used when set and no pathstore URL is configured.
	SQLitePath string `toml:"sqlite_path"`

	// Worker pool
	WorkerCount  int `toml:"worker_count"`
	MaxQueueSize int `toml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `toml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
}

// Load reads the environment, after loading a .env file from the working
// directory when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cfg := Config{
		Port:   envOr("PORT", "8090"),
		APIKey: os.Getenv("DOCCHUNK_API_KEY"),
		Debug:  envBool("DOCCHUNK_DEBUG", false),

		MinTokens:      envInt("MIN_TOKENS", 200),
		MaxTokens:      envInt("MAX_TOKENS", 1200),
		MaxDepth:       envInt("MAX_DEPTH", chunker.DefaultMaxDepth),
		TokenizerModel: os.Getenv("TOKENIZER_MODEL"),
		OutputDir:      envOr("OUTPUT_DIR", "output"),

		LLMStrategy:     envBool("LLM_STRATEGY", false),
		LLMValidate:     envBool("LLM_VALIDATE", false),
		LLMProvider:     strings.ToLower(envOr("LLM_PROVIDER", "local")),
		LLMModel:        os.Getenv("LLM_MODEL"),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 120*time.Second),
		OllamaBaseURL:   envOr("OLLAMA_BASE_URL", advisor.DefaultOllamaURL),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Language:        strings.ToLower(envOr("LANGUAGE", "auto")),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		PathstorePrefix: envOr("PATHSTORE_PREFIX", "docchunk"),

		SQLitePath: os.Getenv("SQLITE_PATH"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFile overlays the keys present in a TOML file onto cfg.
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
	cfg.Language = strings.ToLower(cfg.Language)
	cfg.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = chunker.DefaultMaxDepth
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 120 * time.Second
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
}

// Validate checks settings shared by the CLI and the server.
func (c Config) Validate() error {
	if c.MinTokens < 1 {
		return fmt.Errorf("MIN_TOKENS must be >= 1, got %d", c.MinTokens)
	}
	if c.MaxTokens < c.MinTokens {
		return fmt.Errorf("MAX_TOKENS (%d) must be >= MIN_TOKENS (%d)", c.MaxTokens, c.MinTokens)
	}
	if !slices.Contains(Providers, c.LLMProvider) {
		return fmt.Errorf("LLM_PROVIDER must be one of %s, got %q", strings.Join(Providers, ", "), c.LLMProvider)
	}
	if !slices.Contains(Languages, c.Language) {
		return fmt.Errorf("LANGUAGE must be one of %s, got %q", strings.Join(Languages, ", "), c.Language)
	}
	if c.UsesAdvisor() {
		switch c.LLMProvider {
		case "openai":
			if c.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
			}
		case "anthropic":
			if c.AnthropicAPIKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
			}
		}
	}
	return nil
}

// ValidateServer adds the checks that only apply to the HTTP service.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCCHUNK_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	if c.PathstoreURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("set only one of PATHSTORE_URL and SQLITE_PATH")
	}
	return nil
}

// UsesAdvisor reports whether either advisory step is enabled.
func (c Config) UsesAdvisor() bool {
	return c.LLMStrategy || c.LLMValidate
}

// ChunkConfig returns the chunker settings. est may be nil.
func (c Config) ChunkConfig(est chunker.Estimator) chunker.Config {
	return chunker.Config{
		MinTokens: c.MinTokens,
		MaxTokens: c.MaxTokens,
		MaxDepth:  c.MaxDepth,
		Estimator: est,
	}
}

// ProviderOptions returns the options for advisor.ForProvider.
func (c Config) ProviderOptions() advisor.Options {
	opts := advisor.Options{Model: c.LLMModel, Timeout: c.LLMTimeout}
	switch c.LLMProvider {
	case "local", "ollama":
		opts.BaseURL = c.OllamaBaseURL
	case "openai":
		opts.APIKey = c.OpenAIAPIKey
	case "anthropic":
		opts.APIKey = c.AnthropicAPIKey
	}
	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
