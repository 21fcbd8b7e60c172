// Package config loads and validates simulation configuration from the
// environment. All variables share the STUDENTAGENTS_ prefix.
package config

import (
	"os"
	"strconv"
)

const envPrefix = "STUDENTAGENTS_"

// Config is the full simulation configuration.
type Config struct {
	// Generation backend
	Provider    string // openai, ollama, claude, gemini
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64

	// Idea extraction
	ChunkerModel string
	TokenBudget  int

	// Retrieval
	SearchTopK int
	RerankTopK int

	// Execution
	MaxConcurrency int
	MaxCalls       int

	// Results
	ResultsPath string
}

// Default returns the configuration used when the environment sets
// nothing: a local Ollama backend and an in-memory vector store.
func Default() *Config {
	return &Config{
		Provider:       "ollama",
		BaseURL:        "http://localhost:11434/v1",
		Model:          "student_agent",
		Temperature:    0.7,
		ChunkerModel:   "qwen3:4b",
		TokenBudget:    10000,
		SearchTopK:     8,
		RerankTopK:     4,
		MaxConcurrency: 10,
		MaxCalls:       1000,
		ResultsPath:    "./results/results.csv",
	}
}

// Load reads configuration from the environment on top of defaults.
func Load() *Config {
	cfg := Default()

	setString(&cfg.Provider, "PROVIDER")
	setString(&cfg.APIKey, "API_KEY")
	setString(&cfg.BaseURL, "BASE_URL")
	setString(&cfg.Model, "MODEL")
	setFloat(&cfg.Temperature, "TEMPERATURE")
	setString(&cfg.ChunkerModel, "CHUNKER_MODEL")
	setInt(&cfg.TokenBudget, "TOKEN_BUDGET")
	setInt(&cfg.SearchTopK, "SEARCH_TOP_K")
	setInt(&cfg.RerankTopK, "RERANK_TOP_K")
	setInt(&cfg.MaxConcurrency, "MAX_CONCURRENCY")
	setInt(&cfg.MaxCalls, "MAX_CALLS")
	setString(&cfg.ResultsPath, "RESULTS_PATH")

	return cfg
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := ValidateProviderConfig(c.Provider, c.APIKey, c.Model, c.Temperature); err != nil {
		return err
	}
	if err := ValidateChunkerConfig(c.ChunkerModel, c.TokenBudget); err != nil {
		return err
	}
	if err := ValidateRetrieverConfig(c.SearchTopK, c.RerankTopK); err != nil {
		return err
	}
	if err := ValidateRunnerConfig(c.MaxConcurrency); err != nil {
		return err
	}
	if err := ValidateCallBudget(c.MaxCalls); err != nil {
		return err
	}
	return NewValidator().
		RequireNonEmpty("resultsPath", c.ResultsPath).
		Error()
}

func setString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
