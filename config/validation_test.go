package config

import (
	"strings"
	"testing"
)

func TestValidateProviderConfig(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		apiKey      string
		model       string
		temperature float64
		wantErr     bool
	}{
		{"openai ok", "openai", "sk-test", "gpt-4o-mini", 0.7, false},
		{"ollama without key", "ollama", "", "student_agent", 0.7, false},
		{"openai without key", "openai", "", "gpt-4o-mini", 0.7, true},
		{"unknown provider", "grok", "key", "model", 0.7, true},
		{"missing model", "claude", "key", "", 0.7, true},
		{"temperature too high", "ollama", "", "m", 2.5, true},
	}

	for _, tt := range tests {
		err := ValidateProviderConfig(tt.provider, tt.apiKey, tt.model, tt.temperature)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: error = %v, wantErr = %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateRetrieverConfig(t *testing.T) {
	if err := ValidateRetrieverConfig(8, 4); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := ValidateRetrieverConfig(4, 8); err == nil {
		t.Fatalf("rerankTopK above searchTopK should fail")
	}
	if err := ValidateRetrieverConfig(0, 0); err == nil {
		t.Fatalf("zero values should fail")
	}
}

func TestValidateChunkerConfig(t *testing.T) {
	if err := ValidateChunkerConfig("qwen3:4b", 10000); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := ValidateChunkerConfig("", 10000); err == nil {
		t.Fatalf("missing model should fail")
	}
	if err := ValidateChunkerConfig("qwen3:4b", 0); err == nil {
		t.Fatalf("zero token budget should fail")
	}
}

func TestValidatorCollectsAllErrors(t *testing.T) {
	v := NewValidator().
		RequireNonEmpty("a", "").
		RequirePositive("b", -1).
		ValidateOneOf("c", "x", "y", "z")

	if !v.HasErrors() {
		t.Fatalf("expected errors")
	}
	if len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(v.Errors()))
	}

	err := v.Error()
	for _, field := range []string{"a", "b", "c"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("combined error missing field %q: %v", field, err)
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv(envPrefix+"MODEL", "exam_model")
	t.Setenv(envPrefix+"SEARCH_TOP_K", "16")
	t.Setenv(envPrefix+"TEMPERATURE", "0.3")

	cfg := Load()
	if cfg.Model != "exam_model" {
		t.Fatalf("unexpected model: %q", cfg.Model)
	}
	if cfg.SearchTopK != 16 {
		t.Fatalf("unexpected searchTopK: %d", cfg.SearchTopK)
	}
	if cfg.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.RerankTopK != 4 {
		t.Fatalf("default rerankTopK should survive: %d", cfg.RerankTopK)
	}
}
