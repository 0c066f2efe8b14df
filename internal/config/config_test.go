package config

import (
	"testing"
	"time"

	"github.com/bucsfan/sentiment-pipeline/internal/validator"
)

func TestLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("BASE_URL", "http://example.com/")
	t.Setenv("PAGE_NUMBERS", "1, 2,4")
	t.Setenv("LAG_DAYS", "3")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://test.webhook")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.BaseURL != "http://example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.BaseURL)
	}
	if len(cfg.PageNumbers) != 3 || cfg.PageNumbers[2] != 4 {
		t.Errorf("Expected pages [1 2 4], got %v", cfg.PageNumbers)
	}
	if cfg.LagDays != 3 {
		t.Errorf("Expected LagDays 3, got %d", cfg.LagDays)
	}
	if cfg.PublishOffset != 4*time.Hour {
		t.Errorf("Expected default PublishOffset 4h, got %s", cfg.PublishOffset)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Expected default Concurrency 1, got %d", cfg.Concurrency)
	}
	if cfg.S3KeyPrefix != "joebucs" {
		t.Errorf("Expected default S3KeyPrefix joebucs, got %s", cfg.S3KeyPrefix)
	}
	if cfg.Snowflake.Database != "PIPELINE" || cfg.Snowflake.Schema != "JOEBUCS" {
		t.Errorf("Unexpected Snowflake defaults: %+v", cfg.Snowflake)
	}
	if len(cfg.AllowedDomains) != 2 || cfg.AllowedDomains[1] != "www.example.com" {
		t.Errorf("Unexpected AllowedDomains %v", cfg.AllowedDomains)
	}
	if err := validator.New().ValidateStruct(cfg); err != nil {
		t.Errorf("Loaded config failed validation: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://joebucsfan.com" {
		t.Errorf("Expected default base URL, got %s", cfg.BaseURL)
	}
	if len(cfg.PageNumbers) != 3 {
		t.Errorf("Expected default pages [1 2 3], got %v", cfg.PageNumbers)
	}
	if cfg.LagDays != 2 {
		t.Errorf("Expected default LagDays 2, got %d", cfg.LagDays)
	}
	if cfg.Schedule != "0 6 * * *" || cfg.ScheduleTZ != "America/New_York" {
		t.Errorf("Unexpected schedule defaults %q %q", cfg.Schedule, cfg.ScheduleTZ)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
}

func TestLoad_MissingGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return an error when GEMINI_API_KEY is not set")
	}
}

func TestLoad_CohereProvider(t *testing.T) {
	t.Setenv("ANNOTATOR_PROVIDER", "cohere")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("COHERE_API_KEY", "co-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.AnnotatorProvider != ProviderCohere {
		t.Errorf("Expected cohere provider, got %s", cfg.AnnotatorProvider)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative lag", "LAG_DAYS", "-1"},
		{"non-numeric lag", "LAG_DAYS", "two"},
		{"zero page", "PAGE_NUMBERS", "0,1"},
		{"bad page", "PAGE_NUMBERS", "1,x"},
		{"empty pages", "PAGE_NUMBERS", " , "},
		{"bad timeout", "FETCH_TIMEOUT", "soon"},
		{"bad rate", "FETCH_RATE", "fast"},
		{"bad base url", "BASE_URL", "::not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestSnowflake_Enabled(t *testing.T) {
	if (Snowflake{User: "u", Password: "p"}).Enabled() {
		t.Error("Enabled() should be false without account")
	}
	if !(Snowflake{User: "u", Password: "p", Account: "a"}).Enabled() {
		t.Error("Enabled() should be true with full credentials")
	}
}
