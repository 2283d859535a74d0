package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "auto"},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			RequestTimeout:  "120s",
			ShutdownTimeout: "10s",
		},
		Grading: GradingConfig{
			AgreementThreshold: 15,
			HybridEnabled:      true,
			BatchConcurrency:   4,
		},
		Similarity: SimilarityConfig{
			ModelPath:     "models/base/model.onnx",
			TokenizerPath: "models/base/tokenizer.json",
			MaxSeqLen:     256,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Timeout:     "60s",
			MaxRetries:  2,
			Temperature: 0.2,
		},
		Store: StoreConfig{
			Backend: "auto",
			Path:    ".gradepilot/grades.db",
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := NewValidator().Validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 99999 }, "server.port"},
		{"bad timeout", func(c *Config) { c.Server.RequestTimeout = "soon" }, "server.request_timeout"},
		{"threshold zero", func(c *Config) { c.Grading.AgreementThreshold = 0 }, "grading.agreement_threshold"},
		{"threshold too high", func(c *Config) { c.Grading.AgreementThreshold = 150 }, "grading.agreement_threshold"},
		{"no concurrency", func(c *Config) { c.Grading.BatchConcurrency = 0 }, "grading.batch_concurrency"},
		{"no model path", func(c *Config) { c.Similarity.ModelPath = "" }, "similarity.model_path"},
		{"no tokenizer", func(c *Config) { c.Similarity.TokenizerPath = "" }, "similarity.tokenizer_path"},
		{"seq len too small", func(c *Config) { c.Similarity.MaxSeqLen = 8 }, "similarity.max_seq_len"},
		{"no gemini model", func(c *Config) { c.Gemini.Model = "" }, "gemini.model"},
		{"negative retries", func(c *Config) { c.Gemini.MaxRetries = -1 }, "gemini.max_retries"},
		{"temperature out of range", func(c *Config) { c.Gemini.Temperature = 3.5 }, "gemini.temperature"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, "store.backend"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = "sqlite"; c.Store.Path = "" }, "store.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := NewValidator().Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error naming %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "loud"
	cfg.Server.Port = 0
	cfg.Store.Backend = "postgres"

	v := NewValidator()
	if err := v.Validate(cfg); err == nil {
		t.Fatal("expected validation errors")
	}
	if len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(v.Errors()), v.Errors())
	}
}

func TestValidateMemoryBackendWithoutPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = "memory"
	cfg.Store.Path = ""

	if err := NewValidator().Validate(cfg); err != nil {
		t.Fatalf("memory backend should not require sqlite path: %v", err)
	}
}
