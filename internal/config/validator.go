package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateServer(&cfg.Server)
	v.validateGrading(&cfg.Grading)
	v.validateSimilarity(&cfg.Similarity)
	v.validateGemini(&cfg.Gemini)
	v.validateStore(&cfg.Store)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"auto": true, "text": true, "json": true,
	}
	if !validFormats[cfg.Format] {
		v.addError("log.format", cfg.Format, "must be one of: auto, text, json")
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", cfg.Port, "must be between 1 and 65535")
	}
	v.validateDuration("server.request_timeout", cfg.RequestTimeout)
	v.validateDuration("server.shutdown_timeout", cfg.ShutdownTimeout)
}

func (v *Validator) validateGrading(cfg *GradingConfig) {
	if cfg.AgreementThreshold < 1 || cfg.AgreementThreshold > 100 {
		v.addError("grading.agreement_threshold", cfg.AgreementThreshold, "must be between 1 and 100")
	}
	if cfg.BatchConcurrency < 1 {
		v.addError("grading.batch_concurrency", cfg.BatchConcurrency, "must be at least 1")
	}
}

func (v *Validator) validateSimilarity(cfg *SimilarityConfig) {
	if cfg.ModelPath == "" {
		v.addError("similarity.model_path", cfg.ModelPath, "must not be empty")
	}
	if cfg.TokenizerPath == "" {
		v.addError("similarity.tokenizer_path", cfg.TokenizerPath, "must not be empty")
	}
	if cfg.MaxSeqLen < 16 || cfg.MaxSeqLen > 8192 {
		v.addError("similarity.max_seq_len", cfg.MaxSeqLen, "must be between 16 and 8192")
	}
}

func (v *Validator) validateGemini(cfg *GeminiConfig) {
	if cfg.Model == "" {
		v.addError("gemini.model", cfg.Model, "must not be empty")
	}
	if cfg.Endpoint == "" {
		v.addError("gemini.endpoint", cfg.Endpoint, "must not be empty")
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		v.addError("gemini.max_retries", cfg.MaxRetries, "must be between 0 and 10")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		v.addError("gemini.temperature", cfg.Temperature, "must be between 0 and 2")
	}
	v.validateDuration("gemini.timeout", cfg.Timeout)
}

func (v *Validator) validateStore(cfg *StoreConfig) {
	validBackends := map[string]bool{
		"sqlite": true, "memory": true, "auto": true,
	}
	if !validBackends[cfg.Backend] {
		v.addError("store.backend", cfg.Backend, "must be one of: sqlite, memory, auto")
	}
	if (cfg.Backend == "sqlite" || cfg.Backend == "auto") && cfg.Path == "" {
		v.addError("store.path", cfg.Path, "must not be empty for sqlite backend")
	}
}

func (v *Validator) validateDuration(field, value string) {
	if value == "" {
		return
	}
	if _, err := time.ParseDuration(value); err != nil {
		v.addError(field, value, "must be a valid duration like 30s or 2m")
	}
}
