package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "GRADEPILOT",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "GRADEPILOT",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (GRADEPILOT_*)
// 3. Project config (.gradepilot.yaml in current directory)
// 4. User config (~/.config/gradepilot/config.yaml)
// 5. Defaults
//
// A .env file in the current directory is loaded into the environment first,
// so GRADEPILOT_GEMINI_API_KEY and friends can live there during development.
func (l *Loader) Load() (*Config, error) {
	_ = godotenv.Load()

	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".gradepilot")
		l.v.SetConfigType("yaml")

		// Project config takes precedence over user config
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "gradepilot"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	// Log defaults
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	// Server defaults
	l.v.SetDefault("server.host", "0.0.0.0")
	l.v.SetDefault("server.port", 8000)
	l.v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	l.v.SetDefault("server.request_timeout", "120s")
	l.v.SetDefault("server.shutdown_timeout", "10s")

	// Grading defaults
	l.v.SetDefault("grading.agreement_threshold", 15)
	l.v.SetDefault("grading.hybrid_enabled", true)
	l.v.SetDefault("grading.batch_concurrency", 4)

	// Similarity model defaults
	l.v.SetDefault("similarity.model_path", "models/all-MiniLM-L6-v2/model.onnx")
	l.v.SetDefault("similarity.fine_tuned_path", "models/minilm-finetuned/model.onnx")
	l.v.SetDefault("similarity.tokenizer_path", "models/all-MiniLM-L6-v2/tokenizer.json")
	l.v.SetDefault("similarity.ort_library", "")
	l.v.SetDefault("similarity.max_seq_len", 256)
	l.v.SetDefault("similarity.prefer_gpu", true)
	l.v.SetDefault("similarity.watch_fine_tuned", true)

	// Gemini defaults. The api_key default registers the key so the
	// GRADEPILOT_GEMINI_API_KEY environment variable binds through
	// AutomaticEnv.
	l.v.SetDefault("gemini.api_key", "")
	l.v.SetDefault("gemini.model", "gemini-2.0-flash")
	l.v.SetDefault("gemini.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	l.v.SetDefault("gemini.timeout", "60s")
	l.v.SetDefault("gemini.max_retries", 2)
	l.v.SetDefault("gemini.temperature", 0.2)

	// Store defaults
	l.v.SetDefault("store.backend", "auto")
	l.v.SetDefault("store.path", ".gradepilot/grades.db")
	l.v.SetDefault("store.snapshot_path", ".gradepilot/grades.json")
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Get returns a configuration value by key.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// Set sets a configuration value.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// IsSet checks if a key has been set.
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// AllSettings returns all settings as a map.
func (l *Loader) AllSettings() map[string]interface{} {
	return l.v.AllSettings()
}
