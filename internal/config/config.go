package config

// Config holds all application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Grading    GradingConfig    `mapstructure:"grading"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Store      StoreConfig      `mapstructure:"store"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	RequestTimeout  string   `mapstructure:"request_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

// GradingConfig configures the reconciliation engine.
type GradingConfig struct {
	// AgreementThreshold is the maximum difference, in grade points, at
	// which the two grading signals still average.
	AgreementThreshold int `mapstructure:"agreement_threshold"`
	// HybridEnabled toggles the similarity signal globally. When false,
	// every submission is graded with Gemini alone.
	HybridEnabled bool `mapstructure:"hybrid_enabled"`
	// BatchConcurrency bounds parallel submissions in batch grading.
	BatchConcurrency int `mapstructure:"batch_concurrency"`
}

// SimilarityConfig configures the embedding model.
type SimilarityConfig struct {
	// ModelPath is the base ONNX model. FineTunedPath, when present on
	// disk, is preferred over it.
	ModelPath     string `mapstructure:"model_path"`
	FineTunedPath string `mapstructure:"fine_tuned_path"`
	TokenizerPath string `mapstructure:"tokenizer_path"`
	// OrtLibrary is the ONNX Runtime shared library location.
	OrtLibrary string `mapstructure:"ort_library"`
	MaxSeqLen  int    `mapstructure:"max_seq_len"`
	PreferGPU  bool   `mapstructure:"prefer_gpu"`
	// WatchFineTuned enables hot-swapping to the fine-tuned model when
	// its file appears or changes.
	WatchFineTuned bool `mapstructure:"watch_fine_tuned"`
}

// GeminiConfig configures the generative grader.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Endpoint    string  `mapstructure:"endpoint"`
	Timeout     string  `mapstructure:"timeout"`
	MaxRetries  int     `mapstructure:"max_retries"`
	Temperature float64 `mapstructure:"temperature"`
}

// StoreConfig configures grade persistence.
type StoreConfig struct {
	// Backend selects the storage backend: sqlite, memory or auto.
	// Auto tries sqlite and falls back to memory.
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	// SnapshotPath is where the memory backend persists its records.
	SnapshotPath string `mapstructure:"snapshot_path"`
}
