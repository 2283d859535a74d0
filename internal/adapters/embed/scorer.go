package embed

import (
	"context"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/gradepilot/gradepilot/internal/config"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/logging"
)

// textEncoder abstracts the ONNX encoder for testing.
type textEncoder interface {
	Encode(text string) ([]float32, error)
	Device() string
	ModelPath() string
	Close() error
}

// ScorerStatus describes the similarity model for status reporting.
type ScorerStatus struct {
	Loaded    bool   `json:"loaded"`
	Device    string `json:"device,omitempty"`
	ModelPath string `json:"model_path,omitempty"`
	FineTuned bool   `json:"fine_tuned"`
	LoadError string `json:"load_error,omitempty"`
}

// Scorer computes cosine similarity between an answer key and a student
// answer using sentence embeddings. The model loads lazily on first use; a
// load failure is remembered until Reload, so every submission meanwhile
// degrades to Gemini-only grading instead of re-paying the failed load.
type Scorer struct {
	cfg config.SimilarityConfig
	log *logging.Logger

	// newEncoder is swapped in tests.
	newEncoder func(EncoderConfig) (textEncoder, error)

	mu        sync.Mutex
	enc       textEncoder
	fineTuned bool
	loaded    bool
	loadErr   error
}

// NewScorer creates a similarity scorer. The model is not loaded until the
// first Score or Warm call.
func NewScorer(cfg config.SimilarityConfig, log *logging.Logger) *Scorer {
	return &Scorer{
		cfg: cfg,
		log: log.WithComponent("similarity"),
		newEncoder: func(ec EncoderConfig) (textEncoder, error) {
			return NewEncoder(ec)
		},
	}
}

// Score implements core.SimilarityScorer.
func (s *Scorer) Score(ctx context.Context, answerKey, studentAnswer string) (float64, error) {
	key := normalizeText(answerKey)
	answer := normalizeText(studentAnswer)
	// Blank text is a valid degenerate input, not an error: it matches
	// nothing, so it scores at the similarity floor.
	if key == "" || answer == "" {
		return 0, nil
	}

	enc, err := s.encoder()
	if err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	keyVec, err := enc.Encode(key)
	if err != nil {
		return 0, embeddingError("encoding answer key", err)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	answerVec, err := enc.Encode(answer)
	if err != nil {
		return 0, embeddingError("encoding student answer", err)
	}

	sim, ok := cosine(keyVec, answerVec)
	if !ok {
		return 0, embeddingError("degenerate embedding", nil)
	}
	return sim, nil
}

// Available implements core.SimilarityScorer. It reports on the loaded state
// without triggering a load.
func (s *Scorer) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded && s.enc != nil
}

// Warm loads the model eagerly. Called at startup so the first submission
// does not pay the load cost.
func (s *Scorer) Warm() error {
	_, err := s.encoder()
	return err
}

// Reload drops the current encoder so the next use loads fresh. The watcher
// calls this when a fine-tuned model lands on disk.
func (s *Scorer) Reload() {
	s.mu.Lock()
	old := s.enc
	s.enc = nil
	s.loaded = false
	s.loadErr = nil
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.log.Warn("closing previous encoder", "error", err)
		}
	}
	s.log.Info("similarity model marked for reload")
}

// Status reports the current model state.
func (s *Scorer) Status() ScorerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := ScorerStatus{
		Loaded:    s.loaded && s.enc != nil,
		FineTuned: s.fineTuned,
	}
	if s.enc != nil {
		st.Device = s.enc.Device()
		st.ModelPath = s.enc.ModelPath()
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	return st
}

// Close releases the encoder.
func (s *Scorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		err := s.enc.Close()
		s.enc = nil
		s.loaded = false
		return err
	}
	return nil
}

func (s *Scorer) encoder() (textEncoder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		if s.enc == nil {
			return nil, core.ErrModelUnavailable("similarity model failed to load").WithCause(s.loadErr)
		}
		return s.enc, nil
	}

	modelPath, fineTuned := s.pickModelPath()
	enc, err := s.newEncoder(EncoderConfig{
		OrtLibrary:    s.cfg.OrtLibrary,
		ModelPath:     modelPath,
		TokenizerPath: s.cfg.TokenizerPath,
		MaxSeqLen:     s.cfg.MaxSeqLen,
		PreferGPU:     s.cfg.PreferGPU,
	})

	s.loaded = true
	if err != nil {
		s.loadErr = err
		s.log.Warn("similarity model unavailable", "model", modelPath, "error", err)
		return nil, core.ErrModelUnavailable("similarity model failed to load").WithCause(err)
	}

	s.enc = enc
	s.fineTuned = fineTuned
	s.log.Info("similarity model loaded",
		"model", modelPath,
		"device", enc.Device(),
		"fine_tuned", fineTuned)
	return enc, nil
}

// pickModelPath prefers the fine-tuned model when its file exists.
func (s *Scorer) pickModelPath() (string, bool) {
	if s.cfg.FineTunedPath != "" {
		if info, err := os.Stat(s.cfg.FineTunedPath); err == nil && !info.IsDir() {
			return s.cfg.FineTunedPath, true
		}
	}
	return s.cfg.ModelPath, false
}

func embeddingError(msg string, cause error) *core.DomainError {
	err := &core.DomainError{
		Category: core.ErrCatModel,
		Code:     core.CodeEmbeddingFailed,
		Message:  msg,
	}
	return err.WithCause(cause)
}

// normalizeText applies NFKC normalization and collapses whitespace, so the
// embedding is stable across full-width characters and formatting noise.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(text)), " ")
}

// cosine returns the cosine similarity of two vectors, computed in float64.
// ok is false when either vector has zero magnitude.
func cosine(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
