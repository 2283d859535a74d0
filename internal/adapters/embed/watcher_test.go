package embed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gradepilot/gradepilot/internal/config"
	"github.com/gradepilot/gradepilot/internal/logging"
)

func TestWatcherReloadsOnModelWrite(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.onnx")

	var loads atomic.Int32
	scorer := NewScorer(config.SimilarityConfig{
		ModelPath:     "base.onnx",
		FineTunedPath: modelPath,
	}, logging.NewNop())
	scorer.newEncoder = func(cfg EncoderConfig) (textEncoder, error) {
		loads.Add(1)
		return &fakeEncoder{model: cfg.ModelPath}, nil
	}

	if err := scorer.Warm(); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if got := loads.Load(); got != 1 {
		t.Fatalf("expected initial load, got %d", got)
	}

	w := NewWatcher(modelPath, scorer, logging.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watch time to establish, then drop the model file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(modelPath, []byte("weights"), 0o600); err != nil {
		t.Fatalf("writing model: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for loads.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("watcher never reloaded, loads=%d", loads.Load())
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.onnx")

	var loads atomic.Int32
	scorer := NewScorer(config.SimilarityConfig{
		ModelPath:     "base.onnx",
		FineTunedPath: modelPath,
	}, logging.NewNop())
	scorer.newEncoder = func(cfg EncoderConfig) (textEncoder, error) {
		loads.Add(1)
		return &fakeEncoder{}, nil
	}

	w := NewWatcher(modelPath, scorer, logging.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "training.log"), []byte("epoch 1"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := loads.Load(); got != 0 {
		t.Fatalf("unrelated file should not trigger reload, loads=%d", got)
	}
}
