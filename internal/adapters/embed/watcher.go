package embed

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gradepilot/gradepilot/internal/logging"
)

// debounce window for model file events. Training jobs write the ONNX file
// in many chunks; a single reload should follow the last write.
const watchDebounce = 2 * time.Second

// Watcher swaps the fine-tuned model in as soon as it lands on disk, without
// a restart.
type Watcher struct {
	path     string
	scorer   *Scorer
	log      *logging.Logger
	debounce time.Duration
}

// NewWatcher watches fineTunedPath for creation or rewrite of the fine-tuned
// model file.
func NewWatcher(fineTunedPath string, scorer *Scorer, log *logging.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(fineTunedPath),
		scorer:   scorer,
		log:      log.WithComponent("model-watcher"),
		debounce: watchDebounce,
	}
}

// Run blocks until ctx is cancelled. The parent directory of the model file
// is created if missing so the watch can be established before any training
// run has produced output.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	w.log.Info("watching for fine-tuned model", "path", w.path)

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.debounce)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			if _, err := os.Stat(w.path); err != nil {
				continue
			}
			w.log.Info("fine-tuned model updated, reloading", "path", w.path)
			w.scorer.Reload()
			if err := w.scorer.Warm(); err != nil {
				w.log.Warn("reload after model update failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("model watch error", "error", err)
		}
	}
}
