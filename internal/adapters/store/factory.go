package store

import (
	"fmt"

	"github.com/gradepilot/gradepilot/internal/config"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/logging"
)

// NewStore creates a grade store for the configured backend.
//
// The auto backend mirrors the degrade path of the grading engine itself:
// try SQLite, and when it cannot be opened fall back to the in-memory store
// with a JSON snapshot, so grading keeps working on a broken disk setup.
func NewStore(cfg config.StoreConfig, log *logging.Logger) (core.GradeStore, error) {
	log = log.WithComponent("store")

	switch cfg.Backend {
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info("grade store ready", "backend", "sqlite", "path", cfg.Path)
		return s, nil

	case "memory":
		s, err := NewMemoryStore(WithSnapshotPath(cfg.SnapshotPath))
		if err != nil {
			return nil, err
		}
		log.Info("grade store ready", "backend", "memory", "snapshot", cfg.SnapshotPath)
		return s, nil

	case "auto", "":
		s, err := NewSQLiteStore(cfg.Path)
		if err == nil {
			log.Info("grade store ready", "backend", "sqlite", "path", cfg.Path)
			return s, nil
		}
		log.Warn("sqlite unavailable, falling back to memory store", "error", err)

		mem, memErr := NewMemoryStore(WithSnapshotPath(cfg.SnapshotPath))
		if memErr != nil {
			return nil, memErr
		}
		return mem, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
