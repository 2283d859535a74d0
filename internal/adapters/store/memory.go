package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/gradepilot/gradepilot/internal/core"
)

// MemoryStore implements core.GradeStore in memory, the fallback when SQLite
// cannot be opened. With a snapshot path configured, every write persists the
// full record set to a JSON file atomically, so a restart does not lose the
// grading history.
type MemoryStore struct {
	mu           sync.RWMutex
	records      []core.GradeRecord
	snapshotPath string
}

// MemoryStoreOption configures the store.
type MemoryStoreOption func(*MemoryStore)

// WithSnapshotPath enables JSON persistence at path.
func WithSnapshotPath(path string) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.snapshotPath = path
	}
}

// NewMemoryStore creates an in-memory store, restoring any existing snapshot.
func NewMemoryStore(opts ...MemoryStoreOption) (*MemoryStore, error) {
	s := &MemoryStore{records: []core.GradeRecord{}}
	for _, opt := range opts {
		opt(s)
	}

	if s.snapshotPath != "" {
		if err := s.restore(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) restore() error {
	data, err := os.ReadFile(s.snapshotPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", s.snapshotPath, err)
	}
	return nil
}

func (s *MemoryStore) snapshot() error {
	if s.snapshotPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(s.snapshotPath, data, 0o600)
}

// SaveGrade implements core.GradeStore.
func (s *MemoryStore) SaveGrade(_ context.Context, rec *core.GradeRecord) error {
	if rec.ID == "" {
		return core.ErrValidation(core.CodeMissingField, "grade record has no id")
	}
	if !core.ValidGrade(rec.AssignedGrade) {
		return core.ErrValidation(core.CodeInvalidGrade, "grade outside 0-100 scale")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.ID == rec.ID {
			return core.ErrStorage("duplicate grade record id " + rec.ID)
		}
	}
	s.records = append(s.records, *rec)

	if err := s.snapshot(); err != nil {
		// Roll the append back so memory and disk stay consistent.
		s.records = s.records[:len(s.records)-1]
		return core.ErrStorage("persisting snapshot").WithCause(err)
	}
	return nil
}

// ListGrades implements core.GradeStore. Results come back newest first.
func (s *MemoryStore) ListGrades(_ context.Context, filter core.GradeFilter) ([]core.GradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []core.GradeRecord{}
	for i := range s.records {
		if filter.Matches(&s.records[i]) {
			matched = append(matched, s.records[i])
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// CountGrades implements core.GradeStore.
func (s *MemoryStore) CountGrades(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Backend implements core.GradeStore.
func (s *MemoryStore) Backend() string {
	return "memory"
}

// Close implements core.GradeStore.
func (s *MemoryStore) Close() error {
	return nil
}
