// Package state persists the watcher's per-subtree seen-id sets as a
// flat JSON snapshot, rewritten after every cycle.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
)

// Subtree is the durable record for one monitored folder, keyed in the
// snapshot by the folder's resolved id.
type Subtree struct {
	Label   string   `json:"label"`
	SeenIDs []string `json:"seen_ids"`
}

type snapshot struct {
	Subtrees map[string]Subtree `json:"subtrees"`
}

// Store holds the watch state and its on-disk snapshot path. Reads and
// in-memory updates may come from the watcher while startup code calls
// Len; the mutex keeps the map consistent.
type Store struct {
	path string

	mu       sync.RWMutex
	subtrees map[string]Subtree
}

// New creates a store persisting to path. Call Load once at startup.
func New(path string) *Store {
	return &Store{path: path, subtrees: make(map[string]Subtree)}
}

// Load reads the snapshot from disk. A missing or corrupt file means
// starting from empty state: the next cycle re-announces recent
// entries rather than the process refusing to boot. Only an unreadable
// file surfaces an error, and callers treat that as a warning too.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Info("no watch state file, starting fresh", zap.String("path", s.path))
			return nil
		}
		return fmt.Errorf("read watch state: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logging.Warn("corrupt watch state file, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Subtrees != nil {
		s.subtrees = snap.Subtrees
	}
	logging.Info("watch state loaded",
		zap.String("path", s.path),
		zap.Int("subtrees", len(s.subtrees)),
	)
	return nil
}

// Save rewrites the snapshot atomically (temp file then rename), so a
// crash mid-write leaves the previous snapshot intact. A failed save
// is retried implicitly: the next cycle rewrites the whole file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(snapshot{Subtrees: s.subtrees}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		metrics.RecordStatePersist(false)
		return fmt.Errorf("encode watch state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			metrics.RecordStatePersist(false)
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		metrics.RecordStatePersist(false)
		return fmt.Errorf("write watch state: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		metrics.RecordStatePersist(false)
		return fmt.Errorf("rename watch state: %w", err)
	}

	metrics.RecordStatePersist(true)
	return nil
}

// SeenIDs returns a copy of the seen-id set for a subtree. An unknown
// key yields an empty set, which the detector reads as "everything is
// new".
func (s *Store) SeenIDs(key string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.subtrees[key]
	if !ok {
		return map[string]struct{}{}
	}
	seen := make(map[string]struct{}, len(st.SeenIDs))
	for _, id := range st.SeenIDs {
		seen[id] = struct{}{}
	}
	return seen
}

// Replace swaps a subtree's seen set wholesale at the end of a cycle.
// Ids are stored sorted so consecutive snapshots diff cleanly.
func (s *Store) Replace(key, label string, ids map[string]struct{}) {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtrees[key] = Subtree{Label: label, SeenIDs: sorted}
}

// Len reports the number of tracked subtrees.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subtrees)
}
