package watcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is the persisted change-detection state: the digest of the last
// spec content seen and when it was recorded. It is overwritten whenever a
// new hash is observed and never deleted on shutdown, so a restarted
// scheduler resumes from the last known hash instead of regenerating
// unconditionally.
type Record struct {
	// Hash is the hex-encoded sha-256 digest of the spec bytes.
	Hash string `json:"hash"`

	// Timestamp is when the hash was recorded, in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// CacheStore reads and writes the cache record file. The scheduler is the
// single writer; access is sequential per cycle, so no locking is needed.
type CacheStore struct {
	path string
	now  func() time.Time
}

// NewCacheStore creates a store backed by the given file path.
func NewCacheStore(path string) *CacheStore {
	return &CacheStore{path: path, now: time.Now}
}

// Load returns the persisted record, or nil when none exists yet.
func (s *CacheStore) Load() (*Record, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(content, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cache record: %w", err)
	}

	return &record, nil
}

// Store persists a new record for hash, stamped with the current time.
func (s *CacheStore) Store(hash string) error {
	record := Record{
		Hash:      hash,
		Timestamp: s.now().UnixMilli(),
	}

	content, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cache record: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write cache record: %w", err)
	}

	return nil
}
