/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: crashstore.go
Description: Crash persistence for the Kyra Fuzzer. Writes each crashing
input to the crashes directory under a sequence-and-dedup-key file name,
consulting the in-memory key registry first so only the first crash per
bug ever reaches disk when deduplication is on.
*/

package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// CrashStore persists crash records. Safe for concurrent use from workers.
type CrashStore struct {
	mu          sync.Mutex
	dir         string
	deduplicate bool
	seen        map[string]struct{}
	sequence    uint64
}

// NewCrashStore creates a store writing into dir. When deduplicate is set,
// only the first record per dedup key is written.
func NewCrashStore(dir string, deduplicate bool) *CrashStore {
	return &CrashStore{
		dir:         dir,
		deduplicate: deduplicate,
		seen:        make(map[string]struct{}),
	}
}

// Write persists the record's input bytes as
// crash_<sequence>_<dedup-key>.bin. Returns true when a file was written,
// false when the key was suppressed as a duplicate.
func (s *CrashStore) Write(record *interfaces.CrashRecord) (bool, error) {
	s.mu.Lock()
	if s.deduplicate {
		if _, dup := s.seen[record.DedupKey]; dup {
			s.mu.Unlock()
			return false, nil
		}
	}
	s.seen[record.DedupKey] = struct{}{}
	seq := s.sequence
	s.sequence++
	s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create crashes directory: %w", err)
	}
	name := filepath.Join(s.dir, fmt.Sprintf("crash_%d_%s.bin", seq, record.DedupKey))
	if err := os.WriteFile(name, record.Input, 0644); err != nil {
		return false, fmt.Errorf("failed to write crash file: %w", err)
	}
	return true, nil
}

// UniqueCount returns how many distinct dedup keys have been observed
func (s *CrashStore) UniqueCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
