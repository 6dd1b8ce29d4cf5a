/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: coverage.go
Description: Global coverage tracker for the Kyra Fuzzer. Merges per-execution
samples of 64-bit program-counter identifiers into a session-wide set and
reports how many identifiers each sample contributed for the first time.
*/

package core

import (
	"sync"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// CoverageTracker accumulates every coverage identifier seen this session.
// The set only grows; Reset is intended for session restart, never mid-run.
type CoverageTracker struct {
	mu          sync.Mutex
	global      map[uint64]struct{}
	lastSample  uint64
	lastNew     uint64
	universeSz  uint64
}

// NewCoverageTracker creates an empty tracker. universeSize may be zero when
// the backend has no notion of total reachable blocks; the percentage field
// of snapshots is then zero.
func NewCoverageTracker(universeSize uint64) *CoverageTracker {
	return &CoverageTracker{
		global:     make(map[uint64]struct{}),
		universeSz: universeSize,
	}
}

// Merge folds sample into the global set and returns the number of
// identifiers not seen before this call. Atomic per call: two concurrent
// merges with overlapping new identifiers jointly report the correct total.
func (t *CoverageTracker) Merge(sample []uint64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fresh uint64
	for _, id := range sample {
		if _, seen := t.global[id]; !seen {
			t.global[id] = struct{}{}
			fresh++
		}
	}
	t.lastSample = uint64(len(sample))
	t.lastNew = fresh
	return fresh
}

// Snapshot returns a read-only view of accumulated coverage
func (t *CoverageTracker) Snapshot() *interfaces.CoverageInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	addresses := make([]uint64, 0, len(t.global))
	for id := range t.global {
		addresses = append(addresses, id)
	}
	info := &interfaces.CoverageInfo{
		TotalBlocks:  uint64(len(t.global)),
		EdgesSeen:    t.lastSample,
		NewBlocks:    t.lastNew,
		HitAddresses: addresses,
	}
	if t.universeSz > 0 {
		info.Percentage = float64(len(t.global)) / float64(t.universeSz) * 100.0
	}
	return info
}

// Contains reports whether id is in the global set
func (t *CoverageTracker) Contains(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.global[id]
	return ok
}

// Total returns the size of the global set
func (t *CoverageTracker) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return uint64(len(t.global))
}

// Reset clears all accumulated state
func (t *CoverageTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.global = make(map[uint64]struct{})
	t.lastSample = 0
	t.lastNew = 0
}
