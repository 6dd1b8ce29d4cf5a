/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: coverage_test.go
Description: Tests for the coverage tracker. Covers merge accounting,
idempotence, snapshot percentages, and concurrent merging.
*/

package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrackerMergeCountsFresh tests that only unseen blocks count as new
func TestTrackerMergeCountsFresh(t *testing.T) {
	tracker := NewCoverageTracker(0)

	assert.Equal(t, uint64(3), tracker.Merge([]uint64{1, 2, 3}))
	assert.Equal(t, uint64(1), tracker.Merge([]uint64{2, 3, 4}))
	assert.Equal(t, uint64(0), tracker.Merge([]uint64{1, 4}))
	assert.Equal(t, uint64(4), tracker.Total())
}

// TestTrackerMergeIdempotent tests that remerging a sample adds nothing
func TestTrackerMergeIdempotent(t *testing.T) {
	tracker := NewCoverageTracker(0)
	sample := []uint64{10, 20, 30, 40}

	first := tracker.Merge(sample)
	second := tracker.Merge(sample)
	assert.Equal(t, uint64(4), first)
	assert.Equal(t, uint64(0), second)
	assert.Equal(t, uint64(4), tracker.Total())
}

// TestTrackerMergeDuplicatesWithinSample tests in-sample deduplication
func TestTrackerMergeDuplicatesWithinSample(t *testing.T) {
	tracker := NewCoverageTracker(0)
	assert.Equal(t, uint64(2), tracker.Merge([]uint64{7, 7, 7, 9}))
}

// TestTrackerSnapshot tests the snapshot fields and hit address set
func TestTrackerSnapshot(t *testing.T) {
	tracker := NewCoverageTracker(0)
	tracker.Merge([]uint64{100, 200})

	info := tracker.Snapshot()
	require.NotNil(t, info)
	assert.Equal(t, uint64(2), info.TotalBlocks)
	assert.Equal(t, uint64(2), info.NewBlocks)
	assert.ElementsMatch(t, []uint64{100, 200}, info.HitAddresses)
	assert.Equal(t, float64(0), info.Percentage)
}

// TestTrackerSnapshotPercentage tests coverage percent against a known
// universe size
func TestTrackerSnapshotPercentage(t *testing.T) {
	tracker := NewCoverageTracker(200)
	tracker.Merge([]uint64{1, 2, 3, 4})

	info := tracker.Snapshot()
	assert.InDelta(t, 2.0, info.Percentage, 0.001)
}

// TestTrackerContains tests membership queries
func TestTrackerContains(t *testing.T) {
	tracker := NewCoverageTracker(0)
	tracker.Merge([]uint64{55})
	assert.True(t, tracker.Contains(55))
	assert.False(t, tracker.Contains(56))
}

// TestTrackerReset tests that reset clears accumulated state
func TestTrackerReset(t *testing.T) {
	tracker := NewCoverageTracker(0)
	tracker.Merge([]uint64{1, 2})
	tracker.Reset()
	assert.Equal(t, uint64(0), tracker.Total())
	assert.Equal(t, uint64(2), tracker.Merge([]uint64{1, 2}))
}

// TestTrackerConcurrentMerge tests that parallel merges account every
// block exactly once
func TestTrackerConcurrentMerge(t *testing.T) {
	tracker := NewCoverageTracker(0)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var freshTotal uint64

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				fresh := tracker.Merge([]uint64{uint64(i)})
				mu.Lock()
				freshTotal += fresh
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, uint64(100), tracker.Total())
	assert.Equal(t, uint64(100), freshTotal)
}
