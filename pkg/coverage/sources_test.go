/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sources_test.go
Description: Tests for the coverage backends. Covers the factory, the
user-reported source's collection window semantics, and the placeholder
backends.
*/

package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// TestNewSourceFactory tests backend selection per coverage type
func TestNewSourceFactory(t *testing.T) {
	source, err := NewSource(interfaces.CoverageUser)
	require.NoError(t, err)
	assert.IsType(t, &UserSource{}, source)

	source, err = NewSource(interfaces.CoverageHardware)
	require.NoError(t, err)
	assert.NotNil(t, source)

	source, err = NewSource(interfaces.CoverageBreakpoint)
	require.NoError(t, err)
	assert.NotNil(t, source)

	source, err = NewSource(interfaces.CoverageNone)
	require.NoError(t, err)
	assert.Nil(t, source)

	_, err = NewSource(interfaces.CoverageType(99))
	assert.Error(t, err)
}

// TestUserSourceLifecycle tests enable, collection windows, and disable
func TestUserSourceLifecycle(t *testing.T) {
	source := NewUserSource()
	require.NoError(t, source.Initialize("demo"))
	assert.False(t, source.IsEnabled())

	// collection cannot start before enable
	assert.Error(t, source.StartCollection())

	require.NoError(t, source.Enable(interfaces.CoverageUser))
	assert.True(t, source.IsEnabled())
	require.NoError(t, source.StartCollection())

	source.Report([]uint64{1, 2, 3})
	info := source.Snapshot()
	assert.Equal(t, uint64(3), info.TotalBlocks)

	require.NoError(t, source.StopCollection())
	require.NoError(t, source.Disable())
	assert.False(t, source.IsEnabled())
}

// TestUserSourceRejectsOtherTypes tests the enable type check
func TestUserSourceRejectsOtherTypes(t *testing.T) {
	source := NewUserSource()
	assert.Error(t, source.Enable(interfaces.CoverageHardware))
	assert.Error(t, source.Enable(interfaces.CoverageBreakpoint))
}

// TestUserSourceDropsReportsOutsideWindow tests that reports only count
// while collecting
func TestUserSourceDropsReportsOutsideWindow(t *testing.T) {
	source := NewUserSource()
	require.NoError(t, source.Enable(interfaces.CoverageUser))

	source.Report([]uint64{10})
	assert.Equal(t, uint64(0), source.Snapshot().TotalBlocks)

	require.NoError(t, source.StartCollection())
	source.Report([]uint64{10})
	require.NoError(t, source.StopCollection())
	source.Report([]uint64{20})

	info := source.Snapshot()
	assert.Equal(t, uint64(1), info.TotalBlocks)
	assert.Equal(t, []uint64{10}, info.HitAddresses)
}

// TestUserSourceTracksNewBlocks tests per-report fresh accounting
func TestUserSourceTracksNewBlocks(t *testing.T) {
	source := NewUserSource()
	require.NoError(t, source.Enable(interfaces.CoverageUser))
	require.NoError(t, source.StartCollection())

	source.Report([]uint64{1, 2})
	assert.Equal(t, uint64(2), source.Snapshot().NewBlocks)

	source.Report([]uint64{2, 3})
	info := source.Snapshot()
	assert.Equal(t, uint64(1), info.NewBlocks)
	assert.Equal(t, uint64(3), info.TotalBlocks)
}

// TestUserSourceReset tests that reset clears the hit set
func TestUserSourceReset(t *testing.T) {
	source := NewUserSource()
	require.NoError(t, source.Enable(interfaces.CoverageUser))
	require.NoError(t, source.StartCollection())
	source.Report([]uint64{5})

	source.Reset()
	assert.Equal(t, uint64(0), source.Snapshot().TotalBlocks)
}

// TestPlaceholderSourceConforms tests the no-op backend contract
func TestPlaceholderSourceConforms(t *testing.T) {
	source, err := NewSource(interfaces.CoverageHardware)
	require.NoError(t, err)

	require.NoError(t, source.Initialize("demo"))
	require.NoError(t, source.Enable(interfaces.CoverageHardware))
	assert.True(t, source.IsEnabled())
	require.NoError(t, source.StartCollection())
	require.NoError(t, source.StopCollection())

	info := source.Snapshot()
	require.NotNil(t, info)
	assert.Equal(t, uint64(0), info.TotalBlocks)

	require.NoError(t, source.Disable())
	assert.False(t, source.IsEnabled())
}
