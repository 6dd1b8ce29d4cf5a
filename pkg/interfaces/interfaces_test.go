/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces_test.go
Description: Tests for the shared data model. Covers configuration
validation and defaults, the enum string and parse functions, and the
timeout conversion.
*/

package interfaces

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig tests the documented default values
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, uint64(1000000), config.MaxIterations)
	assert.Equal(t, uint32(5000), config.TimeoutMs)
	assert.Equal(t, 8, config.WorkerThreads)
	assert.Equal(t, 65536, config.MaxInputSize)
	assert.Equal(t, "corpus", config.CorpusDir)
	assert.Equal(t, "crashes", config.CrashesDir)
	assert.Equal(t, "logs", config.LogsDir)
	assert.True(t, config.MinimizeCorpus)
	assert.True(t, config.DeduplicateCrashes)
	assert.True(t, config.CollectCoverage)
	assert.Equal(t, CoverageUser, config.CoverageType)
}

// TestValidateFillsDefaults tests that zero fields pick up defaults
func TestValidateFillsDefaults(t *testing.T) {
	config := FuzzConfig{}
	require.NoError(t, config.Validate())
	assert.Equal(t, DefaultConfig().MaxIterations, config.MaxIterations)
	assert.Equal(t, DefaultConfig().WorkerThreads, config.WorkerThreads)
	assert.Equal(t, "corpus", config.CorpusDir)
}

// TestValidateWorkerBounds tests the worker thread range check
func TestValidateWorkerBounds(t *testing.T) {
	config := DefaultConfig()
	config.WorkerThreads = 64
	assert.NoError(t, config.Validate())

	config.WorkerThreads = 65
	assert.Error(t, config.Validate())

	config.WorkerThreads = -1
	assert.Error(t, config.Validate())
}

// TestValidateInputSize tests the positive input size check
func TestValidateInputSize(t *testing.T) {
	config := DefaultConfig()
	config.MaxInputSize = -5
	assert.Error(t, config.Validate())
}

// TestTimeoutConversion tests millisecond to duration conversion
func TestTimeoutConversion(t *testing.T) {
	config := FuzzConfig{TimeoutMs: 1500}
	assert.Equal(t, 1500*time.Millisecond, config.Timeout())
}

// TestClassificationString tests outcome tag names
func TestClassificationString(t *testing.T) {
	assert.Equal(t, "success", ClassSuccess.String())
	assert.Equal(t, "no-new-coverage", ClassNoNewCoverage.String())
	assert.Equal(t, "crash", ClassCrash.String())
	assert.Equal(t, "hang", ClassHang.String())
	assert.Equal(t, "error", ClassError.String())
	assert.Equal(t, "unknown", Classification(42).String())
}

// TestMutationStrategyRoundTrip tests name parsing against String
func TestMutationStrategyRoundTrip(t *testing.T) {
	for _, strategy := range []MutationStrategy{
		StrategyRandom, StrategyDeterministic, StrategyDictionary,
		StrategyHavoc, StrategySplice,
	} {
		parsed, err := ParseMutationStrategy(strategy.String())
		require.NoError(t, err)
		assert.Equal(t, strategy, parsed)
	}
	_, err := ParseMutationStrategy("quantum")
	assert.Error(t, err)
}

// TestCoverageTypeRoundTrip tests name parsing against String
func TestCoverageTypeRoundTrip(t *testing.T) {
	for _, coverageType := range []CoverageType{
		CoverageNone, CoverageUser, CoverageHardware, CoverageBreakpoint,
	} {
		parsed, err := ParseCoverageType(coverageType.String())
		require.NoError(t, err)
		assert.Equal(t, coverageType, parsed)
	}
	_, err := ParseCoverageType("psychic")
	assert.Error(t, err)
}

// TestArchitectureString tests architecture names
func TestArchitectureString(t *testing.T) {
	assert.Equal(t, "x86", ArchX86.String())
	assert.Equal(t, "x64", ArchX64.String())
	assert.Equal(t, "arm", ArchARM.String())
	assert.Equal(t, "arm64", ArchARM64.String())
}
