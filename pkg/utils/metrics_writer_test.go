/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer_test.go
Description: Tests for the session metrics writer. Covers file naming,
JSON round trip, and target name sanitization.
*/

package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteSessionMetricsRoundTrip tests that the written file decodes back
func TestWriteSessionMetricsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	metrics := &SessionMetrics{
		Target:        "demo",
		StartedAt:     time.Now().Add(-time.Minute),
		FinishedAt:    time.Now(),
		Iterations:    12345,
		Crashes:       7,
		UniqueCrashes: 3,
		Hangs:         2,
		ExecsPerSec:   205.5,
		CorpusSize:    40,
		BlocksCovered: 480,
	}

	path, err := WriteSessionMetrics(dir, metrics)
	require.NoError(t, err)
	assert.Regexp(t, `\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}_demo\.json$`, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded SessionMetrics
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, metrics.Iterations, decoded.Iterations)
	assert.Equal(t, metrics.UniqueCrashes, decoded.UniqueCrashes)
	assert.Equal(t, metrics.BlocksCovered, decoded.BlocksCovered)
}

// TestWriteSessionMetricsSanitizesTarget tests separator replacement
func TestWriteSessionMetricsSanitizesTarget(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSessionMetrics(dir, &SessionMetrics{Target: "bin/my target"})
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "bin_my_target")
}

// TestWriteSessionMetricsEmptyTarget tests the fallback session name
func TestWriteSessionMetricsEmptyTarget(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSessionMetrics(dir, &SessionMetrics{})
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "session")
}
