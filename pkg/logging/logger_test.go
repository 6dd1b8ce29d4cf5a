/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for the structured logger. Covers configuration
validation, log file creation, event helpers, and the custom formatter.
*/

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

func fileLogger(t *testing.T, format LogFormat) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultLoggerConfig(dir)
	cfg.Console = false
	cfg.Colors = false
	cfg.Format = format
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger, dir
}

func readLogFile(t *testing.T, dir string) string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "kyra-fuzzer_*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	return string(data)
}

// TestLoggerConfigValidate tests rejection of malformed configurations
func TestLoggerConfigValidate(t *testing.T) {
	valid := DefaultLoggerConfig("logs")
	assert.NoError(t, valid.Validate())

	noDir := DefaultLoggerConfig("")
	assert.Error(t, noDir.Validate())

	badFormat := DefaultLoggerConfig("logs")
	badFormat.Format = "yaml"
	assert.Error(t, badFormat.Validate())

	badLevel := DefaultLoggerConfig("logs")
	badLevel.Level = "verbose"
	assert.Error(t, badLevel.Validate())

	badFiles := DefaultLoggerConfig("logs")
	badFiles.MaxFiles = 0
	assert.Error(t, badFiles.Validate())
}

// TestNewLoggerCreatesTimestampedFile tests the log file naming scheme
func TestNewLoggerCreatesTimestampedFile(t *testing.T) {
	logger, dir := fileLogger(t, LogFormatText)
	logger.Info("session open")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Regexp(t, `^kyra-fuzzer_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.log$`, files[0].Name())
}

// TestNewLoggerRejectsInvalidConfig tests the constructor error path
func TestNewLoggerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("")
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

// TestLogCrashFields tests the crash event helper output
func TestLogCrashFields(t *testing.T) {
	logger, dir := fileLogger(t, LogFormatJSON)

	record := &interfaces.CrashRecord{
		Input:       []byte("boom"),
		Fault:       interfaces.FaultContext{FaultCode: interfaces.FaultAccessViolation},
		DedupKey:    "c0000005_0",
		Exploitable: true,
	}
	logger.LogCrash(record, true)

	text := readLogFile(t, dir)
	assert.Contains(t, text, "c0000005_0")
	assert.Contains(t, text, "0xC0000005")
	assert.Contains(t, text, "Crash detected")
}

// TestLogStatsFields tests the periodic stats helper output
func TestLogStatsFields(t *testing.T) {
	logger, dir := fileLogger(t, LogFormatJSON)
	logger.LogStats(1000, 3, 1, 412.5, 42)

	text := readLogFile(t, dir)
	assert.Contains(t, text, "Statistics update")
	assert.Contains(t, text, "412.5")
	assert.Contains(t, text, "\"corpus_size\":42")
}

// TestLogLevelFiltering tests that entries below the level are dropped
func TestLogLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultLoggerConfig(dir)
	cfg.Console = false
	cfg.Level = LogLevelError
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("quiet info line")
	logger.Error("loud error line")

	text := readLogFile(t, dir)
	assert.NotContains(t, text, "quiet info line")
	assert.Contains(t, text, "loud error line")
}

// TestCustomFormatterEventPrefixes tests the event tag mapping
func TestCustomFormatterEventPrefixes(t *testing.T) {
	formatter := &CustomFormatter{Timestamp: false, Colors: false}

	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.ErrorLevel,
		Message: "Crash detected",
		Time:    time.Now(),
		Data:    logrus.Fields{"dedup_key": "c0000005_0"},
	}
	out, err := formatter.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Contains(t, line, "CRASH")
	assert.Contains(t, line, "dedup_key=c0000005_0")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

// TestCustomFormatterSortsFields tests deterministic field ordering
func TestCustomFormatterSortsFields(t *testing.T) {
	formatter := &CustomFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "Statistics update",
		Time:    time.Now(),
		Data:    logrus.Fields{"zeta": 1, "alpha": 2},
	}
	out, err := formatter.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Less(t, strings.Index(line, "alpha"), strings.Index(line, "zeta"))
}
