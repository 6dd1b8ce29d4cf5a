/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Structured logging for the Kyra Fuzzer. Wraps logrus with
timestamped log files under the session logs directory, JSON, text, and
custom formats, optional syslog forwarding, size-based rotation, and
helpers for the fuzzer's own events.
*/

package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"`
	MaxFiles  int       `json:"max_files"`
	MaxSize   int64     `json:"max_size"`
	Timestamp bool      `json:"timestamp"`
	Colors    bool      `json:"colors"`
	Console   bool      `json:"console"`

	SyslogEnabled bool   `json:"syslog_enabled"`
	SyslogNetwork string `json:"syslog_network"`
	SyslogAddress string `json:"syslog_address"`
}

// DefaultLoggerConfig returns the configuration used when none is given
func DefaultLoggerConfig(outputDir string) *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		OutputDir: outputDir,
		MaxFiles:  10,
		MaxSize:   100 * 1024 * 1024,
		Timestamp: true,
		Colors:    true,
		Console:   true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values
func (c *LoggerConfig) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger provides structured logging for the engine and its workers
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	startTime  time.Time
}

// NewLogger creates a logger from config, falling back to defaults when
// config is nil.
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig("./logs")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   l.config.Timestamp,
			TimestampFormat: time.RFC3339,
			ForceColors:     l.config.Colors,
			DisableColors:   !l.config.Colors,
		})
	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Colors:    l.config.Colors,
		})
	}

	if err := l.openLogFile(); err != nil {
		return err
	}

	if l.config.SyslogEnabled {
		writer, err := syslog.Dial(l.config.SyslogNetwork, l.config.SyslogAddress, syslog.LOG_INFO|syslog.LOG_USER, "kyra-fuzzer")
		if err != nil {
			return fmt.Errorf("failed to connect to syslog: %w", err)
		}
		l.logger.SetOutput(io.MultiWriter(l.logger.Out, writer))
	}
	return nil
}

func (l *Logger) openLogFile() error {
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	name := filepath.Join(l.config.OutputDir, fmt.Sprintf("kyra-fuzzer_%s.log", timestamp))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file

	if l.config.Console {
		l.logger.SetOutput(io.MultiWriter(os.Stdout, file))
	} else {
		l.logger.SetOutput(file)
	}
	return nil
}

// rotateIfNeeded starts a fresh log file once the current one exceeds the
// configured size, then prunes the oldest files past MaxFiles.
func (l *Logger) rotateIfNeeded() {
	if l.fileHandle == nil {
		return
	}
	stat, err := l.fileHandle.Stat()
	if err != nil || stat.Size() < l.config.MaxSize {
		return
	}
	l.fileHandle.Close()
	if err := l.openLogFile(); err != nil {
		return
	}

	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, "kyra-fuzzer_*.log"))
	if err != nil || len(files) <= l.config.MaxFiles {
		return
	}
	sort.Slice(files, func(i, j int) bool {
		si, _ := os.Stat(files[i])
		sj, _ := os.Stat(files[j])
		if si == nil || sj == nil {
			return false
		}
		return si.ModTime().Before(sj.ModTime())
	})
	for i := 0; i < len(files)-l.config.MaxFiles; i++ {
		os.Remove(files[i])
	}
}

// WithFields returns a structured entry for ad hoc logging
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.logger.WithFields(fields)
}

// Debug logs at debug level
func (l *Logger) Debug(args ...interface{}) { l.logger.Debug(args...) }

// Info logs at info level
func (l *Logger) Info(args ...interface{}) { l.logger.Info(args...) }

// Warn logs at warn level
func (l *Logger) Warn(args ...interface{}) { l.logger.Warn(args...) }

// Error logs at error level
func (l *Logger) Error(args ...interface{}) { l.logger.Error(args...) }

// LogExecution logs one target execution at debug level
func (l *Logger) LogExecution(classification string, duration time.Duration, inputSize int) {
	l.logger.WithFields(logrus.Fields{
		"classification": classification,
		"duration":       duration,
		"input_size":     inputSize,
	}).Debug("Execution finished")
}

// LogCrash logs an observed crash
func (l *Logger) LogCrash(record *interfaces.CrashRecord, persisted bool) {
	l.logger.WithFields(logrus.Fields{
		"dedup_key":   record.DedupKey,
		"fault_code":  fmt.Sprintf("0x%08X", record.Fault.FaultCode),
		"exploitable": record.Exploitable,
		"input_size":  len(record.Input),
		"persisted":   persisted,
	}).Error("Crash detected")
}

// LogHang logs an execution that exceeded its timeout
func (l *Logger) LogHang(inputSize int, timeout time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"input_size": inputSize,
		"timeout":    timeout,
	}).Warning("Hang detected")
}

// LogCoverage logs a new-coverage event
func (l *Logger) LogCoverage(newBlocks, totalBlocks uint64) {
	l.logger.WithFields(logrus.Fields{
		"new_blocks":   newBlocks,
		"total_blocks": totalBlocks,
	}).Info("Coverage updated")
}

// LogStats logs the periodic monitor snapshot and gives rotation a chance
// to run between windows.
func (l *Logger) LogStats(iterations, crashes, hangs uint64, execsPerSec float64, corpusSize int) {
	l.logger.WithFields(logrus.Fields{
		"iterations":    iterations,
		"crashes":       crashes,
		"hangs":         hangs,
		"execs_per_sec": execsPerSec,
		"corpus_size":   corpusSize,
		"uptime":        time.Since(l.startTime).Round(time.Second),
	}).Info("Statistics update")
	l.rotateIfNeeded()
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		return l.fileHandle.Close()
	}
	return nil
}
