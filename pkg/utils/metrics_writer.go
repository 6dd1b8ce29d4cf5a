/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Session metrics writer for the Kyra Fuzzer. Serializes an
end-of-session summary to a timestamped JSON file under the metrics
directory so runs can be compared across target and engine changes.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionMetrics is the end-of-session summary persisted per fuzzing run
type SessionMetrics struct {
	Target        string    `json:"target"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Iterations    uint64    `json:"iterations"`
	Crashes       uint64    `json:"crashes"`
	UniqueCrashes int       `json:"unique_crashes"`
	Hangs         uint64    `json:"hangs"`
	ExecsPerSec   float64   `json:"execs_per_sec"`
	CorpusSize    int       `json:"corpus_size"`
	BlocksCovered uint64    `json:"blocks_covered"`
}

// WriteSessionMetrics writes the summary to metrics/<timestamp>_<target>.json
// and returns the path of the written file
func WriteSessionMetrics(metricsDir string, metrics *SessionMetrics) (string, error) {
	if metricsDir == "" {
		metricsDir = "metrics"
	}
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s_%s.json", timestamp, sanitizeName(metrics.Target))
	path := filepath.Join(metricsDir, name)

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal session metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}
	return path, nil
}

// sanitizeName keeps filenames portable by replacing separators and spaces
func sanitizeName(name string) string {
	if name == "" {
		return "session"
	}
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '/', '\\', ' ', ':':
			out[i] = '_'
		default:
			out[i] = c
		}
	}
	return string(out)
}
