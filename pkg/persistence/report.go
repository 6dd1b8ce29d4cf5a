/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Final report writer for the Kyra Fuzzer. Serializes the
end-of-session summary into a plain text file under the logs directory.
*/

package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FinalReport summarizes one fuzzing session
type FinalReport struct {
	TargetName      string
	Duration        time.Duration
	Iterations      uint64
	Crashes         uint64
	Hangs           uint64
	ExecsPerSecond  float64
	CoveragePercent float64
	BlocksCovered   uint64
}

// WriteFinalReport writes the session summary to logsDir/final_report.txt,
// creating the directory if needed.
func WriteFinalReport(logsDir string, report *FinalReport) error {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("=== Fuzzing Session Report ===\n")
	fmt.Fprintf(&b, "Target:           %s\n", report.TargetName)
	fmt.Fprintf(&b, "Duration:         %.0f seconds\n", report.Duration.Seconds())
	fmt.Fprintf(&b, "Iterations:       %d\n", report.Iterations)
	fmt.Fprintf(&b, "Crashes:          %d\n", report.Crashes)
	fmt.Fprintf(&b, "Hangs:            %d\n", report.Hangs)
	fmt.Fprintf(&b, "Execs/sec:        %.2f\n", report.ExecsPerSecond)
	if report.BlocksCovered > 0 {
		fmt.Fprintf(&b, "Blocks covered:   %d\n", report.BlocksCovered)
	}
	if report.CoveragePercent > 0 {
		fmt.Fprintf(&b, "Coverage:         %.2f%%\n", report.CoveragePercent)
	}

	name := filepath.Join(logsDir, "final_report.txt")
	if err := os.WriteFile(name, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write final report: %w", err)
	}
	return nil
}
