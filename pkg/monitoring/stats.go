/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Execution-rate tracking for the Kyra Fuzzer monitor. Computes
executions per second over each monitor wake window and keeps the session
peak rate and uptime.
*/

package monitoring

import (
	"sync"
	"time"
)

// StatsWindow derives execs/sec from iteration counter snapshots taken at
// monitor wake-ups. Safe for concurrent readers.
type StatsWindow struct {
	mu             sync.Mutex
	sessionStart   time.Time
	lastWake       time.Time
	lastIterations uint64
	currentRate    float64
	peakRate       float64
}

// NewStatsWindow starts a window at the current time
func NewStatsWindow() *StatsWindow {
	now := time.Now()
	return &StatsWindow{
		sessionStart: now,
		lastWake:     now,
	}
}

// Update records a new iteration count and returns the execution rate over
// the elapsed window.
func (w *StatsWindow) Update(iterations uint64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(w.lastWake).Seconds()
	if elapsed <= 0 {
		return w.currentRate
	}

	delta := iterations - w.lastIterations
	w.currentRate = float64(delta) / elapsed
	if w.currentRate > w.peakRate {
		w.peakRate = w.currentRate
	}
	w.lastWake = now
	w.lastIterations = iterations
	return w.currentRate
}

// Rate returns the most recent windowed execution rate
func (w *StatsWindow) Rate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRate
}

// PeakRate returns the highest windowed rate seen this session
func (w *StatsWindow) PeakRate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.peakRate
}

// Uptime returns time since the window was created
func (w *StatsWindow) Uptime() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Since(w.sessionStart)
}

// OverallRate returns iterations divided by total uptime
func (w *StatsWindow) OverallRate(iterations uint64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	secs := time.Since(w.sessionStart).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(iterations) / secs
}
