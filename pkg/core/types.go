/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core counter types for the Kyra Fuzzer engine. Session counters
are plain 64-bit integers updated through atomic operations so workers never
contend on a lock for bookkeeping.
*/

package core

import (
	"sync/atomic"
	"time"
)

// Stats holds the session counters. All fields are updated atomically and
// are monotonically non-decreasing for the lifetime of a session.
type Stats struct {
	iterations uint64
	crashes    uint64
	hangs      uint64
	startTime  time.Time
}

// NewStats creates counters anchored at the current time
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// AddIteration increments the iteration counter and returns the new value
func (s *Stats) AddIteration() uint64 {
	return atomic.AddUint64(&s.iterations, 1)
}

// AddCrash increments the crash counter and returns the new value
func (s *Stats) AddCrash() uint64 {
	return atomic.AddUint64(&s.crashes, 1)
}

// AddHang increments the hang counter and returns the new value
func (s *Stats) AddHang() uint64 {
	return atomic.AddUint64(&s.hangs, 1)
}

// Iterations returns the current iteration count
func (s *Stats) Iterations() uint64 {
	return atomic.LoadUint64(&s.iterations)
}

// Crashes returns the current crash count
func (s *Stats) Crashes() uint64 {
	return atomic.LoadUint64(&s.crashes)
}

// Hangs returns the current hang count
func (s *Stats) Hangs() uint64 {
	return atomic.LoadUint64(&s.hangs)
}

// Uptime returns time since the counters were created
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// StartTime returns when the session began
func (s *Stats) StartTime() time.Time {
	return s.startTime
}
