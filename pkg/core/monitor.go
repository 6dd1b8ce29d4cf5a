/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: monitor.go
Description: Monitor goroutine for the Kyra Fuzzer. Wakes every ten seconds,
computes the execution rate over the elapsed window, emits stats and resource
usage log lines, and fires the progress callback.
*/

package core

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// monitorInterval is how often the monitor wakes to snapshot counters
const monitorInterval = 10 * time.Second

// runMonitor periodically reports progress until the scheduler stops.
// It polls the running flag at a short interval between full windows so a
// stop does not keep the session alive for the remainder of a window.
func (s *Scheduler) runMonitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()
	poll := time.NewTicker(250 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.running.Load() {
				return
			}
			iterations := s.stats.Iterations()
			crashes := s.stats.Crashes()
			rate := s.window.Update(iterations)
			s.logger.LogStats(iterations, crashes, s.stats.Hangs(), rate, s.corpus.Size())
			usage := s.sampler.Sample()
			s.logger.WithFields(logrus.Fields{
				"heap_mb":    fmt.Sprintf("%.1f", usage.HeapAllocMB()),
				"goroutines": usage.Goroutines,
				"gc_cycles":  usage.NumGC,
			}).Debug("Resource usage")
			if s.callbacks.Progress != nil {
				s.callbacks.Progress(iterations, crashes)
			}
		case <-poll.C:
			if !s.running.Load() {
				return
			}
		}
	}
}
