/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scheduler.go
Description: Worker scheduler for the Kyra Fuzzer. Owns the worker pool and
the monitor goroutine, the pause condition variable, the cooperative stop
flag, and the seed queue drained at session start.
*/

package core

import (
	"sync"
	"sync/atomic"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
	"github.com/kleascm/kyra-fuzzer/pkg/logging"
	"github.com/kleascm/kyra-fuzzer/pkg/monitoring"
	"github.com/kleascm/kyra-fuzzer/pkg/persistence"
)

// Callbacks holds the user-supplied event hooks. All hooks are invoked with
// no internal lock held and may run on any worker or monitor goroutine.
type Callbacks struct {
	Crash    interfaces.CrashCallback
	Coverage interfaces.CoverageCallback
	Progress interfaces.ProgressCallback
}

// Scheduler runs W workers plus one monitor against a single target
// adapter. Stop is the only cancellation signal; workers observe it at loop
// boundaries and in-flight target calls are never preempted.
type Scheduler struct {
	config   *interfaces.FuzzConfig
	adapter  interfaces.TargetAdapter
	corpus   *CorpusManager
	tracker  *CoverageTracker
	analyzer *CrashAnalyzer
	store    *persistence.CrashStore
	window   *monitoring.StatsWindow
	sampler  *monitoring.ResourceSampler
	stats    *Stats
	logger   *logging.Logger

	strategies []interfaces.MutationStrategy
	dict       [][]byte
	callbacks  Callbacks

	running atomic.Bool

	pauseMu   sync.Mutex
	pauseCond *sync.Cond
	paused    bool

	seedMu sync.Mutex
	seeds  [][]byte

	detCounter uint64

	wg sync.WaitGroup
}

// NewScheduler wires a scheduler over the engine-owned components
func NewScheduler(config *interfaces.FuzzConfig, adapter interfaces.TargetAdapter, corpus *CorpusManager, tracker *CoverageTracker, analyzer *CrashAnalyzer, store *persistence.CrashStore, stats *Stats, logger *logging.Logger, strategies []interfaces.MutationStrategy, dict [][]byte, callbacks Callbacks) *Scheduler {
	s := &Scheduler{
		config:     config,
		adapter:    adapter,
		corpus:     corpus,
		tracker:    tracker,
		analyzer:   analyzer,
		store:      store,
		window:     monitoring.NewStatsWindow(),
		sampler:    monitoring.NewResourceSampler(),
		stats:      stats,
		logger:     logger,
		strategies: strategies,
		dict:       dict,
		callbacks:  callbacks,
	}
	s.pauseCond = sync.NewCond(&s.pauseMu)
	if len(s.strategies) == 0 {
		s.strategies = []interfaces.MutationStrategy{interfaces.StrategyRandom}
	}
	return s
}

// EnqueueSeeds places the initial work set. Called once before Start.
func (s *Scheduler) EnqueueSeeds(seeds [][]byte) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	for _, seed := range seeds {
		s.seeds = append(s.seeds, append([]byte(nil), seed...))
	}
}

// popSeed removes and returns the next queued seed, or nil once drained
func (s *Scheduler) popSeed() []byte {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	if len(s.seeds) == 0 {
		return nil
	}
	seed := s.seeds[0]
	s.seeds = s.seeds[1:]
	return seed
}

// Start spawns the workers and the monitor
func (s *Scheduler) Start() {
	s.running.Store(true)

	for i := 0; i < s.config.WorkerThreads; i++ {
		s.wg.Add(1)
		go s.runWorker(i)
	}

	s.wg.Add(1)
	go s.runMonitor()

	s.logger.WithFields(map[string]interface{}{
		"workers": s.config.WorkerThreads,
		"target":  s.adapter.Name(),
	}).Info("Engine workers started")
}

// Stop clears the running flag, wakes every waiting goroutine, and joins
// workers and monitor.
func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return
	}
	s.pauseMu.Lock()
	s.paused = false
	s.pauseCond.Broadcast()
	s.pauseMu.Unlock()

	s.wg.Wait()
	s.logger.Info("Engine workers stopped")
}

// Pause makes workers block at their next loop head. In-flight executions
// are not interrupted.
func (s *Scheduler) Pause() {
	s.pauseMu.Lock()
	s.paused = true
	s.pauseMu.Unlock()
}

// Resume wakes paused workers
func (s *Scheduler) Resume() {
	s.pauseMu.Lock()
	s.paused = false
	s.pauseCond.Broadcast()
	s.pauseMu.Unlock()
}

// IsRunning reports whether the scheduler has been started and not stopped
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// waitWhilePaused blocks until the scheduler is unpaused or stopped
func (s *Scheduler) waitWhilePaused() {
	s.pauseMu.Lock()
	for s.paused && s.running.Load() {
		s.pauseCond.Wait()
	}
	s.pauseMu.Unlock()
}

// ExecsPerSecond returns the most recent windowed execution rate
func (s *Scheduler) ExecsPerSecond() float64 {
	return s.window.Rate()
}

// OverallExecsPerSecond returns iterations over total session time
func (s *Scheduler) OverallExecsPerSecond() float64 {
	return s.window.OverallRate(s.stats.Iterations())
}
