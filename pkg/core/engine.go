/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Top-level engine facade for the Kyra Fuzzer. Owns the
configuration, target adapter, coverage source, corpus, crash pipeline, and
scheduler; exposes lifecycle control, callbacks, and read-only counters.
*/

package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
	"github.com/kleascm/kyra-fuzzer/pkg/logging"
	"github.com/kleascm/kyra-fuzzer/pkg/persistence"
)

var (
	// ErrEngineRunning is returned when a lifecycle call conflicts with an
	// active session
	ErrEngineRunning = errors.New("engine is already running")
	// ErrNoTarget is returned when Start is called without a target adapter
	ErrNoTarget = errors.New("no target adapter configured")
)

// FuzzEngine orchestrates one fuzzing session. Configuration methods must
// be called before Start; SetTarget and SetCoverageSource return
// ErrEngineRunning while a session is active. The engine owns every component except the target adapter, whose
// identity is shared with user callbacks.
type FuzzEngine struct {
	mu sync.Mutex

	config   interfaces.FuzzConfig
	adapter  interfaces.TargetAdapter
	source   interfaces.CoverageSource
	logger   *logging.Logger
	corpus   *CorpusManager
	tracker  *CoverageTracker
	analyzer *CrashAnalyzer
	store    *persistence.CrashStore
	stats    *Stats

	strategies []interfaces.MutationStrategy
	dict       [][]byte
	seeds      [][]byte
	callbacks  Callbacks

	scheduler *Scheduler
	running   bool
}

// NewFuzzEngine creates an engine with the given configuration and logger
func NewFuzzEngine(config interfaces.FuzzConfig, logger *logging.Logger) *FuzzEngine {
	return &FuzzEngine{
		config:   config,
		logger:   logger,
		corpus:   NewCorpusManager(),
		tracker:  NewCoverageTracker(0),
		analyzer: NewCrashAnalyzer(),
		stats:    NewStats(),
	}
}

// SetTarget hands the engine its target adapter. The engine takes ownership
// until Stop completes.
func (e *FuzzEngine) SetTarget(adapter interfaces.TargetAdapter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrEngineRunning
	}
	e.adapter = adapter
	return nil
}

// SetCoverageSource installs the coverage backend consulted at start
func (e *FuzzEngine) SetCoverageSource(source interfaces.CoverageSource) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrEngineRunning
	}
	e.source = source
	return nil
}

// EnableCoverage turns coverage collection on for the next session
func (e *FuzzEngine) EnableCoverage(coverageType interfaces.CoverageType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.CollectCoverage = true
	e.config.CoverageType = coverageType
}

// DisableCoverage turns coverage collection off; every success is then
// treated as producing no new coverage.
func (e *FuzzEngine) DisableCoverage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.CollectCoverage = false
}

// AddSeed registers a user-provided seed input. Seeds go into both the
// corpus and the initial work queue at start. Empty seeds are ignored.
func (e *FuzzEngine) AddSeed(input []byte) {
	if len(input) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeds = append(e.seeds, append([]byte(nil), input...))
}

// LoadCorpus appends every file under path as a seed entry
func (e *FuzzEngine) LoadCorpus(path string) error {
	return e.corpus.LoadFromDirectory(path)
}

// SaveCorpus persists the corpus to path
func (e *FuzzEngine) SaveCorpus(path string) error {
	return e.corpus.SaveToDirectory(path)
}

// AddMutationStrategy adds a strategy to the uniform pick set. Without any
// strategy the engine defaults to random mutation.
func (e *FuzzEngine) AddMutationStrategy(strategy interfaces.MutationStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies = append(e.strategies, strategy)
}

// SetDictionary installs the token dictionary used by dictionary mutation
func (e *FuzzEngine) SetDictionary(dict [][]byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dict = dict
}

// SetCrashCallback installs the hook fired after each crash is persisted
func (e *FuzzEngine) SetCrashCallback(cb interfaces.CrashCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks.Crash = cb
}

// SetCoverageCallback installs the hook fired on new-coverage events
func (e *FuzzEngine) SetCoverageCallback(cb interfaces.CoverageCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks.Coverage = cb
}

// SetProgressCallback installs the hook fired by the monitor
func (e *FuzzEngine) SetProgressCallback(cb interfaces.ProgressCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks.Progress = cb
}

// Start validates the configuration, sets up the target and coverage
// backend, seeds the corpus and work queue, and launches the scheduler.
func (e *FuzzEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrEngineRunning
	}
	if err := e.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if e.adapter == nil {
		return ErrNoTarget
	}

	if err := e.adapter.Setup(); err != nil {
		return fmt.Errorf("target setup failed: %w", err)
	}

	if e.config.CollectCoverage && e.source != nil {
		if err := e.source.Initialize(e.adapter.Name()); err != nil {
			e.adapter.Cleanup()
			return fmt.Errorf("coverage source initialization failed: %w", err)
		}
		if err := e.source.Enable(e.config.CoverageType); err != nil {
			e.adapter.Cleanup()
			return fmt.Errorf("coverage enable failed: %w", err)
		}
		if err := e.source.StartCollection(); err != nil {
			e.adapter.Cleanup()
			return fmt.Errorf("coverage collection failed to start: %w", err)
		}
	}

	for _, seed := range e.seeds {
		e.corpus.Add(seed, "seed")
	}

	e.store = persistence.NewCrashStore(e.config.CrashesDir, e.config.DeduplicateCrashes)
	e.stats = NewStats()

	e.scheduler = NewScheduler(&e.config, e.adapter, e.corpus, e.tracker, e.analyzer, e.store, e.stats, e.logger, e.strategies, e.dict, e.callbacks)
	e.scheduler.EnqueueSeeds(e.seeds)
	e.scheduler.Start()
	e.running = true

	e.logger.WithFields(map[string]interface{}{
		"target":         e.adapter.Name(),
		"architecture":   e.adapter.Architecture().String(),
		"max_iterations": e.config.MaxIterations,
		"coverage":       e.config.CollectCoverage,
	}).Info("Engine session started")
	return nil
}

// Stop joins all workers, tears down the coverage backend and target,
// saves the corpus, and writes the final report.
func (e *FuzzEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.scheduler.Stop()
	e.running = false

	if e.source != nil {
		e.source.StopCollection()
		e.source.Disable()
	}
	if err := e.adapter.Cleanup(); err != nil {
		e.logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Target cleanup failed")
	}

	if err := e.corpus.SaveToDirectory(e.config.CorpusDir); err != nil {
		e.logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Corpus save failed")
	}

	snapshot := e.tracker.Snapshot()
	report := &persistence.FinalReport{
		TargetName:      e.adapter.Name(),
		Duration:        e.stats.Uptime(),
		Iterations:      e.stats.Iterations(),
		Crashes:         e.stats.Crashes(),
		Hangs:           e.stats.Hangs(),
		ExecsPerSecond:  e.scheduler.OverallExecsPerSecond(),
		CoveragePercent: snapshot.Percentage,
		BlocksCovered:   snapshot.TotalBlocks,
	}
	if err := persistence.WriteFinalReport(e.config.LogsDir, report); err != nil {
		e.logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Final report write failed")
	}

	e.logger.WithFields(map[string]interface{}{
		"iterations": report.Iterations,
		"crashes":    report.Crashes,
		"hangs":      report.Hangs,
	}).Info("Engine session stopped")
	return nil
}

// Pause blocks workers at their next loop head
func (e *FuzzEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler != nil {
		e.scheduler.Pause()
	}
}

// Resume wakes paused workers
func (e *FuzzEngine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler != nil {
		e.scheduler.Resume()
	}
}

// IsRunning reports whether a session is active
func (e *FuzzEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Iterations returns the session iteration counter
func (e *FuzzEngine) Iterations() uint64 { return e.stats.Iterations() }

// Crashes returns the session crash counter
func (e *FuzzEngine) Crashes() uint64 { return e.stats.Crashes() }

// Hangs returns the session hang counter
func (e *FuzzEngine) Hangs() uint64 { return e.stats.Hangs() }

// UniqueCrashes returns how many distinct dedup keys have been observed
func (e *FuzzEngine) UniqueCrashes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store == nil {
		return 0
	}
	return e.store.UniqueCount()
}

// CorpusSize returns the current corpus entry count
func (e *FuzzEngine) CorpusSize() int { return e.corpus.Size() }

// ExecsPerSecond returns the most recent windowed execution rate
func (e *FuzzEngine) ExecsPerSecond() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return 0
	}
	return e.scheduler.ExecsPerSecond()
}

// Coverage returns a snapshot of accumulated coverage
func (e *FuzzEngine) Coverage() *interfaces.CoverageInfo {
	return e.tracker.Snapshot()
}
