/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Worker loop for the Kyra Fuzzer. Each worker owns its own RNG,
drains the seed queue first, then samples parents from the corpus, mutates,
executes through the target adapter, and routes the classification into the
coverage, crash, and counter paths.
*/

package core

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
	"github.com/kleascm/kyra-fuzzer/pkg/rng"
	"github.com/kleascm/kyra-fuzzer/pkg/strategies"
)

// runWorker is the per-worker fuzzing loop. The stop flag is checked before
// dequeuing work and again after every target call; pause blocks at the loop
// head only.
func (s *Scheduler) runWorker(id int) {
	defer s.wg.Done()

	g := rng.New()
	log := s.logger.WithFields(map[string]interface{}{"worker": id})
	log.Debug("Worker started")

	for s.running.Load() {
		s.waitWhilePaused()
		if !s.running.Load() {
			break
		}
		if s.stats.Iterations() >= s.config.MaxIterations {
			break
		}

		parent, second := s.pickParents(g)
		strategy := s.strategies[g.Intn(len(s.strategies))]
		iteration := atomic.AddUint64(&s.detCounter, 1)
		mutant := strategies.Mutate(parent, second, strategy, iteration, g, s.dict, s.config.MaxInputSize)

		outcome, err := s.adapter.Execute(context.Background(), mutant, s.config.Timeout())
		s.stats.AddIteration()
		s.settle(mutant, outcome, err)
	}

	log.Debug("Worker exited")
}

// pickParents draws a parent from the seed queue first, then the corpus.
// An empty corpus is not an error here: the mutation engine generates fresh
// inputs from an empty parent.
func (s *Scheduler) pickParents(g *rng.RNG) (parent, second []byte) {
	if seed := s.popSeed(); seed != nil {
		return seed, nil
	}
	p1, p2, err := s.corpus.SamplePair(g)
	if err != nil {
		if errors.Is(err, ErrEmptyCorpus) {
			return nil, nil
		}
		return nil, nil
	}
	return p1, p2
}

// settle routes one execution outcome into counters, coverage, and crash
// handling. Callbacks fire here with no lock held.
func (s *Scheduler) settle(mutant []byte, outcome *interfaces.Outcome, err error) {
	if err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Adapter error")
		return
	}
	if outcome == nil {
		s.logger.Warn("Adapter returned no outcome")
		return
	}

	switch outcome.Classification {
	case interfaces.ClassSuccess:
		s.handleCoverage(mutant, outcome.Coverage)
	case interfaces.ClassNoNewCoverage:
		// nothing to do
	case interfaces.ClassHang:
		s.stats.AddHang()
		s.logger.LogHang(len(mutant), s.config.Timeout())
	case interfaces.ClassCrash:
		s.handleCrash(mutant, outcome.Fault)
	case interfaces.ClassError:
		s.logger.WithFields(map[string]interface{}{"reason": outcome.ErrorReason}).Warn("Adapter error")
	}
}

func (s *Scheduler) handleCoverage(mutant []byte, sample []uint64) {
	if !s.config.CollectCoverage || len(sample) == 0 {
		return
	}
	fresh := s.tracker.Merge(sample)
	if fresh == 0 {
		return
	}
	s.corpus.Add(mutant, "mutation")
	info := s.tracker.Snapshot()
	s.logger.LogCoverage(fresh, info.TotalBlocks)
	if s.callbacks.Coverage != nil {
		s.callbacks.Coverage(info)
	}
}

func (s *Scheduler) handleCrash(mutant []byte, fault *interfaces.FaultContext) {
	record := s.analyzer.Analyze(mutant, fault)
	persisted, err := s.store.Write(record)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to persist crash")
	}
	s.stats.AddCrash()
	s.logger.LogCrash(record, persisted)
	if persisted && s.callbacks.Crash != nil {
		s.callbacks.Crash(record)
	}
}
