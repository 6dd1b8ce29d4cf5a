/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reproducer.go
Description: Crash reproduction checker for the Kyra Fuzzer. Runs a saved
input through a target adapter several times and reports how reliably the
fault comes back, including whether every run produced the same dedup key.
*/

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/kleascm/kyra-fuzzer/pkg/core"
	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// ReproductionResult summarizes repeated executions of one input
type ReproductionResult struct {
	Attempts   int           `json:"attempts"`
	Crashes    int           `json:"crashes"`
	Hangs      int           `json:"hangs"`
	Rate       float64       `json:"rate"`
	Stable     bool          `json:"stable"`
	DedupKey   string        `json:"dedup_key,omitempty"`
	FaultCode  uint32        `json:"fault_code,omitempty"`
	TotalTime  time.Duration `json:"total_time"`
	LastReason string        `json:"last_reason,omitempty"`
}

// Reproduced reports whether at least one attempt crashed
func (r *ReproductionResult) Reproduced() bool {
	return r.Crashes > 0
}

// Reproducer replays inputs through an adapter to measure crash stability
type Reproducer struct {
	adapter  interfaces.TargetAdapter
	analyzer *core.CrashAnalyzer
	attempts int
}

// NewReproducer creates a reproducer that runs each input the given number
// of times. Attempts below one are raised to one.
func NewReproducer(adapter interfaces.TargetAdapter, attempts int) *Reproducer {
	if attempts < 1 {
		attempts = 1
	}
	return &Reproducer{
		adapter:  adapter,
		analyzer: core.NewCrashAnalyzer(),
		attempts: attempts,
	}
}

// Verify executes the input repeatedly and aggregates the outcomes. A crash
// is stable when every crashing attempt produced the same dedup key. The
// context cancels remaining attempts early.
func (r *Reproducer) Verify(ctx context.Context, input []byte, timeout time.Duration) (*ReproductionResult, error) {
	if r.adapter == nil {
		return nil, fmt.Errorf("no target adapter configured")
	}

	result := &ReproductionResult{Stable: true}
	start := time.Now()

	for i := 0; i < r.attempts; i++ {
		if err := ctx.Err(); err != nil {
			break
		}

		outcome, err := r.adapter.Execute(ctx, input, timeout)
		if err != nil {
			return nil, fmt.Errorf("attempt %d failed: %w", i+1, err)
		}
		result.Attempts++

		switch outcome.Classification {
		case interfaces.ClassCrash:
			result.Crashes++
			fault := outcome.Fault
			if fault == nil {
				fault = &interfaces.FaultContext{}
			}
			key := r.analyzer.DedupKey(fault)
			if result.DedupKey == "" {
				result.DedupKey = key
				result.FaultCode = fault.FaultCode
			} else if key != result.DedupKey {
				result.Stable = false
			}
		case interfaces.ClassHang:
			result.Hangs++
		case interfaces.ClassError:
			result.LastReason = outcome.ErrorReason
		}
	}

	result.TotalTime = time.Since(start)
	if result.Attempts > 0 {
		result.Rate = float64(result.Crashes) / float64(result.Attempts)
	}
	return result, nil
}
