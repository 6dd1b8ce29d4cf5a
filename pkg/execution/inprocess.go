/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inprocess.go
Description: In-process target adapter for the Kyra Fuzzer. Wraps a Go
function as a fuzz target, converts panics into crash outcomes with a
synthesized fault context, and enforces the per-execution timeout with a
watchdog goroutine.
*/

package execution

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// TargetFunc is the shape of an in-process fuzz target. The returned
// addresses are treated as user-reported coverage for the execution.
type TargetFunc func(input []byte) ([]uint64, error)

// InProcessAdapter executes a Go function directly in the fuzzer process.
// Panics in the target are recovered and classified as crashes; the
// process itself is never torn down by a misbehaving target short of a
// runtime abort.
type InProcessAdapter struct {
	name   string
	arch   interfaces.Architecture
	target TargetFunc
	ready  bool
}

// NewInProcessAdapter wraps fn as a fuzz target under the given name
func NewInProcessAdapter(name string, fn TargetFunc) *InProcessAdapter {
	return &InProcessAdapter{
		name:   name,
		arch:   hostArchitecture(),
		target: fn,
	}
}

// Setup validates the adapter has a callable target
func (a *InProcessAdapter) Setup() error {
	if a.target == nil {
		return fmt.Errorf("in-process adapter %q has no target function", a.name)
	}
	a.ready = true
	return nil
}

// Cleanup releases the adapter. Safe to call more than once.
func (a *InProcessAdapter) Cleanup() error {
	a.ready = false
	return nil
}

// Name returns the target name given at construction
func (a *InProcessAdapter) Name() string { return a.name }

// Architecture reports the architecture of the host process
func (a *InProcessAdapter) Architecture() interfaces.Architecture { return a.arch }

// Execute runs one input through the target function. The call runs on
// its own goroutine so a stuck target is reported as a hang; the goroutine
// itself cannot be killed and is abandoned after the deadline.
func (a *InProcessAdapter) Execute(ctx context.Context, input []byte, timeout time.Duration) (*interfaces.Outcome, error) {
	if !a.ready {
		return nil, fmt.Errorf("in-process adapter %q is not set up", a.name)
	}

	type result struct {
		outcome *interfaces.Outcome
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		done <- result{outcome: a.invoke(input)}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		r.outcome.Duration = time.Since(start)
		return r.outcome, nil
	case <-timer.C:
		return &interfaces.Outcome{
			Classification: interfaces.ClassHang,
			Duration:       time.Since(start),
		}, nil
	case <-ctx.Done():
		return &interfaces.Outcome{
			Classification: interfaces.ClassHang,
			Duration:       time.Since(start),
		}, nil
	}
}

// invoke calls the target with panic recovery in place
func (a *InProcessAdapter) invoke(input []byte) (outcome *interfaces.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = &interfaces.Outcome{
				Classification: interfaces.ClassCrash,
				Fault:          faultFromPanic(r),
			}
		}
	}()

	coverage, err := a.target(input)
	if err != nil {
		return &interfaces.Outcome{
			Classification: interfaces.ClassError,
			ErrorReason:    err.Error(),
		}
	}
	return &interfaces.Outcome{
		Classification: interfaces.ClassSuccess,
		Coverage:       coverage,
	}
}

// faultFromPanic synthesizes a fault context from a recovered panic value.
// Memory-shaped runtime errors map to an access violation; everything else
// is reported as an illegal instruction.
func faultFromPanic(value interface{}) *interfaces.FaultContext {
	code := uint32(interfaces.FaultIllegalInstruction)
	message := fmt.Sprintf("%v", value)
	if strings.Contains(message, "nil pointer dereference") ||
		strings.Contains(message, "index out of range") ||
		strings.Contains(message, "slice bounds out of range") {
		code = interfaces.FaultAccessViolation
	}

	pcs := make([]uintptr, interfaces.MaxCallStackFrames)
	n := runtime.Callers(3, pcs)
	stack := make([]uint64, 0, n)
	for _, pc := range pcs[:n] {
		stack = append(stack, uint64(pc))
	}

	fault := &interfaces.FaultContext{
		FaultCode: code,
		CallStack: stack,
	}
	if n > 0 {
		fault.InstructionPointer = uint64(pcs[0])
		if fn := runtime.FuncForPC(pcs[0]); fn != nil {
			fault.FunctionName = fn.Name()
		}
		fault.ModuleName = "self"
	}
	return fault
}

// hostArchitecture maps GOARCH onto the adapter architecture enum
func hostArchitecture() interfaces.Architecture {
	switch runtime.GOARCH {
	case "386":
		return interfaces.ArchX86
	case "arm":
		return interfaces.ArchARM
	case "arm64":
		return interfaces.ArchARM64
	default:
		return interfaces.ArchX64
	}
}
