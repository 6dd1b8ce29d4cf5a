/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: process.go
Description: Subprocess target adapter for the Kyra Fuzzer. Launches the
target binary once per input, delivers the input over stdin or a temp file,
maps exit signals onto fault codes, and recovers Go panic traces from
stderr with panicparse.
*/

package execution

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/maruel/panicparse/stack"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
	"github.com/kleascm/kyra-fuzzer/pkg/utils"
)

// InputFileMarker in the argument list is replaced with the path of the
// temp file holding the current input. Without it the input goes to stdin.
const InputFileMarker = "@@"

// ProcessAdapter runs an external binary as the fuzz target. Each Execute
// call is one process lifetime; the adapter never reuses a process, so a
// crashed target costs nothing beyond the spawn.
type ProcessAdapter struct {
	name    string
	path    string
	args    []string
	arch    interfaces.Architecture
	workDir string
	useFile bool
	ready   bool
}

// NewProcessAdapter builds an adapter for the binary at path with the
// given argument template
func NewProcessAdapter(name, path string, args []string) *ProcessAdapter {
	useFile := false
	for _, arg := range args {
		if arg == InputFileMarker {
			useFile = true
			break
		}
	}
	return &ProcessAdapter{
		name:    name,
		path:    path,
		args:    args,
		arch:    hostArchitecture(),
		useFile: useFile,
	}
}

// Setup checks the target binary exists and prepares the input scratch
// directory when file delivery is in use
func (a *ProcessAdapter) Setup() error {
	info, err := os.Stat(a.path)
	if err != nil {
		return fmt.Errorf("target binary %q: %w", a.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("target binary %q is a directory", a.path)
	}
	if a.useFile {
		dir, err := ioutil.TempDir("", "kyra-input-")
		if err != nil {
			return fmt.Errorf("input scratch dir: %w", err)
		}
		a.workDir = dir
	}
	a.ready = true
	return nil
}

// Cleanup removes the input scratch directory
func (a *ProcessAdapter) Cleanup() error {
	a.ready = false
	if a.workDir != "" {
		err := os.RemoveAll(a.workDir)
		a.workDir = ""
		return err
	}
	return nil
}

// Name returns the target name
func (a *ProcessAdapter) Name() string { return a.name }

// Architecture reports the host architecture the binary runs under
func (a *ProcessAdapter) Architecture() interfaces.Architecture { return a.arch }

// Execute spawns the target once for the given input. A deadline overrun
// kills the process group and reports a hang; abnormal exits are mapped to
// fault contexts.
func (a *ProcessAdapter) Execute(ctx context.Context, input []byte, timeout time.Duration) (*interfaces.Outcome, error) {
	if !a.ready {
		return nil, fmt.Errorf("process adapter %q is not set up", a.name)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := a.args
	var inputPath string
	if a.useFile {
		path, err := a.writeInput(input)
		if err != nil {
			return nil, err
		}
		inputPath = path
		defer os.Remove(inputPath)
		args = make([]string, len(a.args))
		for i, arg := range a.args {
			if arg == InputFileMarker {
				args[i] = inputPath
			} else {
				args[i] = arg
			}
		}
	}

	cmd := exec.CommandContext(runCtx, a.path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	if !a.useFile {
		cmd.Stdin = bytes.NewReader(input)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return &interfaces.Outcome{
			Classification: interfaces.ClassHang,
			Duration:       elapsed,
		}, nil
	}

	if err == nil {
		return &interfaces.Outcome{
			Classification: interfaces.ClassSuccess,
			Duration:       elapsed,
		}, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return &interfaces.Outcome{
			Classification: interfaces.ClassError,
			ErrorReason:    err.Error(),
			Duration:       elapsed,
		}, nil
	}

	fault := faultFromExit(exitErr, stderr.Bytes())
	if fault == nil {
		// nonzero exit without a signal or panic trace is the target
		// rejecting the input, not a crash
		return &interfaces.Outcome{
			Classification: interfaces.ClassError,
			ErrorReason:    fmt.Sprintf("target exited with %s", exitErr.ProcessState.String()),
			Duration:       elapsed,
		}, nil
	}

	return &interfaces.Outcome{
		Classification: interfaces.ClassCrash,
		Fault:          fault,
		Duration:       elapsed,
	}, nil
}

// writeInput stores the input in the scratch directory for file delivery
func (a *ProcessAdapter) writeInput(input []byte) (string, error) {
	path := filepath.Join(a.workDir, "current_input.bin")
	if err := ioutil.WriteFile(path, input, 0644); err != nil {
		return "", fmt.Errorf("write target input: %w", err)
	}
	return path, nil
}

// faultFromExit builds a fault context from an abnormal process exit.
// Returns nil when the exit looks like an ordinary rejection.
func faultFromExit(exitErr *exec.ExitError, stderr []byte) *interfaces.FaultContext {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		fault := &interfaces.FaultContext{FaultCode: signalFaultCode(status.Signal())}
		enrichFromPanicTrace(fault, stderr)
		return fault
	}
	if fault := panicFault(stderr); fault != nil {
		return fault
	}
	return nil
}

// signalFaultCode maps a terminating signal onto the fault code space
func signalFaultCode(sig syscall.Signal) uint32 {
	switch sig {
	case syscall.SIGSEGV, syscall.SIGBUS:
		return interfaces.FaultAccessViolation
	case syscall.SIGILL:
		return interfaces.FaultIllegalInstruction
	case syscall.SIGABRT:
		return interfaces.FaultHeapCorruption
	default:
		return interfaces.FaultIllegalInstruction
	}
}

// panicFault recognizes a Go panic trace on stderr and turns it into a
// fault context even when the runtime exited without a signal
func panicFault(stderr []byte) *interfaces.FaultContext {
	if !bytes.Contains(stderr, []byte("panic:")) {
		return nil
	}
	code := uint32(interfaces.FaultIllegalInstruction)
	if bytes.Contains(stderr, []byte("nil pointer dereference")) ||
		bytes.Contains(stderr, []byte("index out of range")) ||
		bytes.Contains(stderr, []byte("slice bounds out of range")) {
		code = interfaces.FaultAccessViolation
	}
	fault := &interfaces.FaultContext{FaultCode: code}
	enrichFromPanicTrace(fault, stderr)
	return fault
}

// enrichFromPanicTrace fills the call stack and symbol fields from a Go
// panic trace when one is present. Frames get stable synthetic addresses
// hashed from their symbol and source line so deduplication stays
// meaningful across runs.
func enrichFromPanicTrace(fault *interfaces.FaultContext, stderr []byte) {
	ctx, err := stack.ParseDump(bytes.NewBuffer(stderr), ioutil.Discard, false)
	if err != nil || ctx == nil || len(ctx.Goroutines) == 0 {
		return
	}

	var crashed *stack.Goroutine
	for _, gr := range ctx.Goroutines {
		if gr.First {
			crashed = gr
			break
		}
	}
	if crashed == nil {
		crashed = ctx.Goroutines[0]
	}

	calls := crashed.Stack.Calls
	if len(calls) > interfaces.MaxCallStackFrames {
		calls = calls[:interfaces.MaxCallStackFrames]
	}
	frames := make([]uint64, 0, len(calls))
	for _, call := range calls {
		frames = append(frames, utils.HashData([]byte(call.Func.PkgDotName()+":"+call.FullSrcLine())))
	}
	fault.CallStack = frames
	if len(frames) > 0 {
		fault.InstructionPointer = frames[0]
		fault.FunctionName = calls[0].Func.PkgDotName()
		fault.ModuleName = modulePart(calls[0].Func.PkgDotName())
	}
}

// modulePart extracts the package half of a pkg.Func symbol
func modulePart(symbol string) string {
	if idx := strings.LastIndex(symbol, "."); idx > 0 {
		return symbol[:idx]
	}
	return symbol
}
