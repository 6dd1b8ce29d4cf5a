/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer.go
Description: Crash analyzer for the Kyra Fuzzer. Normalizes adapter-reported
fault contexts into crash records, derives the textual deduplication key from
the fault code, fault address, and top call-stack frames, and applies a small
exploitability heuristic.
*/

package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// dedupFrames is how many top call-stack frames participate in the key
const dedupFrames = 3

// CrashAnalyzer turns fault contexts into deduplicatable crash records.
// Stateless; safe for concurrent use from any worker.
type CrashAnalyzer struct{}

// NewCrashAnalyzer creates a crash analyzer
func NewCrashAnalyzer() *CrashAnalyzer {
	return &CrashAnalyzer{}
}

// Analyze builds the crash record for one observed fault. Pure with respect
// to its inputs apart from the record ID and timestamp: equal fault contexts
// always produce equal dedup keys.
func (a *CrashAnalyzer) Analyze(input []byte, fault *interfaces.FaultContext) *interfaces.CrashRecord {
	ctx := interfaces.FaultContext{}
	if fault != nil {
		ctx = *fault
	}
	if len(ctx.CallStack) > interfaces.MaxCallStackFrames {
		ctx.CallStack = ctx.CallStack[:interfaces.MaxCallStackFrames]
	}

	return &interfaces.CrashRecord{
		ID:          uuid.New().String(),
		Input:       append([]byte(nil), input...),
		Fault:       ctx,
		DedupKey:    a.DedupKey(&ctx),
		Exploitable: a.Exploitable(&ctx),
		Timestamp:   time.Now(),
	}
}

// DedupKey composes the fault code, fault address, and up to three top
// call-stack frames into a canonical lowercase hex string. Missing frames
// are omitted; there are never trailing underscores.
func (a *CrashAnalyzer) DedupKey(fault *interfaces.FaultContext) string {
	parts := make([]string, 0, 2+dedupFrames)
	parts = append(parts, fmt.Sprintf("%x", fault.FaultCode))
	parts = append(parts, fmt.Sprintf("%x", fault.FaultAddress))
	for i := 0; i < dedupFrames && i < len(fault.CallStack); i++ {
		parts = append(parts, fmt.Sprintf("%x", fault.CallStack[i]))
	}
	return strings.Join(parts, "_")
}

// Exploitable applies the coarse triage heuristic. A hint, not a verdict.
func (a *CrashAnalyzer) Exploitable(fault *interfaces.FaultContext) bool {
	switch fault.FaultCode {
	case interfaces.FaultAccessViolation:
		if fault.FaultAddress < 0x10000 {
			return true
		}
		return fault.FaultAddress >= 0x41414141 && fault.FaultAddress <= 0x42424242
	case interfaces.FaultStackOverflow:
		return true
	case interfaces.FaultHeapCorruption:
		return true
	case interfaces.FaultIllegalInstruction:
		return true
	default:
		return false
	}
}
