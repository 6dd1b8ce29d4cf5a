/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network.go
Description: Network target adapter for the Kyra Fuzzer. Delivers each
input as one datagram or TCP exchange against a remote service, treating a
refused connection after a healthy setup as evidence the service died.
*/

package execution

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// NetworkAdapter fuzzes a service over tcp or udp. One connection per
// input keeps executions independent; the service process itself is not
// managed by the adapter.
type NetworkAdapter struct {
	name    string
	network string
	address string
	arch    interfaces.Architecture
	ready   bool
}

// NewNetworkAdapter targets the service at address over the given network
// ("tcp" or "udp")
func NewNetworkAdapter(name, network, address string) *NetworkAdapter {
	return &NetworkAdapter{
		name:    name,
		network: network,
		address: address,
		arch:    hostArchitecture(),
	}
}

// Setup verifies the service is reachable before fuzzing begins
func (a *NetworkAdapter) Setup() error {
	switch a.network {
	case "tcp", "udp":
	default:
		return fmt.Errorf("unsupported network %q", a.network)
	}
	conn, err := net.DialTimeout(a.network, a.address, 5*time.Second)
	if err != nil {
		return fmt.Errorf("target %s is unreachable: %w", a.address, err)
	}
	conn.Close()
	a.ready = true
	return nil
}

// Cleanup releases the adapter
func (a *NetworkAdapter) Cleanup() error {
	a.ready = false
	return nil
}

// Name returns the target name
func (a *NetworkAdapter) Name() string { return a.name }

// Architecture reports the assumed architecture of the remote service
func (a *NetworkAdapter) Architecture() interfaces.Architecture { return a.arch }

// Execute sends one input to the service. A connection refused after the
// healthy setup check is classified as a crash of the remote service; a
// deadline overrun is a hang.
func (a *NetworkAdapter) Execute(ctx context.Context, input []byte, timeout time.Duration) (*interfaces.Outcome, error) {
	if !a.ready {
		return nil, fmt.Errorf("network adapter %q is not set up", a.name)
	}

	start := time.Now()
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, a.network, a.address)
	if err != nil {
		return a.classifyNetError(err, time.Since(start)), nil
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	conn.SetDeadline(deadline)

	if _, err := conn.Write(input); err != nil {
		return a.classifyNetError(err, time.Since(start)), nil
	}

	// drain a response if the service sends one; a read error after a
	// successful write is not a failure for fire-and-forget targets
	buf := make([]byte, 4096)
	if _, err := conn.Read(buf); err != nil {
		if isTimeout(err) && a.network == "tcp" {
			return &interfaces.Outcome{
				Classification: interfaces.ClassHang,
				Duration:       time.Since(start),
			}, nil
		}
	}

	return &interfaces.Outcome{
		Classification: interfaces.ClassSuccess,
		Duration:       time.Since(start),
	}, nil
}

// classifyNetError turns a dial or write failure into an outcome
func (a *NetworkAdapter) classifyNetError(err error, elapsed time.Duration) *interfaces.Outcome {
	if isTimeout(err) {
		return &interfaces.Outcome{
			Classification: interfaces.ClassHang,
			Duration:       elapsed,
		}
	}
	if isRefused(err) {
		// the service answered during setup, so a refusal now means it
		// went down under fuzzing
		return &interfaces.Outcome{
			Classification: interfaces.ClassCrash,
			Fault:          &interfaces.FaultContext{FaultCode: interfaces.FaultAccessViolation},
			Duration:       elapsed,
		}
	}
	return &interfaces.Outcome{
		Classification: interfaces.ClassError,
		ErrorReason:    err.Error(),
		Duration:       elapsed,
	}
}

func isTimeout(err error) bool {
	if netErr, ok := err.(net.Error); ok {
		return netErr.Timeout()
	}
	return false
}

func isRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset")
}
