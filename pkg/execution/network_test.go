/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network_test.go
Description: Tests for the network target adapter. Covers reachability
checks at setup, TCP request delivery, and crash classification on refused
connections.
*/

package execution

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// echoListener runs a TCP service that answers every connection
func echoListener(t *testing.T) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 4096)
				n, _ := c.Read(buf)
				c.Write(buf[:n])
			}(conn)
		}
	}()
	return ln, ln.Addr().String()
}

// TestNetworkSetupUnreachable tests that setup fails without a listener
func TestNetworkSetupUnreachable(t *testing.T) {
	adapter := NewNetworkAdapter("dead", "tcp", "127.0.0.1:1")
	assert.Error(t, adapter.Setup())
}

// TestNetworkSetupRejectsBadNetwork tests the network name check
func TestNetworkSetupRejectsBadNetwork(t *testing.T) {
	adapter := NewNetworkAdapter("bad", "unix", "/tmp/sock")
	assert.Error(t, adapter.Setup())
}

// TestNetworkExecuteSuccess tests one request against a live service
func TestNetworkExecuteSuccess(t *testing.T) {
	ln, addr := echoListener(t)
	defer ln.Close()

	adapter := NewNetworkAdapter("echo", "tcp", addr)
	require.NoError(t, adapter.Setup())
	defer adapter.Cleanup()

	outcome, err := adapter.Execute(context.Background(), []byte("ping"), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ClassSuccess, outcome.Classification)
}

// TestNetworkServiceDeathIsCrash tests that a refusal after healthy setup
// classifies as a crash
func TestNetworkServiceDeathIsCrash(t *testing.T) {
	ln, addr := echoListener(t)

	adapter := NewNetworkAdapter("dying", "tcp", addr)
	require.NoError(t, adapter.Setup())
	defer adapter.Cleanup()

	ln.Close()
	time.Sleep(20 * time.Millisecond)

	outcome, err := adapter.Execute(context.Background(), []byte("ping"), 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, interfaces.ClassCrash, outcome.Classification)
	require.NotNil(t, outcome.Fault)
	assert.Equal(t, uint32(interfaces.FaultAccessViolation), outcome.Fault.FaultCode)
}

// TestNetworkExecuteRequiresSetup tests the lifecycle guard
func TestNetworkExecuteRequiresSetup(t *testing.T) {
	adapter := NewNetworkAdapter("unready", "tcp", "127.0.0.1:1")
	_, err := adapter.Execute(context.Background(), []byte("x"), time.Second)
	assert.Error(t, err)
}
