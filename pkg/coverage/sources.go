/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sources.go
Description: Coverage backends for the Kyra Fuzzer. The user source accepts
hit addresses reported by cooperative targets; the hardware trace and
breakpoint sources are conforming placeholders that collect nothing until a
platform backend lands behind them.
*/

package coverage

import (
	"fmt"
	"sync"

	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// NewSource builds the backend for the given coverage type
func NewSource(coverageType interfaces.CoverageType) (interfaces.CoverageSource, error) {
	switch coverageType {
	case interfaces.CoverageUser:
		return NewUserSource(), nil
	case interfaces.CoverageHardware:
		return newPlaceholderSource("hardware-trace"), nil
	case interfaces.CoverageBreakpoint:
		return newPlaceholderSource("breakpoint"), nil
	case interfaces.CoverageNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown coverage type %d", coverageType)
	}
}

// UserSource collects coverage from targets that report their own hit
// addresses through Report. Safe for concurrent reporters.
type UserSource struct {
	mu         sync.Mutex
	target     string
	enabled    bool
	collecting bool
	hits       map[uint64]struct{}
	lastNew    uint64
}

// NewUserSource creates an empty user-reported coverage source
func NewUserSource() *UserSource {
	return &UserSource{hits: make(map[uint64]struct{})}
}

// Initialize binds the source to a target name
func (s *UserSource) Initialize(targetName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = targetName
	return nil
}

// Enable accepts only the user coverage type
func (s *UserSource) Enable(coverageType interfaces.CoverageType) error {
	if coverageType != interfaces.CoverageUser {
		return fmt.Errorf("user source cannot provide %s coverage", coverageType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	return nil
}

// Disable stops accepting reports
func (s *UserSource) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.collecting = false
	return nil
}

// IsEnabled reports whether the source accepts reports
func (s *UserSource) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// StartCollection begins a collection window
func (s *UserSource) StartCollection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return fmt.Errorf("user source is not enabled")
	}
	s.collecting = true
	return nil
}

// StopCollection ends the collection window
func (s *UserSource) StopCollection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collecting = false
	return nil
}

// Report records hit addresses from the target harness. Reports outside a
// collection window are dropped.
func (s *UserSource) Report(addresses []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.collecting {
		return
	}
	var fresh uint64
	for _, addr := range addresses {
		if _, seen := s.hits[addr]; !seen {
			s.hits[addr] = struct{}{}
			fresh++
		}
	}
	s.lastNew = fresh
}

// Snapshot returns the accumulated hit set
func (s *UserSource) Snapshot() *interfaces.CoverageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	addresses := make([]uint64, 0, len(s.hits))
	for addr := range s.hits {
		addresses = append(addresses, addr)
	}
	return &interfaces.CoverageInfo{
		TotalBlocks:  uint64(len(s.hits)),
		NewBlocks:    s.lastNew,
		HitAddresses: addresses,
	}
}

// Reset clears the hit set
func (s *UserSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = make(map[uint64]struct{})
	s.lastNew = 0
}

// placeholderSource satisfies the contract without collecting anything.
// Stands in for trace backends that need platform support.
type placeholderSource struct {
	mu      sync.Mutex
	kind    string
	enabled bool
}

func newPlaceholderSource(kind string) *placeholderSource {
	return &placeholderSource{kind: kind}
}

func (s *placeholderSource) Initialize(targetName string) error { return nil }

func (s *placeholderSource) Enable(coverageType interfaces.CoverageType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	return nil
}

func (s *placeholderSource) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	return nil
}

func (s *placeholderSource) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *placeholderSource) StartCollection() error { return nil }

func (s *placeholderSource) StopCollection() error { return nil }

func (s *placeholderSource) Snapshot() *interfaces.CoverageInfo {
	return &interfaces.CoverageInfo{}
}

func (s *placeholderSource) Reset() {}
