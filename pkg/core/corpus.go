/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: Corpus manager for the Kyra Fuzzer. Maintains the evolving set
of interesting inputs behind a single mutex, serves uniform parent samples to
workers, and persists entries to and from a corpus directory.
*/

package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/kleascm/kyra-fuzzer/pkg/rng"
)

// ErrEmptyCorpus is returned by sampling operations on an empty corpus
var ErrEmptyCorpus = errors.New("corpus is empty")

// corpusEntry pairs an input with an advisory provenance tag. The tag is
// never consulted for correctness.
type corpusEntry struct {
	data       []byte
	provenance string
	id         string
}

// CorpusManager holds the inputs worth keeping, either user-provided seeds
// or mutants that produced new coverage. Entries are never empty. All
// operations are safe for concurrent use; critical sections are short and
// never span a target execution.
type CorpusManager struct {
	mu      sync.RWMutex
	entries []corpusEntry
}

// NewCorpusManager creates an empty corpus manager
func NewCorpusManager() *CorpusManager {
	return &CorpusManager{}
}

// Add appends input to the corpus. Empty inputs are ignored. No content
// deduplication happens here; the coverage path has already established
// novelty before calling.
func (c *CorpusManager) Add(input []byte, provenance string) {
	if len(input) == 0 {
		return
	}
	entry := corpusEntry{
		data:       append([]byte(nil), input...),
		provenance: provenance,
		id:         uuid.New().String(),
	}
	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()
}

// SampleOne returns a uniformly chosen input, or ErrEmptyCorpus
func (c *CorpusManager) SampleOne(g *rng.RNG) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return nil, ErrEmptyCorpus
	}
	return c.entries[g.Intn(len(c.entries))].data, nil
}

// SamplePair returns two independent uniform samples. The same entry may
// come back twice.
func (c *CorpusManager) SamplePair(g *rng.RNG) ([]byte, []byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return nil, nil, ErrEmptyCorpus
	}
	first := c.entries[g.Intn(len(c.entries))].data
	second := c.entries[g.Intn(len(c.entries))].data
	return first, second, nil
}

// Size returns the current entry count
func (c *CorpusManager) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LoadFromDirectory appends every non-empty regular file under path as a
// seed entry. Subdirectories, empty files, and unreadable files are skipped.
func (c *CorpusManager) LoadFromDirectory(path string) error {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to read corpus directory: %w", err)
	}
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, de.Name()))
		if err != nil || len(data) == 0 {
			continue
		}
		c.Add(data, "seed")
	}
	return nil
}

// SaveToDirectory writes each entry to input_<i>.bin under path, creating
// the directory if needed and overwriting files of the same name.
func (c *CorpusManager) SaveToDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	c.mu.RLock()
	snapshot := make([][]byte, len(c.entries))
	for i, e := range c.entries {
		snapshot[i] = e.data
	}
	c.mu.RUnlock()

	for i, data := range snapshot {
		name := filepath.Join(path, fmt.Sprintf("input_%d.bin", i))
		if err := os.WriteFile(name, data, 0644); err != nil {
			return fmt.Errorf("failed to write corpus entry %d: %w", i, err)
		}
	}
	return nil
}
