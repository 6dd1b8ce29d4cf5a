/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: resource.go
Description: Process resource sampler for the Kyra Fuzzer. Snapshots the
Go runtime's memory and goroutine state so the monitor can report resource
usage alongside fuzzing throughput and flag runaway growth.
*/

package monitoring

import (
	"runtime"
	"sync"
)

// ResourceSnapshot is one observation of process resource usage
type ResourceSnapshot struct {
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64 `json:"heap_sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
	Goroutines     int    `json:"goroutines"`
}

// HeapAllocMB returns the live heap in megabytes
func (s *ResourceSnapshot) HeapAllocMB() float64 {
	return float64(s.HeapAllocBytes) / (1024 * 1024)
}

// ResourceSampler takes runtime snapshots and tracks observed peaks
type ResourceSampler struct {
	mu             sync.Mutex
	peakHeapBytes  uint64
	peakGoroutines int
}

// NewResourceSampler creates an empty sampler
func NewResourceSampler() *ResourceSampler {
	return &ResourceSampler{}
}

// Sample reads the current runtime state and updates the peaks
func (r *ResourceSampler) Sample() *ResourceSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snapshot := &ResourceSnapshot{
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		NumGC:          mem.NumGC,
		Goroutines:     runtime.NumGoroutine(),
	}

	r.mu.Lock()
	if snapshot.HeapAllocBytes > r.peakHeapBytes {
		r.peakHeapBytes = snapshot.HeapAllocBytes
	}
	if snapshot.Goroutines > r.peakGoroutines {
		r.peakGoroutines = snapshot.Goroutines
	}
	r.mu.Unlock()

	return snapshot
}

// PeakHeapBytes returns the largest heap observed by Sample
func (r *ResourceSampler) PeakHeapBytes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peakHeapBytes
}

// PeakGoroutines returns the highest goroutine count observed by Sample
func (r *ResourceSampler) PeakGoroutines() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peakGoroutines
}
