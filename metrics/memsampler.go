// SPDX-License-Identifier: MIT

package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HeapAllocBytes is the currently allocated heap, refreshed by the sampler.
	HeapAllocBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "diaglog",
		Subsystem: "mem",
		Name:      "heap_alloc_bytes",
		Help:      "Bytes of allocated heap objects",
	})

	// HeapSysBytes is heap memory obtained from the OS.
	HeapSysBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "diaglog",
		Subsystem: "mem",
		Name:      "heap_sys_bytes",
		Help:      "Bytes of heap memory obtained from the OS",
	})

	// HeapObjects is the number of live heap objects.
	HeapObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "diaglog",
		Subsystem: "mem",
		Name:      "heap_objects",
		Help:      "Number of allocated heap objects",
	})

	// GCPauseTotalSeconds is the cumulative GC stop-the-world pause time.
	GCPauseTotalSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "diaglog",
		Subsystem: "mem",
		Name:      "gc_pause_total_seconds",
		Help:      "Cumulative GC stop-the-world pause time",
	})

	// GCCycles is the number of completed GC cycles.
	GCCycles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "diaglog",
		Subsystem: "mem",
		Name:      "gc_cycles_total",
		Help:      "Completed GC cycles",
	})

	// Goroutines is the current goroutine count.
	Goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "diaglog",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})
)

// MemSampler periodically publishes runtime memory statistics. It backs the
// trace-memory feature and is cheap enough to leave on in production.
type MemSampler struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemSampler creates a sampler with the given interval. Intervals below
// one second are clamped to one second to keep ReadMemStats pressure low.
func NewMemSampler(interval time.Duration) *MemSampler {
	if interval < time.Second {
		interval = time.Second
	}
	return &MemSampler{interval: interval}
}

// Start launches the sampling goroutine. Calling Start on a running sampler
// is a no-op.
func (s *MemSampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.sample()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop cancels the sampling goroutine and waits for it to exit.
func (s *MemSampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *MemSampler) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	HeapAllocBytes.Set(float64(ms.HeapAlloc))
	HeapSysBytes.Set(float64(ms.HeapSys))
	HeapObjects.Set(float64(ms.HeapObjects))
	GCPauseTotalSeconds.Set(float64(ms.PauseTotalNs) / 1e9)
	GCCycles.Set(float64(ms.NumGC))
	Goroutines.Set(float64(runtime.NumGoroutine()))
}
