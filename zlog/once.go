// SPDX-License-Identifier: MIT

package zlog

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/corefold/diaglog/metrics"
)

// Hosts running a frame loop repeat the same diagnostic every tick. Once and
// Every gate emission per call-site key so the first occurrence is logged and
// the rest are counted instead of written.

var (
	onceMu   sync.Mutex
	onceSeen map[string]struct{}

	sampleMu sync.Mutex
	samplers map[string]*rate.Limiter
)

// Once reports whether key is seen for the first time. Suppressed repeats
// are counted in the diaglog_log_suppressed_total metric.
func Once(key string) bool {
	onceMu.Lock()
	defer onceMu.Unlock()
	if onceSeen == nil {
		onceSeen = make(map[string]struct{})
	}
	if _, ok := onceSeen[key]; ok {
		metrics.RecordSuppressed("once")
		return false
	}
	onceSeen[key] = struct{}{}
	return true
}

// Every reports whether an event for key may be emitted now, allowing at
// most one emission per interval. Suppressed events are counted.
func Every(key string, interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	sampleMu.Lock()
	lim, ok := samplers[key]
	if !ok {
		if samplers == nil {
			samplers = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(interval), 1)
		samplers[key] = lim
	}
	sampleMu.Unlock()

	if lim.Allow() {
		return true
	}
	metrics.RecordSuppressed("sampled")
	return false
}

// ResetOnce clears the once and sampled registries. Test helper.
func ResetOnce() {
	onceMu.Lock()
	onceSeen = nil
	onceMu.Unlock()
	sampleMu.Lock()
	samplers = nil
	sampleMu.Unlock()
}
