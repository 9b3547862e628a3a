// SPDX-License-Identifier: MIT

package zlog

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/corefold/diaglog/metrics"
)

func TestOnce(t *testing.T) {
	ResetOnce()
	t.Cleanup(ResetOnce)

	before := testutil.ToFloat64(metrics.LogSuppressed.WithLabelValues("once"))

	if !Once("asset.missing:door.png") {
		t.Error("first Once must be true")
	}
	if Once("asset.missing:door.png") {
		t.Error("second Once must be false")
	}
	if Once("asset.missing:door.png") {
		t.Error("third Once must be false")
	}
	if !Once("asset.missing:window.png") {
		t.Error("distinct key must be true")
	}

	after := testutil.ToFloat64(metrics.LogSuppressed.WithLabelValues("once"))
	if after-before != 2 {
		t.Errorf("expected 2 suppressed once events, got %v", after-before)
	}
}

func TestEvery(t *testing.T) {
	ResetOnce()
	t.Cleanup(ResetOnce)

	if !Every("frame.slow", time.Hour) {
		t.Error("first Every must be true")
	}
	if Every("frame.slow", time.Hour) {
		t.Error("second Every within interval must be false")
	}
	if !Every("frame.other", time.Hour) {
		t.Error("distinct key must be true")
	}
}

func TestEvery_NonPositiveIntervalAlwaysAllows(t *testing.T) {
	ResetOnce()
	t.Cleanup(ResetOnce)

	for i := 0; i < 3; i++ {
		if !Every("always", 0) {
			t.Fatal("zero interval must always allow")
		}
	}
}

func TestEvery_AllowsAgainAfterInterval(t *testing.T) {
	ResetOnce()
	t.Cleanup(ResetOnce)

	const interval = 20 * time.Millisecond
	if !Every("recover", interval) {
		t.Fatal("first Every must be true")
	}
	if Every("recover", interval) {
		t.Fatal("second Every within interval must be false")
	}
	time.Sleep(interval + 10*time.Millisecond)
	if !Every("recover", interval) {
		t.Error("Every must allow again after the interval")
	}
}
