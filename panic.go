// SPDX-License-Identifier: MIT

package diaglog

import (
	"fmt"
	"runtime/debug"

	"github.com/corefold/diaglog/metrics"
	"github.com/corefold/diaglog/zlog"
)

// CapturePanic logs a recovered panic value with its stack and counts it.
// It does not re-raise; callers decide whether the process survives.
func CapturePanic(component string, value any, stack []byte) {
	metrics.RecordPanic(component)
	logger := zlog.WithComponent(component)
	logger.Error().
		Str(zlog.FieldEvent, "panic.recovered").
		Str(zlog.FieldPanicValue, fmt.Sprint(value)).
		Bytes(zlog.FieldStack, stack).
		Msg("recovered from panic")
}

// Recover is a deferred panic hook for host goroutines:
//
//	defer rt.Recover("asset-loader")
//
// Recovered panics are logged and counted. When the manifest's recover
// backend sets abort, the panic is re-raised after capture so the process
// still dies with the original value.
func (r *Runtime) Recover(component string) {
	v := recover()
	if v == nil {
		return
	}
	CapturePanic(component, v, debug.Stack())
	if r.abortOnPanic {
		panic(v)
	}
}

// Go runs fn on a new goroutine guarded by the runtime's panic hook.
func (r *Runtime) Go(component string, fn func()) {
	go func() {
		defer r.Recover(component)
		fn()
	}()
}
