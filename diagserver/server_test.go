// SPDX-License-Identifier: MIT

package diagserver

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefold/diaglog/metrics"
	"github.com/corefold/diaglog/zlog"
)

func setupHandler(t *testing.T) http.Handler {
	t.Helper()
	orig := zlog.CurrentFilter()
	zlog.Reconfigure(zlog.Config{Output: &bytes.Buffer{}, Service: "test", Filter: "info"})
	t.Cleanup(func() { zlog.SetFilter(orig) })
	return Handler(Config{})
}

func TestHealthz(t *testing.T) {
	h := setupHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupHandler(t)
	metrics.RecordLogEvent("info")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "diaglog_log_events_total")
}

func TestRequestID_GeneratedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	orig := zlog.CurrentFilter()
	zlog.Reconfigure(zlog.Config{Output: &buf, Service: "test", Filter: "debug"})
	t.Cleanup(func() { zlog.SetFilter(orig) })
	h := Handler(Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	id := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, id, "response must carry a request ID")
	assert.Contains(t, buf.String(), `"`+zlog.FieldRequestID+`":"`+id+`"`)
}

func TestRequestID_EchoesCallerProvided(t *testing.T) {
	h := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestGetFilter(t *testing.T) {
	h := setupHandler(t)
	zlog.SetFilter(zlog.MustParseFilter("warn,renderer=error"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logging", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "warn,renderer=error\n", rec.Body.String())
}

func TestPutFilter_SwapsFilter(t *testing.T) {
	h := setupHandler(t)
	zlog.SetFilter(zlog.MustParseFilter("info"))

	req := httptest.NewRequest(http.MethodPut, "/logging", strings.NewReader("debug,assets=error\n"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "debug,assets=error\n", rec.Body.String())
	assert.Equal(t, "debug,assets=error", zlog.CurrentFilter().String())
}

func TestPutFilter_RejectsInvalid(t *testing.T) {
	h := setupHandler(t)
	zlog.SetFilter(zlog.MustParseFilter("info"))

	req := httptest.NewRequest(http.MethodPut, "/logging", strings.NewReader("renderer=loud"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "info", zlog.CurrentFilter().String(),
		"active filter must be untouched after a rejected swap")
}

func TestPutFilter_RejectsEmptyBody(t *testing.T) {
	h := setupHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/logging", strings.NewReader("  \n"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	orig := zlog.CurrentFilter()
	zlog.Reconfigure(zlog.Config{Output: &bytes.Buffer{}, Service: "test", Filter: "info"})
	t.Cleanup(func() { zlog.SetFilter(orig) })

	h := Handler(Config{RequestsPerMinute: 2})

	var lastCode int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.7:4711"
		h.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
