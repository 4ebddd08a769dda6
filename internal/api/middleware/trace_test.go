package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/coban-api/internal/api/shared"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTrace string
	var seenLogger *slog.Logger
	h := Trace(base)(RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		seenLogger = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	t.Run("caller trace id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set(shared.TraceIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", seenTrace)
		assert.Equal(t, "abc-123", rr.Header().Get(shared.TraceIDHeader))
		require.NotNil(t, seenLogger)
		assert.Contains(t, logs.String(), `"trace_id":"abc-123"`)
		assert.Contains(t, logs.String(), `"status":418`)
	})

	t.Run("generated trace id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

		assert.NotEmpty(t, seenTrace)
		assert.Equal(t, seenTrace, rr.Header().Get(shared.TraceIDHeader))
	})
}
