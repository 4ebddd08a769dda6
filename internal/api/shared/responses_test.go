package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	RespondWithJSON(rr, httptest.NewRequest("GET", "/", nil), http.StatusCreated, map[string]int{"score": 80})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"score":80}`, rr.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	req := httptest.NewRequest("GET", "/api/users/u1/score", nil)
	ctx := SetTraceID(logger.WithLogger(req.Context(), l), "trace-1")
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	RespondWithErrorAndLog(rr, req, http.StatusServiceUnavailable, "Score storage is unavailable",
		errors.New("dial postgres://coban:hunter22@db:5432/coban"))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Score storage is unavailable", body.Error)
	assert.Equal(t, "trace-1", body.TraceID)
	assert.NotContains(t, rr.Body.String(), "hunter22")

	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.Contains(t, logs.String(), `"trace_id":"trace-1"`)
	assert.NotContains(t, logs.String(), "hunter22")
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	RespondWithError(rr, httptest.NewRequest("GET", "/", nil), http.StatusNotFound, "Game not found")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Game not found"}`, rr.Body.String())
}
