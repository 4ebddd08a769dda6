package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/coban-api/internal/api"
	"github.com/phrazzld/coban-api/internal/api/shared"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/pairing"
	"github.com/phrazzld/coban-api/internal/platform/memory"
	"github.com/phrazzld/coban-api/internal/service/game"
	session "github.com/phrazzld/coban-api/internal/service/score_session"
	"github.com/phrazzld/coban-api/internal/store"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	handler  http.Handler
	sessions *session.Manager
	games    *game.Service
}

func newTestServer(t *testing.T, scoreStore store.ScoreStore) testServer {
	t.Helper()
	if scoreStore == nil {
		scoreStore = memory.NewScoreStore(nil)
	}
	sessions := session.NewManager(scoreStore, discardLogger())
	games := game.NewService(sessions, nil, game.Config{
		Language: "en",
		EngineOptions: []pairing.Option{
			pairing.WithScheduler(pairing.ImmediateScheduler{}),
			pairing.WithShuffle(pairing.NoShuffle),
		},
	}, discardLogger())

	return testServer{
		handler: api.NewRouter(api.RouterDeps{
			Sessions: sessions,
			Games:    games,
			Store:    scoreStore,
			Logger:   discardLogger(),
		}),
		sessions: sessions,
		games:    games,
	}
}

func (s testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	return decode[shared.ErrorResponse](t, rr)
}

// failingStore reports every operation as a storage failure.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (*domain.UserScore, error) {
	return nil, store.ErrStorageUnavailable
}

func (failingStore) Put(context.Context, string, *domain.UserScore) error {
	return store.ErrStorageUnavailable
}

func (failingStore) CreateDefault(context.Context, string, domain.Level) (*domain.UserScore, error) {
	return nil, store.ErrStorageUnavailable
}

func (failingStore) Delete(context.Context, string) error { return store.ErrStorageUnavailable }

func (failingStore) Validate(context.Context) bool { return false }
