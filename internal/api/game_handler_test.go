package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/api"
	"github.com/phrazzld/coban-api/internal/domain/pairing"
	"github.com/phrazzld/coban-api/internal/service/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRequest() api.StartGameRequest {
	return api.StartGameRequest{
		UserID: "u1",
		Words: []api.WordRequest{
			{ID: "w1", ParentID: "日", Text: "日曜日", Reading: "にちようび", Meanings: map[string]string{"en": "Sunday"}},
			{ID: "w2", ParentID: "日", Text: "毎日", Reading: "まいにち", Meanings: map[string]string{"en": "every day"}},
		},
	}
}

func startGame(t *testing.T, s testServer) api.GameResponse {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/games", startRequest())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[api.GameResponse](t, rr)
}

func clickCard(t *testing.T, s testServer, id uuid.UUID, card string) api.ClickResponse {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/games/"+id.String()+"/click", api.ClickRequest{CardID: card})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[api.ClickResponse](t, rr)
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	t.Run("deals the board", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)

		g := startGame(t, s)
		assert.Equal(t, "u1", g.UserID)
		assert.Equal(t, pairing.PhasePlaying, g.State.Phase)
		assert.Len(t, g.State.PromptCards, 2)
		assert.Equal(t, 100, g.State.Score)

		rr := s.do(t, http.MethodGet, "/api/games/"+g.ID.String(), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, g.ID, decode[api.GameResponse](t, rr).ID)
	})

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing user", `{"words":[{"id":"w1","parentId":"日"}]}`},
		{"no words", `{"userId":"u1","words":[]}`},
		{"word without parent", `{"userId":"u1","words":[{"id":"w1"}]}`},
		{"unknown cards", `{"userId":"u1","cards":"kanji","words":[{"id":"w1","parentId":"日"}]}`},
		{"duplicate words", `{"userId":"u1","words":[{"id":"w1","parentId":"日"},{"id":"w1","parentId":"日"}]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, nil)
			rr := s.do(t, http.MethodPost, "/api/games", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestGameLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	g := startGame(t, s)

	resp := clickCard(t, s, g.ID, "p-w1")
	assert.Equal(t, pairing.ClickSelected, resp.Outcome.Result)

	resp = clickCard(t, s, g.ID, "a-w2")
	assert.Equal(t, pairing.ClickMismatched, resp.Outcome.Result)
	assert.Equal(t, 0, resp.State.Score)

	rr := s.do(t, http.MethodPost, "/api/games/"+g.ID.String()+"/finish", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	clickCard(t, s, g.ID, "p-w1")
	clickCard(t, s, g.ID, "a-w1")
	clickCard(t, s, g.ID, "p-w2")
	resp = clickCard(t, s, g.ID, "a-w2")
	assert.Equal(t, pairing.PhaseGameComplete, resp.State.Phase)
	assert.True(t, resp.State.CanRetry)

	rr = s.do(t, http.MethodPost, "/api/games/"+g.ID.String()+"/click", api.ClickRequest{CardID: "p-w1"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/games/"+g.ID.String()+"/retry", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	retried := decode[api.GameResponse](t, rr)
	assert.True(t, retried.State.RetryMode)
	assert.Equal(t, pairing.PhasePlaying, retried.State.Phase)

	clickCard(t, s, g.ID, "p-w1")
	clickCard(t, s, g.ID, "a-w1")
	clickCard(t, s, g.ID, "p-w2")
	clickCard(t, s, g.ID, "a-w2")

	rr = s.do(t, http.MethodPost, "/api/games/"+g.ID.String()+"/finish", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[game.FinishResult](t, rr)
	assert.Len(t, result.Results, 2)
	for _, r := range result.Results {
		assert.False(t, r.IsCorrect)
	}

	rr = s.do(t, http.MethodGet, "/api/games/"+g.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/users/u1/parents/日", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[api.ParentResponse](t, rr).Mastery.Words, 2)
}

func TestGameErrors(t *testing.T) {
	t.Parallel()

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		rr := s.do(t, http.MethodGet, "/api/games/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown game", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		rr := s.do(t, http.MethodPost, "/api/games/"+uuid.NewString()+"/click", api.ClickRequest{CardID: "p-w1"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Game not found", errorBody(t, rr).Error)
	})

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		g := startGame(t, s)
		rr := s.do(t, http.MethodPost, "/api/games/"+g.ID.String()+"/click", api.ClickRequest{CardID: "p-zz"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("nothing to retry", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		g := startGame(t, s)
		rr := s.do(t, http.MethodPost, "/api/games/"+g.ID.String()+"/retry", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("discard", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		g := startGame(t, s)
		rr := s.do(t, http.MethodDelete, "/api/games/"+g.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Zero(t, s.games.Len())

		rr = s.do(t, http.MethodDelete, "/api/games/"+g.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
