package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rezonant/cardsagainst/internal/config"
	"github.com/rezonant/cardsagainst/internal/game"
	"github.com/rezonant/cardsagainst/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListDecks(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := get(t, env.server.URL+"/api/decks")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decks []game.Deck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decks))
	require.Len(t, decks, 2)
	assert.Equal(t, "base", decks[0].ID)
	assert.Equal(t, 60, decks[0].AnswerCount)
	assert.False(t, decks[1].Official)
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.ServerConfig, _ *store.Config) {
		cfg.Server.PublicURL = "https://cards.example.com/"
	})

	resp, err := http.Post(env.server.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view sessionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.False(t, view.Started)
	assert.Empty(t, view.Players)
	assert.Nil(t, view.Round)
	assert.Equal(t, game.DefaultRules(), view.GameRules)
	assert.Equal(t, "https://cards.example.com/api/sessions/"+view.ID, view.Links.Session)
	assert.Equal(t, "wss://cards.example.com/ws/sessions/"+view.ID, view.Links.Socket)
	assert.Equal(t, view.Links.Session, resp.Header.Get("Location"))

	_, err = env.store.FindSession(view.ID)
	assert.NoError(t, err)
}

func TestCreateSession_AtCapacity(t *testing.T) {
	env := newTestEnv(t, func(_ *config.ServerConfig, s *store.Config) { s.MaxSessions = 1 })
	env.newSession(t)

	resp, err := http.Post(env.server.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, KindExhausted, body.Kind)
}

func TestGetSession(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.newSession(t)
	_, err := session.Join("alice", "Alice")
	require.NoError(t, err)

	resp := get(t, env.server.URL+"/api/sessions/"+session.ID())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view sessionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.True(t, view.Started)
	require.Len(t, view.Players, 1)
	assert.Equal(t, "Alice", view.Players[0].DisplayName)
	require.NotNil(t, view.Round)
	assert.Equal(t, 1, view.Round.Number)
	assert.Equal(t, "alice", view.Round.TsarPlayerID)
	assert.Equal(t, game.PhaseAnswering, view.Round.Phase)

}

func TestSessionNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/sessions/nope", "/api/sessions/nope/history", "/api/sessions/nope/qr"} {
		t.Run(path, func(t *testing.T) {
			resp := get(t, env.server.URL+path)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			var body ErrorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, KindNotFound, body.Kind)
		})
	}
}

func TestSessionHistory(t *testing.T) {
	env := newTestEnv(t, func(_ *config.ServerConfig, s *store.Config) {
		s.Defaults.Rules.CzarCanDeclareADraw = true
	})
	session := env.newSession(t)
	alice, err := session.Join("alice", "Alice")
	require.NoError(t, err)

	// Alone, the czar plays and the house pads the answers
	require.NoError(t, alice.SubmitAnswer([]string{alice.Hand()[0].ID}))
	require.NoError(t, alice.DeclareDraw())
	require.NoError(t, alice.StartNextRound())

	resp := get(t, env.server.URL+"/api/sessions/"+session.ID()+"/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []game.Round
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Number)
	assert.Equal(t, game.PhaseFinished, history[0].Phase)
	assert.Nil(t, history[0].Winner)
}

func TestSessionQRCode(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.newSession(t)

	resp := get(t, env.server.URL+"/api/sessions/"+session.ID()+"/qr")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG\r\n\x1a\n")), "png signature")
}

func TestBaseURL(t *testing.T) {
	h := New(nil, nil)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"plain", nil, "http://example.com"},
		{"forwarded proto", map[string]string{"X-Forwarded-Proto": "https"}, "https://example.com"},
		{"forwarded host", map[string]string{"X-Forwarded-Host": "cards.test"}, "http://cards.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/api/sessions", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, h.baseURL(req))
		})
	}
}

func TestPlayerIdentity(t *testing.T) {
	t.Run("query wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?playerId=alice", nil)
		req.AddCookie(&http.Cookie{Name: playerCookie, Value: "bob"})
		id, cookie := playerIdentity(req)
		assert.Equal(t, "alice", id)
		assert.Nil(t, cookie)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: playerCookie, Value: "bob"})
		id, cookie := playerIdentity(req)
		assert.Equal(t, "bob", id)
		assert.Nil(t, cookie)
	})

	t.Run("fresh id", func(t *testing.T) {
		id, cookie := playerIdentity(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, id, 36)
		require.NotNil(t, cookie)
		assert.Equal(t, id, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})
}
