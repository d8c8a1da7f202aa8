package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rezonant/cardsagainst/internal/config"
	"github.com/rezonant/cardsagainst/internal/game"
	"github.com/rezonant/cardsagainst/internal/store"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *game.Catalog {
	t.Helper()
	set := game.CardSet{Name: "Base", Official: true}
	for i := 0; i < 60; i++ {
		set.White = append(set.White, game.WhiteCard{Text: fmt.Sprintf("answer %d", i)})
	}
	for i := 0; i < 5; i++ {
		set.Black = append(set.Black, game.BlackCard{Text: fmt.Sprintf("prompt %d ____", i), Pick: 1})
	}
	extra := game.CardSet{Name: "Extra"}
	for i := 0; i < 10; i++ {
		extra.White = append(extra.White, game.WhiteCard{Text: fmt.Sprintf("extra %d", i)})
	}
	c, err := game.NewCatalog([]game.CardSet{set, extra})
	require.NoError(t, err)
	return c
}

type testEnv struct {
	store   *store.MemoryStore
	handler *Handler
	config  *config.ServerConfig
	server  *httptest.Server
}

// newTestEnv serves the full router over a real listener
func newTestEnv(t *testing.T, mutate func(*config.ServerConfig, *store.Config)) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	storeCfg := store.Config{Defaults: game.DefaultOptions(), Seed: 1}
	storeCfg.Defaults.NotificationDelay = 0
	storeCfg.Defaults.HandSize = 5
	storeCfg.Defaults.GracePeriod = 50 * time.Millisecond
	if mutate != nil {
		mutate(cfg, &storeCfg)
	}

	s := store.NewMemoryStore(testCatalog(t), storeCfg)
	h := New(s, cfg)
	srv := httptest.NewServer(SetupRouter(h, cfg, &RouterOptions{
		DisableRateLimiting:  true,
		DisableRequestLogger: true,
	}))
	t.Cleanup(srv.Close)

	return &testEnv{store: s, handler: h, config: cfg, server: srv}
}

func (e *testEnv) newSession(t *testing.T) *game.Session {
	t.Helper()
	session, err := e.store.CreateSession()
	require.NoError(t, err)
	return session
}
