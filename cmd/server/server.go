package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rezonant/cardsagainst"
	"github.com/rezonant/cardsagainst/internal/config"
	"github.com/rezonant/cardsagainst/internal/game"
	"github.com/rezonant/cardsagainst/internal/handlers"
	localMiddleware "github.com/rezonant/cardsagainst/internal/middleware"
	"github.com/rezonant/cardsagainst/internal/store"
)

// rateLimiterIdle is how long a client's bucket survives without requests
const rateLimiterIdle = 30 * time.Minute

// App wires configuration, the session store and the HTTP surface together
type App struct {
	Config      *config.ServerConfig
	Store       *store.MemoryStore
	RateLimiter *localMiddleware.RateLimiter
	Router      http.Handler
}

// NewApp builds the application from configuration. opts may be nil.
func NewApp(cfg *config.ServerConfig, opts *handlers.RouterOptions) (*App, error) {
	catalog, err := loadCatalog(cfg.Game.CatalogPath)
	if err != nil {
		return nil, err
	}
	log.Printf("🃏 Loaded %d decks (%d answers, %d prompts)",
		len(catalog.Decks()), len(catalog.AnswerCards()), len(catalog.PromptCards()))

	defaults, err := gameOptions(cfg.Game, catalog)
	if err != nil {
		return nil, err
	}

	s := store.NewMemoryStore(catalog, store.Config{
		Defaults:    defaults,
		MaxSessions: cfg.Server.MaxSessions,
		Seed:        cfg.Game.Seed,
	})

	if opts == nil {
		opts = &handlers.RouterOptions{}
	}
	if opts.RateLimiter == nil && !opts.DisableRateLimiting {
		opts.RateLimiter = localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
	}

	h := handlers.New(s, cfg)
	return &App{
		Config:      cfg,
		Store:       s,
		RateLimiter: opts.RateLimiter,
		Router:      handlers.SetupRouter(h, cfg, opts),
	}, nil
}

// RunJanitor reaps idle sessions and stale rate limiter buckets until ctx is done
func (a *App) RunJanitor(ctx context.Context) {
	interval := a.Config.Server.ReapInterval
	if interval <= 0 {
		return
	}

	reaped := make(chan struct{})
	go func() {
		defer close(reaped)
		a.Store.RunReaper(ctx, interval, a.Config.Server.SessionTimeout)
	}()
	defer func() { <-reaped }()

	if a.RateLimiter == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.RateLimiter.Evict(rateLimiterIdle); n > 0 {
				log.Printf("🧹 Evicted %d idle rate limiter entries", n)
			}
		}
	}
}

// loadCatalog reads the catalog from path, or the embedded cards when path is empty
func loadCatalog(path string) (*game.Catalog, error) {
	if path == "" {
		return game.LoadCatalog(cardsagainst.CardsJSON)
	}
	return game.LoadCatalogFile(path)
}

// gameOptions turns the configured game defaults into session options
func gameOptions(g config.GameSettings, catalog *game.Catalog) (game.Options, error) {
	opts := game.Options{
		HandSize:          g.HandSize,
		GracePeriod:       g.GracePeriod,
		NotificationDelay: g.NotificationDelay,
		HistoryLimit:      g.HistoryLimit,
		MinAnswerCards:    g.MinAnswerCards,
		MinPromptCards:    g.MinPromptCards,
		Rules:             game.GameRules{
			LeavingPlayerWill:   game.LeavingPlayerWill(g.Rules.LeavingPlayerWill),
			CzarIs:              game.CzarIs(g.Rules.CzarIs),
			CzarCanDeclareADraw: g.Rules.CzarCanDeclareADraw,
			CzarPlaysUpTo:       g.Rules.CzarPlaysUpTo,
			HousePlaysUpTo:      g.Rules.HousePlaysUpTo,
		},
	}
	if err := opts.Rules.Validate(); err != nil {
		return game.Options{}, fmt.Errorf("invalid default rules: %w", err)
	}

	if len(g.DefaultDecks) > 0 {
		if _, err := catalog.Resolve(g.DefaultDecks); err != nil {
			return game.Options{}, fmt.Errorf("invalid default decks: %w", err)
		}
		opts.DeckIDs = append([]string(nil), g.DefaultDecks...)
	}
	return opts, nil
}
