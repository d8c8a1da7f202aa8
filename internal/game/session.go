package game

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rezonant/cardsagainst/internal/events"
)

const (
	DefaultHandSize          = 10
	DefaultGracePeriod       = 30 * time.Second
	DefaultNotificationDelay = 100 * time.Millisecond
	DefaultHistoryLimit      = 50
	DefaultMinAnswerCards    = 50
	DefaultMinPromptCards    = 1
)

// Options configures a new Session
type Options struct {
	HandSize          int
	GracePeriod       time.Duration
	NotificationDelay time.Duration
	HistoryLimit      int
	MinAnswerCards    int
	MinPromptCards    int
	Rules             GameRules
	DeckIDs           []string   // decks enabled at creation; catalog defaults when empty
	Rand              *rand.Rand // dealing, prompt and shuffle randomness; seeded from the clock when nil
	OnEmpty           func(sessionID string)
}

// DefaultOptions returns the standard session settings
func DefaultOptions() Options {
	return Options{
		HandSize:          DefaultHandSize,
		GracePeriod:       DefaultGracePeriod,
		NotificationDelay: DefaultNotificationDelay,
		HistoryLimit:      DefaultHistoryLimit,
		MinAnswerCards:    DefaultMinAnswerCards,
		MinPromptCards:    DefaultMinPromptCards,
		Rules:             DefaultRules(),
	}
}

// Session is the authoritative coordinator of one game. All mutations run
// under a single lock, so operations on one game never interleave.
type Session struct {
	id      string
	catalog *Catalog
	opts    Options

	mu         sync.Mutex
	rng        *rand.Rand
	pool       *CardPool
	roster     []*PlayerSession // join order; tsarIndex points into it
	idle       map[string]*PlayerSession
	host       *PlayerSession
	tsarIndex  int
	started    bool
	round      Round
	prompt     PromptCard
	pending    []PendingAnswer
	history    []Round // newest first
	rules      GameRules
	enabled    []Deck
	enabledSet deckSet
	fault      error
	closed     bool

	rounds *events.Latest[Round]
}

// NewSession creates an empty game over the given catalog
func NewSession(id string, catalog *Catalog, opts Options) (*Session, error) {
	if opts.HandSize <= 0 {
		opts.HandSize = DefaultHandSize
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.MinPromptCards <= 0 {
		opts.MinPromptCards = DefaultMinPromptCards
	}
	if opts.Rules == (GameRules{}) {
		opts.Rules = DefaultRules()
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}

	deckIDs := opts.DeckIDs
	if len(deckIDs) == 0 {
		deckIDs = catalog.DefaultDeckIDs()
	}
	decks, err := catalog.Resolve(deckIDs)
	if err != nil {
		return nil, err
	}
	if len(decks) == 0 {
		return nil, ErrNoDecks
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	s := &Session{
		id:        id,
		catalog:   catalog,
		opts:      opts,
		rng:       rng,
		pool:      NewCardPool(catalog, rng),
		idle:      make(map[string]*PlayerSession),
		tsarIndex: -1,
		rules:     opts.Rules,
		rounds:    events.NewLatest[Round](events.DefaultBuffer),
	}
	s.setDecks(decks)
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Round returns a private copy of the current round
func (s *Session) Round() Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Clone()
}

// PreviousRounds returns archived rounds, newest first
func (s *Session) PreviousRounds() []Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Round, len(s.history))
	for i, r := range s.history {
		out[i] = r.Clone()
	}
	return out
}

// GameRules returns the current rules
func (s *Session) GameRules() GameRules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules
}

// EnabledDecks returns the decks cards are currently drawn from
func (s *Session) EnabledDecks() []Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Deck(nil), s.enabled...)
}

// Players returns the active roster in join order
func (s *Session) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players()
}

// Hand returns a copy of a player's hand
func (s *Session) Hand(p *PlayerSession) []AnswerCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AnswerCard(nil), p.hand...)
}

// Started reports whether the first round has begun
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Closed reports whether the session was shut down after its last player left
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Err returns the fault that stopped the session, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// SubscribeRounds streams round snapshots. The current round, if any, is delivered first.
func (s *Session) SubscribeRounds() (<-chan Round, func()) {
	return s.rounds.Subscribe()
}

// check validates that p may act on the session. Callers hold s.mu.
func (s *Session) check(p *PlayerSession) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.fault != nil {
		return s.fault
	}
	if s.indexOf(p) < 0 {
		return ErrNotInGame
	}
	return nil
}

func (s *Session) indexOf(p *PlayerSession) int {
	for i, rp := range s.roster {
		if rp == p {
			return i
		}
	}
	return -1
}

func (s *Session) active(playerID string) *PlayerSession {
	for _, p := range s.roster {
		if p.id == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) players() []Player {
	out := make([]Player, len(s.roster))
	for i, p := range s.roster {
		out[i] = p.player
	}
	return out
}

func (s *Session) isTsar(p *PlayerSession) bool {
	return s.tsarIndex >= 0 && s.tsarIndex < len(s.roster) && s.roster[s.tsarIndex] == p
}

func (s *Session) isHost(p *PlayerSession) bool {
	return s.host == p
}

func (s *Session) setDecks(decks []Deck) {
	s.enabled = append([]Deck(nil), decks...)
	s.enabledSet = newDeckSet(decks)
}

// publishRound hands subscribers a private copy of the current round
func (s *Session) publishRound() {
	s.rounds.Publish(s.round.Clone())
}

func (s *Session) announce(except *PlayerSession, msg string) {
	for _, p := range s.roster {
		if p != except {
			p.Notify(msg)
		}
	}
}

// fail records a fatal error. Every later operation returns it.
func (s *Session) fail(err error) error {
	if s.fault == nil {
		s.fault = fmt.Errorf("session %s halted: %w", s.id, err)
		log.Printf("💥 Session %s halted: %v", s.id, err)
		s.announce(nil, "This game can't continue: "+err.Error())
	}
	return s.fault
}

// deal tops the player's hand up to the target size and publishes it if it
// changed. Pass changed when the caller already altered the hand.
func (s *Session) deal(p *PlayerSession, changed bool) error {
	var err error
	for len(p.hand) < s.opts.HandSize {
		var card AnswerCard
		if card, err = s.pool.DrawAnswer(s.enabledSet.has); err != nil {
			break
		}
		p.hand = append(p.hand, card)
		changed = true
	}
	if changed {
		p.publishHand()
	}
	return err
}

// stripDisabled returns hand cards from decks that are no longer enabled and
// reports whether anything was removed
func (s *Session) stripDisabled(p *PlayerSession) bool {
	kept := p.hand[:0:0]
	var removed []AnswerCard
	for _, c := range p.hand {
		if s.enabledSet.has(c.DeckID) {
			kept = append(kept, c)
		} else {
			removed = append(removed, c)
		}
	}
	if len(removed) == 0 {
		return false
	}
	s.pool.ReturnAnswers(removed)
	p.hand = kept
	return true
}

func (s *Session) archive(r Round) {
	s.history = append([]Round{r}, s.history...)
	if len(s.history) > s.opts.HistoryLimit {
		s.history = s.history[:s.opts.HistoryLimit]
	}
}
