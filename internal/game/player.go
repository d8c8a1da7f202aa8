package game

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/rezonant/cardsagainst/internal/events"
)

// PlayerSession is one player's seat in a Session. It forwards the player's
// intents to the Session, tracks live connections and carries the player's
// private event streams.
type PlayerSession struct {
	id      string
	session *Session

	// Guarded by session.mu
	player Player
	hand   []AnswerCard

	cards      *events.Topic[[]AnswerCard]
	messages   *events.Topic[string]
	judgements *events.Topic[JudgementRequest]

	gracePeriod time.Duration
	notifyDelay time.Duration

	connMu      sync.Mutex
	connections map[string]struct{}
	nextConn    uint64
	generation  uint64 // bumped on every connect and disconnect; stale timers compare against it
	timer       *time.Timer
}

func newPlayerSession(s *Session, player Player) *PlayerSession {
	return &PlayerSession{
		id:          player.ID,
		session:     s,
		player:      player,
		cards:       events.NewTopic[[]AnswerCard](events.DefaultBuffer),
		messages:    events.NewTopic[string](events.DefaultBuffer),
		judgements:  events.NewTopic[JudgementRequest](events.DefaultBuffer),
		gracePeriod: s.opts.GracePeriod,
		notifyDelay: s.opts.NotificationDelay,
		connections: make(map[string]struct{}),
	}
}

// ID returns the player's stable id
func (p *PlayerSession) ID() string {
	return p.id
}

// Player returns the player's current public identity
func (p *PlayerSession) Player() Player {
	p.session.mu.Lock()
	defer p.session.mu.Unlock()
	return p.player
}

// Session returns the game this seat belongs to
func (p *PlayerSession) Session() *Session {
	return p.session
}

func (p *PlayerSession) SubmitAnswer(cardIDs []string) error {
	return p.session.SubmitAnswer(p, cardIDs)
}

func (p *PlayerSession) PickAnswer(answerID string) error {
	return p.session.PickAnswer(p, answerID)
}

func (p *PlayerSession) RevealAnswer(answerID string) error {
	return p.session.RevealAnswer(p, answerID)
}

func (p *PlayerSession) DeclareDraw() error {
	return p.session.DeclareDraw(p)
}

func (p *PlayerSession) StartNextRound() error {
	return p.session.StartNextRound(p)
}

func (p *PlayerSession) SetEnabledDecks(deckIDs []string) error {
	return p.session.SetEnabledDecks(p, deckIDs)
}

func (p *PlayerSession) SetGameRules(rules GameRules) error {
	return p.session.SetGameRules(p, rules)
}

// Hand returns a copy of the player's answer cards
func (p *PlayerSession) Hand() []AnswerCard {
	return p.session.Hand(p)
}

// LeaveGame removes the player right away, skipping the grace period
func (p *PlayerSession) LeaveGame() error {
	p.connMu.Lock()
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.connMu.Unlock()

	return p.session.RemovePlayer(p)
}

// CardsChanged streams the player's hand every time it changes
func (p *PlayerSession) CardsChanged() (<-chan []AnswerCard, func()) {
	return p.cards.Subscribe()
}

// Messages streams short notifications meant for this player
func (p *PlayerSession) Messages() (<-chan string, func()) {
	return p.messages.Subscribe()
}

// JudgementRequests is reserved for judge prompts. Nothing publishes to it yet.
func (p *PlayerSession) JudgementRequests() (<-chan JudgementRequest, func()) {
	return p.judgements.Subscribe()
}

// Connect registers a live connection and cancels any pending departure
func (p *PlayerSession) Connect() string {
	p.connMu.Lock()
	defer p.connMu.Unlock()

	p.nextConn++
	connID := strconv.FormatUint(p.nextConn, 10)
	p.connections[connID] = struct{}{}

	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return connID
}

// Disconnect drops a connection. When it was the last one the player has
// gracePeriod to reconnect before being removed from the game.
func (p *PlayerSession) Disconnect(connID string) {
	p.connMu.Lock()
	defer p.connMu.Unlock()

	if _, ok := p.connections[connID]; !ok {
		return
	}
	delete(p.connections, connID)
	if len(p.connections) > 0 {
		return
	}

	p.generation++
	gen := p.generation
	p.timer = time.AfterFunc(p.gracePeriod, func() { p.graceExpired(gen) })
}

// Connected reports whether the player has at least one live connection
func (p *PlayerSession) Connected() bool {
	p.connMu.Lock()
	defer p.connMu.Unlock()
	return len(p.connections) > 0
}

func (p *PlayerSession) graceExpired(gen uint64) {
	p.connMu.Lock()
	stale := gen == p.generation && len(p.connections) == 0
	p.connMu.Unlock()
	if !stale {
		return
	}

	if err := p.session.removeIfStale(p, gen); err != nil {
		log.Printf("❌ Failed to remove player %s from session %s: %v", p.id, p.session.ID(), err)
	}
}

// Notify queues a notification. Delivery is delayed slightly so a client that
// is still mounting its UI does not miss it.
func (p *PlayerSession) Notify(msg string) {
	if p.notifyDelay <= 0 {
		p.messages.Publish(msg)
		return
	}
	time.AfterFunc(p.notifyDelay, func() { p.messages.Publish(msg) })
}

// publishHand must be called with session.mu held
func (p *PlayerSession) publishHand() {
	p.cards.Publish(append([]AnswerCard(nil), p.hand...))
}
