package game

// Game is the read side of a session plus joining
type Game interface {
	ID() string
	Join(playerID, displayName string) (*PlayerSession, error)
	Round() Round
	PreviousRounds() []Round
	GameRules() GameRules
	EnabledDecks() []Deck
	Players() []Player
	SubscribeRounds() (<-chan Round, func())
}

// Participant is everything one seated player can do
type Participant interface {
	ID() string
	SubmitAnswer(cardIDs []string) error
	PickAnswer(answerID string) error
	RevealAnswer(answerID string) error
	DeclareDraw() error
	StartNextRound() error
	SetEnabledDecks(deckIDs []string) error
	SetGameRules(rules GameRules) error
	Hand() []AnswerCard
	LeaveGame() error
	CardsChanged() (<-chan []AnswerCard, func())
	Messages() (<-chan string, func())
	JudgementRequests() (<-chan JudgementRequest, func())
	Connect() string
	Disconnect(connID string)
}

// Registry finds and creates sessions
type Registry interface {
	CreateSession() (*Session, error)
	FindSession(id string) (*Session, error)
	DeleteSession(id string)
	Decks() []Deck
}

var (
	_ Game        = (*Session)(nil)
	_ Participant = (*PlayerSession)(nil)
)
