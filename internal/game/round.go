package game

// Phase is the stage a round is in
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseJudging   Phase = "judging"
	PhaseFinished  Phase = "finished"
)

// Answer is the public view of one submission. AnswerCards stays empty until revealed.
type Answer struct {
	ID          string       `json:"id"`
	AnswerCards []AnswerCard `json:"answerCards"`
	Votes       []string     `json:"votes"`
	Eliminated  bool         `json:"eliminated,omitempty"`
}

// Revealed reports whether the answer's cards are visible
func (a Answer) Revealed() bool {
	return len(a.AnswerCards) > 0
}

func (a Answer) clone() Answer {
	out := a
	out.AnswerCards = append([]AnswerCard{}, a.AnswerCards...)
	out.Votes = append([]string{}, a.Votes...)
	return out
}

// PendingAnswer is the session-private record behind an Answer.
// A nil Player marks an answer added by the house.
type PendingAnswer struct {
	ID          string
	Player      *Player
	AnswerCards []AnswerCard
}

// JudgementRequest asks a judge to rank answers. Reserved; nothing publishes it yet.
type JudgementRequest struct {
	Answers []Answer `json:"answers"`
}

// Round is one round's public state. Values handed out by a Session are
// private copies: changing them never affects the game.
type Round struct {
	Number        int       `json:"number"`
	TsarPlayerID  string    `json:"tsarPlayerId"`
	Phase         Phase     `json:"phase"`
	Prompt        string    `json:"prompt"`
	PromptDeck    Deck      `json:"promptDeck"`
	Pick          int       `json:"pick"`
	Host          Player    `json:"host"`
	Players       []Player  `json:"players"`
	Answers       []Answer  `json:"answers"`
	Winner        *Player   `json:"winner,omitempty"`
	WinningAnswer *Answer   `json:"winningAnswer,omitempty"`
	GameRules     GameRules `json:"gameRules"`
	EnabledDecks  []Deck    `json:"enabledDecks"`
	Runoffs       int       `json:"runoffs,omitempty"`
}

// Clone returns a deep copy of the round
func (r Round) Clone() Round {
	out := r
	out.Players = append([]Player(nil), r.Players...)
	out.EnabledDecks = append([]Deck(nil), r.EnabledDecks...)
	if r.Answers != nil {
		out.Answers = make([]Answer, len(r.Answers))
		for i, a := range r.Answers {
			out.Answers[i] = a.clone()
		}
	}
	if r.Winner != nil {
		w := *r.Winner
		out.Winner = &w
	}
	if r.WinningAnswer != nil {
		a := r.WinningAnswer.clone()
		out.WinningAnswer = &a
	}
	return out
}

// Answer finds an answer by id
func (r Round) Answer(id string) (Answer, bool) {
	if i := r.answerIndex(id); i >= 0 {
		return r.Answers[i], true
	}
	return Answer{}, false
}

func (r Round) answerIndex(id string) int {
	for i, a := range r.Answers {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// allRevealed reports whether every answer has been revealed
func (r Round) allRevealed() bool {
	for _, a := range r.Answers {
		if !a.Revealed() {
			return false
		}
	}
	return true
}
