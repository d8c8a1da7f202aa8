package game

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// StartNextRound begins a new round once the current one is finished. Host only.
func (s *Session) StartNextRound(p *PlayerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if !s.isHost(p) {
		return ErrNotHost
	}
	if s.round.Phase != PhaseFinished {
		return ErrRoundNotFinished
	}
	return s.startRound()
}

// startRound archives the current round and deals a fresh one. Callers hold s.mu.
func (s *Session) startRound() error {
	if len(s.roster) == 0 {
		return ErrNoPlayers
	}

	if s.started {
		s.archive(s.round)
		s.pool.DiscardPrompt(s.prompt)
		for _, pa := range s.pending {
			s.pool.DiscardAnswers(pa.AnswerCards)
		}
	}
	s.pending = nil

	prompt, err := s.pool.DrawPrompt(s.enabledSet.has)
	if err != nil {
		return s.fail(err)
	}
	s.prompt = prompt
	s.tsarIndex = (s.tsarIndex + 1) % len(s.roster)
	deck, _ := s.catalog.Deck(prompt.DeckID)

	s.round = Round{
		Number:       s.round.Number + 1,
		TsarPlayerID: s.roster[s.tsarIndex].id,
		Phase:        PhaseAnswering,
		Prompt:       prompt.Text,
		PromptDeck:   deck,
		Pick:         prompt.Pick,
		Host:         s.host.player,
		Players:      s.players(),
		Answers:      []Answer{},
		GameRules:    s.rules,
		EnabledDecks: append([]Deck(nil), s.enabled...),
	}
	s.started = true

	for _, p := range s.roster {
		if err := s.deal(p, false); err != nil {
			return s.fail(err)
		}
	}

	log.Printf("🃏 Session %s round %d: %q (pick %d), czar %s", s.id, s.round.Number, prompt.Text, prompt.Pick, s.round.TsarPlayerID)
	s.publishRound()

	return s.maybeCloseAnswers()
}

// SubmitAnswer plays cards from the player's hand against the current prompt
func (s *Session) SubmitAnswer(p *PlayerSession, cardIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if s.round.Phase != PhaseAnswering {
		return ErrNotAnswering
	}
	if s.pendingFor(p.id) != nil {
		return ErrAlreadyAnswered
	}
	if s.isTsar(p) && !s.rules.tsarPlays(len(s.roster)) {
		return ErrTsarCannotPlay
	}
	if len(cardIDs) != s.round.Pick {
		return fmt.Errorf("%w: this prompt needs %d, got %d", ErrWrongCardCount, s.round.Pick, len(cardIDs))
	}
	played, rest, err := takeCards(p.hand, cardIDs)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	player := p.player
	s.pending = append(s.pending, PendingAnswer{ID: id, Player: &player, AnswerCards: played})
	s.round.Answers = append(s.round.Answers, Answer{ID: id, Votes: []string{}})
	s.shuffleAnswers()

	p.hand = rest
	if err := s.deal(p, true); err != nil {
		return s.fail(err)
	}
	s.publishRound()

	return s.maybeCloseAnswers()
}

// enterJudging pads the answers with house answers and opens judging. Callers hold s.mu.
func (s *Session) enterJudging() error {
	added := 0
	for len(s.round.Answers) < s.rules.HousePlaysUpTo {
		cards := make([]AnswerCard, 0, s.round.Pick)
		for len(cards) < s.round.Pick {
			card, err := s.pool.DrawAnswer(s.enabledSet.has)
			if err != nil {
				s.pool.ReturnAnswers(cards)
				return s.fail(err)
			}
			cards = append(cards, card)
		}
		id := uuid.NewString()
		s.pending = append(s.pending, PendingAnswer{ID: id, AnswerCards: cards})
		s.round.Answers = append(s.round.Answers, Answer{ID: id, Votes: []string{}})
		added++
	}
	if added > 0 {
		s.shuffleAnswers()
		s.announce(nil, fmt.Sprintf("The house added %d %s", added, plural(added, "answer", "answers")))
	}

	s.round.Phase = PhaseJudging
	s.publishRound()

	if s.rules.CzarIs == CzarIsThePlayers {
		s.tally()
	}
	return nil
}

// unanswered lists players who still owe an answer this round
func (s *Session) unanswered() []*PlayerSession {
	tsarPlays := s.rules.tsarPlays(len(s.roster))
	var out []*PlayerSession
	for i, p := range s.roster {
		if i == s.tsarIndex && !tsarPlays {
			continue
		}
		if s.pendingFor(p.id) == nil {
			out = append(out, p)
		}
	}
	return out
}

// maybeCloseAnswers moves to judging when nobody owes an answer any more
func (s *Session) maybeCloseAnswers() error {
	if s.started && s.round.Phase == PhaseAnswering && len(s.unanswered()) == 0 {
		return s.enterJudging()
	}
	return nil
}

func (s *Session) pendingFor(playerID string) *PendingAnswer {
	for i := range s.pending {
		if pa := &s.pending[i]; pa.Player != nil && pa.Player.ID == playerID {
			return pa
		}
	}
	return nil
}

func (s *Session) pendingByID(answerID string) *PendingAnswer {
	for i := range s.pending {
		if s.pending[i].ID == answerID {
			return &s.pending[i]
		}
	}
	return nil
}

// shuffleAnswers applies a uniform Fisher-Yates permutation so list position
// says nothing about submission order
func (s *Session) shuffleAnswers() {
	answers := s.round.Answers
	s.rng.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
}

// takeCards splits hand into the cards named by ids and the rest
func takeCards(hand []AnswerCard, ids []string) (played, rest []AnswerCard, err error) {
	want := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := want[id]; dup {
			return nil, nil, fmt.Errorf("%w: card %s played twice", ErrWrongCardCount, id)
		}
		want[id] = i
	}

	played = make([]AnswerCard, len(ids))
	found := 0
	for _, c := range hand {
		if i, ok := want[c.ID]; ok {
			played[i] = c
			found++
			continue
		}
		rest = append(rest, c)
	}
	if found != len(ids) {
		for _, id := range ids {
			if !containsCard(hand, id) {
				return nil, nil, fmt.Errorf("%w: %s", ErrCardNotInHand, id)
			}
		}
	}
	return played, rest, nil
}

func containsCard(cards []AnswerCard, id string) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
