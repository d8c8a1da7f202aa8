package game

import (
	"fmt"
	"log"
)

// SetGameRules replaces the rules. Host only. The change applies to the
// current round right away, so it may close answering or settle a vote.
func (s *Session) SetGameRules(p *PlayerSession, rules GameRules) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if !s.isHost(p) {
		return ErrNotHost
	}
	if err := rules.Validate(); err != nil {
		return err
	}

	s.rules = rules
	log.Printf("📏 Session %s rules changed: %+v", s.id, rules)
	if !s.started {
		return nil
	}
	s.round.GameRules = rules
	s.publishRound()

	if err := s.maybeCloseAnswers(); err != nil {
		return err
	}
	if s.round.Phase == PhaseJudging && rules.CzarIs == CzarIsThePlayers {
		s.tally()
	}
	return nil
}

// SetEnabledDecks swaps the decks cards are drawn from. Host only. Hands are
// purged of cards from dropped decks and refilled; if the current prompt's
// deck was dropped a new round starts.
func (s *Session) SetEnabledDecks(p *PlayerSession, deckIDs []string) error {
	if len(deckIDs) == 0 {
		return ErrNoDecks
	}
	decks, err := s.catalog.Resolve(deckIDs)
	if err != nil {
		return err
	}

	answers, prompts := 0, 0
	for _, d := range decks {
		answers += d.AnswerCount
		prompts += d.PromptCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if !s.isHost(p) {
		return ErrNotHost
	}
	if answers < s.opts.MinAnswerCards {
		return fmt.Errorf("%w: %d answer cards, need at least %d", ErrTooFewCards, answers, s.opts.MinAnswerCards)
	}
	if prompts < s.opts.MinPromptCards {
		return fmt.Errorf("%w: %d prompt cards, need at least %d", ErrTooFewCards, prompts, s.opts.MinPromptCards)
	}

	s.setDecks(decks)
	log.Printf("🗂️ Session %s now uses %d decks (%d answers, %d prompts)", s.id, len(decks), answers, prompts)

	for _, rp := range s.roster {
		changed := s.stripDisabled(rp)
		if err := s.deal(rp, changed); err != nil {
			return s.fail(err)
		}
	}

	if !s.started {
		return nil
	}
	if !s.enabledSet.has(s.round.PromptDeck.ID) {
		s.announce(nil, "The prompt's deck was removed, starting a new round")
		return s.startRound()
	}
	s.round.EnabledDecks = append([]Deck(nil), s.enabled...)
	s.publishRound()
	return nil
}
