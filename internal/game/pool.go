package game

import (
	"fmt"
	"math/rand/v2"
)

// DeckFilter reports whether cards from the given deck may be drawn
type DeckFilter func(deckID string) bool

// CardPool is a session's depletable supply of prompts and answer cards.
// Cards played or thrown away go to a discard pile that is shuffled back in
// when the matching supply runs dry.
type CardPool struct {
	rng *rand.Rand

	answers       []AnswerCard
	answerDiscard []AnswerCard
	prompts       []PromptCard
	promptDiscard []PromptCard
}

// NewCardPool seeds a pool with every card in the catalog
func NewCardPool(catalog *Catalog, rng *rand.Rand) *CardPool {
	return &CardPool{
		rng:     rng,
		answers: catalog.AnswerCards(),
		prompts: catalog.PromptCards(),
	}
}

// DrawAnswer removes and returns a random answer card accepted by filter
func (p *CardPool) DrawAnswer(filter DeckFilter) (AnswerCard, error) {
	card, ok := draw(p.rng, &p.answers, &p.answerDiscard, func(c AnswerCard) bool { return filter(c.DeckID) })
	if !ok {
		return AnswerCard{}, fmt.Errorf("%w: no answer cards left in the enabled decks", ErrResourceExhausted)
	}
	return card, nil
}

// DrawPrompt removes and returns a random prompt accepted by filter
func (p *CardPool) DrawPrompt(filter DeckFilter) (PromptCard, error) {
	card, ok := draw(p.rng, &p.prompts, &p.promptDiscard, func(c PromptCard) bool { return filter(c.DeckID) })
	if !ok {
		return PromptCard{}, fmt.Errorf("%w: no prompts left in the enabled decks", ErrResourceExhausted)
	}
	return card, nil
}

// ReturnAnswers puts cards straight back into the drawable supply
func (p *CardPool) ReturnAnswers(cards []AnswerCard) {
	p.answers = append(p.answers, cards...)
}

// DiscardAnswers moves cards to the discard pile
func (p *CardPool) DiscardAnswers(cards []AnswerCard) {
	p.answerDiscard = append(p.answerDiscard, cards...)
}

// DiscardPrompt moves a used prompt to the discard pile
func (p *CardPool) DiscardPrompt(card PromptCard) {
	p.promptDiscard = append(p.promptDiscard, card)
}

// AnswerCards returns a copy of every answer card the pool holds, discards included
func (p *CardPool) AnswerCards() []AnswerCard {
	out := make([]AnswerCard, 0, len(p.answers)+len(p.answerDiscard))
	out = append(out, p.answers...)
	return append(out, p.answerDiscard...)
}

// Available returns how many answer cards can be drawn right now without a reshuffle
func (p *CardPool) Available() int {
	return len(p.answers)
}

// draw picks uniformly among entries of supply matching match. When nothing
// matches, the discard pile is merged back and the search runs once more.
func draw[T any](rng *rand.Rand, supply, discard *[]T, match func(T) bool) (T, bool) {
	for attempt := 0; attempt < 2; attempt++ {
		var candidates []int
		for i, c := range *supply {
			if match(c) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			idx := candidates[rng.IntN(len(candidates))]
			s := *supply
			card := s[idx]
			s[idx] = s[len(s)-1]
			*supply = s[:len(s)-1]
			return card, true
		}
		if len(*discard) == 0 {
			break
		}
		*supply = append(*supply, *discard...)
		*discard = nil
	}
	var zero T
	return zero, false
}
