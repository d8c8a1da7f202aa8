package game

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testHandSize = 5

// cardSet builds a deck with numbered cards
func cardSet(name string, official bool, answers, prompts, pick int) CardSet {
	set := CardSet{Name: name, Description: name + " cards", Official: official}
	for i := 0; i < answers; i++ {
		set.White = append(set.White, WhiteCard{Text: fmt.Sprintf("%s answer %d", name, i)})
	}
	for i := 0; i < prompts; i++ {
		set.Black = append(set.Black, BlackCard{Text: fmt.Sprintf("%s prompt %d: ____", name, i), Pick: pick})
	}
	return set
}

// testCatalog has one official deck so "core" is the default selection
func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]CardSet{
		cardSet("Core", true, 60, 10, 1),
		cardSet("Extra", false, 60, 6, 1),
		cardSet("Pairs", false, 60, 4, 2),
		cardSet("Tiny", false, 40, 2, 1),
	})
	require.NoError(t, err)
	return c
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.HandSize = testHandSize
	opts.GracePeriod = 30 * time.Millisecond
	opts.NotificationDelay = 0
	opts.Rand = rand.New(rand.NewPCG(7, 11))
	return opts
}

func newTestSession(t *testing.T, mutate func(*Options)) *Session {
	t.Helper()
	opts := testOptions()
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewSession("test", testCatalog(t), opts)
	require.NoError(t, err)
	return s
}

func joinAll(t *testing.T, s *Session, ids ...string) []*PlayerSession {
	t.Helper()
	out := make([]*PlayerSession, len(ids))
	for i, id := range ids {
		p, err := s.Join(id, "Player "+id)
		require.NoError(t, err)
		out[i] = p
	}
	return out
}

// answerAll submits the first pick cards of every eligible player's hand and
// returns the cards each player played
func answerAll(t *testing.T, s *Session, players []*PlayerSession) map[string][]AnswerCard {
	t.Helper()
	played := make(map[string][]AnswerCard)
	round := s.Round()
	tsarPlays := round.GameRules.tsarPlays(len(round.Players))
	for _, p := range players {
		if p.ID() == round.TsarPlayerID && !tsarPlays {
			continue
		}
		hand := p.Hand()
		require.GreaterOrEqual(t, len(hand), round.Pick)
		cards := hand[:round.Pick]
		ids := make([]string, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
		require.NoError(t, p.SubmitAnswer(ids))
		played[p.ID()] = cards
	}
	return played
}

func revealAll(t *testing.T, p *PlayerSession) {
	t.Helper()
	for _, a := range p.Session().Round().Answers {
		require.NoError(t, p.RevealAnswer(a.ID))
	}
}

// answerWith finds the revealed answer holding the given first card
func answerWith(t *testing.T, s *Session, card AnswerCard) Answer {
	t.Helper()
	for _, a := range s.Round().Answers {
		if len(a.AnswerCards) > 0 && a.AnswerCards[0].ID == card.ID {
			return a
		}
	}
	t.Fatalf("no revealed answer holds card %s", card.ID)
	return Answer{}
}

func tsarOf(t *testing.T, s *Session, players []*PlayerSession) *PlayerSession {
	t.Helper()
	id := s.Round().TsarPlayerID
	for _, p := range players {
		if p.ID() == id {
			return p
		}
	}
	t.Fatalf("tsar %s is not among the given players", id)
	return nil
}

// assertConserved checks that every answer card of the catalog is held by
// exactly one of: a hand (active or idle), a pending answer, or the pool
func assertConserved(t *testing.T, s *Session) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]int)
	count := func(cards []AnswerCard) {
		for _, c := range cards {
			seen[c.ID]++
		}
	}
	for _, p := range s.roster {
		count(p.hand)
	}
	for _, p := range s.idle {
		count(p.hand)
	}
	for _, pa := range s.pending {
		count(pa.AnswerCards)
	}
	count(s.pool.AnswerCards())

	all := s.catalog.AnswerCards()
	require.Len(t, seen, len(all), "every catalog card is accounted for")
	for _, c := range all {
		require.Equal(t, 1, seen[c.ID], "card %s held exactly once", c.ID)
	}
}
