package game

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveGame_TsarReassigned(t *testing.T) {
	for _, leaving := range []int{0, 1, 2} {
		t.Run(string(rune('a'+leaving)), func(t *testing.T) {
			s := newTestSession(t, nil)
			players := joinAll(t, s, "a", "b", "c")
			require.Equal(t, "a", s.Round().TsarPlayerID)

			require.NoError(t, players[leaving].LeaveGame())

			round := s.Round()
			require.Len(t, round.Players, 2)
			present := false
			for _, p := range round.Players {
				if p.ID == round.TsarPlayerID {
					present = true
				}
			}
			assert.True(t, present, "tsar %s must still be seated", round.TsarPlayerID)
			assertConserved(t, s)
		})
	}
}

func TestLeaveGame_HostReassigned(t *testing.T) {
	s := newTestSession(t, nil)
	players := joinAll(t, s, "a", "b", "c")
	a, b := players[0], players[1]

	msgs, cancel := b.Messages()
	defer cancel()

	require.NoError(t, a.LeaveGame())
	assert.Equal(t, "b", s.Round().Host.ID)
	assert.Equal(t, "b", s.Round().TsarPlayerID)

	var got []string
	for len(msgs) > 0 {
		got = append(got, <-msgs)
	}
	assert.Contains(t, got, "You are now the host")
	assert.Contains(t, got, "Player a left the game")

	require.NoError(t, b.SetGameRules(DefaultRules()), "the new host may change rules")
	assert.ErrorIs(t, a.SubmitAnswer([]string{"core/a0"}), ErrNotInGame)
}

func TestLeaveGame_ClosesAnswering(t *testing.T) {
	s := newTestSession(t, nil)
	players := joinAll(t, s, "a", "b", "c", "d")
	b, c, d := players[1], players[2], players[3]

	require.NoError(t, b.SubmitAnswer([]string{b.Hand()[0].ID}))
	require.NoError(t, c.SubmitAnswer([]string{c.Hand()[0].ID}))
	assert.Equal(t, PhaseAnswering, s.Round().Phase)

	require.NoError(t, d.LeaveGame())
	assert.Equal(t, PhaseJudging, s.Round().Phase, "nobody else owes an answer")
	assertConserved(t, s)
}

func TestLeaveGame_DropsVotesAndSettles(t *testing.T) {
	s := newTestSession(t, withRules(func(r *GameRules) {
		r.CzarIs = CzarIsThePlayers
		r.HousePlaysUpTo = 0
	}))
	players := joinAll(t, s, "a", "b", "c")
	a, b, c := players[0], players[1], players[2]
	played := answerAll(t, s, players)
	revealAll(t, a)

	ansB := answerWith(t, s, played["b"][0]).ID
	require.NoError(t, a.PickAnswer(ansB))
	require.NoError(t, c.PickAnswer(ansB))
	require.NoError(t, c.LeaveGame())

	got, _ := s.Round().Answer(ansB)
	assert.Equal(t, []string{"a"}, got.Votes)
	assert.Equal(t, PhaseJudging, s.Round().Phase)

	require.NoError(t, b.PickAnswer(ansB))
	round := s.Round()
	assert.Equal(t, PhaseFinished, round.Phase)
	assert.Equal(t, "b", round.Winner.ID)
}

func TestLeaveGame_HandPolicy(t *testing.T) {
	tests := []struct {
		policy   LeavingPlayerWill
		keepHand bool
	}{
		{KeepHand, true},
		{LoseHand, false},
		{ReturnHand, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			s := newTestSession(t, withRules(func(r *GameRules) { r.LeavingPlayerWill = tt.policy }))
			players := joinAll(t, s, "a", "b", "c")
			c := players[2]
			before := c.Hand()

			require.NoError(t, c.LeaveGame())
			if tt.keepHand {
				assert.Equal(t, before, c.Hand())
			} else {
				assert.Empty(t, c.Hand())
			}
			assertConserved(t, s)

			back, err := s.Join("c", "Carol")
			require.NoError(t, err)
			assert.Same(t, c, back, "the idle seat is reused")
			assert.Len(t, back.Hand(), testHandSize)
			if tt.keepHand {
				assert.Equal(t, before, back.Hand())
			}
			assert.Equal(t, "Carol", s.Round().Players[2].DisplayName)
			assertConserved(t, s)
		})
	}
}

func TestLeaveGame_ReturnStripsDisabledDecks(t *testing.T) {
	s := newTestSession(t, withRules(func(r *GameRules) { r.LeavingPlayerWill = KeepHand }))
	players := joinAll(t, s, "a", "b", "c")
	a, c := players[0], players[2]

	require.NoError(t, c.LeaveGame())
	require.NoError(t, a.SetEnabledDecks([]string{"extra"}))
	for _, card := range c.Hand() {
		require.Equal(t, "core", card.DeckID, "an idle hand is left alone until its owner returns")
	}

	back, err := s.Join("c", "Player c")
	require.NoError(t, err)
	hand := back.Hand()
	assert.Len(t, hand, testHandSize)
	for _, card := range hand {
		assert.Equal(t, "extra", card.DeckID)
	}
	assertConserved(t, s)
}

func TestLeaveGame_LastPlayerClosesSession(t *testing.T) {
	var emptied atomic.Int32
	s := newTestSession(t, func(o *Options) {
		o.OnEmpty = func(id string) {
			assert.Equal(t, "test", id)
			emptied.Add(1)
		}
	})
	players := joinAll(t, s, "a", "b")

	rounds, cancel := s.SubscribeRounds()
	defer cancel()

	require.NoError(t, players[0].LeaveGame())
	assert.False(t, s.Closed())
	require.NoError(t, players[1].LeaveGame())
	assert.True(t, s.Closed())
	assert.Equal(t, int32(1), emptied.Load())

	for range rounds {
	}

	_, err := s.Join("c", "C")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.NoError(t, players[1].LeaveGame(), "leaving twice is a no-op")
	assert.Equal(t, int32(1), emptied.Load())
}

func TestGracePeriod(t *testing.T) {
	const grace = 30 * time.Millisecond

	t.Run("reconnect within grace keeps the seat", func(t *testing.T) {
		s := newTestSession(t, nil)
		players := joinAll(t, s, "a", "b")
		b := players[1]

		conn := b.Connect()
		b.Disconnect(conn)
		assert.False(t, b.Connected())
		b.Connect()

		time.Sleep(3 * grace)
		assert.Len(t, s.Players(), 2)
		assert.True(t, b.Connected())
	})

	t.Run("extra tabs keep the seat", func(t *testing.T) {
		s := newTestSession(t, nil)
		b := joinAll(t, s, "a", "b")[1]

		first := b.Connect()
		b.Connect()
		b.Disconnect(first)

		time.Sleep(3 * grace)
		assert.Len(t, s.Players(), 2)
	})

	t.Run("expiry removes the tsar exactly once", func(t *testing.T) {
		s := newTestSession(t, nil)
		players := joinAll(t, s, "a", "b", "c")
		a, b := players[0], players[1]
		require.Equal(t, "a", s.Round().TsarPlayerID)

		msgs, cancel := b.Messages()
		defer cancel()

		var mu sync.Mutex
		left := 0
		done := make(chan struct{})
		go func() {
			defer close(done)
			for m := range msgs {
				if strings.HasSuffix(m, "left the game") {
					mu.Lock()
					left++
					mu.Unlock()
				}
			}
		}()

		a.Disconnect(a.Connect())

		require.Eventually(t, func() bool {
			return len(s.Players()) == 2
		}, time.Second, 5*time.Millisecond)

		round := s.Round()
		assert.NotEqual(t, "a", round.TsarPlayerID)
		assert.Contains(t, []string{"b", "c"}, round.TsarPlayerID)

		a.Disconnect("unknown")
		time.Sleep(3 * grace)
		cancel()
		<-done

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, left)
	})

	t.Run("reconnect racing expiry keeps the seat", func(t *testing.T) {
		s := newTestSession(t, nil)
		b := joinAll(t, s, "a", "b")[1]

		// Hold the session so the expired timer stalls before it can remove b
		s.mu.Lock()
		b.Disconnect(b.Connect())
		time.Sleep(3 * grace)
		b.Connect()
		s.mu.Unlock()

		time.Sleep(3 * grace)
		assert.True(t, b.Connected())
		assert.Len(t, s.Players(), 2)
		assert.NoError(t, b.SubmitAnswer([]string{b.Hand()[0].ID}))
	})
}
