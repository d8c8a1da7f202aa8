package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRules(mutate func(*GameRules)) func(*Options) {
	return func(o *Options) {
		mutate(&o.Rules)
	}
}

func TestPickAnswer_TsarChoosesWinner(t *testing.T) {
	s := newTestSession(t, nil)
	players := joinAll(t, s, "a", "b", "c")
	a, b := players[0], players[1]
	played := answerAll(t, s, players)
	require.Equal(t, PhaseJudging, s.Round().Phase)

	first := s.Round().Answers[0]
	assert.ErrorIs(t, a.PickAnswer(first.ID), ErrNotRevealed, "every answer must be revealed first")
	assert.ErrorIs(t, b.RevealAnswer(first.ID), ErrNotTsar)

	for _, ans := range s.Round().Answers {
		assert.Empty(t, ans.AnswerCards)
		require.NoError(t, a.RevealAnswer(ans.ID))
		revealed, ok := s.Round().Answer(ans.ID)
		require.True(t, ok)
		assert.NotEmpty(t, revealed.AnswerCards, "revealed immediately")
	}
	require.NoError(t, a.RevealAnswer(first.ID), "revealing twice is harmless")

	winning := answerWith(t, s, played["c"][0])
	assert.ErrorIs(t, b.PickAnswer(winning.ID), ErrNotTsar)
	assert.ErrorIs(t, a.PickAnswer("missing"), ErrUnknownAnswer)
	require.NoError(t, a.PickAnswer(winning.ID))

	round := s.Round()
	assert.Equal(t, PhaseFinished, round.Phase)
	require.NotNil(t, round.Winner)
	assert.Equal(t, "c", round.Winner.ID)
	require.NotNil(t, round.WinningAnswer)
	assert.Equal(t, winning.ID, round.WinningAnswer.ID)
	assert.Equal(t, played["c"], round.WinningAnswer.AnswerCards)

	assert.ErrorIs(t, a.PickAnswer(winning.ID), ErrNotJudging)
	assertConserved(t, s)
}

func TestPickAnswer_HouseCanWin(t *testing.T) {
	s := newTestSession(t, nil)
	players := joinAll(t, s, "a", "b", "c")
	a := players[0]
	played := answerAll(t, s, players)
	revealAll(t, a)

	mine := map[string]bool{
		answerWith(t, s, played["b"][0]).ID: true,
		answerWith(t, s, played["c"][0]).ID: true,
	}
	var house Answer
	for _, ans := range s.Round().Answers {
		if !mine[ans.ID] {
			house = ans
		}
	}
	require.NotEmpty(t, house.ID)
	require.NoError(t, a.PickAnswer(house.ID))

	round := s.Round()
	assert.Equal(t, PhaseFinished, round.Phase)
	assert.Nil(t, round.Winner)
	require.NotNil(t, round.WinningAnswer)
	assert.Equal(t, house.ID, round.WinningAnswer.ID)
}

func TestPickAnswer_InstantRunoff(t *testing.T) {
	s := newTestSession(t, withRules(func(r *GameRules) {
		r.CzarIs = CzarIsThePlayers
		r.HousePlaysUpTo = 0
	}))
	players := joinAll(t, s, "a", "b", "c", "d")
	a, b, c, d := players[0], players[1], players[2], players[3]
	played := answerAll(t, s, players)
	require.Len(t, played, 4, "everyone plays when the players judge")
	require.Equal(t, PhaseJudging, s.Round().Phase)

	first := s.Round().Answers[0].ID
	assert.ErrorIs(t, a.PickAnswer(first), ErrNotRevealed)
	revealAll(t, b)

	ansA := answerWith(t, s, played["a"][0]).ID
	ansB := answerWith(t, s, played["b"][0]).ID

	require.NoError(t, a.PickAnswer(ansA))
	require.NoError(t, b.PickAnswer(ansA))
	require.NoError(t, c.PickAnswer(ansB))
	assert.Equal(t, PhaseJudging, s.Round().Phase, "waiting for the last voter")
	require.NoError(t, d.PickAnswer(ansB))

	round := s.Round()
	assert.Equal(t, PhaseJudging, round.Phase, "a tie starts a runoff")
	assert.Equal(t, 1, round.Runoffs)
	for _, ans := range round.Answers {
		assert.Empty(t, ans.Votes)
		survivor := ans.ID == ansA || ans.ID == ansB
		assert.Equal(t, !survivor, ans.Eliminated, "answer %s", ans.ID)
	}

	ansC := answerWith(t, s, played["c"][0]).ID
	assert.ErrorIs(t, a.PickAnswer(ansC), ErrAnswerEliminated)

	for _, p := range players {
		require.NoError(t, p.PickAnswer(ansB))
	}

	round = s.Round()
	assert.Equal(t, PhaseFinished, round.Phase)
	require.NotNil(t, round.Winner)
	assert.Equal(t, "b", round.Winner.ID)
	assert.Len(t, round.WinningAnswer.Votes, 4)
	assertConserved(t, s)
}

func TestPickAnswer_LastVoteOverwrites(t *testing.T) {
	s := newTestSession(t, withRules(func(r *GameRules) {
		r.CzarIs = CzarIsThePlayers
		r.HousePlaysUpTo = 0
	}))
	players := joinAll(t, s, "a", "b", "c")
	a, b, c := players[0], players[1], players[2]
	played := answerAll(t, s, players)
	revealAll(t, a)

	ansA := answerWith(t, s, played["a"][0]).ID
	ansC := answerWith(t, s, played["c"][0]).ID

	require.NoError(t, a.PickAnswer(ansC))
	require.NoError(t, a.PickAnswer(ansA))

	votes := 0
	for _, ans := range s.Round().Answers {
		votes += len(ans.Votes)
	}
	assert.Equal(t, 1, votes)
	got, _ := s.Round().Answer(ansA)
	assert.Equal(t, []string{"a"}, got.Votes)

	require.NoError(t, b.PickAnswer(ansA))
	require.NoError(t, c.PickAnswer(ansC))

	round := s.Round()
	assert.Equal(t, PhaseFinished, round.Phase)
	assert.Equal(t, "a", round.Winner.ID)
}

func TestPickAnswer_PersistentTieEndsInDraw(t *testing.T) {
	s := newTestSession(t, withRules(func(r *GameRules) {
		r.CzarIs = CzarIsThePlayers
		r.HousePlaysUpTo = 0
	}))
	players := joinAll(t, s, "a", "b")
	a, b := players[0], players[1]
	played := answerAll(t, s, players)
	revealAll(t, a)

	ansA := answerWith(t, s, played["a"][0]).ID
	ansB := answerWith(t, s, played["b"][0]).ID

	passes := 0
	for s.Round().Phase == PhaseJudging {
		require.LessOrEqual(t, passes, len(players), "runoff must terminate")
		require.NoError(t, a.PickAnswer(ansB))
		require.NoError(t, b.PickAnswer(ansA))
		passes++
	}

	round := s.Round()
	assert.Equal(t, PhaseFinished, round.Phase)
	assert.Nil(t, round.Winner)
	assert.Nil(t, round.WinningAnswer)
	assert.Equal(t, len(players), round.Runoffs)
}

func TestPickAnswer_AudienceJudging(t *testing.T) {
	s := newTestSession(t, withRules(func(r *GameRules) { r.CzarIs = CzarIsAudience }))
	players := joinAll(t, s, "a", "b")
	answerAll(t, s, players)
	require.Equal(t, PhaseJudging, s.Round().Phase)

	a := players[0]
	revealAll(t, a)
	err := a.PickAnswer(s.Round().Answers[0].ID)
	assert.ErrorIs(t, err, ErrAudienceJudging)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestDeclareDraw(t *testing.T) {
	tests := []struct {
		name    string
		rules   func(*GameRules)
		byTsar  bool
		wantErr error
	}{
		{"allowed", func(r *GameRules) { r.CzarCanDeclareADraw = true }, true, nil},
		{"rule off", func(r *GameRules) {}, true, ErrDrawNotAllowed},
		{"not the tsar", func(r *GameRules) { r.CzarCanDeclareADraw = true }, false, ErrNotTsar},
		{"players judge", func(r *GameRules) {
			r.CzarCanDeclareADraw = true
			r.CzarIs = CzarIsThePlayers
		}, true, ErrDrawNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, withRules(tt.rules))
			players := joinAll(t, s, "a", "b", "c")

			tsar := tsarOf(t, s, players)
			assert.ErrorIs(t, tsar.DeclareDraw(), ErrNotJudging)
			answerAll(t, s, players)

			actor := tsar
			if !tt.byTsar {
				actor = players[1]
			}
			err := actor.DeclareDraw()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, PhaseJudging, s.Round().Phase)
				return
			}
			require.NoError(t, err)
			round := s.Round()
			assert.Equal(t, PhaseFinished, round.Phase)
			assert.Nil(t, round.Winner)
		})
	}
}
