package game

import (
	"fmt"
	"log"
)

// RevealAnswer copies the real cards of one answer into the public round.
// Under a-player only the tsar reveals; revealing twice is a no-op.
func (s *Session) RevealAnswer(p *PlayerSession, answerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if s.round.Phase != PhaseJudging {
		return ErrNotJudging
	}
	if s.rules.CzarIs == CzarIsAPlayer && !s.isTsar(p) {
		return ErrNotTsar
	}
	idx := s.round.answerIndex(answerID)
	pa := s.pendingByID(answerID)
	if idx < 0 || pa == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAnswer, answerID)
	}
	if s.round.Answers[idx].Revealed() {
		return nil
	}

	s.round.Answers[idx].AnswerCards = append([]AnswerCard(nil), pa.AnswerCards...)
	s.publishRound()
	return nil
}

// PickAnswer either chooses the winner (a-player) or casts a vote (the-players)
func (s *Session) PickAnswer(p *PlayerSession, answerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if s.round.Phase != PhaseJudging {
		return ErrNotJudging
	}

	switch s.rules.CzarIs {
	case CzarIsAPlayer:
		if !s.isTsar(p) {
			return ErrNotTsar
		}
		idx := s.round.answerIndex(answerID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownAnswer, answerID)
		}
		if !s.round.allRevealed() {
			return ErrNotRevealed
		}
		s.finish(idx)
		return nil
	case CzarIsThePlayers:
		return s.vote(p, answerID)
	default:
		return ErrAudienceJudging
	}
}

// DeclareDraw ends judging with no winner. Tsar only, and only when the rules allow it.
func (s *Session) DeclareDraw(p *PlayerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(p); err != nil {
		return err
	}
	if s.round.Phase != PhaseJudging {
		return ErrNotJudging
	}
	if s.rules.CzarIs != CzarIsAPlayer || !s.rules.CzarCanDeclareADraw {
		return ErrDrawNotAllowed
	}
	if !s.isTsar(p) {
		return ErrNotTsar
	}
	s.finishDraw()
	return nil
}

func (s *Session) vote(p *PlayerSession, answerID string) error {
	idx := s.round.answerIndex(answerID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAnswer, answerID)
	}
	if !s.round.allRevealed() {
		return ErrNotRevealed
	}
	if s.round.Answers[idx].Eliminated {
		return ErrAnswerEliminated
	}

	for i := range s.round.Answers {
		s.round.Answers[i].Votes = removeVote(s.round.Answers[i].Votes, p.id)
	}
	s.round.Answers[idx].Votes = append(s.round.Answers[idx].Votes, p.id)
	s.publishRound()

	s.tally()
	return nil
}

// tally resolves the vote once every active player has voted. A tie
// eliminates everything below the top count and asks for another vote; after
// as many runoffs as there are players the round ends as a draw.
func (s *Session) tally() {
	if s.round.Phase != PhaseJudging {
		return
	}
	if len(s.round.Answers) == 0 {
		s.finishDraw()
		return
	}

	voted := 0
	for _, a := range s.round.Answers {
		voted += len(a.Votes)
	}
	if voted < len(s.roster) {
		return
	}

	top, leaders := -1, 0
	for _, a := range s.round.Answers {
		if a.Eliminated {
			continue
		}
		switch n := len(a.Votes); {
		case n > top:
			top, leaders = n, 1
		case n == top:
			leaders++
		}
	}
	if leaders == 0 {
		s.finishDraw()
		return
	}
	if leaders == 1 {
		for i, a := range s.round.Answers {
			if !a.Eliminated && len(a.Votes) == top {
				s.finish(i)
				return
			}
		}
	}
	if s.round.Runoffs >= len(s.roster) {
		log.Printf("🤝 Session %s round %d still tied after %d runoffs", s.id, s.round.Number, s.round.Runoffs)
		s.finishDraw()
		return
	}

	for i := range s.round.Answers {
		a := &s.round.Answers[i]
		if len(a.Votes) < top {
			a.Eliminated = true
		}
		a.Votes = []string{}
	}
	s.round.Runoffs++
	log.Printf("🔁 Session %s round %d runoff %d between %d answers", s.id, s.round.Number, s.round.Runoffs, leaders)
	s.publishRound()
	s.announce(nil, fmt.Sprintf("It's a tie between %d answers. Vote again!", leaders))
}

func (s *Session) finish(idx int) {
	winning := s.round.Answers[idx].clone()
	s.round.WinningAnswer = &winning
	s.round.Winner = nil
	if pa := s.pendingByID(winning.ID); pa != nil && pa.Player != nil {
		w := *pa.Player
		s.round.Winner = &w
	}
	s.round.Phase = PhaseFinished

	if s.round.Winner != nil {
		log.Printf("🏆 Session %s round %d won by %s", s.id, s.round.Number, s.round.Winner.ID)
		s.announce(nil, s.round.Winner.DisplayName+" won the round")
	} else {
		log.Printf("🏠 Session %s round %d won by the house", s.id, s.round.Number)
		s.announce(nil, "The house won the round")
	}
	s.publishRound()
}

func (s *Session) finishDraw() {
	s.round.Winner = nil
	s.round.WinningAnswer = nil
	s.round.Phase = PhaseFinished
	log.Printf("🤝 Session %s round %d ended in a draw", s.id, s.round.Number)
	s.announce(nil, "This round is a draw")
	s.publishRound()
}
