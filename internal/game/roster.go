package game

import (
	"fmt"
	"log"
	"strings"
)

// Join seats a player. It is idempotent: a known player only gets renamed, a
// player who left earlier gets their idle seat back. The first player to join
// becomes the host and starts the first round.
func (s *Session) Join(playerID, displayName string) (*PlayerSession, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrValidation)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = playerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.fault != nil {
		return nil, s.fault
	}

	if p := s.active(playerID); p != nil {
		if p.player.DisplayName != displayName {
			p.player.DisplayName = displayName
			s.syncRoster()
		}
		return p, nil
	}

	p, returning := s.idle[playerID]
	if returning {
		delete(s.idle, playerID)
		p.player.DisplayName = displayName
	} else {
		p = newPlayerSession(s, Player{ID: playerID, DisplayName: displayName})
	}
	s.roster = append(s.roster, p)

	changed := returning && s.stripDisabled(p)
	if err := s.deal(p, changed); err != nil {
		return nil, s.fail(err)
	}

	if returning {
		log.Printf("🔄 Player %s (%s) returned to session %s", playerID, displayName, s.id)
		s.announce(p, displayName+" returned to the game")
	} else {
		log.Printf("👋 Player %s (%s) joined session %s", playerID, displayName, s.id)
		s.announce(p, displayName+" joined the game")
	}

	if s.host == nil {
		s.host = p
		if err := s.startRound(); err != nil {
			return nil, err
		}
		return p, nil
	}

	s.syncRoster()
	return p, nil
}

// RemovePlayer takes a player out of the active roster, keeping an idle record
// for a later return. Removing the last player closes the session.
func (s *Session) RemovePlayer(p *PlayerSession) error {
	s.mu.Lock()
	closed, err := s.removePlayer(p)
	onEmpty := s.opts.OnEmpty
	s.mu.Unlock()

	s.afterRemoval(closed, onEmpty)
	return err
}

// removeIfStale removes p for an expired grace timer. The generation is
// rechecked under s.mu so a reconnect that lands after the timer fired wins.
// Lock order is s.mu then p.connMu; nothing takes them the other way round.
func (s *Session) removeIfStale(p *PlayerSession, gen uint64) error {
	s.mu.Lock()

	p.connMu.Lock()
	stale := gen == p.generation && len(p.connections) == 0
	if stale {
		p.generation++
		p.timer = nil
	}
	p.connMu.Unlock()

	if !stale {
		s.mu.Unlock()
		return nil
	}

	log.Printf("⌛ Player %s did not reconnect to session %s, removing", p.id, s.id)
	closed, err := s.removePlayer(p)
	onEmpty := s.opts.OnEmpty
	s.mu.Unlock()

	s.afterRemoval(closed, onEmpty)
	return err
}

func (s *Session) afterRemoval(closed bool, onEmpty func(string)) {
	if !closed {
		return
	}
	s.rounds.Close()
	if onEmpty != nil {
		onEmpty(s.id)
	}
}

func (s *Session) removePlayer(p *PlayerSession) (closed bool, err error) {
	idx := s.indexOf(p)
	if idx < 0 || s.closed {
		return false, nil
	}
	wasTsar := idx == s.tsarIndex

	roster := make([]*PlayerSession, 0, len(s.roster)-1)
	roster = append(roster, s.roster[:idx]...)
	s.roster = append(roster, s.roster[idx+1:]...)
	s.idle[p.id] = p

	switch s.rules.LeavingPlayerWill {
	case ReturnHand:
		s.pool.ReturnAnswers(p.hand)
		p.hand = nil
		p.publishHand()
	case LoseHand:
		s.pool.DiscardAnswers(p.hand)
		p.hand = nil
		p.publishHand()
	case KeepHand:
	}

	for i := range s.round.Answers {
		s.round.Answers[i].Votes = removeVote(s.round.Answers[i].Votes, p.id)
	}

	log.Printf("🚪 Player %s left session %s (%d remaining)", p.id, s.id, len(s.roster))

	if len(s.roster) == 0 {
		s.closed = true
		log.Printf("🗑️ Session %s is empty, closing", s.id)
		return true, nil
	}

	switch {
	case idx < s.tsarIndex:
		s.tsarIndex--
	case wasTsar:
		s.tsarIndex %= len(s.roster)
	}
	if s.host == p {
		s.host = s.roster[0]
		s.host.Notify("You are now the host")
	}

	s.announce(nil, p.player.DisplayName+" left the game")
	if !s.started {
		return false, nil
	}
	s.round.TsarPlayerID = s.roster[s.tsarIndex].id
	s.syncRoster()

	if err := s.maybeCloseAnswers(); err != nil {
		return false, err
	}
	if s.round.Phase == PhaseJudging && s.rules.CzarIs == CzarIsThePlayers {
		s.tally()
	}
	return false, nil
}

// syncRoster stamps the roster and host onto the round and publishes it
func (s *Session) syncRoster() {
	if !s.started {
		return
	}
	s.round.Players = s.players()
	s.round.Host = s.host.player
	s.publishRound()
}

func removeVote(votes []string, voterID string) []string {
	out := votes[:0:0]
	for _, v := range votes {
		if v != voterID {
			out = append(out, v)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
