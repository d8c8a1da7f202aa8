package game

import "fmt"

// LeavingPlayerWill decides what happens to a departing player's hand
type LeavingPlayerWill string

const (
	KeepHand   LeavingPlayerWill = "keep-hand"
	LoseHand   LeavingPlayerWill = "lose-hand"
	ReturnHand LeavingPlayerWill = "return-hand"
)

// CzarIs selects who judges a round
type CzarIs string

const (
	CzarIsAPlayer    CzarIs = "a-player"
	CzarIsThePlayers CzarIs = "the-players"
	CzarIsAudience   CzarIs = "the-audience"
)

// GameRules are the host-adjustable house rules of a session
type GameRules struct {
	LeavingPlayerWill   LeavingPlayerWill `json:"leavingPlayerWill"`
	CzarIs              CzarIs            `json:"czarIs"`
	CzarCanDeclareADraw bool              `json:"czarCanDeclareADraw"`
	CzarPlaysUpTo       int               `json:"czarPlaysUpTo"`  // czar also answers while the roster is smaller than this
	HousePlaysUpTo      int               `json:"housePlaysUpTo"` // house pads the answers up to this count
}

// DefaultRules returns the rules a new session starts with
func DefaultRules() GameRules {
	return GameRules{
		LeavingPlayerWill:   ReturnHand,
		CzarIs:              CzarIsAPlayer,
		CzarCanDeclareADraw: false,
		CzarPlaysUpTo:       3,
		HousePlaysUpTo:      3,
	}
}

// Validate checks enum values and counts
func (r GameRules) Validate() error {
	switch r.LeavingPlayerWill {
	case KeepHand, LoseHand, ReturnHand:
	default:
		return fmt.Errorf("%w: leavingPlayerWill %q", ErrInvalidRules, r.LeavingPlayerWill)
	}
	switch r.CzarIs {
	case CzarIsAPlayer, CzarIsThePlayers, CzarIsAudience:
	default:
		return fmt.Errorf("%w: czarIs %q", ErrInvalidRules, r.CzarIs)
	}
	if r.CzarPlaysUpTo < 0 {
		return fmt.Errorf("%w: czarPlaysUpTo must not be negative", ErrInvalidRules)
	}
	if r.HousePlaysUpTo < 0 {
		return fmt.Errorf("%w: housePlaysUpTo must not be negative", ErrInvalidRules)
	}
	return nil
}

// tsarPlays reports whether the czar submits an answer with the given roster size
func (r GameRules) tsarPlays(playerCount int) bool {
	return r.CzarIs != CzarIsAPlayer || playerCount < r.CzarPlaysUpTo
}
