package handlers

import (
	"fmt"

	"github.com/rezonant/cardsagainst/internal/game"
)

// Frame types pushed to a player's socket
const (
	FrameWelcome   = "welcome"
	FrameRound     = "round"
	FrameHand      = "hand"
	FrameMessage   = "message"
	FrameJudgement = "judgement"
	FrameResult    = "result"
)

// Command types a player sends
const (
	CommandSubmit = "submit"
	CommandReveal = "reveal"
	CommandPick   = "pick"
	CommandDraw   = "draw"
	CommandNext   = "next"
	CommandLeave  = "leave"
	CommandDecks  = "decks"
	CommandRules  = "rules"
	CommandHand   = "hand"
)

// Command is one request from a player. ID is echoed on the result frame.
type Command struct {
	Type     string          `json:"type"`
	ID       string          `json:"id,omitempty"`
	CardIDs  []string        `json:"cardIds,omitempty"`
	AnswerID string          `json:"answerId,omitempty"`
	DeckIDs  []string        `json:"deckIds,omitempty"`
	Rules    *game.GameRules `json:"rules,omitempty"`
}

// Frame is one message to a player
type Frame struct {
	Type  string     `json:"type"`
	ID    string     `json:"id,omitempty"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// welcome tells a freshly connected client who it is
type welcome struct {
	SessionID    string `json:"sessionId"`
	PlayerID     string `json:"playerId"`
	ConnectionID string `json:"connectionId"`
}

// dispatch runs a command against the player's seat
func dispatch(p game.Participant, cmd Command) (any, error) {
	switch cmd.Type {
	case CommandSubmit:
		return nil, p.SubmitAnswer(cmd.CardIDs)
	case CommandReveal:
		return nil, p.RevealAnswer(cmd.AnswerID)
	case CommandPick:
		return nil, p.PickAnswer(cmd.AnswerID)
	case CommandDraw:
		return nil, p.DeclareDraw()
	case CommandNext:
		return nil, p.StartNextRound()
	case CommandLeave:
		return nil, p.LeaveGame()
	case CommandDecks:
		return nil, p.SetEnabledDecks(cmd.DeckIDs)
	case CommandRules:
		if cmd.Rules == nil {
			return nil, fmt.Errorf("%w: rules are required", game.ErrValidation)
		}
		return nil, p.SetGameRules(*cmd.Rules)
	case CommandHand:
		return p.Hand(), nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", game.ErrValidation, cmd.Type)
	}
}

func result(cmd Command, data any, err error) Frame {
	f := Frame{Type: FrameResult, ID: cmd.ID, Data: data}
	if err != nil {
		f.Error = errorBody(err)
	}
	return f
}
