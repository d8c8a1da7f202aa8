package game

import (
	"errors"
	"fmt"
)

// Error kinds. Errors returned by Session operations wrap one of these, apart
// from ErrSessionClosed and ErrSessionNotFound.
var (
	ErrValidation        = errors.New("invalid request")
	ErrAuthorization     = errors.New("not allowed")
	ErrSequencing        = errors.New("out of turn")
	ErrResourceExhausted = errors.New("card supply exhausted")
)

var (
	ErrUnknownDeck      = fmt.Errorf("%w: unknown deck", ErrValidation)
	ErrNoDecks          = fmt.Errorf("%w: at least one deck must be enabled", ErrValidation)
	ErrTooFewCards      = fmt.Errorf("%w: not enough cards in the selected decks", ErrValidation)
	ErrUnknownAnswer    = fmt.Errorf("%w: no such answer", ErrValidation)
	ErrAnswerEliminated = fmt.Errorf("%w: that answer was eliminated", ErrValidation)
	ErrWrongCardCount   = fmt.Errorf("%w: wrong number of cards", ErrValidation)
	ErrCardNotInHand    = fmt.Errorf("%w: card is not in your hand", ErrValidation)
	ErrInvalidRules     = fmt.Errorf("%w: invalid game rules", ErrValidation)
	ErrNotHost          = fmt.Errorf("%w: only the host can do that", ErrAuthorization)
	ErrNotTsar          = fmt.Errorf("%w: only the czar can do that", ErrAuthorization)
	ErrNotInGame        = fmt.Errorf("%w: you are not in this game", ErrAuthorization)
	ErrAudienceJudging  = fmt.Errorf("%w: audience judging is not available", ErrAuthorization)
	ErrDrawNotAllowed   = fmt.Errorf("%w: the czar can't declare a draw in this game", ErrAuthorization)
	ErrAlreadyAnswered  = fmt.Errorf("%w: you've already submitted an answer", ErrSequencing)
	ErrTsarCannotPlay   = fmt.Errorf("%w: the czar doesn't play this round", ErrSequencing)
	ErrNotAnswering     = fmt.Errorf("%w: answers are closed", ErrSequencing)
	ErrNotJudging       = fmt.Errorf("%w: it's not time to pick an answer", ErrSequencing)
	ErrNotRevealed      = fmt.Errorf("%w: not all answers have been revealed yet", ErrSequencing)
	ErrRoundNotFinished = fmt.Errorf("%w: the current round isn't finished yet", ErrSequencing)
	ErrNoPlayers        = fmt.Errorf("%w: a round needs at least one player", ErrSequencing)
	ErrSessionClosed    = errors.New("session is closed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrCatalogInvalid   = errors.New("invalid card catalog")
)
