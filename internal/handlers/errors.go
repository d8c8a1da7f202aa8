package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rezonant/cardsagainst/internal/game"
)

// Error kinds reported to clients
const (
	KindValidation    = "validation"
	KindAuthorization = "authorization"
	KindSequencing    = "sequencing"
	KindExhausted     = "resource-exhausted"
	KindNotFound      = "not-found"
	KindClosed        = "closed"
	KindInternal      = "internal"
)

// ErrorBody is the payload of every error response and failed command result
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// classify maps an engine error to a client-facing kind and HTTP status
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return KindNotFound, http.StatusNotFound
	case errors.Is(err, game.ErrSessionClosed):
		return KindClosed, http.StatusGone
	case errors.Is(err, game.ErrValidation):
		return KindValidation, http.StatusBadRequest
	case errors.Is(err, game.ErrAuthorization):
		return KindAuthorization, http.StatusForbidden
	case errors.Is(err, game.ErrSequencing):
		return KindSequencing, http.StatusConflict
	case errors.Is(err, game.ErrResourceExhausted):
		return KindExhausted, http.StatusServiceUnavailable
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

func errorBody(err error) *ErrorBody {
	kind, _ := classify(err)
	return &ErrorBody{Kind: kind, Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind, status := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ Internal error: %v", err)
	}
	writeJSON(w, status, ErrorBody{Kind: kind, Message: err.Error()})
}
