package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rezonant/cardsagainst/internal/game"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// sessionView is the public snapshot of a session
type sessionView struct {
	ID           string         `json:"id"`
	Started      bool           `json:"started"`
	Players      []game.Player  `json:"players"`
	Round        *game.Round    `json:"round,omitempty"`
	GameRules    game.GameRules `json:"gameRules"`
	EnabledDecks []game.Deck    `json:"enabledDecks"`
	Links        sessionLinks   `json:"links"`
}

// ListDecks returns every deck in the catalog
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Decks())
}

// CreateSession creates an empty session; the first player to connect hosts it
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.CreateSession()
	if err != nil {
		log.Printf("❌ Failed to create session: %v", err)
		writeError(w, err)
		return
	}

	view := h.view(r, session)
	w.Header().Set("Location", view.Links.Session)
	writeJSON(w, http.StatusCreated, view)
}

// GetSession returns the session's current public state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.FindSession(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, session))
}

// SessionHistory returns the archived rounds, newest first
func (h *Handler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.FindSession(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.PreviousRounds())
}

// SessionQRCode serves a PNG QR code pointing at the session
func (h *Handler) SessionQRCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.registry.FindSession(id); err != nil {
		writeError(w, err)
		return
	}

	png, err := generateQRCode(h.links(r, id).Session)
	if err != nil {
		log.Printf("❌ Failed to generate QR code for session %s: %v", id, err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) view(r *http.Request, session *game.Session) sessionView {
	view := sessionView{
		ID:           session.ID(),
		Started:      session.Started(),
		Players:      session.Players(),
		GameRules:    session.GameRules(),
		EnabledDecks: session.EnabledDecks(),
		Links:        h.links(r, session.ID()),
	}
	if view.Started {
		round := session.Round()
		view.Round = &round
	}
	return view
}

// generateQRCode renders url as a PNG
func generateQRCode(url string) ([]byte, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// The standard writer only targets files
	tmp, err := os.CreateTemp("", "qr_*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpFile := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpFile)

	w, err := standard.New(tmpFile,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8), // 8 pixels per module
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}

	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	return data, nil
}
