package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rezonant/cardsagainst/internal/game"
)

const (
	writeWait     = 10 * time.Second
	resultsBuffer = 16
)

// PlayerSocket seats the caller in a session and serves its websocket.
// The player keeps the seat for the grace period after the socket drops.
func (h *Handler) PlayerSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	session, err := h.registry.FindSession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	playerID, cookie := playerIdentity(r)
	p, err := session.Join(playerID, r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Connect before upgrading so a failed handshake still arms the grace timer
	connID := p.Connect()
	defer p.Disconnect(connID)

	var header http.Header
	if cookie != nil {
		header = http.Header{"Set-Cookie": []string{cookie.String()}}
	}
	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed for player %s in session %s: %v", playerID, sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("🔌 Player %s connected to session %s (connection %s)", playerID, sessionID, connID)
	h.servePlayer(conn, session, p, connID)
	log.Printf("🔌 Player %s disconnected from session %s (connection %s)", playerID, sessionID, connID)
}

func (h *Handler) servePlayer(conn *websocket.Conn, session *game.Session, p *game.PlayerSession, connID string) {
	results := make(chan Frame, resultsBuffer)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	hello := Frame{Type: FrameWelcome, Data: welcome{
		SessionID:    session.ID(),
		PlayerID:     p.ID(),
		ConnectionID: connID,
	}}

	go func() {
		defer close(writerDone)
		h.writePump(conn, session, p, hello, results, done)
	}()

	h.readPump(conn, p, results, writerDone)
	close(done)
	<-writerDone
}

// writePump is the only goroutine that writes to conn
func (h *Handler) writePump(conn *websocket.Conn, session *game.Session, p *game.PlayerSession, hello Frame, results <-chan Frame, done <-chan struct{}) {
	rounds, cancelRounds := session.SubscribeRounds()
	defer cancelRounds()
	cards, cancelCards := p.CardsChanged()
	defer cancelCards()
	messages, cancelMessages := p.Messages()
	defer cancelMessages()
	judgements, cancelJudgements := p.JudgementRequests()
	defer cancelJudgements()

	ticker := time.NewTicker(h.config.Server.PingInterval)
	defer ticker.Stop()

	write := func(f Frame) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			log.Printf("❌ Failed to write %s frame to player %s: %v", f.Type, p.ID(), err)
			// Unblock the reader
			conn.Close()
			return false
		}
		return true
	}

	if !write(hello) || !write(Frame{Type: FrameHand, Data: p.Hand()}) {
		return
	}

	for {
		select {
		case <-done:
			// Flush command results queued before the reader stopped
			for {
				select {
				case f := <-results:
					if !write(f) {
						return
					}
				default:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		case f := <-results:
			if !write(f) {
				return
			}
		case round, ok := <-rounds:
			if !ok {
				rounds = nil
				continue
			}
			if !write(Frame{Type: FrameRound, Data: round}) {
				return
			}
		case hand, ok := <-cards:
			if !ok {
				cards = nil
				continue
			}
			if !write(Frame{Type: FrameHand, Data: hand}) {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			if !write(Frame{Type: FrameMessage, Data: msg}) {
				return
			}
		case req, ok := <-judgements:
			if !ok {
				judgements = nil
				continue
			}
			if !write(Frame{Type: FrameJudgement, Data: req}) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}

// readPump decodes commands until the socket fails or the player leaves
func (h *Handler) readPump(conn *websocket.Conn, p game.Participant, results chan<- Frame, writerDone <-chan struct{}) {
	pongWait := h.config.Server.PongTimeout
	if h.config.Server.MaxRequestSize > 0 {
		conn.SetReadLimit(h.config.Server.MaxRequestSize)
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Unexpected close from player %s: %v", p.ID(), err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var cmd Command
		var f Frame
		left := false
		if err := json.Unmarshal(data, &cmd); err != nil {
			f = result(cmd, nil, fmt.Errorf("%w: malformed command: %v", game.ErrValidation, err))
		} else {
			out, err := dispatch(p, cmd)
			f = result(cmd, out, err)
			left = cmd.Type == CommandLeave && err == nil
		}

		select {
		case results <- f:
		case <-writerDone:
			return
		}
		if left {
			return
		}
	}
}
