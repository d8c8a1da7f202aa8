package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// spectatorHeartbeat is how often an idle spectator stream is checked and kept alive
var spectatorHeartbeat = 30 * time.Second

// SpectateSession streams the public round state over SSE. Spectators never
// join the game, so they see what every seated player sees and nothing more.
func (h *Handler) SpectateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	session, err := h.registry.FindSession(sessionID)
	if err != nil {
		log.Printf("📡 SSE requested for unknown session: %s", sessionID)
		writeError(w, err)
		return
	}

	sse := datastar.NewSSE(w, r)

	rounds, cancel := session.SubscribeRounds()
	defer cancel()
	log.Printf("📡 Spectator connected to session %s", sessionID)
	defer log.Printf("📡 Spectator left session %s", sessionID)

	heartbeat := time.NewTicker(spectatorHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := h.registry.FindSession(sessionID); err != nil {
				log.Printf("📡 Heartbeat: session %s no longer exists, closing SSE", sessionID)
				return
			}
			// Browsers drop SSE connections that stay silent too long
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				log.Printf("📡 Keepalive failed for session %s: %v", sessionID, err)
				return
			}
		case round, ok := <-rounds:
			if !ok {
				log.Printf("📡 Session %s closed, ending spectator stream", sessionID)
				return
			}
			if err := sse.MarshalAndPatchSignals(map[string]any{"round": round}); err != nil {
				log.Printf("❌ Failed to patch round for session %s: %v", sessionID, err)
				return
			}
		}
	}
}
