package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rezonant/cardsagainst/internal/config"
	"github.com/rezonant/cardsagainst/internal/game"
)

// playerCookie remembers a browser's player id across reconnects
const playerCookie = "player_id"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	registry game.Registry
	config   *config.ServerConfig
	upgrader websocket.Upgrader
}

// New creates a new handler
func New(registry game.Registry, cfg *config.ServerConfig) *Handler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handler{
		registry: registry,
		config:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Registry returns the handler's session registry (for testing)
func (h *Handler) Registry() game.Registry {
	return h.registry
}

// playerIdentity returns the caller's player id. An explicit playerId query
// parameter wins; otherwise the cookie is used, and a fresh id is minted when
// there is none. The returned cookie is nil when nothing needs to be set.
func playerIdentity(r *http.Request) (string, *http.Cookie) {
	if id := strings.TrimSpace(r.URL.Query().Get("playerId")); id != "" {
		return id, nil
	}
	if c, err := r.Cookie(playerCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	id := uuid.NewString()
	return id, &http.Cookie{
		Name:     playerCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7, // 7 days
	}
}

// baseURL returns the configured public URL, or one built from the request
func (h *Handler) baseURL(r *http.Request) string {
	if h.config.Server.PublicURL != "" {
		return strings.TrimSuffix(h.config.Server.PublicURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// Check for X-Forwarded-Proto header (common in reverse proxy setups)
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		host = forwardedHost
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

// sessionLinks are the URLs a client needs to take part in a session
type sessionLinks struct {
	Session  string `json:"session"`
	Socket   string `json:"socket"`
	Spectate string `json:"spectate"`
	QRCode   string `json:"qrCode"`
}

func (h *Handler) links(r *http.Request, id string) sessionLinks {
	base := h.baseURL(r)
	socket := "ws" + strings.TrimPrefix(base, "http")
	return sessionLinks{
		Session:  base + "/api/sessions/" + id,
		Socket:   socket + "/ws/sessions/" + id,
		Spectate: base + "/sse/sessions/" + id,
		QRCode:   base + "/api/sessions/" + id + "/qr",
	}
}
