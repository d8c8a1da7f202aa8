package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ServerConfig represents the server configuration
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
}

// ServerSettings contains transport and process settings
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	PublicURL       string        `yaml:"publicURL"` // base for join links and QR codes; derived from the request when empty
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"` // 0 for SSE and websocket support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // Timeout for regular HTTP requests (middleware)

	// Sessions nobody joined are reaped after this long
	SessionTimeout time.Duration `yaml:"sessionTimeout"`
	ReapInterval   time.Duration `yaml:"reapInterval"`
	MaxSessions    int           `yaml:"maxSessions"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`      // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"` // burst size

	// Request limits
	MaxRequestSize int64 `yaml:"maxRequestSize"`
	MaxConnections int   `yaml:"maxConnections"` // websocket + SSE streams

	// Websocket keepalive
	PingInterval time.Duration `yaml:"pingInterval"`
	PongTimeout  time.Duration `yaml:"pongTimeout"`
}

// GameSettings are the defaults every new session starts with
type GameSettings struct {
	HandSize          int           `yaml:"handSize"`
	GracePeriod       time.Duration `yaml:"gracePeriod"`
	NotificationDelay time.Duration `yaml:"notificationDelay"`
	HistoryLimit      int           `yaml:"historyLimit"`
	MinAnswerCards    int           `yaml:"minAnswerCards"`
	MinPromptCards    int           `yaml:"minPromptCards"`
	Seed              uint64        `yaml:"seed"`        // 0 seeds from the clock
	CatalogPath       string        `yaml:"catalogPath"` // empty uses the embedded cards
	DefaultDecks      []string      `yaml:"defaultDecks"`
	Rules             RulesSettings `yaml:"rules"`
}

// RulesSettings mirrors game.GameRules
type RulesSettings struct {
	LeavingPlayerWill   string `yaml:"leavingPlayerWill"`
	CzarIs              string `yaml:"czarIs"`
	CzarCanDeclareADraw bool   `yaml:"czarCanDeclareADraw"`
	CzarPlaysUpTo       int    `yaml:"czarPlaysUpTo"`
	HousePlaysUpTo      int    `yaml:"housePlaysUpTo"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // streams stay open
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,

			SessionTimeout: 24 * time.Hour,
			ReapInterval:   10 * time.Minute,
			MaxSessions:    1000,

			RateLimit:      10,
			RateLimitBurst: 20,

			MaxRequestSize: 1 << 16,
			MaxConnections: 1000,

			PingInterval: 30 * time.Second,
			PongTimeout:  60 * time.Second,
		},
		Game: GameSettings{
			HandSize:          10,
			GracePeriod:       30 * time.Second,
			NotificationDelay: 100 * time.Millisecond,
			HistoryLimit:      50,
			MinAnswerCards:    50,
			MinPromptCards:    1,
			Rules: RulesSettings{
				LeavingPlayerWill: "return-hand",
				CzarIs:            "a-player",
				CzarPlaysUpTo:     3,
				HousePlaysUpTo:    3,
			},
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	// Required fields
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}

	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rateLimit must be positive")
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rateLimitBurst must be at least 1")
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be at least 1")
	}
	if c.Server.PingInterval <= 0 || c.Server.PongTimeout <= c.Server.PingInterval {
		return fmt.Errorf("pongTimeout must be longer than a positive pingInterval")
	}

	g := c.Game
	if g.HandSize < 1 {
		return fmt.Errorf("handSize must be at least 1")
	}
	if g.GracePeriod <= 0 {
		return fmt.Errorf("gracePeriod must be positive")
	}
	if g.NotificationDelay < 0 {
		return fmt.Errorf("notificationDelay cannot be negative")
	}
	if g.HistoryLimit < 1 {
		return fmt.Errorf("historyLimit must be at least 1")
	}
	if g.MinAnswerCards < 0 || g.MinPromptCards < 1 {
		return fmt.Errorf("minAnswerCards cannot be negative and minPromptCards must be at least 1")
	}

	switch g.Rules.LeavingPlayerWill {
	case "keep-hand", "lose-hand", "return-hand":
	default:
		return fmt.Errorf("rules.leavingPlayerWill %q is not one of keep-hand, lose-hand, return-hand", g.Rules.LeavingPlayerWill)
	}
	switch g.Rules.CzarIs {
	case "a-player", "the-players", "the-audience":
	default:
		return fmt.Errorf("rules.czarIs %q is not one of a-player, the-players, the-audience", g.Rules.CzarIs)
	}
	if g.Rules.CzarPlaysUpTo < 0 || g.Rules.HousePlaysUpTo < 0 {
		return fmt.Errorf("rules thresholds cannot be negative")
	}

	return nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
