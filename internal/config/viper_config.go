package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("server")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cardsagainst")
	}

	// Nested keys map to CARDSAGAINST_GAME_HANDSIZE and friends
	v.SetEnvPrefix("cardsagainst")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short names for the settings people actually change
	bindEnv(v, "server.port", "PORT")
	bindEnv(v, "server.host", "HOST")
	bindEnv(v, "server.publicurl", "PUBLIC_URL")
	bindEnv(v, "server.ratelimit", "RATE_LIMIT")
	bindEnv(v, "server.ratelimitburst", "RATE_LIMIT_BURST")
	bindEnv(v, "server.maxsessions", "MAX_SESSIONS")
	bindEnv(v, "server.maxconnections", "MAX_CONNECTIONS")
	bindEnv(v, "server.sessiontimeout", "SESSION_TIMEOUT")
	bindEnv(v, "game.handsize", "HAND_SIZE")
	bindEnv(v, "game.graceperiod", "GRACE_PERIOD")
	bindEnv(v, "game.seed", "GAME_SEED")
	bindEnv(v, "game.catalogpath", "CATALOG_PATH")
	bindEnv(v, "game.defaultdecks", "DEFAULT_DECKS")

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The file is optional; env vars and defaults are enough to run
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key, env string) {
	// BindEnv only fails without a key
	_ = v.BindEnv(key, "CARDSAGAINST_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
}

func setDefaults(v *viper.Viper, d *ServerConfig) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.publicurl", d.Server.PublicURL)
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", d.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout)
	v.SetDefault("server.sessiontimeout", d.Server.SessionTimeout)
	v.SetDefault("server.reapinterval", d.Server.ReapInterval)
	v.SetDefault("server.maxsessions", d.Server.MaxSessions)
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)
	v.SetDefault("server.maxconnections", d.Server.MaxConnections)
	v.SetDefault("server.pinginterval", d.Server.PingInterval)
	v.SetDefault("server.pongtimeout", d.Server.PongTimeout)

	v.SetDefault("game.handsize", d.Game.HandSize)
	v.SetDefault("game.graceperiod", d.Game.GracePeriod)
	v.SetDefault("game.notificationdelay", d.Game.NotificationDelay)
	v.SetDefault("game.historylimit", d.Game.HistoryLimit)
	v.SetDefault("game.minanswercards", d.Game.MinAnswerCards)
	v.SetDefault("game.minpromptcards", d.Game.MinPromptCards)
	v.SetDefault("game.seed", d.Game.Seed)
	v.SetDefault("game.catalogpath", d.Game.CatalogPath)
	v.SetDefault("game.defaultdecks", d.Game.DefaultDecks)
	v.SetDefault("game.rules.leavingplayerwill", d.Game.Rules.LeavingPlayerWill)
	v.SetDefault("game.rules.czaris", d.Game.Rules.CzarIs)
	v.SetDefault("game.rules.czarcandeclareadraw", d.Game.Rules.CzarCanDeclareADraw)
	v.SetDefault("game.rules.czarplaysupto", d.Game.Rules.CzarPlaysUpTo)
	v.SetDefault("game.rules.houseplaysupto", d.Game.Rules.HousePlaysUpTo)
}
