package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration. Pacing values are per-mode
// tuning knobs, not constants: different game modes run different
// countdowns and call cadences.
type Config struct {
	HTTPPort string `mapstructure:"http_port"`

	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
	Game  GameConfig  `mapstructure:"game"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type StoreConfig struct {
	// Backend selects the delayed event store: redis, postgres or memory.
	// memory is single-process only; events do not survive a restart.
	Backend string `mapstructure:"backend"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`

	PostgresDSN string `mapstructure:"postgres_dsn"`

	DrainInterval time.Duration `mapstructure:"drain_interval"`
	DrainLimit    int           `mapstructure:"drain_limit"`
}

type GameConfig struct {
	CountdownSeconds    int           `mapstructure:"countdown_seconds"`
	CountdownTick       time.Duration `mapstructure:"countdown_tick"`
	FirstCallDelay      time.Duration `mapstructure:"first_call_delay"`
	CallInterval        time.Duration `mapstructure:"call_interval"`
	IdleTimeout         time.Duration `mapstructure:"idle_timeout"`
	MaxPlayersPerRoom   int           `mapstructure:"max_players_per_room"`
	MaxScheduleFailures int           `mapstructure:"max_schedule_failures"`
}

// Load reads config.yaml from the working directory (optional) with
// BINGO_* environment variables taking precedence, e.g.
// BINGO_GAME_COUNTDOWN_SECONDS=45.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("store.backend", "redis")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_key", "bingo:scheduled_events")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.drain_interval", 250*time.Millisecond)
	v.SetDefault("store.drain_limit", 64)

	v.SetDefault("game.countdown_seconds", 30)
	v.SetDefault("game.countdown_tick", time.Second)
	v.SetDefault("game.first_call_delay", 3*time.Second)
	v.SetDefault("game.call_interval", 5*time.Second)
	v.SetDefault("game.idle_timeout", 10*time.Minute)
	v.SetDefault("game.max_players_per_room", 100)
	v.SetDefault("game.max_schedule_failures", 5)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The file is optional; env and defaults carry a bare deployment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
