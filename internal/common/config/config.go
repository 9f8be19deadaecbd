package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug   bool   `env:"DEBUG" envDefault:"false"`
	LogFile string `env:"LOG_FILE" envDefault:""`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Storage struct {
		// Backend selects the giveaway repository implementation.
		Backend string `env:"STORAGE_BACKEND" envDefault:"json"` // json, redis

		Path            string `env:"STORAGE_PATH" envDefault:"data/giveaways.json"`
		FlushDebounceMS int    `env:"STORAGE_FLUSH_DEBOUNCE_MS" envDefault:"600"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Giveaway struct {
		Enabled            bool    `env:"GIVEAWAY_ENABLED" envDefault:"true"`
		TickSeconds        int     `env:"GIVEAWAY_TICK_SECONDS" envDefault:"10"`
		DefaultWinners     int     `env:"GIVEAWAY_DEFAULT_WINNERS" envDefault:"1"`
		MaxWinners         int     `env:"GIVEAWAY_MAX_WINNERS" envDefault:"20"`
		MaxPrizeLength     int     `env:"GIVEAWAY_MAX_PRIZE_LENGTH" envDefault:"120"`
		MinDurationSeconds int     `env:"GIVEAWAY_MIN_DURATION_SECONDS" envDefault:"10"`
		AllowedRoleIDs     []int64 `env:"GIVEAWAY_ALLOWED_ROLE_IDS" envSeparator:","`
		RequireAdmin       bool    `env:"GIVEAWAY_REQUIRE_ADMINISTRATOR" envDefault:"true"`
		RequireManageGuild bool    `env:"GIVEAWAY_REQUIRE_MANAGE_GUILD" envDefault:"false"`
	}

	Announce struct {
		WebhookURL string `env:"ANNOUNCE_WEBHOOK_URL" envDefault:""`
	}
}

func Load() *Config {
	// Missing .env is fine, variables may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	cfg.normalize()
	return cfg
}

// normalize clamps tunables to their documented floors so a bad environment
// cannot produce a busy-looping scheduler or a zero-winner giveaway.
func (c *Config) normalize() {
	if c.Giveaway.TickSeconds < 3 {
		c.Giveaway.TickSeconds = 3
	}
	if c.Giveaway.DefaultWinners < 1 {
		c.Giveaway.DefaultWinners = 1
	}
	if c.Giveaway.MaxWinners < 1 {
		c.Giveaway.MaxWinners = 1
	}
	if c.Giveaway.MaxPrizeLength < 20 {
		c.Giveaway.MaxPrizeLength = 20
	}
	if c.Giveaway.MinDurationSeconds < 1 {
		c.Giveaway.MinDurationSeconds = 1
	}
	if c.Storage.FlushDebounceMS < 0 {
		c.Storage.FlushDebounceMS = 0
	}
}

// TickInterval returns the scheduler tick as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Giveaway.TickSeconds) * time.Second
}

// FlushDebounce returns the store's flush coalescing window.
func (c *Config) FlushDebounce() time.Duration {
	return time.Duration(c.Storage.FlushDebounceMS) * time.Millisecond
}
