package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	TownCapacity int           `mapstructure:"town_capacity"`
}

// PingPeriod derives the keepalive interval from the pong deadline; pings
// must go out before the peer's read deadline expires.
func (c *Config) PingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	v.SetConfigFile(fmt.Sprintf("config/config.%s.yaml", env))
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8081)
	v.SetDefault("read_limit", 1<<20) // canvas snapshots are data URIs
	v.SetDefault("send_buffer", 256)
	v.SetDefault("write_timeout", "10s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("town_capacity", 50)

	if err := v.ReadInConfig(); err != nil {
		// Defaults are a complete configuration; a missing file is fine.
		log.Debug().Str("module", "config").Err(err).Msg("no config file, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
