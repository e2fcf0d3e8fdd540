package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Room   RoomConfig   `mapstructure:"room"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RoomConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MinPlayers    int           `mapstructure:"min_players"`
	AllPassPolicy string        `mapstructure:"all_pass_policy"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional YAML file and the
// AUCTION45_* environment, layered over built-in defaults. An empty
// path skips the file entirely.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("room.idle_timeout", 30*time.Minute)
	v.SetDefault("room.sweep_interval", time.Minute)
	v.SetDefault("room.min_players", 2)
	v.SetDefault("room.all_pass_policy", "redeal")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("AUCTION45")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Room.AllPassPolicy {
	case "redeal", "dealer_min":
	default:
		return fmt.Errorf("invalid room.all_pass_policy %q", c.Room.AllPassPolicy)
	}
	if c.Room.MinPlayers < 2 || c.Room.MinPlayers > 4 {
		return fmt.Errorf("room.min_players must be between 2 and 4, got %d", c.Room.MinPlayers)
	}
	return nil
}
