// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Media    MediaConfig    `yaml:"media"`
	Session  SessionConfig  `yaml:"session"`
	Messages MessagesConfig `yaml:"messages"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
}

// CatalogConfig represents catalog file configuration.
type CatalogConfig struct {
	Path string `yaml:"path" default:"data/catalog.json"`
}

// MediaConfig represents media delivery configuration.
type MediaConfig struct {
	// BaseURL is joined with each track's stored relative path to build
	// the playback URL handed to the external player.
	BaseURL string `yaml:"base_url" validate:"required,url"`
}

// SessionConfig represents session store configuration.
type SessionConfig struct {
	Backend string             `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
	Redis   SessionRedisConfig `yaml:"redis"`
}

// SessionRedisConfig represents the Redis session store settings.
type SessionRedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttl_hours" validate:"gte=0"` // 0 keeps sessions forever
}

// MessagesConfig represents user-facing speech fragments. Defaults carry
// the skill's Japanese utterances; hosts can override any of them.
type MessagesConfig struct {
	Welcome        string `yaml:"welcome" default:"おうちサーバーへようこそ。「誰 の どの 曲をかけて」と、言ってみてください。"`
	Help           string `yaml:"help" default:"おうちサーバーの楽曲を再生することができます。"`
	HelpReprompt   string `yaml:"help_reprompt" default:"何を再生しましょうか?"`
	Fallback       string `yaml:"fallback" default:"今はまだできません。"`
	Exception      string `yaml:"exception" default:"ごめんなさい。いまはまだできません。"`
	Stopped        string `yaml:"stopped" default:"またね!"`
	NotFound       string `yaml:"not_found" default:"ごめんなさい。わかりません。"`
	PlaybackFailed string `yaml:"playback_failed" default:"再生できませんでした"`
	PlayArtist     string `yaml:"play_artist" default:"%s の楽曲をシャッフル再生します。"`
	PlayAlbum      string `yaml:"play_album" default:"アルバム %s を再生します。"`
	NotFoundArtist string `yaml:"not_found_artist" default:"%s の楽曲は見つかりませんでした。"`
	NotFoundAlbum  string `yaml:"not_found_album" default:"アルバム %s は見つかりませんでした。"`
	NowPlaying     string `yaml:"now_playing" default:"%s です。"`
	NowPlayingBy   string `yaml:"now_playing_by" default:"%s で、"`
	NowPlayingFrom string `yaml:"now_playing_from" default:"%s に収録の、"`
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for deployment-specific fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("MUSIC_URL_BASE"); v != "" {
		c.Media.BaseURL = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Session.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Session.Redis.Password = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.Redis.TTLHours) * time.Hour
}

// GetMessage returns the message for the given speech code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "welcome":
		return c.Messages.Welcome
	case "help":
		return c.Messages.Help
	case "help_reprompt":
		return c.Messages.HelpReprompt
	case "fallback":
		return c.Messages.Fallback
	case "stopped":
		return c.Messages.Stopped
	case "not_found":
		return c.Messages.NotFound
	case "playback_failed":
		return c.Messages.PlaybackFailed
	default:
		return c.Messages.Exception
	}
}
