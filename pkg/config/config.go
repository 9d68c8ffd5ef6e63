// Package config loads convoflow configuration from TOML files.
//
// Configuration is optional: every field has a default, and the CLI runs
// without a config file at all. Flags override file values, which override
// defaults.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/convoflow/convoflow/pkg/errors"
)

// Config is the full convoflow configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Labels LabelsConfig `toml:"labels"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Source SourceConfig `toml:"source"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig controls node spacing in built graphs.
type LayoutConfig struct {
	VerticalGap   float64 `toml:"vertical_gap"`
	HorizontalGap float64 `toml:"horizontal_gap"`
}

// LabelsConfig overrides the display labels on user nodes.
type LabelsConfig struct {
	User      string `toml:"user"`
	Assistant string `toml:"assistant"`
}

// RenderConfig controls visual output.
type RenderConfig struct {
	LabelLimit int `toml:"label_limit"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// SourceConfig selects and configures the conversation source backend.
type SourceConfig struct {
	// Backend is one of "file" or "mongo".
	Backend         string `toml:"backend"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend: "file",
		},
		Source: SourceConfig{
			Backend:         "file",
			MongoDatabase:   "convoflow",
			MongoCollection: "conversations",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that TOML decoding cannot express.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis, or none)", c.Cache.Backend)
	}

	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_addr")
	}

	switch c.Source.Backend {
	case "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown source backend %q (want file or mongo)", c.Source.Backend)
	}

	if c.Source.Backend == "mongo" {
		if err := errors.ValidateMongoURI(c.Source.MongoURI); err != nil {
			return err
		}
	}

	if c.Layout.VerticalGap < 0 || c.Layout.HorizontalGap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout gaps cannot be negative")
	}

	return nil
}
