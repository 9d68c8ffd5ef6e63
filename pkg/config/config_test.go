package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/convoflow/convoflow/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "convoflow.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "file")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Source.MongoCollection != "conversations" {
		t.Errorf("Source.MongoCollection = %q, want %q", cfg.Source.MongoCollection, "conversations")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
vertical_gap = 80.0
horizontal_gap = 200.0

[labels]
user = "Me"

[render]
label_limit = 30

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[server]
addr = ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Layout.VerticalGap != 80 || cfg.Layout.HorizontalGap != 200 {
		t.Errorf("Layout = %+v, want gaps 80/200", cfg.Layout)
	}
	if cfg.Labels.User != "Me" {
		t.Errorf("Labels.User = %q, want %q", cfg.Labels.User, "Me")
	}
	if cfg.Render.LabelLimit != 30 {
		t.Errorf("Render.LabelLimit = %d, want 30", cfg.Render.LabelLimit)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v, want redis backend", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	// Unset sections keep their defaults
	if cfg.Source.Backend != "file" {
		t.Errorf("Source.Backend = %q, want default %q", cfg.Source.Backend, "file")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[layout\nvertical_gap = ")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load should fail on malformed TOML")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"none cache", func(c *Config) { c.Cache.Backend = "none" }, false},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, true},
		{"unknown source backend", func(c *Config) { c.Source.Backend = "postgres" }, true},
		{"mongo without uri", func(c *Config) { c.Source.Backend = "mongo" }, true},
		{
			"mongo with uri",
			func(c *Config) {
				c.Source.Backend = "mongo"
				c.Source.MongoURI = "mongodb://localhost:27017"
			},
			false,
		},
		{"negative gap", func(c *Config) { c.Layout.VerticalGap = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
