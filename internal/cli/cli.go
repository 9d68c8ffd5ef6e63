package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/convoflow/convoflow/pkg/buildinfo"
	"github.com/convoflow/convoflow/pkg/cache"
	"github.com/convoflow/convoflow/pkg/config"
	"github.com/convoflow/convoflow/pkg/pipeline"
	"github.com/convoflow/convoflow/pkg/source"
)

// appName is the application name used for directories and display.
const appName = "convoflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config persistent flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "convoflow",
		Short:        "Convoflow visualizes conversations as flow graphs",
		Long:         `Convoflow is a CLI tool for turning user/assistant conversation transcripts into flow graphs, making it easy to see how a conversation branched and which replies answered which questions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/convoflow/convoflow.toml)")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.conversationsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default path.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(dir, "convoflow.toml")
	}
	return config.Load(path)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	art, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	src, err := newSource(ctx, cfg)
	if err != nil {
		_ = art.Close()
		return nil, err
	}
	// Remote fetches go through the read-through cache; local files don't
	// need one.
	if cfg.Source.Backend == "mongo" {
		src = source.NewCachedSource(src, cfg.Source.Backend, art, nil)
	}
	return pipeline.NewRunner(src, art, nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}

	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr,
			cache.WithPassword(cfg.Cache.RedisPassword),
			cache.WithDB(cfg.Cache.RedisDB))
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newSource creates the conversation source configured by cfg.
// A file source rooted at the working directory is the fallback, so builds
// by conversation id work out of the box against ./*.json transcripts.
func newSource(ctx context.Context, cfg config.Config) (source.Source, error) {
	if cfg.Source.Backend == "mongo" {
		mongo, err := source.NewMongoSource(ctx, cfg.Source.MongoURI, cfg.Source.MongoDatabase, cfg.Source.MongoCollection)
		if err != nil {
			return nil, err
		}
		return mongo, nil
	}
	return source.NewFileSource("."), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/convoflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/convoflow/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
// Whitespace around entries is tolerated ("svg, png") and empty entries
// from stray commas are dropped.
func parseFormats(s string) []string {
	var formats []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			formats = append(formats, part)
		}
	}
	if len(formats) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return formats
}
