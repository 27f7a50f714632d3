package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/buildinfo"
	"github.com/matzehuels/dungeonbuilder/pkg/cache"
	"github.com/matzehuels/dungeonbuilder/pkg/config"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	"github.com/matzehuels/dungeonbuilder/pkg/pipeline"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Dungeonbuilder edits hierarchical dungeon layouts",
		Long: `Dungeonbuilder is a level editor core for dungeon layouts: spatial cells
grouped into a tree of named areas, edited through an undoable command
history, validated for structural and geometric problems, and stored as
versioned JSON documents.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/dungeonbuilder/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.cellCommand())
	root.AddCommand(c.areaCommand())
	root.AddCommand(c.corridorCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file, applies environment overrides and attaches
// the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	path, err := c.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	switch {
	case c.verbose:
		c.SetLogLevel(LogDebug)
	case cfg.LogLevel != "":
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			c.SetLogLevel(level)
		}
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

// =============================================================================
// Factories
// =============================================================================

// openStore opens the configured layout store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.Store)
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.TTL, err = c.Config.CacheTTL()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// newCache opens the configured cache. An unreachable Redis degrades to no
// caching with a warning rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.Config.Cache.RedisAddr})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", c.Config.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the file cache directory, honoring the config override.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// validationOptions returns the configured validator thresholds.
func (c *CLI) validationOptions() validate.Options {
	return validate.Options{
		NeighborThreshold: c.Config.Validation.NeighborThreshold,
		WorldBound:        c.Config.Validation.WorldBound,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/dungeonbuilder/).
func cacheDir() (string, error) {
	return config.CacheDir()
}
