// Package cli implements the pegboard command-line interface.
//
// This package provides commands for editing tile boards interactively,
// arranging them with the packing strategies, managing persisted snapshots,
// and serving the board over HTTP. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - edit: Open a board in the interactive terminal editor
//   - arrange: Repack a persisted board with a packing strategy
//   - snapshot: Save, load, list, and delete board snapshots
//   - serve: Expose a board over the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kciter/pegboard-sub000/pkg/buildinfo"
	"github.com/kciter/pegboard-sub000/pkg/engine"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "pegboard"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pegboard arranges movable tiles on an integer grid",
		Long:         `Pegboard is a grid-placement engine for dashboard-style tile boards: it places rectangular items on an integer grid, resolves collisions, repacks layouts, and records every edit as an undoable command.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a pegboard.toml config file")

	// Register all subcommands
	root.AddCommand(c.editCommand())
	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newEngine builds a board engine from the loaded configuration.
func (c *CLI) newEngine() (*engine.Engine, error) {
	opts, err := c.config.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = c.Logger
	return engine.New(opts)
}

// newStore builds the snapshot store selected by the configuration.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.config.Store.Backend {
	case "", StoreBackendFile:
		dir := c.config.Store.Dir
		if dir == "" {
			var err error
			dir, err = dataDir()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeStore, err, "resolve data directory")
			}
			dir = filepath.Join(dir, "boards")
		}
		return store.NewFileStore(dir)
	case StoreBackendRedis:
		return store.NewRedisStore(ctx, c.config.Store.RedisOptions(), c.config.Store.RedisPrefix)
	case StoreBackendMongo:
		return store.NewMongoStore(ctx, c.config.Store.MongoURI, c.config.Store.MongoDatabase, c.config.Store.MongoCollection)
	case StoreBackendNone:
		return store.NewNullStore(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.config.Store.Backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/pegboard/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/pegboard/).
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
