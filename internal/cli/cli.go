// Package cli implements the aerogram command-line interface.
//
// This package provides commands for computing skew-T log-P diagram
// geometry from sounding CSV files, inspecting derived indices,
// browsing levels interactively, and running the HTTP service. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Compute a diagram document from a sounding CSV
//   - inspect: Print derived indices (LCL, LFC, EL, CAPE, CIN, shear)
//   - levels: Browse sounding levels in an interactive table
//   - serve: Run the HTTP API
//   - cache: Manage the local geometry cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aerogramlab/aerogram/pkg/cache"
	"github.com/aerogramlab/aerogram/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "aerogram"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "aerogram",
		Short:        "Aerogram computes skew-T log-P diagram geometry from soundings",
		Long:         `Aerogram turns atmospheric sounding data into renderer-ready skew-T log-P diagram geometry: isopleths, lifted-parcel profiles, CAPE/CIN regions, wind barbs, and hodographs.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(versionTemplate())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		printWarning("cache directory unavailable, caching disabled")
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/aerogram/).
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
