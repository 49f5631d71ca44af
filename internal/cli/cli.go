package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/buildinfo"
	"github.com/matzehuels/reflow/pkg/cache"
	"github.com/matzehuels/reflow/pkg/document"
	rerrors "github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/observability"
	"github.com/matzehuels/reflow/pkg/pipeline"
	"github.com/matzehuels/reflow/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "reflow"

	// defaultSweepRuns is the number of random documents `check --random`
	// lays out when no count is given.
	defaultSweepRuns = 1000
)

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
	var (
		verbose    bool
		unregister func()
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "Reflow wraps boxes into rows",
		Long:         `Reflow measures and places fixed-size boxes in left-to-right rows that wrap at a proposed width, with seven alignment policies and fixed or negotiated spacing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
				unregister = observability.Register(observability.NewLogHooks(c.Logger))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if unregister != nil {
				unregister()
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Register all subcommands
	root.AddCommand(c.measureCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Exit codes returned by [ExitCode].
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInvalid     = 2 // invalid document, options or arguments
	ExitNotFound    = 3
	ExitInterrupted = 130
)

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	switch rerrors.KindOf(err) {
	case rerrors.KindInvalid:
		return ExitInvalid
	case rerrors.KindNotFound:
		return ExitNotFound
	}
	return ExitError
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the local document store.
func newStore() (*store.FileStore, error) {
	dir, err := layoutsDir()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/reflow/).
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

// layoutsDir returns the saved-document directory
// (~/.config/reflow/layouts/, or under XDG_CONFIG_HOME).
func layoutsDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "layouts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "layouts"), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readDocument loads a document from path. "-" reads JSON from stdin.
func readDocument(path string) (*document.Document, error) {
	if path == "-" {
		return document.Read(os.Stdin, document.FormatJSON)
	}
	return document.ReadFile(path)
}

// basePath derives the output base path from the output and input paths.
// Known format extensions are stripped from output; an empty output
// falls back to input without its extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "layout"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
