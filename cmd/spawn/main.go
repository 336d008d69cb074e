package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/spawn/internal/config"
	spawnerrors "github.com/vango-dev/spawn/internal/errors"
	"github.com/vango-dev/spawn/pkg/descriptor"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌─┐┬ ┬┌┐┌
  └─┐├─┘├─┤││││││
  └─┘┴  ┴ ┴└┴┘┘└┘
`

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	noColor    bool
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		spawnerrors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "spawn",
		Short: "Build HTML documents from compact descriptors",
		Long: `Spawn builds HTML from descriptor documents written in JSON, YAML,
TOML or MessagePack.

A descriptor is a list whose first entry is a shorthand such as
"p.note#intro" and whose other entries are configuration mappings,
text or nested descriptors:

  [main, [h1, Hello], [p.note, {title: greeting}, "Nice to see you"]]

Commands render descriptors to files, query and outline the built
tree, preview it with live reload, and publish rendered pages to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
			// Errors go to stderr, which may be redirected on its own.
			if g.noColor || !term.IsTerminal(int(os.Stderr.Fd())) {
				spawnerrors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (default: spawn.{yaml,json,toml} in the working directory)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		renderCmd(g),
		queryCmd(g),
		outlineCmd(g),
		serveCmd(g),
		publishCmd(g),
		cacheCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file, or the config in the working
// directory when the flag is empty.
func (g *globals) loadConfig() (*config.Config, error) {
	if g.configPath != "" {
		return config.LoadFile(g.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(wd)
}

// logger builds the command logger. Logs go to stderr so rendered output
// on stdout stays clean.
func (g *globals) logger(cfg *config.Config) *slog.Logger {
	lc := cfg.Log
	if g.verbose {
		lc.Level = "debug"
	}
	return lc.NewLogger(os.Stderr)
}

// cache opens the descriptor cache when the config enables it. A cache
// that cannot be opened is logged and skipped.
func (g *globals) cache(cfg *config.Config, logger *slog.Logger) *descriptor.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	c, err := descriptor.OpenCache(cfg.Cache.Dir)
	if err != nil {
		logger.Warn("descriptor cache disabled", "error", err)
		return nil
	}
	return c
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.FgHiBlack).SprintFunc()
)

// printBanner prints the spawn banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", faint(fmt.Sprintf(format, args...)))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}
