package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/studio/internal/config"
	"github.com/vango-dev/studio/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logFormat  string
	verbose    bool
	noColor    bool

	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !isTerminal(os.Stderr) {
			errors.DisableColors()
		}
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "studio",
		Short: "Live preview runtime for the visual app editor",
		Long: `Studio keeps a phone-shaped preview in sync with an app being edited.

It discovers the app's components, accepts components dragged onto the
preview, renders the app or a single component, and reloads the preview
whenever the build server reports a change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), flags.logFormat, flags.verbose)
			if err != nil {
				return err
			}
			flags.logger = logger
			slog.SetDefault(logger)
			if flags.noColor {
				errors.DisableColors()
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to studio.json (default: searched upward from the working directory)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(flags),
		scanCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// newLogger builds the process logger.
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.New("E280").
			WithDetail(fmt.Sprintf("unknown log format %q", format)).
			WithSuggestion("Use --log-format=text or --log-format=json")
	}
}

// loadConfig reads the config file named by path, or searches for one.
// Without a config file the defaults are used.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, "E261") {
		logger.Warn("no studio.json found, using defaults")
		return config.New(), nil
	}
	return cfg, err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
