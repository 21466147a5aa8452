package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/doctree/internal/config"
	"github.com/mvp-joe/doctree/internal/logging"
	"github.com/spf13/cobra"
)

// logFlags holds the persistent --log-level and --log-format values.
var logFlags logging.Config

// rootCmd represents the base command. Without a subcommand it behaves like
// `doctree generate`.
var rootCmd = &cobra.Command{
	Use:   "doctree [dir]",
	Short: "Build a documentation tree from @brief comments",
	Long: `doctree scans a source directory, pulls the one-line @brief summary out of
each file's leading comments and renders the result as a tree.

Recognized comment forms: /* ... */, <!-- ... -->, // ... and # ...

Running doctree without a subcommand is the same as 'doctree generate'.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runGenerate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	logFlags.RegisterFlags(rootCmd.PersistentFlags())
	genOpts.registerFlags(rootCmd.Flags())
}

// newLogger builds the command's logger from the loaded configuration,
// letting explicitly set --log-level and --log-format flags win.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	lc := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		lc.Level = logFlags.Level
	}
	if flags.Changed("log-format") {
		lc.Format = logFlags.Format
	}

	logger, err := lc.New(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return logger, nil
}
