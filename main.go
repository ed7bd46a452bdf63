package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// errRunFailed is returned by the run command when the run completed but was not clean. The
// results have already been printed, so main only needs to set the exit code.
var errRunFailed = errors.New("test run failed")

type rootOptions struct {
	logLevel string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ryff-api-tests",
		Short: "Contract tests for the Ryff API",
		Long: `Runs the Ryff API contract tests against a running service.

Each test creates its own users and posts through the public API, checks the service's
responses, and deletes what it created. The test database is installed before the run and
uninstalled after it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv("LOG_LEVEL"),
		"log level for harness messages (debug|info|warn|error)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newMockServiceCommand(opts))
	return cmd
}

func (o *rootOptions) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(o.logLevel)}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
