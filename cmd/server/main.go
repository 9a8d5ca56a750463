// Package main is the entrypoint for the Crisis Financial Data API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crisisapi",
		Short: "Crisis Financial Data API",
		Long: `Serves the crisis dataset behind API key and session authentication.

Configuration is read from the environment (DATABASE_URL, REDIS_URL,
APP_SECRET, MAIL_FROM, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newGenerateKeyCmd())
	cmd.AddCommand(newDeactivateKeyCmd())
	cmd.AddCommand(newListKeysCmd())

	return cmd
}
