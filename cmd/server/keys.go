package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kiranshivaraju/crisisapi/internal/apikey"
	"github.com/kiranshivaraju/crisisapi/internal/config"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/spf13/cobra"
)

const createdAtFormat = "2006-01-02 15:04:05"

// withKeyService opens the database for the duration of fn.
func withKeyService(ctx context.Context, fn func(*apikey.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return fn(apikey.NewService(store.NewPostgresStore(pool)))
}

// ---------- generate-api-key ----------

func newGenerateKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-api-key",
		Short: "Generate a new API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyService(cmd.Context(), func(svc *apikey.Service) error {
				return runGenerateKey(cmd.Context(), svc, cmd.OutOrStdout())
			})
		},
	}
}

func runGenerateKey(ctx context.Context, svc *apikey.Service, out io.Writer) error {
	c, err := svc.Generate(ctx)
	if err != nil {
		return fmt.Errorf("error generating API key: %w", err)
	}

	active := "No"
	if c.IsActive {
		active = "Yes"
	}

	fmt.Fprintln(out, "API key successfully generated!")
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  API key\t%s\n", c.Key())
	fmt.Fprintf(tw, "  Created at\t%s\n", c.CreatedAt.Format(createdAtFormat))
	fmt.Fprintf(tw, "  Active\t%s\n", active)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Keep this key safe! Send it in the %s header.\n", security.APIKeyHeader)
	return nil
}

// ---------- deactivate-api-key ----------

func newDeactivateKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate-api-key <key>",
		Short: "Deactivate an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyService(cmd.Context(), func(svc *apikey.Service) error {
				return runDeactivateKey(cmd.Context(), svc, args[0], cmd.OutOrStdout())
			})
		},
	}
}

func runDeactivateKey(ctx context.Context, svc *apikey.Service, key string, out io.Writer) error {
	ok, err := svc.Deactivate(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no API key found matching %q", key)
	}
	fmt.Fprintln(out, "API key deactivated.")
	return nil
}

// ---------- list-api-keys ----------

func newListKeysCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:     "list-api-keys",
		Aliases: []string{"ls"},
		Short:   "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyService(cmd.Context(), func(svc *apikey.Service) error {
				return runListKeys(cmd.Context(), svc, activeOnly, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active keys")

	return cmd
}

func runListKeys(ctx context.Context, svc *apikey.Service, activeOnly bool, out io.Writer) error {
	list := svc.List
	if activeOnly {
		list = svc.ListActive
	}
	keys, err := list(ctx)
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Fprintln(out, "No API keys found. Use 'crisisapi generate-api-key' to create one.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tACTIVE\tUSES\tCREATED")
	for _, c := range keys {
		active := "no"
		if c.IsActive {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.MaskedKey(), active, c.UsageCount, c.CreatedAt.Format(createdAtFormat))
	}
	return tw.Flush()
}
