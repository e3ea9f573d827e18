package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinewatch/internal/checker"
	"cinewatch/internal/listings"
)

func newListingsCommand(ctx *commandContext) *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Fetch and print the films currently showing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if c := strings.TrimSpace(city); c != "" {
				cfg.Listings.City = strings.ToLower(c)
			}
			logger := ctx.commandLogger(cmd, cfg)

			fetcher, store, err := checker.NewFetcher(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}
			provider, err := listings.New(cfg, fetcher)
			if err != nil {
				return err
			}
			items, err := listings.Load(cmd.Context(), provider, logger)
			if err != nil {
				return fmt.Errorf("load listings: %w", err)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, items)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No listings found")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for i, item := range items {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					item.Title,
					item.Metadata["method"],
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Method"},
				rows,
				[]columnAlignment{alignRight},
				shouldColorize(out),
			))
			fmt.Fprintf(out, "%d films from %s\n", len(items), provider.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "Override listings.city for this run")
	return cmd
}
