package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinewatch/internal/checker"
	"cinewatch/internal/watchlist"
)

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist",
		Short: "Fetch and print the watchlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.commandLogger(cmd, cfg)

			fetcher, store, err := checker.NewFetcher(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}
			provider, err := watchlist.New(cfg, fetcher, logger)
			if err != nil {
				return err
			}
			entries, err := watchlist.Load(cmd.Context(), provider, logger)
			if err != nil {
				return fmt.Errorf("load watchlist: %w", err)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Watchlist is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for i, e := range entries {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					e.Title,
					strings.Join(e.AlternativeTitles, ", "),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Alternative titles"},
				rows,
				[]columnAlignment{alignRight},
				shouldColorize(out),
			))
			fmt.Fprintf(out, "%d films from %s\n", len(entries), provider.Name())
			return nil
		},
	}
}
