package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cinewatch/internal/checker"
	"cinewatch/internal/matching"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var noNotify bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one watchlist check and print the matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.commandLogger(cmd, cfg)

			chk, closeFn, err := checker.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := chk.RunWithOptions(cmd.Context(), checker.RunOptions{SkipNotify: noNotify})
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Print matches without sending notifications")
	return cmd
}

func printReport(out io.Writer, report checker.Report) {
	fmt.Fprintf(out, "Watchlist: %d films, listings: %d films\n", report.WatchlistCount, report.ListingCount)
	if report.ListingsURL != "" {
		fmt.Fprintf(out, "Listings page: %s\n", report.ListingsURL)
	}
	if len(report.Matches) == 0 {
		fmt.Fprintln(out, "No watchlist films are showing")
		return
	}
	fmt.Fprintln(out, renderMatches(report.Matches, shouldColorize(out)))
	fmt.Fprintf(out, "Notified: %s\n", yesNo(report.Notified))
}

func renderMatches(matches []matching.MatchResult, colorize bool) string {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		via := ""
		if !strings.EqualFold(m.MatchedTitle, m.Entry.Title) {
			via = m.MatchedTitle
		}
		rows = append(rows, []string{
			m.Entry.Title,
			m.Listing.Title,
			via,
			fmt.Sprintf("%.0f%%", m.Score*100),
			string(m.Kind),
		})
	}
	return renderTable(
		[]string{"Watchlist", "Showing", "Matched via", "Score", "Kind"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		colorize,
	)
}
