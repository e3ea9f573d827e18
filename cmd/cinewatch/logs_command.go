package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinewatch/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var runID string
	var grep string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logs.CurrentLog(cfg.Paths.LogDir)
			filter := logs.Contains(runID, grep)

			out := cmd.OutOrStdout()
			recent, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			if len(recent) == 0 && !follow {
				fmt.Fprintf(out, "No log lines in %s\n", path)
				return nil
			}
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(cmd.Context(), path, offset, 0, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this run ID (json or debug logs carry run_id)")
	cmd.Flags().StringVar(&grep, "grep", "", "Only show lines containing this text")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		runID = strings.TrimSpace(runID)
		if lines < 0 {
			return fmt.Errorf("--lines must not be negative")
		}
		return nil
	}
	return cmd
}
