package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinewatch/internal/config"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
)

type matchOutput struct {
	A         string             `json:"a"`
	B         string             `json:"b"`
	Threshold float64            `json:"threshold"`
	Match     bool               `json:"match"`
	Breakdown matching.Breakdown `json:"breakdown"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:         "match <watchlist-title> <listing-title>",
		Short:       "Score two titles and show how the score was reached",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = ctx.configuredThreshold(cmd)
			}
			if threshold <= 0 || threshold > 1 {
				return fmt.Errorf("threshold must be greater than 0 and at most 1, got %v", threshold)
			}
			b := matching.Explain(args[0], args[1])
			result := matchOutput{
				A:         args[0],
				B:         args[1],
				Threshold: threshold,
				Match:     matching.Usable(args[0]) && matching.Usable(args[1]) && b.Score.Value > threshold,
				Breakdown: b,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Normalized", b.NormalizedA + " | " + b.NormalizedB},
				{"Branch", string(b.Score.Branch)},
				{"Kind", string(b.Score.Kind)},
				{"Score", formatRatio(b.Score.Value)},
				{"Raw ratio", formatRatio(b.Raw)},
				{"Without articles", formatRatio(b.ArticleStripped)},
				{"Keyword overlap", formatRatio(b.KeywordOverlap)},
				{"Jaro-Winkler", formatRatio(b.JaroWinkler)},
				{"Threshold", formatRatio(threshold)},
				{"Match", yesNo(result.Match)},
			}
			fmt.Fprintln(out, renderTable([]string{"Measure", "Value"}, rows, nil, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", matching.DefaultThreshold, "Score a match must exceed (defaults to matching.threshold from the config file)")
	return cmd
}

func formatRatio(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// configuredThreshold reads matching.threshold from the config file when one
// exists. match never requires a config, so load failures fall back to the
// default.
func (c *commandContext) configuredThreshold(cmd *cobra.Command) float64 {
	cfg, path, exists, err := config.Load(c.configFlagValue())
	if err != nil {
		c.commandLogger(cmd, nil).Warn("config unavailable, using default threshold",
			logging.Error(err),
			logging.Float64("threshold", matching.DefaultThreshold),
		)
		return matching.DefaultThreshold
	}
	if !exists {
		return matching.DefaultThreshold
	}
	c.commandLogger(cmd, cfg).Debug("threshold from config",
		logging.String("path", path),
		logging.Float64("threshold", cfg.Matching.Threshold),
	)
	return cfg.Matching.Threshold
}
