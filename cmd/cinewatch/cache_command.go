package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cinewatch/internal/aliases"
	"cinewatch/internal/pagecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the page cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func withCache(cmd *cobra.Command, ctx *commandContext, fn func(*pagecache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := pagecache.Open(cmd.Context(), cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open page cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show page cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *pagecache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				const stampLayout = "2006-01-02 15:04"
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path:    %s\n", stats.Path)
				fmt.Fprintf(out, "Pages:   %d (%s)\n", stats.Pages, humanBytes(stats.Bytes))
				fmt.Fprintf(out, "Aliases: %d\n", stats.Aliases)
				if !stats.Oldest.IsZero() {
					fmt.Fprintf(out, "Oldest:  %s\n", stats.Oldest.Local().Format(stampLayout))
					fmt.Fprintf(out, "Newest:  %s\n", stats.Newest.Local().Format(stampLayout))
				}
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var aliasesOlderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached entries older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *pagecache.Store) error {
				cutoff := olderThan
				if cutoff <= 0 {
					cutoff = ctx.config.CacheTTL()
				}
				pages, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				aliasCutoff := aliasesOlderThan
				if aliasCutoff <= 0 {
					aliasCutoff = aliases.CacheTTL
				}
				resolved, err := store.PruneAliases(cmd.Context(), aliasCutoff)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %d pages older than %s\n", pages, cutoff)
				fmt.Fprintf(out, "Removed %d alias lookups older than %s\n", resolved, aliasCutoff)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Page age cutoff (defaults to cache.ttl_minutes)")
	cmd.Flags().DurationVar(&aliasesOlderThan, "aliases-older-than", 0, "Alias lookup age cutoff (defaults to 30 days)")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached page and alias lookup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *pagecache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries\n", removed)
				return nil
			})
		},
	}
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
