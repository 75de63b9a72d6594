package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sift/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the stage cache",
	}
	cmd.PersistentFlags().String("cache-dir", "", "Override the cache directory")

	cmd.AddCommand(c.newCacheStatsCmd())
	cmd.AddCommand(c.newCacheClearCmd())
	return cmd
}

func (c *CLI) newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts and total size per stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			return c.app.CacheStats(app.RunOptions{CacheDir: cacheDir})
		},
	}
}

func (c *CLI) newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [stage|all]",
		Short: "Remove cache entries for one stage or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := "all"
			if len(args) == 1 {
				scope = args[0]
			}
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			return c.app.ClearCache(scope, app.RunOptions{CacheDir: cacheDir})
		},
	}
}
