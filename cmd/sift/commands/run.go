package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sift/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Scan, analyze and organize a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}

			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			clearCache, _ := cmd.Flags().GetString("clear-cache")
			skip, _ := cmd.Flags().GetString("skip")

			return c.app.Run(cmd.Context(), app.RunOptions{
				Source:     source,
				CacheDir:   cacheDir,
				DryRun:     dryRun,
				NoCache:    noCache,
				ClearCache: clearCache,
				Skip:       skip,
			})
		},
	}
	cmd.Flags().String("cache-dir", "", "Override the cache directory")
	cmd.Flags().BoolP("dry-run", "d", false, "Plan the moves without touching the tree")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass cache reads and recompute every stage")
	cmd.Flags().String("clear-cache", "", "Clear cache entries before running: a stage name, stage1..stage5, or all (the default when given bare)")
	cmd.Flags().Lookup("clear-cache").NoOptDefVal = "all"
	cmd.Flags().StringP("skip", "s", "", "Stop before the named stage (scan, discover, analyze, taxonomy, move, or stage1..stage5)")
	return cmd
}
