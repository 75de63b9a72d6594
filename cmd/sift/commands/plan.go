package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sift/internal/app"
)

// newPlanCmd is run with dry-run forced on: every stage executes and caches
// normally, only the move stage stops at planning.
func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [source]",
		Short: "Preview the moves a run would make, without touching the tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}

			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			skip, _ := cmd.Flags().GetString("skip")

			return c.app.Run(cmd.Context(), app.RunOptions{
				Source:   source,
				CacheDir: cacheDir,
				DryRun:   true,
				NoCache:  noCache,
				Skip:     skip,
			})
		},
	}
	cmd.Flags().String("cache-dir", "", "Override the cache directory")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass cache reads and recompute every stage")
	cmd.Flags().StringP("skip", "s", "", "Stop before the named stage (scan, discover, analyze, taxonomy, move, or stage1..stage5)")
	return cmd
}
