package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Push pending papers and pull new ones",
	Long: `Run a full synchronization pass against the server.

This performs:
  1. Create for every paper still carrying a temporary id
  2. Update for every paper the server already knows
  3. Pull of server papers not yet in the local collection

Local papers are never overwritten by server copies; local edits always
win until they are pushed.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		fmt.Printf("%s Syncing with %s...\n", ui.RenderAccent("🔄"), cfg.API.BaseURL)
		start := time.Now()

		stats := engine.ReconcileAll(context.Background())
		engine.Wait()

		elapsed := time.Since(start)
		if stats.LocalOnly > 0 {
			fmt.Printf("%s Sync finished with %d papers still local-only (server unreachable?)\n",
				ui.RenderWarn("⚠"), stats.LocalOnly)
		} else {
			fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), elapsed.Round(time.Millisecond))
		}
		fmt.Printf("   Pushed: %d\n", stats.Pushed)
		fmt.Printf("   Pulled: %d\n", stats.Added)

		if stats.LocalOnly > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
