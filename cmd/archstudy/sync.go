package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Reconcile local data with the remote store",
	Long: `Run one full reconciliation pass against the remote store:

  1. Refresh the question bank from the remote (skipped when unchanged)
  2. Merge answer history as a grow-only set union
  3. Merge memos (remote wins on conflicts)

With no remote configured or no connectivity, local data is left as-is
and the command still succeeds; offline is a normal operating mode.`,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		provider := newProvider()
		engine := newEngine(st, provider)

		fmt.Printf("%s Syncing...\n", ui.RenderAccent("🔄"))
		start := time.Now()

		if err := engine.ReconcileAll(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "%s Sync failed: %v\n", ui.RenderWarn("⚠"), err)
			fmt.Fprintln(os.Stderr, "Local data is unchanged; retry when connectivity returns.")
			os.Exit(1)
		}

		elapsed := time.Since(start)
		questions, _ := st.QuestionCount()
		history, _ := st.HistoryCount()
		fmt.Printf("%s Sync complete in %v (%d questions, %d history entries)\n",
			ui.RenderPass("✓"), elapsed.Round(time.Millisecond), questions, history)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
