package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	GroupID: "data",
	Short:   "Answer history management",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent answers",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		history, err := st.GetAllHistory()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// Newest first.
		for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
			history[i], history[j] = history[j], history[i]
		}
		if limit > 0 && len(history) > limit {
			history = history[:limit]
		}
		for _, h := range history {
			mark := ui.RenderFail("✕")
			if h.IsCorrect {
				mark = ui.RenderPass("○")
			}
			fmt.Printf("%s  %s  %-12s answered %d\n",
				mark, h.AnsweredAt.Format("2006-01-02 15:04"), h.QuestionID, h.SelectedAnswer)
		}
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all answer history, locally and on the remote",
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Print("This deletes ALL answer history on every synced device. Type 'yes' to continue: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				fmt.Println("Aborted.")
				return
			}
		}

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := newEngine(st, newProvider())
		if err := engine.ClearHistory(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "%s Clear failed: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
		fmt.Printf("%s History cleared\n", ui.RenderPass("✓"))
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "max entries to show (0 for all)")
	historyClearCmd.Flags().Bool("force", false, "skip confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
