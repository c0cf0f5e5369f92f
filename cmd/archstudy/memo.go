package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/ui"
)

var memoCmd = &cobra.Command{
	Use:     "memo <question-id> [text]",
	GroupID: "study",
	Short:   "Show or set the memo for a question",
	Long: `With only a question id, print the stored memo. With text, set it;
an empty string ("") deletes it. Memos sync across devices with the
remote value winning on conflicts.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		ctx := context.Background()

		if len(args) == 1 {
			memo, err := st.GetMemo(ctx, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if memo == "" {
				fmt.Println(ui.RenderDim("(no memo)"))
				return
			}
			fmt.Println(memo)
			return
		}

		engine := newEngine(st, newProvider())
		text := strings.TrimSpace(args[1])
		if err := engine.SaveMemo(ctx, args[0], text); err != nil {
			fmt.Fprintf(os.Stderr, "%s Failed to save memo: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
		if text == "" {
			fmt.Printf("%s Memo deleted\n", ui.RenderPass("✓"))
		} else {
			fmt.Printf("%s Memo saved\n", ui.RenderPass("✓"))
		}
	},
}

func init() {
	rootCmd.AddCommand(memoCmd)
}
