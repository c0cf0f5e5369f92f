package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	enginesync "github.com/tossh23/architect-study-app/internal/sync"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show local store and sync status",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		ctx := context.Background()

		questions, _ := st.QuestionCount()
		history, _ := st.HistoryCount()
		memos, _ := st.GetMemos(ctx)
		source, _ := st.GetMeta(ctx, enginesync.MetaQuestionsSource)
		lastSync, _ := st.GetMeta(ctx, enginesync.MetaLastSyncAt)

		fmt.Printf("\n%s Study Store Status\n\n", ui.RenderAccent("📊"))
		fmt.Printf("  Data dir:        %s\n", dataDir())
		fmt.Printf("  Questions:       %d", questions)
		if source != "" {
			fmt.Printf(" (source: %s)", source)
		}
		fmt.Println()
		fmt.Printf("  History entries: %d\n", history)
		fmt.Printf("  Memos:           %d\n", len(memos))

		if lastSync != "" {
			fmt.Printf("  Last sync:       %s\n", lastSync)
		} else {
			fmt.Printf("  Last sync:       %s\n", ui.RenderDim("never"))
		}

		if url := viper.GetString("remote.url"); url != "" {
			fmt.Printf("  Remote:          %s\n", url)
		} else {
			fmt.Printf("  Remote:          %s\n", ui.RenderDim("not configured (offline mode)"))
		}
		if uid := viper.GetString("user.id"); uid != "" {
			fmt.Printf("  User:            %s\n", uid)
		} else {
			fmt.Printf("  User:            %s\n", ui.RenderDim("signed out"))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
