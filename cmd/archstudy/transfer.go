package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/snapshot"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export <file>",
	GroupID: "data",
	Short:   "Export the full local database to a snapshot file",
	Long: `Write the complete question bank and answer history to one JSON
snapshot file for device-to-device transfer or backup. The file is
written atomically; a crash never leaves a truncated snapshot.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		snap, err := snapshot.Export(context.Background(), st)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s Export failed: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
		if err := snapshot.Write(args[0], snap); err != nil {
			fmt.Fprintf(os.Stderr, "%s Export failed: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
		fmt.Printf("%s Exported %d questions and %d history entries to %s\n",
			ui.RenderPass("✓"), len(snap.Questions), len(snap.History), args[0])
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "data",
	Short:   "Import a snapshot file into the local database",
	Long: `Load a snapshot file and apply it to the local store: questions are
upserted and history entries are inserted-or-overwritten by id. Records
already present locally but absent from the snapshot are kept.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snap, err := snapshot.Read(args[0])
		if err != nil {
			if errors.Is(err, snapshot.ErrInvalidSnapshot) {
				fmt.Fprintf(os.Stderr, "%s Not a valid snapshot file: %v\n", ui.RenderFail("✕"), err)
			} else {
				fmt.Fprintf(os.Stderr, "%s Import failed: %v\n", ui.RenderFail("✕"), err)
			}
			os.Exit(1)
		}

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		questions, history, err := snapshot.Import(context.Background(), st, snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s Import failed: %v\n", ui.RenderFail("✕"), err)
			os.Exit(1)
		}
		fmt.Printf("%s Imported %d questions and %d history entries\n",
			ui.RenderPass("✓"), questions, history)
		fmt.Println("Run 'archstudy sync' to push imported history to the remote.")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
