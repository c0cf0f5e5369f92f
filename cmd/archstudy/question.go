package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/seed"
	enginesync "github.com/tossh23/architect-study-app/internal/sync"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var questionCmd = &cobra.Command{
	Use:     "question",
	GroupID: "data",
	Short:   "Question bank management",
	Long: `Inspect and, with admin rights, modify the shared question bank.

Writes (delete, import-csv, publish-builtin) go to the remote store first
and are mirrored locally only after the remote accepts them, so a failed
write never leaves the devices disagreeing about the bank. They require
your user id to be listed in admin.ids.`,
}

var questionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions in the local bank",
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetInt("subject")
		year, _ := cmd.Flags().GetInt("year")

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		questions, err := selectQuestions(context.Background(), st, subject, year, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, q := range questions {
			text := q.QuestionText
			if len([]rune(text)) > 40 {
				text = string([]rune(text)[:40]) + "…"
			}
			fmt.Printf("%-12s %d年 %-13s 問%-3d %s\n", q.ID, q.Year, q.Subject, q.QuestionNumber, text)
		}
		fmt.Printf("\n%d questions\n", len(questions))
	},
}

var questionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question from the shared bank (admin only)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := newEngine(st, newProvider())
		if err := engine.DeleteQuestion(context.Background(), args[0]); err != nil {
			if errors.Is(err, enginesync.ErrNotAdmin) {
				fmt.Fprintf(os.Stderr, "%s Not authorized: add your user id to admin.ids to edit the bank\n", ui.RenderFail("✕"))
			} else {
				fmt.Fprintf(os.Stderr, "%s Delete failed: %v\n", ui.RenderFail("✕"), err)
			}
			os.Exit(1)
		}
		fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), args[0])
	},
}

var questionImportCSVCmd = &cobra.Command{
	Use:   "import-csv <file>",
	Short: "Import questions from a CSV file into the shared bank (admin only)",
	Long: `Import questions from a CSV file with columns:

  year, subject, number, hasImage, questionText, choice1..choice4, correctAnswer

Year accepts era notation (R5, H28) or Gregorian years; subject accepts
the Japanese subject name or the id 1-5. Unparseable rows are skipped.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		result, err := seed.FromCSV(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(result.Questions) == 0 {
			fmt.Printf("%s No importable rows found (%d skipped)\n", ui.RenderWarn("⚠"), result.Skipped)
			return
		}

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := newEngine(st, newProvider())
		ctx := context.Background()
		imported := 0
		for _, q := range result.Questions {
			if err := engine.SaveQuestion(ctx, q); err != nil {
				if errors.Is(err, enginesync.ErrNotAdmin) {
					fmt.Fprintf(os.Stderr, "%s Not authorized: add your user id to admin.ids to edit the bank\n", ui.RenderFail("✕"))
					os.Exit(1)
				}
				fmt.Fprintf(os.Stderr, "%s Failed to import %s: %v\n", ui.RenderWarn("⚠"), q.ID, err)
				continue
			}
			imported++
		}
		fmt.Printf("%s Imported %d questions (%d rows skipped)\n", ui.RenderPass("✓"), imported, result.Skipped)
	},
}

var questionPublishBuiltinCmd = &cobra.Command{
	Use:   "publish-builtin",
	Short: "Upload the builtin question bank to the remote store (admin only)",
	Long: `Publish the bundled builtin bank to the remote store in one batch.
Used to bootstrap a freshly created remote so other devices pick up a
real bank on their next sync instead of falling back to their own copy.`,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := newEngine(st, newProvider())
		n, err := engine.UploadBuiltinQuestions(context.Background())
		if err != nil {
			if errors.Is(err, enginesync.ErrNotAdmin) {
				fmt.Fprintf(os.Stderr, "%s Not authorized: add your user id to admin.ids to publish\n", ui.RenderFail("✕"))
			} else {
				fmt.Fprintf(os.Stderr, "%s Publish failed: %v\n", ui.RenderFail("✕"), err)
			}
			os.Exit(1)
		}
		fmt.Printf("%s Published %d builtin questions\n", ui.RenderPass("✓"), n)
	},
}

var questionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one question with its memo and history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		ctx := context.Background()

		q, err := st.GetQuestionContext(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: question %s not found\n", args[0])
			os.Exit(1)
		}

		printQuestion(1, 1, q)
		fmt.Printf("\n%s %d\n", ui.RenderPass("Answer:"), q.CorrectAnswer)
		if q.Explanation != "" {
			fmt.Printf("%s %s\n", ui.RenderDim("Explanation:"), q.Explanation)
		}
		if memo, err := st.GetMemo(ctx, q.ID); err == nil && memo != "" {
			fmt.Printf("%s %s\n", ui.RenderAccent("Memo:"), memo)
		}

		history, err := st.HistoryByQuestion(ctx, q.ID)
		if err == nil && len(history) > 0 {
			fmt.Printf("\nAttempts (%d):\n", len(history))
			for _, h := range history {
				mark := ui.RenderFail("✕")
				if h.IsCorrect {
					mark = ui.RenderPass("○")
				}
				fmt.Printf("  %s  %s  answered %d\n", mark, h.AnsweredAt.Format("2006-01-02 15:04"), h.SelectedAnswer)
			}
		}
	},
}

func init() {
	questionListCmd.Flags().Int("subject", 0, "limit to one subject (1-5)")
	questionListCmd.Flags().Int("year", 0, "limit to one exam year")

	questionCmd.AddCommand(questionListCmd)
	questionCmd.AddCommand(questionShowCmd)
	questionCmd.AddCommand(questionDeleteCmd)
	questionCmd.AddCommand(questionImportCSVCmd)
	questionCmd.AddCommand(questionPublishBuiltinCmd)
	rootCmd.AddCommand(questionCmd)
}
