package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/stats"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "study",
	Short:   "Show accuracy and mastery statistics",
	Long: `Summarize answer history: accuracy per subject and year, recent
daily activity, and per-question mastery counts.

Mastery is derived from the two most recent attempts on each question:
  gold        two correct in a row
  silver      latest correct
  bronze      latest wrong
  struggling  two wrong in a row`,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		ctx := context.Background()

		questions, err := st.GetAllQuestionsContext(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		history, err := st.GetAllHistoryContext(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		overall := stats.Overall(questions, history)
		fmt.Printf("\n%s Overall: %d/%d correct (%d%%) across %d questions\n\n",
			ui.RenderAccent("📊"), overall.CorrectCount, overall.TotalAnswered,
			overall.Accuracy, overall.TotalQuestions)

		fmt.Println("By subject:")
		bySubject := stats.BySubject(questions, history)
		for s := model.SubjectPlanning; s <= model.SubjectConstruction; s++ {
			summary := bySubject[s]
			fmt.Printf("  %-13s %4d questions  %4d answered  %3d%%\n",
				s.String(), summary.TotalQuestions, summary.TotalAnswered, summary.Accuracy)
		}

		byYear := stats.ByYear(questions, history)
		if len(byYear) > 0 {
			years := make([]int, 0, len(byYear))
			for y := range byYear {
				years = append(years, y)
			}
			sort.Sort(sort.Reverse(sort.IntSlice(years)))
			fmt.Println("\nBy year:")
			for _, y := range years {
				summary := byYear[y]
				fmt.Printf("  %d  %4d questions  %4d answered  %3d%%\n",
					y, summary.TotalQuestions, summary.TotalAnswered, summary.Accuracy)
			}
		}

		mastery := stats.MasteryByQuestion(questions, history)
		counts := make(map[stats.Mastery]int)
		for _, m := range mastery {
			counts[m]++
		}
		fmt.Println("\nMastery:")
		fmt.Printf("  %s gold %d   %s silver %d   %s bronze %d   %s struggling %d   %s unattempted %d\n",
			ui.RenderPass("♛"), counts[stats.MasteryGold],
			ui.RenderAccent("♛"), counts[stats.MasterySilver],
			ui.RenderWarn("♛"), counts[stats.MasteryBronze],
			ui.RenderFail("♛"), counts[stats.MasteryStruggling],
			ui.RenderDim("○"), counts[stats.MasteryNone])

		fmt.Println("\nLast 7 days:")
		for _, day := range stats.DailyActivity(history, time.Now(), 7) {
			bar := ""
			for i := 0; i < day.Total && i < 40; i++ {
				bar += "▪"
			}
			fmt.Printf("  %s  %3d answered (%d correct)  %s\n",
				day.Date.Format("01/02"), day.Total, day.Correct, ui.RenderDim(bar))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
