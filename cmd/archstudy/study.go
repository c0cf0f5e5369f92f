package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/session"
	"github.com/tossh23/architect-study-app/internal/stats"
	"github.com/tossh23/architect-study-app/internal/store"
	"github.com/tossh23/architect-study-app/internal/ui"
)

var studyCmd = &cobra.Command{
	Use:     "study",
	GroupID: "study",
	Short:   "Start an interactive study session",
	Long: `Run an interactive quiz over the question bank.

Questions are served immediately from local data; reconciliation with the
remote store runs in the background and never blocks the session.

Modes:
  archstudy study                    # all questions, shuffled
  archstudy study --subject 4        # one subject (1=planning .. 5=construction)
  archstudy study --wrong            # questions whose latest answer was wrong
  archstudy study --year 2023        # one exam year

During a question:
  1-4    answer
  m      write a memo for the current question
  s      skip
  q      quit`,
	Run: func(cmd *cobra.Command, args []string) {
		subjectFlag, _ := cmd.Flags().GetInt("subject")
		wrongOnly, _ := cmd.Flags().GetBool("wrong")
		yearFlag, _ := cmd.Flags().GetInt("year")

		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		ctx := context.Background()

		provider := newProvider()
		engine := newEngine(st, provider)

		// Local data renders immediately; sync catches up behind it.
		sess := session.New(engine, provider, syncLogger())
		if err := sess.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer sess.Stop()

		questions, err := selectQuestions(ctx, st, subjectFlag, yearFlag, wrongOnly)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(questions) == 0 {
			fmt.Printf("%s No matching questions. Run 'archstudy sync' first or relax the filters.\n", ui.RenderWarn("⚠"))
			return
		}

		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})

		fmt.Printf("%s %d questions queued. Answer with 1-4, m=memo, s=skip, q=quit.\n\n",
			ui.RenderAccent("📚"), len(questions))

		reader := bufio.NewReader(os.Stdin)
		answered, correct := 0, 0
	loop:
		for i, q := range questions {
			printQuestion(i+1, len(questions), q)

			for {
				fmt.Print("> ")
				line, err := reader.ReadString('\n')
				if err != nil {
					break loop
				}
				input := strings.TrimSpace(line)

				switch {
				case input == "q":
					break loop
				case input == "s":
					fmt.Println()
					continue loop
				case input == "m":
					writeMemo(ctx, reader, engine, q.ID)
					continue
				}

				selected, err := strconv.Atoi(input)
				if err != nil || selected < 1 || selected > 4 {
					fmt.Println("Enter 1-4, m, s, or q.")
					continue
				}

				entry, err := engine.RecordAnswer(ctx, q.ID, selected)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error recording answer: %v\n", err)
					continue loop
				}
				answered++
				if entry.IsCorrect {
					correct++
					fmt.Printf("%s Correct!\n", ui.RenderPass("○"))
				} else {
					fmt.Printf("%s Wrong. The answer is %d.\n", ui.RenderFail("✕"), q.CorrectAnswer)
				}
				if q.Explanation != "" {
					fmt.Printf("%s %s\n", ui.RenderDim("Explanation:"), q.Explanation)
				}
				fmt.Println()
				continue loop
			}
		}

		if answered > 0 {
			fmt.Printf("\n%s Session done: %d/%d correct (%d%%)\n",
				ui.RenderAccent("🏁"), correct, answered, correct*100/answered)
		}
	},
}

func selectQuestions(ctx context.Context, st *store.Store, subject, year int, wrongOnly bool) ([]*model.Question, error) {
	if wrongOnly {
		questions, err := st.GetAllQuestionsContext(ctx)
		if err != nil {
			return nil, err
		}
		history, err := st.GetAllHistoryContext(ctx)
		if err != nil {
			return nil, err
		}
		wrong := make(map[string]struct{})
		for _, id := range stats.WrongQuestionIDs(questions, history) {
			wrong[id] = struct{}{}
		}
		var out []*model.Question
		for _, q := range questions {
			if _, ok := wrong[q.ID]; ok {
				out = append(out, q)
			}
		}
		return out, nil
	}

	switch {
	case subject > 0 && year > 0:
		return st.QuestionsByYearAndSubject(ctx, year, model.Subject(subject))
	case subject > 0:
		return st.QuestionsBySubject(ctx, model.Subject(subject))
	case year > 0:
		return st.QuestionsByYear(ctx, year)
	default:
		return st.GetAllQuestionsContext(ctx)
	}
}

func printQuestion(num, total int, q *model.Question) {
	fmt.Printf("%s [%d/%d] %d年 %s 問%d\n",
		ui.RenderAccent("■"), num, total, q.Year, q.Subject, q.QuestionNumber)
	fmt.Println(q.QuestionText)
	for i, choice := range q.Choices {
		fmt.Printf("  %d. %s\n", i+1, choice)
	}
}

func writeMemo(ctx context.Context, reader *bufio.Reader, engine memoSaver, questionID string) {
	fmt.Print("memo (empty to delete): ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	if err := engine.SaveMemo(ctx, questionID, strings.TrimSpace(line)); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving memo: %v\n", err)
		return
	}
	fmt.Println("memo saved")
}

type memoSaver interface {
	SaveMemo(ctx context.Context, questionID, text string) error
}

func init() {
	studyCmd.Flags().Int("subject", 0, "limit to one subject (1-5)")
	studyCmd.Flags().Int("year", 0, "limit to one exam year")
	studyCmd.Flags().Bool("wrong", false, "only questions whose latest answer was wrong")
	rootCmd.AddCommand(studyCmd)
}
