package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tossh23/architect-study-app/internal/model"
)

func question(year int, subject model.Subject, number int) *model.Question {
	return &model.Question{
		ID:             model.QuestionID(year, subject, number),
		Year:           year,
		Subject:        subject,
		QuestionNumber: number,
		QuestionText:   "placeholder",
		CorrectAnswer:  1,
	}
}

func attempt(questionID string, at time.Time, correct bool) *model.HistoryEntry {
	return &model.HistoryEntry{
		ID:         model.NewHistoryID(at),
		QuestionID: questionID,
		AnsweredAt: at,
		SelectedAnswer: func() int {
			if correct {
				return 1
			}
			return 2
		}(),
		IsCorrect: correct,
	}
}

func TestClassify(t *testing.T) {
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	qid := "2023-4-1"

	tests := []struct {
		name     string
		attempts []*model.HistoryEntry
		want     Mastery
	}{
		{"no attempts", nil, MasteryNone},
		{"single correct", []*model.HistoryEntry{
			attempt(qid, base, true),
		}, MasterySilver},
		{"single wrong", []*model.HistoryEntry{
			attempt(qid, base, false),
		}, MasteryBronze},
		{"two correct in a row", []*model.HistoryEntry{
			attempt(qid, base, true),
			attempt(qid, base.Add(time.Hour), true),
		}, MasteryGold},
		{"two wrong in a row", []*model.HistoryEntry{
			attempt(qid, base, false),
			attempt(qid, base.Add(time.Hour), false),
		}, MasteryStruggling},
		{"recovered: wrong then correct", []*model.HistoryEntry{
			attempt(qid, base, false),
			attempt(qid, base.Add(time.Hour), true),
		}, MasterySilver},
		{"regressed: correct then wrong", []*model.HistoryEntry{
			attempt(qid, base, true),
			attempt(qid, base.Add(time.Hour), false),
		}, MasteryBronze},
		{"only latest two count", []*model.HistoryEntry{
			attempt(qid, base, false),
			attempt(qid, base.Add(time.Hour), true),
			attempt(qid, base.Add(2*time.Hour), true),
		}, MasteryGold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.attempts))
		})
	}
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	attempts := []*model.HistoryEntry{
		attempt("q", base.Add(2*time.Hour), true),
		attempt("q", base, false),
		attempt("q", base.Add(time.Hour), true),
	}
	first, second, third := attempts[0], attempts[1], attempts[2]

	Classify(attempts)

	assert.Same(t, first, attempts[0])
	assert.Same(t, second, attempts[1])
	assert.Same(t, third, attempts[2])
}

func TestMasteryByQuestionSkipsDanglingAttempts(t *testing.T) {
	q := question(2023, model.SubjectStructure, 1)
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	history := []*model.HistoryEntry{
		attempt(q.ID, base, true),
		attempt("deleted-question", base, false),
	}

	got := MasteryByQuestion([]*model.Question{q}, history)
	require.Len(t, got, 1)
	assert.Equal(t, MasterySilver, got[q.ID])
}

func TestWrongQuestionIDs(t *testing.T) {
	q1 := question(2023, model.SubjectStructure, 1)
	q2 := question(2023, model.SubjectPlanning, 2)
	q3 := question(2023, model.SubjectRegulations, 3)
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	history := []*model.HistoryEntry{
		// q1: wrong, then corrected, so not wrong anymore.
		attempt(q1.ID, base, false),
		attempt(q1.ID, base.Add(time.Hour), true),
		// q2: correct, then regressed, so wrong.
		attempt(q2.ID, base, true),
		attempt(q2.ID, base.Add(time.Hour), false),
		// q3: never attempted.
		// Dangling attempt must not surface.
		attempt("deleted-question", base, false),
	}

	got := WrongQuestionIDs([]*model.Question{q1, q2, q3}, history)
	assert.Equal(t, []string{q2.ID}, got)
}

func TestBySubject(t *testing.T) {
	qStructure := question(2023, model.SubjectStructure, 1)
	qPlanning := question(2023, model.SubjectPlanning, 2)
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	history := []*model.HistoryEntry{
		attempt(qStructure.ID, base, true),
		attempt(qStructure.ID, base.Add(time.Hour), false),
		attempt(qStructure.ID, base.Add(2*time.Hour), true),
		attempt("deleted-question", base, true),
	}

	got := BySubject([]*model.Question{qStructure, qPlanning}, history)
	require.Len(t, got, 5)

	structure := got[model.SubjectStructure]
	assert.Equal(t, 1, structure.TotalQuestions)
	assert.Equal(t, 3, structure.TotalAnswered)
	assert.Equal(t, 2, structure.CorrectCount)
	assert.Equal(t, 67, structure.Accuracy)

	planning := got[model.SubjectPlanning]
	assert.Equal(t, 1, planning.TotalQuestions)
	assert.Equal(t, 0, planning.TotalAnswered)
	assert.Equal(t, 0, planning.Accuracy)

	// Untouched subjects are present and zero.
	assert.Equal(t, &Summary{}, got[model.SubjectEnvironment])
}

func TestByYearAndOverall(t *testing.T) {
	q2022 := question(2022, model.SubjectStructure, 1)
	q2023 := question(2023, model.SubjectStructure, 1)
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	history := []*model.HistoryEntry{
		attempt(q2022.ID, base, true),
		attempt(q2023.ID, base, false),
		attempt(q2023.ID, base.Add(time.Hour), true),
	}
	questions := []*model.Question{q2022, q2023}

	byYear := ByYear(questions, history)
	require.Len(t, byYear, 2)
	assert.Equal(t, 100, byYear[2022].Accuracy)
	assert.Equal(t, 50, byYear[2023].Accuracy)

	overall := Overall(questions, history)
	assert.Equal(t, 2, overall.TotalQuestions)
	assert.Equal(t, 3, overall.TotalAnswered)
	assert.Equal(t, 2, overall.CorrectCount)
	assert.Equal(t, 67, overall.Accuracy)
}

func TestDailyActivity(t *testing.T) {
	now := time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC)
	history := []*model.HistoryEntry{
		attempt("q", time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC), true),
		attempt("q", time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC), false),
		attempt("q", time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC), true),
		// Outside the window.
		attempt("q", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), true),
	}

	got := DailyActivity(history, now, 7)
	require.Len(t, got, 7)

	last := got[6]
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), last.Date)
	assert.Equal(t, 2, last.Total)
	assert.Equal(t, 1, last.Correct)

	assert.Equal(t, 1, got[4].Total) // July 8
	assert.Equal(t, 0, got[0].Total) // July 4, empty day present
}

func TestStudyDays(t *testing.T) {
	history := []*model.HistoryEntry{
		attempt("q", time.Date(2024, 7, 3, 9, 0, 0, 0, time.UTC), true),
		attempt("q", time.Date(2024, 7, 3, 18, 0, 0, 0, time.UTC), false),
		attempt("q", time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC), true),
		attempt("q", time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC), true),
	}

	got := StudyDays(history, 2024, time.July, time.UTC)
	assert.Equal(t, []int{3, 15}, got)
}
