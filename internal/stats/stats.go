// Package stats derives read-only study summaries from the local store's
// data. Every function is pure: it takes immutable snapshots of
// questions and history and never mutates its inputs, so callers can
// pass live slices without defensive copies.
//
// Attempts whose questionId no longer resolves to a question in the bank
// (possible after an admin deletion or a bank replace) are skipped by
// every aggregate, never counted and never an error.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
)

// Summary is an accuracy aggregate over some slice of the bank.
type Summary struct {
	TotalQuestions int `json:"totalQuestions"`
	TotalAnswered  int `json:"totalAnswered"` // attempts, not distinct questions
	CorrectCount   int `json:"correctCount"`
	Accuracy       int `json:"accuracy"` // rounded percent, 0 when unanswered
}

func (s *Summary) record(correct bool) {
	s.TotalAnswered++
	if correct {
		s.CorrectCount++
	}
}

func (s *Summary) finalize() {
	if s.TotalAnswered > 0 {
		s.Accuracy = int(math.Round(float64(s.CorrectCount) / float64(s.TotalAnswered) * 100))
	}
}

// BySubject aggregates accuracy per exam subject. All five subjects are
// always present in the result, zero-valued when unattempted.
func BySubject(questions []*model.Question, history []*model.HistoryEntry) map[model.Subject]*Summary {
	out := make(map[model.Subject]*Summary, 5)
	for s := model.SubjectPlanning; s <= model.SubjectConstruction; s++ {
		out[s] = &Summary{}
	}

	subjectOf := make(map[string]model.Subject, len(questions))
	for _, q := range questions {
		subjectOf[q.ID] = q.Subject
		if s, ok := out[q.Subject]; ok {
			s.TotalQuestions++
		}
	}
	for _, entry := range history {
		subject, ok := subjectOf[entry.QuestionID]
		if !ok {
			continue
		}
		out[subject].record(entry.IsCorrect)
	}
	for _, s := range out {
		s.finalize()
	}
	return out
}

// ByYear aggregates accuracy per exam year, keyed by year. Years come
// from the question bank; a year with no attempts has a zero accuracy.
func ByYear(questions []*model.Question, history []*model.HistoryEntry) map[int]*Summary {
	out := make(map[int]*Summary)
	yearOf := make(map[string]int, len(questions))
	for _, q := range questions {
		yearOf[q.ID] = q.Year
		if out[q.Year] == nil {
			out[q.Year] = &Summary{}
		}
		out[q.Year].TotalQuestions++
	}
	for _, entry := range history {
		year, ok := yearOf[entry.QuestionID]
		if !ok {
			continue
		}
		out[year].record(entry.IsCorrect)
	}
	for _, s := range out {
		s.finalize()
	}
	return out
}

// Overall aggregates accuracy across the whole bank.
func Overall(questions []*model.Question, history []*model.HistoryEntry) *Summary {
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	s := &Summary{TotalQuestions: len(questions)}
	for _, entry := range history {
		if _, ok := known[entry.QuestionID]; !ok {
			continue
		}
		s.record(entry.IsCorrect)
	}
	s.finalize()
	return s
}

// DayActivity is one day's answer counts for the progress timeline.
type DayActivity struct {
	Date    time.Time `json:"date"` // midnight, local time
	Total   int       `json:"total"`
	Correct int       `json:"correct"`
}

// DailyActivity buckets attempts per calendar day over the `days` most
// recent days ending at `now`, oldest first. Days with no attempts are
// present with zero counts so the timeline has no gaps.
func DailyActivity(history []*model.HistoryEntry, now time.Time, days int) []DayActivity {
	if days <= 0 {
		return nil
	}
	start := truncateDay(now).AddDate(0, 0, -(days - 1))
	out := make([]DayActivity, days)
	for i := range out {
		out[i].Date = start.AddDate(0, 0, i)
	}
	for _, entry := range history {
		day := truncateDay(entry.AnsweredAt.In(now.Location()))
		idx := int(day.Sub(start).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		out[idx].Total++
		if entry.IsCorrect {
			out[idx].Correct++
		}
	}
	return out
}

// StudyDays returns the days of the given month (1-based) on which at
// least one answer was recorded, sorted ascending. Used by the study
// calendar.
func StudyDays(history []*model.HistoryEntry, year int, month time.Month, loc *time.Location) []int {
	if loc == nil {
		loc = time.Local
	}
	seen := make(map[int]struct{})
	for _, entry := range history {
		at := entry.AnsweredAt.In(loc)
		if at.Year() == year && at.Month() == month {
			seen[at.Day()] = struct{}{}
		}
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
