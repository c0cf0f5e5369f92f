package stats

import (
	"sort"

	"github.com/tossh23/architect-study-app/internal/model"
)

// Mastery classifies a question by the outcome of its two most recent
// attempts.
type Mastery int

const (
	// MasteryNone means the question has never been attempted.
	MasteryNone Mastery = iota
	// MasteryBronze means the latest attempt was wrong after a single
	// attempt, or the latest was wrong but the one before was correct.
	MasteryBronze
	// MasterySilver means the latest attempt was correct.
	MasterySilver
	// MasteryGold means the two latest attempts were both correct.
	MasteryGold
	// MasteryStruggling means the two latest attempts were both wrong.
	MasteryStruggling
)

// String returns the display name of the mastery level.
func (m Mastery) String() string {
	switch m {
	case MasteryNone:
		return "unattempted"
	case MasteryBronze:
		return "bronze"
	case MasterySilver:
		return "silver"
	case MasteryGold:
		return "gold"
	case MasteryStruggling:
		return "struggling"
	default:
		return "unknown"
	}
}

// Classify derives the mastery level from one question's attempts. The
// input is not modified; ordering is resolved on a copy. Classification
// looks at the two most recent attempts by answeredAt:
//
//	none attempted          -> MasteryNone
//	latest two both correct -> MasteryGold
//	latest correct          -> MasterySilver
//	latest two both wrong   -> MasteryStruggling
//	latest wrong            -> MasteryBronze
func Classify(attempts []*model.HistoryEntry) Mastery {
	if len(attempts) == 0 {
		return MasteryNone
	}
	recent := make([]*model.HistoryEntry, len(attempts))
	copy(recent, attempts)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].AnsweredAt.After(recent[j].AnsweredAt)
	})

	latest := recent[0].IsCorrect
	if len(recent) >= 2 {
		previous := recent[1].IsCorrect
		switch {
		case latest && previous:
			return MasteryGold
		case !latest && !previous:
			return MasteryStruggling
		}
	}
	if latest {
		return MasterySilver
	}
	return MasteryBronze
}

// MasteryByQuestion classifies every question in the bank. Attempts
// referencing questions no longer in the bank are ignored.
func MasteryByQuestion(questions []*model.Question, history []*model.HistoryEntry) map[string]Mastery {
	byQuestion := make(map[string][]*model.HistoryEntry)
	for _, entry := range history {
		byQuestion[entry.QuestionID] = append(byQuestion[entry.QuestionID], entry)
	}
	out := make(map[string]Mastery, len(questions))
	for _, q := range questions {
		out[q.ID] = Classify(byQuestion[q.ID])
	}
	return out
}

// WrongQuestionIDs returns the ids of questions whose most recent
// attempt was wrong, for review-mode question selection. Only questions
// present in the bank are returned.
func WrongQuestionIDs(questions []*model.Question, history []*model.HistoryEntry) []string {
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}

	recent := make([]*model.HistoryEntry, len(history))
	copy(recent, history)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].AnsweredAt.After(recent[j].AnsweredAt)
	})

	seen := make(map[string]struct{})
	var wrong []string
	for _, entry := range recent {
		if _, dup := seen[entry.QuestionID]; dup {
			continue
		}
		seen[entry.QuestionID] = struct{}{}
		if _, ok := known[entry.QuestionID]; !ok {
			continue
		}
		if !entry.IsCorrect {
			wrong = append(wrong, entry.QuestionID)
		}
	}
	sort.Strings(wrong)
	return wrong
}
