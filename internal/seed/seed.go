// Package seed bundles a small builtin question bank and the CSV import
// parser used to feed new questions into the bank.
//
// The builtin bank is compiled into the binary so a first run with no
// network and no remote data still has something to study from.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
)

//go:embed questions.json
var builtinJSON []byte

// Builtin returns the bundled question bank. The returned slice is
// freshly allocated on every call.
func Builtin() ([]*model.Question, error) {
	var raw []model.Question
	if err := json.Unmarshal(builtinJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode builtin question bank: %w", err)
	}
	questions := make([]*model.Question, 0, len(raw))
	for i := range raw {
		q := &raw[i]
		if q.ID == "" {
			q.ID = model.QuestionID(q.Year, q.Subject, q.QuestionNumber)
		}
		// Fixed timestamps keep the builtin bank's fingerprint stable
		// across runs; time.Now here would defeat the fingerprint skip.
		if q.CreatedAt.IsZero() {
			q.CreatedAt = stamp
		}
		if q.UpdatedAt.IsZero() {
			q.UpdatedAt = stamp
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("builtin question %s is invalid: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

var stamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
