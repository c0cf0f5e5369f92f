package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records one answer attempt.
//
// Entries are immutable once created: synchronization only inserts
// entries that are missing on one side, it never updates an existing
// one. IsCorrect is computed once at answer time against the question's
// CorrectAnswer and stored, not recomputed later.
type HistoryEntry struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"questionId"`
	AnsweredAt     time.Time `json:"answeredAt"`
	SelectedAnswer int       `json:"selectedAnswer"` // 1..4
	IsCorrect      bool      `json:"isCorrect"`
}

// NewHistoryID generates a globally unique entry id at answer time.
// The id combines a millisecond timestamp with a random fragment so that
// entries created on different devices at the same instant do not collide.
func NewHistoryID(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), uuid.NewString()[:8])
}

// NewHistoryEntry creates an entry for an answer to the given question.
func NewHistoryEntry(q *Question, selected int, at time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:             NewHistoryID(at),
		QuestionID:     q.ID,
		AnsweredAt:     at,
		SelectedAnswer: selected,
		IsCorrect:      selected == q.CorrectAnswer,
	}
}

// Validate checks that the entry has valid field values.
func (h *HistoryEntry) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("id is required")
	}
	if h.QuestionID == "" {
		return fmt.Errorf("questionId is required")
	}
	if h.AnsweredAt.IsZero() {
		return fmt.Errorf("answeredAt is required")
	}
	if h.SelectedAnswer < 1 || h.SelectedAnswer > 4 {
		return fmt.Errorf("selectedAnswer must be between 1 and 4 (got %d)", h.SelectedAnswer)
	}
	return nil
}

// Memos maps question ids to free-text annotations for one user.
// Deletion is represented by absence, not by a tombstone value.
type Memos map[string]string

// Snapshot is the full-database export envelope. Importing a snapshot
// upserts questions and inserts-or-overwrites history by id with no
// reconciliation logic.
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Questions  []Question     `json:"questions"`
	History    []HistoryEntry `json:"history"`
}

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1
