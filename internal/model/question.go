// Package model provides the record types shared by the local store, the
// remote store, and the sync engine.
package model

import (
	"fmt"
	"time"
)

// Subject identifies one of the five exam subjects.
type Subject int

const (
	SubjectPlanning     Subject = 1
	SubjectEnvironment  Subject = 2
	SubjectRegulations  Subject = 3
	SubjectStructure    Subject = 4
	SubjectConstruction Subject = 5
)

// String returns the short display name of the subject.
func (s Subject) String() string {
	switch s {
	case SubjectPlanning:
		return "planning"
	case SubjectEnvironment:
		return "environment"
	case SubjectRegulations:
		return "regulations"
	case SubjectStructure:
		return "structure"
	case SubjectConstruction:
		return "construction"
	default:
		return "unknown"
	}
}

// Valid reports whether the subject is one of the five exam subjects.
func (s Subject) Valid() bool {
	return s >= SubjectPlanning && s <= SubjectConstruction
}

// Question is a single multiple-choice exam question.
//
// The id is the merge key for synchronization: it is derived from the
// year, subject and question number, and stays stable across devices.
// UpdatedAt is the authoritative field for change detection: the
// question-bank fingerprint is computed over it.
type Question struct {
	ID             string  `json:"id"`
	Year           int     `json:"year"`
	Subject        Subject `json:"subject"`
	QuestionNumber int     `json:"questionNumber"`

	QuestionText  string    `json:"questionText"`
	Choices       [4]string `json:"choices"`
	CorrectAnswer int       `json:"correctAnswer"` // 1..4
	Explanation   string    `json:"explanation,omitempty"`

	// Embedded image data (data URLs or storage references).
	QuestionImages    []string  `json:"questionImages,omitempty"`
	ExplanationImages []string  `json:"explanationImages,omitempty"`
	ChoiceImages      [4]string `json:"choiceImages,omitempty"`

	// Field is an optional hierarchical classification id, either
	// "category" or "category-field".
	Field string `json:"field,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuestionID builds the canonical composite id for a question.
// Format: {year}-{subject}-{questionNumber}.
func QuestionID(year int, subject Subject, number int) string {
	return fmt.Sprintf("%d-%d-%d", year, subject, number)
}

// Validate checks that the question has valid field values.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("id is required")
	}
	if q.Year < 1900 {
		return fmt.Errorf("year must be a Gregorian year (got %d)", q.Year)
	}
	if !q.Subject.Valid() {
		return fmt.Errorf("subject must be between 1 and 5 (got %d)", q.Subject)
	}
	if q.QuestionNumber < 1 {
		return fmt.Errorf("questionNumber must be positive (got %d)", q.QuestionNumber)
	}
	if q.QuestionText == "" {
		return fmt.Errorf("questionText is required")
	}
	if q.CorrectAnswer < 1 || q.CorrectAnswer > 4 {
		return fmt.Errorf("correctAnswer must be between 1 and 4 (got %d)", q.CorrectAnswer)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (q *Question) SetDefaults() {
	if q.ID == "" {
		q.ID = QuestionID(q.Year, q.Subject, q.QuestionNumber)
	}
	now := time.Now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = now
	}
}

// UpdateTimestamp sets UpdatedAt to the current time.
// Call this whenever any content field is modified.
func (q *Question) UpdateTimestamp() {
	q.UpdatedAt = time.Now()
}
