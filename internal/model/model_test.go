package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionID(t *testing.T) {
	assert.Equal(t, "2024-3-17", QuestionID(2024, SubjectRegulations, 17))
}

func TestQuestionValidate(t *testing.T) {
	q := Question{
		ID:             QuestionID(2024, SubjectPlanning, 1),
		Year:           2024,
		Subject:        SubjectPlanning,
		QuestionNumber: 1,
		QuestionText:   "Which ratio governs daylighting?",
		Choices:        [4]string{"a", "b", "c", "d"},
		CorrectAnswer:  2,
	}
	require.NoError(t, q.Validate())

	bad := q
	bad.CorrectAnswer = 5
	assert.Error(t, bad.Validate())

	bad = q
	bad.Subject = 9
	assert.Error(t, bad.Validate())

	bad = q
	bad.QuestionText = ""
	assert.Error(t, bad.Validate())
}

func TestQuestionSetDefaults(t *testing.T) {
	q := Question{Year: 2023, Subject: SubjectStructure, QuestionNumber: 4}
	q.SetDefaults()

	assert.Equal(t, "2023-4-4", q.ID)
	assert.False(t, q.CreatedAt.IsZero())
	assert.False(t, q.UpdatedAt.IsZero())
}

func TestNewHistoryEntry(t *testing.T) {
	q := Question{
		ID:            "2024-1-1",
		CorrectAnswer: 3,
	}
	at := time.Now()

	right := NewHistoryEntry(&q, 3, at)
	require.NoError(t, right.Validate())
	assert.True(t, right.IsCorrect)
	assert.Equal(t, "2024-1-1", right.QuestionID)

	wrong := NewHistoryEntry(&q, 1, at)
	assert.False(t, wrong.IsCorrect)

	// Same instant, independent ids.
	assert.NotEqual(t, right.ID, wrong.ID)
}

func TestSubjectString(t *testing.T) {
	assert.Equal(t, "regulations", SubjectRegulations.String())
	assert.Equal(t, "unknown", Subject(0).String())
}
