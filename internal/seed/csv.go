package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
)

// CSV import column layout (header row required):
//
//	year, subject, number, hasImage, questionText, choice1..choice4, correctAnswer
//
// The year accepts Japanese era notation (H28, R6) as well as Gregorian
// years, and the subject accepts Japanese subject names or the numeric
// subject id. Rows that cannot be parsed are skipped and counted, not
// fatal; question banks are assembled from messy spreadsheets.

var eraYear = regexp.MustCompile(`^([HRhr])(\d+)$`)

// ParseYear resolves a year cell: "R5" and "H28" era forms, a Gregorian
// year, or a bare era number assumed to be Heisei. Returns 0 when
// unparseable.
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	if m := eraYear.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[2])
		switch strings.ToUpper(m[1]) {
		case "H":
			return 1988 + n
		case "R":
			return 2018 + n
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if n > 2000 {
		return n
	}
	if n > 0 && n <= 99 {
		return 1988 + n
	}
	return 0
}

// ParseSubject resolves a subject cell: the numeric id 1..5, the
// Japanese subject name, or the English short name. Returns 0 when
// unrecognized.
func ParseSubject(s string) model.Subject {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		subject := model.Subject(n)
		if subject.Valid() {
			return subject
		}
		return 0
	}
	switch {
	case strings.Contains(s, "計画") || strings.EqualFold(s, "planning"):
		return model.SubjectPlanning
	case strings.Contains(s, "環境") || strings.Contains(s, "設備") || strings.EqualFold(s, "environment"):
		return model.SubjectEnvironment
	case strings.Contains(s, "法規") || strings.EqualFold(s, "regulations"):
		return model.SubjectRegulations
	case strings.Contains(s, "構造") || strings.EqualFold(s, "structure"):
		return model.SubjectStructure
	case strings.Contains(s, "施工") || strings.EqualFold(s, "construction"):
		return model.SubjectConstruction
	}
	return 0
}

// CSVResult reports what a CSV parse produced.
type CSVResult struct {
	Questions []*model.Question
	Skipped   int // rows dropped for missing or unparseable fields
}

// FromCSV parses a question-bank CSV from r. The first row is treated
// as a header and ignored. Invalid rows are skipped, never fatal; a
// read-level error (broken quoting, I/O) is.
func FromCSV(r io.Reader) (*CSVResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validated below

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return &CSVResult{}, nil
	}

	now := time.Now()
	result := &CSVResult{}
	for _, row := range rows[1:] {
		if len(row) < 10 {
			result.Skipped++
			continue
		}
		year := ParseYear(row[0])
		subject := ParseSubject(row[1])
		number, _ := strconv.Atoi(strings.TrimSpace(row[2]))
		correct, _ := strconv.Atoi(strings.TrimSpace(row[9]))
		if year == 0 || subject == 0 || number < 1 || correct < 1 || correct > 4 {
			result.Skipped++
			continue
		}

		q := &model.Question{
			ID:             model.QuestionID(year, subject, number),
			Year:           year,
			Subject:        subject,
			QuestionNumber: number,
			QuestionText:   strings.TrimSpace(row[4]),
			Choices: [4]string{
				strings.TrimSpace(row[5]),
				strings.TrimSpace(row[6]),
				strings.TrimSpace(row[7]),
				strings.TrimSpace(row[8]),
			},
			CorrectAnswer: correct,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := q.Validate(); err != nil {
			result.Skipped++
			continue
		}
		result.Questions = append(result.Questions, q)
	}
	return result, nil
}
