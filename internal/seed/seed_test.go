package seed

import (
	"strings"
	"testing"

	"github.com/tossh23/architect-study-app/internal/model"
)

func TestBuiltinBankIsValid(t *testing.T) {
	questions, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	if len(questions) == 0 {
		t.Fatal("builtin bank is empty")
	}
	seen := make(map[string]struct{})
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			t.Errorf("duplicate builtin question id %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.UpdatedAt.IsZero() {
			t.Errorf("builtin question %s has zero UpdatedAt", q.ID)
		}
	}
}

func TestBuiltinBankIsDeterministic(t *testing.T) {
	first, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	second, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("bank size changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].UpdatedAt.Equal(second[i].UpdatedAt) {
			t.Errorf("question %s timestamp differs between calls", first[i].ID)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"R6", 2024},
		{"r1", 2019},
		{"H28", 2016},
		{"2023", 2023},
		{"5", 1993}, // bare era number assumed Heisei
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ParseYear(tt.in); got != tt.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseSubject(t *testing.T) {
	tests := []struct {
		in   string
		want model.Subject
	}{
		{"1", model.SubjectPlanning},
		{"構造", model.SubjectStructure},
		{"学科Ⅱ（環境・設備）", model.SubjectEnvironment},
		{"法規", model.SubjectRegulations},
		{"施工", model.SubjectConstruction},
		{"regulations", model.SubjectRegulations},
		{"9", 0},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := ParseSubject(tt.in); got != tt.want {
			t.Errorf("ParseSubject(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromCSV(t *testing.T) {
	input := strings.Join([]string{
		"year,subject,number,hasImage,question,choice1,choice2,choice3,choice4,correct",
		`R5,構造,1,no,"梁のたわみに関する記述として正しいものはどれか。",い,ろ,は,に,2`,
		"H28,計画,3,no,モデュールに関する設問,a,b,c,d,1",
		"R5,構造,,no,番号なし,a,b,c,d,1",
		"R5,不明科目,4,no,科目が不正,a,b,c,d,1",
		"R5,構造,5,no,正答が範囲外,a,b,c,d,7",
		"",
	}, "\n")

	result, err := FromCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromCSV failed: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("parsed %d questions, want 2", len(result.Questions))
	}
	if result.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", result.Skipped)
	}

	q := result.Questions[0]
	if q.ID != "2023-4-1" {
		t.Errorf("id = %s, want 2023-4-1", q.ID)
	}
	if q.Year != 2023 || q.Subject != model.SubjectStructure || q.CorrectAnswer != 2 {
		t.Errorf("parsed question fields wrong: %+v", q)
	}
	if q.Choices[0] != "い" {
		t.Errorf("choice 1 = %q, want い", q.Choices[0])
	}

	if result.Questions[1].ID != "2016-1-3" {
		t.Errorf("era year conversion wrong: %s", result.Questions[1].ID)
	}
}
