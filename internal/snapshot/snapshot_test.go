package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "study.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return st
}

func seedStore(t *testing.T, st *store.Store) (*model.Question, *model.HistoryEntry) {
	t.Helper()

	q := &model.Question{
		ID:             model.QuestionID(2023, model.SubjectStructure, 1),
		Year:           2023,
		Subject:        model.SubjectStructure,
		QuestionNumber: 1,
		QuestionText:   "Which load combination governs?",
		Choices:        [4]string{"a", "b", "c", "d"},
		CorrectAnswer:  2,
		CreatedAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := st.PutQuestion(q); err != nil {
		t.Fatalf("failed to seed question: %v", err)
	}
	entry := model.NewHistoryEntry(q, 2, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	if err := st.InsertHistory(entry); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}
	return q, entry
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	q, entry := seedStore(t, source)

	snap, err := Export(ctx, source)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := Write(path, snap); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	target := setupTestStore(t)
	nq, nh, err := Import(ctx, target, loaded)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if nq != 1 || nh != 1 {
		t.Errorf("imported %d questions, %d history entries, want 1 and 1", nq, nh)
	}

	gotQ, err := target.GetQuestion(q.ID)
	if err != nil {
		t.Fatalf("question missing after import: %v", err)
	}
	if gotQ.QuestionText != q.QuestionText || gotQ.CorrectAnswer != q.CorrectAnswer {
		t.Errorf("question content altered by round trip: %+v", gotQ)
	}
	history, err := target.GetAllHistory()
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(history) != 1 || history[0].ID != entry.ID || history[0].IsCorrect != entry.IsCorrect {
		t.Errorf("history altered by round trip: %+v", history)
	}
}

func TestImportPreservesExistingRecords(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	seedStore(t, source)
	snap, err := Export(ctx, source)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	target := setupTestStore(t)
	extra := &model.Question{
		ID:             model.QuestionID(2020, model.SubjectPlanning, 9),
		Year:           2020,
		Subject:        model.SubjectPlanning,
		QuestionNumber: 9,
		QuestionText:   "pre-existing",
		CorrectAnswer:  1,
	}
	if err := target.PutQuestion(extra); err != nil {
		t.Fatalf("failed to seed target: %v", err)
	}

	if _, _, err := Import(ctx, target, snap); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, err := target.GetQuestion(extra.ID); err != nil {
		t.Errorf("import removed a record it did not contain: %v", err)
	}
}

func TestReadRejectsMalformedSnapshots(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"not json", "definitely not json"},
		{"wrong version", `{"version": 99, "questions": [], "history": []}`},
		{"invalid question", `{"version": 1, "questions": [{"id": ""}], "history": []}`},
		{"invalid history", `{"version": 1, "questions": [], "history": [{"id": "x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write fixture: %v", err)
			}
			if _, err := Read(path); !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("Read error = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
}

func TestWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	snap := &model.Snapshot{Version: model.SnapshotVersion, ExportedAt: time.Now().UTC()}
	if err := Write(path, snap); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "backup.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only backup.json", names)
	}
}
