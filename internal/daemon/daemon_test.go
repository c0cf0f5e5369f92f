package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tossh23/architect-study-app/internal/identity"
	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/remote"
	"github.com/tossh23/architect-study-app/internal/session"
	"github.com/tossh23/architect-study-app/internal/snapshot"
	"github.com/tossh23/architect-study-app/internal/store"
	enginesync "github.com/tossh23/architect-study-app/internal/sync"
)

func setupTestDaemon(t *testing.T) (*Daemon, *store.Store, string, chan [2]int) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "study.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	provider := identity.NewStaticProvider(nil)
	provider.SignIn("u1")
	engine := enginesync.New(st, remote.NewMemory(), provider, nil)
	sess := session.New(engine, provider, nil)
	t.Cleanup(sess.Stop)

	inbox := filepath.Join(t.TempDir(), "inbox")
	imports := make(chan [2]int, 4)
	d, err := New(sess, st, inbox, &Config{
		ResyncInterval:   time.Hour,
		DebounceInterval: 50 * time.Millisecond,
		OnImport:         func(q, h int) { imports <- [2]int{q, h} },
		Logger:           nil,
	})
	if err != nil {
		t.Fatalf("failed to create daemon: %v", err)
	}
	return d, st, inbox, imports
}

func writeTestSnapshot(t *testing.T, path string) {
	t.Helper()

	q := model.Question{
		ID:             model.QuestionID(2023, model.SubjectStructure, 1),
		Year:           2023,
		Subject:        model.SubjectStructure,
		QuestionNumber: 1,
		QuestionText:   "placeholder",
		CorrectAnswer:  1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	entry := model.HistoryEntry{
		ID:             model.NewHistoryID(time.Now()),
		QuestionID:     q.ID,
		AnsweredAt:     time.Now().UTC(),
		SelectedAnswer: 1,
		IsCorrect:      true,
	}
	snap := &model.Snapshot{
		Version:    model.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Questions:  []model.Question{q},
		History:    []model.HistoryEntry{entry},
	}
	if err := snapshot.Write(path, snap); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
}

func startDaemon(t *testing.T, d *Daemon) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("daemon did not shut down")
		}
	})
}

func waitForImport(t *testing.T, imports chan [2]int) [2]int {
	t.Helper()
	select {
	case counts := <-imports:
		return counts
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for import")
		return [2]int{}
	}
}

func TestImportsSnapshotDroppedIntoInbox(t *testing.T) {
	d, st, inbox, imports := setupTestDaemon(t)
	startDaemon(t, d)

	path := filepath.Join(inbox, "transfer.json")
	writeTestSnapshot(t, path)

	counts := waitForImport(t, imports)
	if counts != [2]int{1, 1} {
		t.Errorf("import counts = %v, want [1 1]", counts)
	}

	n, err := st.QuestionCount()
	if err != nil {
		t.Fatalf("failed to count questions: %v", err)
	}
	if n != 1 {
		t.Errorf("question count = %d, want 1", n)
	}

	// The file is renamed so it cannot be imported twice.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path + ".done"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("snapshot was not marked done")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestImportsSnapshotsPresentAtStartup(t *testing.T) {
	d, _, inbox, imports := setupTestDaemon(t)

	writeTestSnapshot(t, filepath.Join(inbox, "pre-existing.json"))
	startDaemon(t, d)

	counts := waitForImport(t, imports)
	if counts != [2]int{1, 1} {
		t.Errorf("import counts = %v, want [1 1]", counts)
	}
}

func TestRejectsInvalidSnapshot(t *testing.T) {
	d, st, inbox, _ := setupTestDaemon(t)
	startDaemon(t, d)

	path := filepath.Join(inbox, "garbage.json")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o644); err != nil {
		t.Fatalf("failed to write garbage: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path + ".rejected"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("invalid snapshot was not rejected")
		}
		time.Sleep(20 * time.Millisecond)
	}

	n, err := st.QuestionCount()
	if err != nil {
		t.Fatalf("failed to count questions: %v", err)
	}
	if n != 0 {
		t.Errorf("invalid snapshot imported %d questions", n)
	}
}
