// Package snapshot implements full-database export and import for
// device-to-device transfer. A snapshot is one JSON document holding the
// complete question bank and answer history; no reconciliation logic is
// involved on either side.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/store"
)

// ErrInvalidSnapshot reports a file that is not a usable snapshot:
// malformed JSON, an unsupported version, or records that fail
// validation. Import performs no writes when returning it.
var ErrInvalidSnapshot = errors.New("invalid snapshot file")

// Export captures the full local store as a snapshot document.
func Export(ctx context.Context, st *store.Store) (*model.Snapshot, error) {
	questions, err := st.GetAllQuestionsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	history, err := st.GetAllHistoryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	snap := &model.Snapshot{
		Version:    model.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Questions:  make([]model.Question, 0, len(questions)),
		History:    make([]model.HistoryEntry, 0, len(history)),
	}
	for _, q := range questions {
		snap.Questions = append(snap.Questions, *q)
	}
	for _, h := range history {
		snap.History = append(snap.History, *h)
	}
	return snap, nil
}

// Write serializes a snapshot to path atomically: the document is
// written to a temp file in the same directory and renamed into place,
// so a crash mid-write never leaves a truncated snapshot.
func Write(path string, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// Read loads and validates a snapshot file. Any structural problem is
// reported as ErrInvalidSnapshot so callers can surface one coherent
// user-facing failure.
func Read(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version != model.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	for i := range snap.Questions {
		if err := snap.Questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidSnapshot, i, err)
		}
	}
	for i := range snap.History {
		if err := snap.History[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: history entry %d: %v", ErrInvalidSnapshot, i, err)
		}
	}
	return &snap, nil
}

// Import applies a snapshot to the local store: questions are upserted
// and history entries are inserted-or-overwritten by id. Existing
// records not present in the snapshot are left alone.
func Import(ctx context.Context, st *store.Store, snap *model.Snapshot) (questions, history int, err error) {
	qs := make([]*model.Question, 0, len(snap.Questions))
	for i := range snap.Questions {
		qs = append(qs, &snap.Questions[i])
	}
	if err := st.PutQuestionsBatchContext(ctx, qs); err != nil {
		return 0, 0, fmt.Errorf("failed to import questions: %w", err)
	}

	hs := make([]*model.HistoryEntry, 0, len(snap.History))
	for i := range snap.History {
		hs = append(hs, &snap.History[i])
	}
	if err := st.OverwriteHistory(ctx, hs); err != nil {
		return len(qs), 0, fmt.Errorf("failed to import history: %w", err)
	}
	return len(qs), len(hs), nil
}
