package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tossh23/architect-study-app/internal/identity"
	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/remote"
)

// memoRecord is the remote wire shape of a single memo.
type memoRecord struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Config tunes an Engine. The zero value is usable.
type Config struct {
	// Seed loads the builtin question bank used when the remote bank is
	// empty. May be nil.
	Seed SeedFunc

	// Logger receives reconciliation progress and absorbed offline
	// errors. May be nil to discard.
	Logger *log.Logger
}

// Engine reconciles the local store with the remote store. See the
// package documentation for the per-collection merge policies.
type Engine struct {
	local    LocalStore
	remote   remote.Store
	identity identity.Provider
	seed     SeedFunc
	logger   *log.Logger
}

// New creates a sync engine over a local store, a remote store, and an
// identity provider.
func New(local LocalStore, remoteStore remote.Store, provider identity.Provider, cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Engine{
		local:    local,
		remote:   remoteStore,
		identity: provider,
		seed:     cfg.Seed,
		logger:   cfg.Logger,
	}
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// ReconcileAll runs question, history, and memo reconciliation in order.
// Question reconciliation absorbs remote unavailability; history and memo
// failures are returned so the caller can record a recoverable sync
// failure.
func (e *Engine) ReconcileAll(ctx context.Context) error {
	if err := e.ReconcileQuestions(ctx); err != nil {
		return err
	}
	if err := e.ReconcileHistory(ctx); err != nil {
		return err
	}
	if err := e.SyncMemos(ctx); err != nil {
		return err
	}
	if err := e.local.SetMeta(ctx, MetaLastSyncAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record sync time: %w", err)
	}
	return nil
}

// ReconcileQuestions refreshes the local question mirror from the remote
// bank. An unreachable remote is absorbed: the session continues on
// whatever bank is already local. An empty remote falls back to the
// builtin seed. When the incoming bank's fingerprint and source match the
// last applied ones the local mirror is left untouched; otherwise it is
// replaced wholesale in one transaction.
func (e *Engine) ReconcileQuestions(ctx context.Context) error {
	source := SourceRemote
	var questions []*model.Question

	tree, err := e.remote.GetTree(ctx, remote.QuestionsPath)
	if err != nil {
		// Unreachable is not the same as empty: keep whatever bank is
		// already local rather than falling back to the builtin seed.
		e.logf("question bank fetch failed, continuing on local data: %v", err)
		return nil
	}
	for id, q := range remote.DecodeTree[model.Question](tree, func(key string, derr error) {
		e.logf("skipping malformed remote question %s: %v", key, derr)
	}) {
		if q.ID == "" {
			q.ID = id
		}
		if verr := q.Validate(); verr != nil {
			e.logf("skipping invalid remote question %s: %v", id, verr)
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		if e.seed == nil {
			e.logf("remote bank empty and no builtin bank bundled, keeping local mirror")
			return nil
		}
		seeded, serr := e.seed()
		if serr != nil {
			return fmt.Errorf("failed to load builtin question bank: %w", serr)
		}
		questions = seeded
		source = SourceBuiltin
	}

	fp := Fingerprint(questions)
	prevFP, err := e.local.GetMeta(ctx, MetaQuestionsFingerprint)
	if err != nil {
		return fmt.Errorf("failed to read question fingerprint: %w", err)
	}
	prevSource, err := e.local.GetMeta(ctx, MetaQuestionsSource)
	if err != nil {
		return fmt.Errorf("failed to read question source: %w", err)
	}
	if fp == prevFP && source == prevSource {
		e.logf("question bank unchanged (%d questions, source=%s), skipping refresh", len(questions), source)
		return nil
	}

	if err := e.local.ReplaceQuestions(ctx, questions); err != nil {
		return fmt.Errorf("failed to refresh question bank: %w", err)
	}
	if err := e.local.SetMeta(ctx, MetaQuestionsFingerprint, fp); err != nil {
		return fmt.Errorf("failed to store question fingerprint: %w", err)
	}
	if err := e.local.SetMeta(ctx, MetaQuestionsSource, source); err != nil {
		return fmt.Errorf("failed to store question source: %w", err)
	}
	e.logf("question bank refreshed: %d questions (source=%s)", len(questions), source)
	return nil
}

// ReconcileHistory merges local and remote answer history as a grow-only
// set union by entry id. Local-only entries go up in one batched write,
// remote-only entries come down in one batched insert; the two transfers
// run concurrently. Entries already present on both sides are never
// modified, which makes the operation idempotent: a second run moves
// nothing.
func (e *Engine) ReconcileHistory(ctx context.Context) error {
	user, ok := e.identity.CurrentUser()
	if !ok {
		e.logf("no signed-in user, skipping history sync")
		return nil
	}
	path := remote.HistoryPath(user.ID)

	tree, err := e.remote.GetTree(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to fetch remote history: %w", err)
	}
	remoteEntries := remote.DecodeTree[model.HistoryEntry](tree, func(key string, derr error) {
		e.logf("skipping malformed remote history entry %s: %v", key, derr)
	})

	local, err := e.local.GetAllHistoryContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local history: %w", err)
	}
	localIDs := make(map[string]struct{}, len(local))
	for _, entry := range local {
		localIDs[entry.ID] = struct{}{}
	}

	upload := make(map[string]interface{})
	for _, entry := range local {
		if _, exists := remoteEntries[entry.ID]; !exists {
			upload[entry.ID] = entry
		}
	}
	var download []*model.HistoryEntry
	for id, entry := range remoteEntries {
		if _, exists := localIDs[id]; !exists {
			if entry.ID == "" {
				entry.ID = id
			}
			// One bad entry must not block the rest of the download,
			// or every device's sync would fail on it forever.
			if verr := entry.Validate(); verr != nil {
				e.logf("skipping invalid remote history entry %s: %v", id, verr)
				continue
			}
			download = append(download, entry)
		}
	}

	uploadErr := make(chan error, 1)
	go func() {
		if len(upload) == 0 {
			uploadErr <- nil
			return
		}
		uploadErr <- e.remote.UpdateTree(ctx, path, upload)
	}()

	var downloadErr error
	if len(download) > 0 {
		downloadErr = e.local.PutHistoryBatchContext(ctx, download)
	}
	if err := <-uploadErr; err != nil {
		return fmt.Errorf("failed to upload %d history entries: %w", len(upload), err)
	}
	if downloadErr != nil {
		return fmt.Errorf("failed to store %d downloaded history entries: %w", len(download), downloadErr)
	}

	e.logf("history synced: %d uploaded, %d downloaded, %d total", len(upload), len(download), len(localIDs)+len(download))
	return nil
}

// SyncMemos merges local and remote memos. The merged view is the union
// of both sides with the remote value winning on key conflicts; local-only
// keys are then pushed up in one batch.
func (e *Engine) SyncMemos(ctx context.Context) error {
	user, ok := e.identity.CurrentUser()
	if !ok {
		e.logf("no signed-in user, skipping memo sync")
		return nil
	}
	path := remote.MemosPath(user.ID)

	tree, err := e.remote.GetTree(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to fetch remote memos: %w", err)
	}
	remoteMemos := remote.DecodeTree[memoRecord](tree, func(key string, derr error) {
		e.logf("skipping malformed remote memo %s: %v", key, derr)
	})

	local, err := e.local.GetMemos(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local memos: %w", err)
	}

	// Remote wins on conflicting keys.
	applied := 0
	for questionID, rec := range remoteMemos {
		if rec.Content == "" {
			continue
		}
		if local[questionID] != rec.Content {
			if err := e.local.SetMemo(ctx, questionID, rec.Content); err != nil {
				return fmt.Errorf("failed to store memo for %s: %w", questionID, err)
			}
			applied++
		}
	}

	// Push keys only we have.
	upload := make(map[string]interface{})
	now := time.Now().UTC()
	for questionID, text := range local {
		if _, exists := remoteMemos[questionID]; !exists && strings.TrimSpace(text) != "" {
			upload[questionID] = memoRecord{Content: text, UpdatedAt: now}
		}
	}
	if len(upload) > 0 {
		if err := e.remote.UpdateTree(ctx, path, upload); err != nil {
			return fmt.Errorf("failed to upload %d memos: %w", len(upload), err)
		}
	}

	e.logf("memos synced: %d applied from remote, %d uploaded", applied, len(upload))
	return nil
}

// SaveQuestion creates or updates one question in the shared bank. The
// caller must hold admin rights; non-admin calls return ErrNotAdmin with
// zero writes performed. The remote write happens first so a remote
// failure never strands a local-only edit.
func (e *Engine) SaveQuestion(ctx context.Context, q *model.Question) error {
	user, ok := e.identity.CurrentUser()
	if !ok || !user.Admin {
		return ErrNotAdmin
	}
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid question: %w", err)
	}
	q.SetDefaults()
	q.UpdateTimestamp()

	if err := e.remote.Put(ctx, remote.ChildPath(remote.QuestionsPath, q.ID), q); err != nil {
		return fmt.Errorf("failed to save question %s to remote: %w", q.ID, err)
	}
	if err := e.local.PutQuestionContext(ctx, q); err != nil {
		return fmt.Errorf("failed to mirror question %s locally: %w", q.ID, err)
	}
	e.logf("question %s saved by %s", q.ID, user.ID)
	return nil
}

// DeleteQuestion removes one question from the shared bank, remote first,
// then the local mirror. Admin-gated like SaveQuestion.
func (e *Engine) DeleteQuestion(ctx context.Context, id string) error {
	user, ok := e.identity.CurrentUser()
	if !ok || !user.Admin {
		return ErrNotAdmin
	}
	if err := e.remote.Delete(ctx, remote.ChildPath(remote.QuestionsPath, id)); err != nil {
		return fmt.Errorf("failed to delete question %s from remote: %w", id, err)
	}
	if err := e.local.DeleteQuestionContext(ctx, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to delete question %s locally: %w", id, err)
	}
	e.logf("question %s deleted by %s", id, user.ID)
	return nil
}

// UploadBuiltinQuestions publishes the builtin bank to the remote store
// in one batch. Admin-gated; used to bootstrap an empty remote.
func (e *Engine) UploadBuiltinQuestions(ctx context.Context) (int, error) {
	user, ok := e.identity.CurrentUser()
	if !ok || !user.Admin {
		return 0, ErrNotAdmin
	}
	if e.seed == nil {
		return 0, fmt.Errorf("no builtin question bank bundled")
	}
	questions, err := e.seed()
	if err != nil {
		return 0, fmt.Errorf("failed to load builtin question bank: %w", err)
	}
	batch := make(map[string]interface{}, len(questions))
	for _, q := range questions {
		batch[q.ID] = q
	}
	if err := e.remote.UpdateTree(ctx, remote.QuestionsPath, batch); err != nil {
		return 0, fmt.Errorf("failed to upload builtin question bank: %w", err)
	}
	e.logf("builtin bank uploaded: %d questions", len(batch))
	return len(batch), nil
}

// RecordAnswer grades one answer against the stored question, appends an
// immutable history entry locally, and uploads it best-effort. A failed
// upload is logged only; the entry reaches the remote on the next history
// reconciliation.
func (e *Engine) RecordAnswer(ctx context.Context, questionID string, selected int) (*model.HistoryEntry, error) {
	q, err := e.local.GetQuestionContext(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unknown question: %s", questionID)
		}
		return nil, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}
	entry := model.NewHistoryEntry(q, selected, time.Now())
	if err := e.local.InsertHistoryContext(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	if user, ok := e.identity.CurrentUser(); ok {
		path := remote.ChildPath(remote.HistoryPath(user.ID), entry.ID)
		if err := e.remote.Put(ctx, path, entry); err != nil {
			e.logf("answer %s recorded locally, upload deferred: %v", entry.ID, err)
		}
	}
	return entry, nil
}

// SaveMemo stores a memo locally and mirrors it to the remote
// best-effort. Empty or whitespace-only text deletes the memo on both
// sides.
func (e *Engine) SaveMemo(ctx context.Context, questionID, text string) error {
	if err := e.local.SetMemo(ctx, questionID, text); err != nil {
		return fmt.Errorf("failed to save memo for %s: %w", questionID, err)
	}

	user, ok := e.identity.CurrentUser()
	if !ok {
		return nil
	}
	path := remote.ChildPath(remote.MemosPath(user.ID), questionID)
	if strings.TrimSpace(text) == "" {
		if err := e.remote.Delete(ctx, path); err != nil {
			e.logf("memo %s removed locally, remote removal deferred: %v", questionID, err)
		}
		return nil
	}
	if err := e.remote.Put(ctx, path, memoRecord{Content: text, UpdatedAt: time.Now().UTC()}); err != nil {
		e.logf("memo %s saved locally, upload deferred: %v", questionID, err)
	}
	return nil
}

// ClearHistory wipes answer history locally and, when signed in, on the
// remote. Questions and memos are untouched.
func (e *Engine) ClearHistory(ctx context.Context) error {
	if err := e.local.ClearHistoryContext(ctx); err != nil {
		return fmt.Errorf("failed to clear local history: %w", err)
	}
	user, ok := e.identity.CurrentUser()
	if !ok {
		return nil
	}
	if err := e.remote.Delete(ctx, remote.HistoryPath(user.ID)); err != nil {
		return fmt.Errorf("failed to clear remote history: %w", err)
	}
	e.logf("history cleared for %s", user.ID)
	return nil
}
