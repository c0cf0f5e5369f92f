package sync

import (
	"context"
	"errors"

	"github.com/tossh23/architect-study-app/internal/model"
)

// ErrNotAdmin is returned by question-bank write operations when the
// current user is missing or not authorized by the admin policy. No
// local or remote write is performed.
var ErrNotAdmin = errors.New("not authorized to modify the question bank")

// ErrNotSignedIn is returned by per-user operations that require an
// authenticated user.
var ErrNotSignedIn = errors.New("no signed-in user")

// LocalStore is the slice of the on-device store the engine needs.
// *store.Store satisfies it.
type LocalStore interface {
	// Questions.
	GetAllQuestionsContext(ctx context.Context) ([]*model.Question, error)
	GetQuestionContext(ctx context.Context, id string) (*model.Question, error)
	PutQuestionContext(ctx context.Context, q *model.Question) error
	DeleteQuestionContext(ctx context.Context, id string) error
	ReplaceQuestions(ctx context.Context, questions []*model.Question) error

	// History.
	GetAllHistoryContext(ctx context.Context) ([]*model.HistoryEntry, error)
	InsertHistoryContext(ctx context.Context, entry *model.HistoryEntry) error
	PutHistoryBatchContext(ctx context.Context, entries []*model.HistoryEntry) error
	ClearHistoryContext(ctx context.Context) error

	// Memos and sync metadata.
	GetMemos(ctx context.Context) (model.Memos, error)
	SetMemo(ctx context.Context, questionID, text string) error
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

// SeedFunc loads the builtin question bank used when the remote bank
// turns out to be empty. May be nil if no builtin bank is bundled.
type SeedFunc func() ([]*model.Question, error)
