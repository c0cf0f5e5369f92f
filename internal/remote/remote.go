// Package remote provides the cloud-side store consumed by the sync engine.
//
// The remote store is a key-value tree addressed by slash-separated paths:
//
//	questions                 shared question bank (admin-writable)
//	users/{uid}/history       per-user answer history
//	users/{uid}/memos         per-user memos
//
// Availability is environment-dependent: the store is reachable only when
// the device is online and holds a valid token. Unreachability is a normal
// operating mode, not an exception: callers detect it via ErrOffline and
// continue on local data.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrOffline wraps transport-level failures: the remote tree could not be
// reached at all. Sync treats this as "stay on current local data".
var ErrOffline = errors.New("remote store unreachable")

// Store is the remote key-value tree the sync engine reconciles against.
//
// UpdateTree is atomic from the caller's perspective: either every key in
// the batch is written or the caller must assume none were and retry the
// whole batch. Retries are safe because all writes are upserts by id.
type Store interface {
	// GetTree reads the complete collection at path as a mapping of
	// child key to raw record. An absent path yields an empty map.
	GetTree(ctx context.Context, path string) (map[string]json.RawMessage, error)

	// UpdateTree writes multiple children of path in one batch.
	UpdateTree(ctx context.Context, path string, values map[string]interface{}) error

	// Put sets a single child of path.
	Put(ctx context.Context, path string, value interface{}) error

	// Delete removes the value at path. Removing an absent path is a
	// no-op (idempotent).
	Delete(ctx context.Context, path string) error
}

// QuestionsPath is the shared question-bank subtree.
const QuestionsPath = "questions"

// HistoryPath returns the history subtree for one user.
func HistoryPath(uid string) string {
	return fmt.Sprintf("users/%s/history", uid)
}

// MemosPath returns the memo subtree for one user.
func MemosPath(uid string) string {
	return fmt.Sprintf("users/%s/memos", uid)
}

// ChildPath joins a collection path and a record key.
func ChildPath(path, key string) string {
	return path + "/" + key
}

// DecodeTree unmarshals every record of a fetched tree into T, keyed by id.
// Records that fail to decode are skipped and reported through onError
// (which may be nil); a malformed record on the remote must not poison the
// rest of the collection.
func DecodeTree[T any](tree map[string]json.RawMessage, onError func(key string, err error)) map[string]*T {
	out := make(map[string]*T, len(tree))
	for key, raw := range tree {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			if onError != nil {
				onError(key, err)
			}
			continue
		}
		out[key] = &v
	}
	return out
}
