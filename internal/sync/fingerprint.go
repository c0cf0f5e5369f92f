package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
)

// Meta keys used to persist the state of the last question-bank
// reconciliation. Exported so status displays can read them off the
// local store without an engine.
const (
	MetaQuestionsFingerprint = "questions_fingerprint"
	MetaQuestionsSource      = "questions_source"
	MetaLastSyncAt           = "last_sync_at"
)

// Question-bank source markers. The marker is stored alongside the
// fingerprint so a freshly published remote bank replaces a builtin bank
// even when their content happens to hash identically.
const (
	SourceRemote  = "remote"
	SourceBuiltin = "builtin"
)

// Fingerprint computes a stable digest of a question bank: the record
// count plus one "id|updatedAt" line per question, sorted by id. The
// digest changes iff a question is added, removed, or touched.
func Fingerprint(questions []*model.Question) string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		lines = append(lines, fmt.Sprintf("%s|%s", q.ID, q.UpdatedAt.UTC().Format(time.RFC3339Nano)))
	}
	sort.Strings(lines)

	h := sha256.New()
	fmt.Fprintf(h, "%d\n", len(questions))
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
