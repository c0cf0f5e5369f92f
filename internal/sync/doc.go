// Package sync reconciles the on-device store with the remote store.
//
// # Overview
//
// The engine keeps three collections consistent across devices:
//
//	Local Store (SQLite)                Remote Store (key-value tree)
//	     ├── questions          ⇐═      questions            (shared, admin-owned)
//	     ├── history            ⇔       users/{uid}/history  (per-user)
//	     └── memos (meta cache) ⇔       users/{uid}/memos    (per-user)
//
// Each collection has its own merge policy:
//
//   - Questions: the remote bank is authoritative. Reconciliation is a
//     wholesale replace of the local mirror, skipped entirely when a
//     cached fingerprint shows the remote bank has not changed. Banks are
//     small and centrally curated, so full replacement is simpler and
//     cheaper than per-record diffing and avoids partial-update races
//     with concurrent admin edits.
//   - History: entries are immutable, so reconciliation is a grow-only
//     set union by id. Local-only entries are uploaded, remote-only
//     entries are downloaded, and entries present on both sides are
//     never touched. The merge is commutative, convergent and
//     idempotent: any number of devices reconciling in any order end up
//     with the union of all entries.
//   - Memos: mutable full-value merge with remote precedence on key
//     conflicts, then local-only keys are pushed up. No per-edit
//     timestamps are tracked; this is the documented merge policy, not
//     an oversight.
//
// # Offline behavior
//
// The engine is offline-first. A remote that cannot be reached during
// question reconciliation is a normal condition: the local mirror stays
// as-is and the session continues on it. History and memo reconciliation
// report the failure to the caller so the session can record a
// recoverable SyncFailed state, but nothing is rolled back: partially
// applied upload/download batches are valid intermediate states because
// every write is a monotonic upsert by id.
//
// # Admin writes
//
// Writes to the shared question bank pass an injected authorization
// policy. The write order is remote first, local mirror second, so a
// failed remote write never leaves a local-only question that could not
// be reconciled upstream.
package sync
