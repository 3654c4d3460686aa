// Package repositories implements SQLite persistence for learner state.
//
// Key Implementations:
//   - [KVRepository] : Key-value entries backing the progress store, one row per key
//   - [SessionRepository] : Learning session history with sequence numbers for stable ordering
//
// Sequence numbers give sessions a human-readable order (session #12) independent of UUIDs.
// [NextSequence] atomically increments the per-table counter kept in a dedicated sequence table.
package repositories
