// Package repositories implements SQLite persistence for saved comparisons and credential slots.
//
// Key Implementations:
//   - [ComparisonRepository] : Comparison history with soft deletes and room code lookups
//   - [SlotRepository] : Named key/value slots backing the credential store
//
// Comparisons carry a sequence number (e.g., comparison #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments the per-table counter in a dedicated sequence table.
package repositories
