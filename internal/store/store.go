// Package store provides durable single-device persistence of the paper
// collection.
//
// The Store interface abstracts the backing medium so the sync engine
// never touches storage directly: the default file backend keeps the whole
// collection under one JSON document, the SQLite backend keeps one row per
// paper, and the in-memory backend serves tests. All three share the same
// semantics:
//
//   - LoadAll returns the full surviving collection, ordered by creation
//     time then id. Deserialization failure is recovered by treating the
//     damaged portion as absent and logging the condition; persistence
//     corruption must never take the editor down.
//   - Upsert replaces the paper with a matching identifier or appends it.
//   - Delete removes by identifier and is a no-op for unknown ids.
//   - Clear drops the entire collection.
//
// Writes are whole-collection (file backend) or whole-document (SQLite
// backend); there is no partial write, which keeps operations O(collection
// size) and is fine at the expected scale of tens to low hundreds of
// papers per device.
package store

import (
	"sort"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// Store is the persistence boundary for the paper collection.
type Store interface {
	// LoadAll returns every stored paper, ordered by CreatedAt then id.
	// It fails soft: a damaged backing store yields an empty collection
	// and a logged warning, not an error.
	LoadAll() ([]*schema.Paper, error)

	// Upsert replaces the paper with a matching id, or appends it.
	Upsert(p *schema.Paper) error

	// Delete removes the paper with the given id value. Unknown ids are
	// a no-op.
	Delete(id string) error

	// Clear removes the entire collection.
	Clear() error

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// sortPapers orders papers by CreatedAt then id so LoadAll output is
// stable across backends.
func sortPapers(papers []*schema.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		a, b := papers[i], papers[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.Value < b.ID.Value
	})
}
