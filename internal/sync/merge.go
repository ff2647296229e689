package sync

import "github.com/paperdesk/paperdesk/internal/schema"

// Merge folds the remote collection into the local one with local-wins
// precedence: every local paper is kept verbatim, and remote papers whose
// ids are unknown locally are appended. The second return value lists
// exactly the appended papers so the caller can persist them.
//
// A paper present in both places is returned in its local form even when
// the remote copy differs — the local copy may hold edits that have not
// round-tripped yet.
//
// Remote-only deletions are deliberately not propagated: a paper deleted
// remotely but still present locally survives the merge. The local store
// is the durable source of truth, and deleting local work because a
// server lost it is the one failure mode this system must never have.
func Merge(local, remote []*schema.Paper) (merged, added []*schema.Paper) {
	seen := make(map[string]bool, len(local))
	merged = make([]*schema.Paper, 0, len(local)+len(remote))
	for _, p := range local {
		seen[p.ID.Value] = true
		merged = append(merged, p)
	}
	for _, p := range remote {
		if seen[p.ID.Value] {
			continue
		}
		seen[p.ID.Value] = true
		merged = append(merged, p)
		added = append(added, p)
	}
	return merged, added
}
