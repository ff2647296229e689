// Package sync keeps the local paper store consistent with the remote
// record store.
//
// The engine is the only component allowed to decide precedence between
// local and remote state, and the rules are deliberately asymmetric:
//
//   - Local writes are authoritative for the running session. SavePaper
//     persists locally and returns; the remote round trip happens in the
//     background and its failure degrades silently to local-only state.
//     Authoring is never blocked by the network.
//   - Background refresh only ever adds. A paper that exists locally is
//     never overwritten by a remote copy, because the local copy may
//     carry edits that have not round-tripped yet (local-wins).
//
// Identifier reconciliation follows a two-state machine carried by
// schema.PaperID:
//
//	TEMP --(create success)--> CONFIRMED   (terminal)
//	TEMP --(create failure)--> TEMP        (retried on a later save or sync)
//	CONFIRMED --(update failure)--> CONFIRMED (local edits kept, remote stale)
//
// When a create succeeds the engine rewrites the paper's identifier in
// place: the record is re-persisted under the server-assigned id and the
// temporary-id record is removed, in one store round trip.
//
// Every operation reports a typed Outcome so callers and tests can assert
// on what happened without parsing logs. Failures inside background tasks
// are swallowed at the task boundary: one failed remote call never halts
// subsequent local operations.
package sync
