// Package schema defines the exam-paper document model.
//
// A Paper is the root aggregate: exam setup metadata plus an ordered
// sequence of questions. Questions carry typed content blocks and, for
// creative questions, up to four labelled sub-questions. Blocks are a
// tagged union: the type tag decides which content payload is present.
//
// Everything in this package is pure data and pure functions. Persistence
// lives in internal/store, remote reconciliation in internal/sync; both
// treat these types as opaque documents and rely on Validate to reject
// malformed input at the boundary.
//
// Two derived invariants are maintained here and nowhere else:
//
//   - Question numbers are always the dense 1-based position in the
//     paper's question sequence. Renumber recomputes them after every
//     insert, delete, or reorder.
//   - Sub-question labels are always a gap-free prefix of the fixed
//     label alphabet.
//
// Table blocks additionally guarantee that Rows/Cols match the actual
// dimensions of Headers/Data. All table mutation goes through the
// functions in table.go, which never alias row slices between input and
// output.
package schema
