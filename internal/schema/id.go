package schema

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// PaperID pairs an identifier value with its provenance, so callers never
// have to guess from the string shape whether the remote store knows about
// this paper.
//
// A temporary id is generated locally when a paper is created and survives
// until the remote store confirms the paper with a server-assigned id. The
// sync engine rewrites the id in place on confirmation; see
// internal/sync.Engine.Reconcile for the state machine.
type PaperID struct {
	Value     string `json:"value"`
	Confirmed bool   `json:"confirmed"`
}

// localIDPrefix marks locally generated values. Purely cosmetic: provenance
// is carried by the Confirmed flag, never inferred from the prefix.
const localIDPrefix = "local-"

// NewTemporaryID returns a fresh locally generated identifier.
func NewTemporaryID() PaperID {
	return PaperID{Value: localIDPrefix + randomHex(12)}
}

// ConfirmedID wraps a server-assigned identifier.
func ConfirmedID(serverID string) PaperID {
	return PaperID{Value: serverID, Confirmed: true}
}

// Temporary reports whether the remote store has not yet confirmed this id.
func (id PaperID) Temporary() bool {
	return !id.Confirmed
}

// IsZero reports whether the id is unset.
func (id PaperID) IsZero() bool {
	return id.Value == ""
}

func (id PaperID) String() string {
	return id.Value
}

// MarshalJSON emits the tagged form. Kept explicit so the wire shape is a
// deliberate choice rather than an accident of struct layout.
func (id PaperID) MarshalJSON() ([]byte, error) {
	type wire PaperID
	return json.Marshal(wire(id))
}

// UnmarshalJSON accepts both the tagged form and a bare string. Bare
// strings come from external imports and are treated as unconfirmed unless
// they carry no local prefix, in which case the importer decides.
func (id *PaperID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = PaperID{Value: s}
		return nil
	}
	type wire PaperID
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("invalid paper id: %w", err)
	}
	*id = PaperID(w)
	return nil
}

// NewBlockID returns a fresh identifier for a block.
func NewBlockID() string { return "blk-" + randomHex(8) }

// NewQuestionID returns a fresh identifier for a question.
func NewQuestionID() string { return "q-" + randomHex(8) }

// NewSubQuestionID returns a fresh identifier for a sub-question.
func NewSubQuestionID() string { return "sq-" + randomHex(8) }

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
