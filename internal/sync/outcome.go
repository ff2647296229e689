package sync

import (
	"fmt"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// OutcomeKind tags what a sync operation achieved.
type OutcomeKind string

const (
	// OutcomeSynced means the paper round-tripped to the remote store.
	OutcomeSynced OutcomeKind = "synced"

	// OutcomeLocalOnly means the local write succeeded but the remote
	// round trip did not; the paper stays valid and will be retried.
	OutcomeLocalOnly OutcomeKind = "local-only"

	// OutcomeImportError means an external payload was rejected before
	// anything was applied.
	OutcomeImportError OutcomeKind = "import-error"
)

// Outcome is the typed result of a sync operation. Callers assert on it
// directly instead of parsing log output.
type Outcome struct {
	Kind    OutcomeKind
	PaperID schema.PaperID // final id after the operation, zero for import errors
	Err     error          // underlying reason for LocalOnly / ImportError
}

func synced(id schema.PaperID) Outcome {
	return Outcome{Kind: OutcomeSynced, PaperID: id}
}

func localOnly(id schema.PaperID, err error) Outcome {
	return Outcome{Kind: OutcomeLocalOnly, PaperID: id, Err: err}
}

func importError(err error) Outcome {
	return Outcome{Kind: OutcomeImportError, Err: err}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSynced:
		return fmt.Sprintf("synced %s", o.PaperID)
	case OutcomeLocalOnly:
		return fmt.Sprintf("local-only %s: %v", o.PaperID, o.Err)
	case OutcomeImportError:
		return fmt.Sprintf("import rejected: %v", o.Err)
	}
	return string(o.Kind)
}
