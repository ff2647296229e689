package sync

import (
	"context"

	"github.com/paperdesk/paperdesk/internal/remote"
	"github.com/paperdesk/paperdesk/internal/schema"
)

// Engine orchestrates the local store and the remote client.
//
// All methods that touch the store serialize their read-modify-write
// cycle internally; callers never lock. Methods that fire background work
// return before the remote round trip finishes — use Wait to drain
// background tasks when ordering matters (tests, process shutdown).
type Engine interface {
	// SavePaper persists p locally and returns. A background task then
	// reconciles the paper with the remote store: temporary ids go
	// through create (and are rewritten in place on success), confirmed
	// ids through update. Remote failure is not surfaced; the local copy
	// stays valid.
	SavePaper(ctx context.Context, p *schema.Paper) error

	// LoadAll returns the local snapshot immediately and triggers a
	// background Refresh.
	LoadAll(ctx context.Context) ([]*schema.Paper, error)

	// DeletePaper removes the paper locally and, when its id was
	// confirmed, fires the matching remote delete in the background.
	DeletePaper(ctx context.Context, id string) error

	// DuplicatePaper deep-copies the paper under fresh ids, persists the
	// copy locally, and reconciles it in the background — through the
	// server's duplicate endpoint when the source id was confirmed,
	// through create otherwise. The returned paper is the local copy.
	DuplicatePaper(ctx context.Context, id string) (*schema.Paper, error)

	// ImportPaper validates an external JSON document and, when valid,
	// brings it in under a fresh temporary id through the write path.
	// Malformed payloads yield an ImportError outcome and change
	// nothing. Unlike SavePaper this reconciles synchronously, so the
	// returned outcome is final.
	ImportPaper(ctx context.Context, raw []byte) Outcome

	// Reconcile pushes one paper to the remote store synchronously and
	// reports the outcome. Exported for the sync command, the daemon,
	// and tests; SavePaper runs exactly this in the background.
	Reconcile(ctx context.Context, p *schema.Paper) Outcome

	// ReconcileAll pushes every stored paper, then refreshes from the
	// remote collection.
	ReconcileAll(ctx context.Context) Stats

	// Refresh pulls the remote collection and folds in papers not yet
	// known locally. Existing local records are never overwritten.
	Refresh(ctx context.Context) (added int, out Outcome)

	// Wait blocks until all background tasks started so far finish.
	Wait()
}

// Remote is the subset of the remote client the engine depends on.
// *remote.Client satisfies it.
type Remote interface {
	List(ctx context.Context) remote.ListResult
	Create(ctx context.Context, p *schema.Paper) remote.SaveResult
	Update(ctx context.Context, p *schema.Paper) remote.Result
	Delete(ctx context.Context, id string) remote.Result
	Duplicate(ctx context.Context, id string) remote.SaveResult
}

// Notifier receives engine events; the dashboard implements it. A nil
// notifier is valid and silently discards events.
type Notifier interface {
	// PaperUpdated reports a local mutation: action is one of
	// "saved", "deleted", "duplicated", "imported", "confirmed".
	PaperUpdated(id, action string)

	// SyncCompleted reports a finished refresh or full reconcile.
	SyncCompleted(pushed, added int)
}

// Stats summarizes a full reconcile pass.
type Stats struct {
	Pushed    int // papers successfully created or updated remotely
	LocalOnly int // papers left local-only by remote failure
	Added     int // remote papers folded in by the closing refresh
}
