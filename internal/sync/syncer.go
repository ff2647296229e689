package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	gosync "sync"

	"github.com/paperdesk/paperdesk/internal/schema"
	"github.com/paperdesk/paperdesk/internal/store"
)

// engine implements the Engine interface.
type engine struct {
	store    store.Store
	client   Remote
	logger   *log.Logger
	notifier Notifier

	// mu serializes every read-modify-write cycle against the store.
	// There is no cross-process lock; concurrent writers from another
	// process race and the last writer wins (accepted: single-user,
	// single-process usage).
	mu gosync.Mutex

	// adopted maps a temporary id to the confirmed id the server
	// assigned for it. A handle saved again after confirmation is
	// routed through the update path instead of a second create.
	// Guarded by mu.
	adopted map[string]schema.PaperID

	// wg tracks background reconcile/refresh tasks for Wait.
	wg gosync.WaitGroup
}

// Option configures the engine.
type Option func(*engine)

// WithNotifier attaches an event sink (the dashboard).
func WithNotifier(n Notifier) Option {
	return func(e *engine) { e.notifier = n }
}

// New creates a sync engine over the given store and remote client.
//
// If logger is nil, a default logger writing to stderr is used.
//
// Example:
//
//	st, err := store.NewFileStore(path, nil)
//	if err != nil {
//	    return err
//	}
//	eng := sync.New(st, remote.New(baseURL), nil)
func New(st store.Store, client Remote, logger *log.Logger, opts ...Option) Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	e := &engine{
		store:   st,
		client:  client,
		logger:  logger,
		adopted: make(map[string]schema.PaperID),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SavePaper implements Engine.SavePaper.
func (e *engine) SavePaper(ctx context.Context, p *schema.Paper) error {
	if p == nil {
		return fmt.Errorf("cannot save nil paper")
	}
	p.Touch()

	e.mu.Lock()
	// A handle the editor kept across a confirmation still carries the
	// temporary id; rewrite it so the save lands on the existing record
	// and the push below goes through update, not a second create.
	if id, ok := e.adopted[p.ID.Value]; ok && p.ID.Temporary() {
		p.ID = id
	}
	err := e.store.Upsert(p)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to persist paper %s: %w", p.ID, err)
	}
	e.notify(p.ID.Value, "saved")

	// Reconcile a snapshot in the background, detached from the caller's
	// context: an in-flight push is never cancelled, it merely fails.
	snapshot := p.Clone()
	savedID := p.ID.Value
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		out := e.Reconcile(context.Background(), snapshot)
		if out.Kind != OutcomeSynced {
			e.logger.Printf("background reconcile: %s", out)
			return
		}
		e.confirmHandle(p, savedID)
	}()
	return nil
}

// LoadAll implements Engine.LoadAll.
func (e *engine) LoadAll(ctx context.Context) ([]*schema.Paper, error) {
	e.mu.Lock()
	papers, err := e.store.LoadAll()
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if added, out := e.Refresh(context.Background()); out.Kind == OutcomeLocalOnly {
			e.logger.Printf("background refresh: %s", out)
		} else if added > 0 {
			e.logger.Printf("background refresh added %d remote papers", added)
		}
	}()
	return papers, nil
}

// DeletePaper implements Engine.DeletePaper.
func (e *engine) DeletePaper(ctx context.Context, id string) error {
	e.mu.Lock()
	target := e.findLocked(id)
	err := e.store.Delete(id)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to delete paper %s: %w", id, err)
	}
	e.notify(id, "deleted")

	// Only confirmed ids exist remotely; deleting a temporary id is
	// purely local.
	if target != nil && !target.ID.Temporary() {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if res := e.client.Delete(context.Background(), id); !res.Success {
				e.logger.Printf("remote delete of %s failed; record remains on server", id)
			}
		}()
	}
	return nil
}

// DuplicatePaper implements Engine.DuplicatePaper.
func (e *engine) DuplicatePaper(ctx context.Context, id string) (*schema.Paper, error) {
	e.mu.Lock()
	src := e.findLocked(id)
	e.mu.Unlock()
	if src == nil {
		return nil, fmt.Errorf("no paper with id %s", id)
	}

	dup := src.CloneWithFreshIDs()
	e.mu.Lock()
	err := e.store.Upsert(dup)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to persist duplicate of %s: %w", id, err)
	}
	e.notify(dup.ID.Value, "duplicated")

	srcConfirmed := !src.ID.Temporary()
	snapshot := dup.Clone()
	dupID := dup.ID.Value
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if srcConfirmed {
			// Let the server copy its own record; adopt the new id.
			res := e.client.Duplicate(context.Background(), id)
			if res.Success {
				e.adoptServerID(snapshot, res.PostID)
				e.confirmHandle(dup, dupID)
				return
			}
			e.logger.Printf("remote duplicate of %s failed; copy stays local-only", id)
			return
		}
		if out := e.Reconcile(context.Background(), snapshot); out.Kind != OutcomeSynced {
			e.logger.Printf("background reconcile of duplicate: %s", out)
			return
		}
		e.confirmHandle(dup, dupID)
	}()
	return dup, nil
}

// ImportPaper implements Engine.ImportPaper.
func (e *engine) ImportPaper(ctx context.Context, raw []byte) Outcome {
	var p schema.Paper
	if err := json.Unmarshal(raw, &p); err != nil {
		return importError(fmt.Errorf("invalid paper document: %w", err))
	}

	// Imported documents enter under a fresh temporary id so they can
	// never collide with or shadow an existing record.
	imported := p.CloneWithFreshIDs()
	imported.Renumber()
	if err := imported.Validate(); err != nil {
		return importError(err)
	}

	e.mu.Lock()
	err := e.store.Upsert(imported)
	e.mu.Unlock()
	if err != nil {
		return importError(fmt.Errorf("failed to persist import: %w", err))
	}
	e.notify(imported.ID.Value, "imported")

	return e.Reconcile(ctx, imported)
}

// Reconcile implements Engine.Reconcile.
func (e *engine) Reconcile(ctx context.Context, p *schema.Paper) Outcome {
	if p.ID.Temporary() {
		res := e.client.Create(ctx, p)
		if !res.Success {
			// TEMP stays TEMP; the next save or sync retries.
			return localOnly(p.ID, fmt.Errorf("remote create failed"))
		}
		e.adoptServerID(p, res.PostID)
		return synced(p.ID)
	}

	if res := e.client.Update(ctx, p); !res.Success {
		// CONFIRMED stays CONFIRMED; local edits are preserved and the
		// remote copy is considered stale until the next successful push.
		return localOnly(p.ID, fmt.Errorf("remote update failed"))
	}
	return synced(p.ID)
}

// adoptServerID rewrites a paper's identifier in place: the record is
// re-persisted under the server-assigned id and the temporary-id record
// removed, in a single store round trip.
func (e *engine) adoptServerID(p *schema.Paper, serverID string) {
	oldID := p.ID.Value
	p.ID = schema.ConfirmedID(serverID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.adopted[oldID] = p.ID
	if err := e.store.Delete(oldID); err != nil {
		e.logger.Printf("WARNING: failed to drop temporary record %s: %v", oldID, err)
	}
	if err := e.store.Upsert(p); err != nil {
		e.logger.Printf("WARNING: failed to re-persist %s under server id: %v", p.ID, err)
		return
	}
	e.logger.Printf("confirmed %s as %s", oldID, p.ID)
	e.notify(p.ID.Value, "confirmed")
}

// confirmHandle writes the server-assigned id back into the paper the
// caller holds, so the rewrite is visible on the editor's handle and
// not only in the store. No-op if the handle moved on to another id.
func (e *engine) confirmHandle(p *schema.Paper, tempID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.adopted[tempID]; ok && p.ID.Value == tempID {
		p.ID = id
	}
}

// ReconcileAll implements Engine.ReconcileAll.
func (e *engine) ReconcileAll(ctx context.Context) Stats {
	e.mu.Lock()
	papers, err := e.store.LoadAll()
	e.mu.Unlock()
	if err != nil {
		e.logger.Printf("WARNING: reconcile-all cannot load store: %v", err)
		return Stats{}
	}

	var stats Stats
	for _, p := range papers {
		switch out := e.Reconcile(ctx, p); out.Kind {
		case OutcomeSynced:
			stats.Pushed++
		default:
			stats.LocalOnly++
		}
	}

	added, _ := e.Refresh(ctx)
	stats.Added = added
	if e.notifier != nil {
		e.notifier.SyncCompleted(stats.Pushed, stats.Added)
	}
	return stats
}

// Refresh implements Engine.Refresh.
func (e *engine) Refresh(ctx context.Context) (int, Outcome) {
	res := e.client.List(ctx)
	if !res.Success {
		return 0, localOnly(schema.PaperID{}, fmt.Errorf("remote list failed"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	local, err := e.store.LoadAll()
	if err != nil {
		return 0, localOnly(schema.PaperID{}, fmt.Errorf("failed to load store: %w", err))
	}
	_, added := Merge(local, res.Papers)
	for _, p := range added {
		if err := e.store.Upsert(p); err != nil {
			e.logger.Printf("WARNING: failed to persist remote paper %s: %v", p.ID, err)
		}
	}
	return len(added), synced(schema.PaperID{})
}

// Wait implements Engine.Wait.
func (e *engine) Wait() {
	e.wg.Wait()
}

// findLocked returns the stored paper with the given id value, or nil.
// Caller holds e.mu.
func (e *engine) findLocked(id string) *schema.Paper {
	papers, err := e.store.LoadAll()
	if err != nil {
		return nil
	}
	for _, p := range papers {
		if p.ID.Value == id {
			return p
		}
	}
	return nil
}

func (e *engine) notify(id, action string) {
	if e.notifier != nil {
		e.notifier.PaperUpdated(id, action)
	}
}
