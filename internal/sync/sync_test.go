package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	gosync "sync"
	"testing"

	"github.com/paperdesk/paperdesk/internal/remote"
	"github.com/paperdesk/paperdesk/internal/schema"
	"github.com/paperdesk/paperdesk/internal/store"
)

// fakeRemote is an in-memory stand-in for the remote store. Server-side
// records are kept in a map so tests can assert on what reached the
// server; nextID feeds the ids the "server" assigns.
type fakeRemote struct {
	mu      gosync.Mutex
	records map[string]*schema.Paper
	nextID  int

	failCreate bool
	failUpdate bool
	failList   bool

	creates    int
	updates    int
	deletes    int
	duplicates int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{records: map[string]*schema.Paper{}, nextID: 41}
}

func (f *fakeRemote) assign() string {
	f.nextID++
	return fmt.Sprintf("%d", f.nextID)
}

func (f *fakeRemote) List(ctx context.Context) remote.ListResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return remote.ListResult{}
	}
	var papers []*schema.Paper
	for _, p := range f.records {
		papers = append(papers, p.Clone())
	}
	return remote.ListResult{Success: true, Papers: papers}
}

func (f *fakeRemote) Create(ctx context.Context, p *schema.Paper) remote.SaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.failCreate {
		return remote.SaveResult{}
	}
	id := f.assign()
	stored := p.Clone()
	stored.ID = schema.ConfirmedID(id)
	f.records[id] = stored
	return remote.SaveResult{Success: true, PostID: id}
}

func (f *fakeRemote) Update(ctx context.Context, p *schema.Paper) remote.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.failUpdate {
		return remote.Result{}
	}
	f.records[p.ID.Value] = p.Clone()
	return remote.Result{Success: true}
}

func (f *fakeRemote) Delete(ctx context.Context, id string) remote.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.records, id)
	return remote.Result{Success: true}
}

func (f *fakeRemote) Duplicate(ctx context.Context, id string) remote.SaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duplicates++
	src, ok := f.records[id]
	if !ok {
		return remote.SaveResult{}
	}
	newID := f.assign()
	dup := src.Clone()
	dup.ID = schema.ConfirmedID(newID)
	f.records[newID] = dup
	return remote.SaveResult{Success: true, PostID: newID}
}

func newTestEngine(t *testing.T) (Engine, *store.MemStore, *fakeRemote) {
	t.Helper()
	st := store.NewMemStore()
	fr := newFakeRemote()
	logger := log.New(io.Discard, "", 0)
	return New(st, fr, logger), st, fr
}

func samplePaper(t *testing.T) *schema.Paper {
	t.Helper()
	p := schema.NewPaper(schema.Setup{
		Class:    "Class 9",
		Subject:  "Mathematics",
		ExamType: "Half Yearly",
	})
	p.AppendQuestion(schema.NewQuestion(schema.QuestionShortAnswer, 5))
	return p
}

func storedIDs(t *testing.T, st *store.MemStore) []string {
	t.Helper()
	papers, err := st.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	var ids []string
	for _, p := range papers {
		ids = append(ids, p.ID.Value)
	}
	return ids
}

func TestSaveConfirmsTemporaryID(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	tempID := p.ID.Value
	if !p.ID.Temporary() {
		t.Fatalf("new paper should start with a temporary id")
	}

	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("SavePaper: %v", err)
	}
	eng.Wait()

	papers, err := st.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected exactly one record after confirmation, got ids %v", storedIDs(t, st))
	}
	got := papers[0]
	if got.ID.Value != "42" {
		t.Errorf("expected server id 42, got %q", got.ID.Value)
	}
	if got.ID.Temporary() {
		t.Errorf("confirmed paper still marked temporary")
	}
	if got.ID.Value == tempID {
		t.Errorf("temporary id was not rewritten")
	}
	if fr.creates != 1 {
		t.Errorf("expected 1 create, got %d", fr.creates)
	}
	if got.Setup.Subject != "Mathematics" {
		t.Errorf("content lost across id rewrite")
	}
}

func TestResaveAfterConfirmationUpdates(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	// An editor session keeps one in-memory paper across saves.
	p := samplePaper(t)
	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("SavePaper: %v", err)
	}
	eng.Wait()

	if p.ID.Temporary() {
		t.Fatalf("handle still carries the temporary id after confirmation")
	}
	if p.ID.Value != "42" {
		t.Fatalf("expected server id 42 on the handle, got %q", p.ID.Value)
	}

	p.Setup.Subject = "Physics"
	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("second SavePaper: %v", err)
	}
	eng.Wait()

	if ids := storedIDs(t, st); len(ids) != 1 || ids[0] != "42" {
		t.Fatalf("resave must land on the confirmed record, got %v", ids)
	}
	if fr.creates != 1 {
		t.Errorf("resave must not create a second remote record, got %d creates", fr.creates)
	}
	if fr.updates != 1 {
		t.Errorf("resave must go through update, got %d updates", fr.updates)
	}
	if fr.records["42"].Setup.Subject != "Physics" {
		t.Errorf("edit did not reach the server")
	}
}

func TestStaleHandleSaveRoutesToUpdate(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	// Saved while offline: the handle keeps its temporary id.
	fr.failCreate = true
	p := samplePaper(t)
	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("SavePaper: %v", err)
	}
	eng.Wait()
	tempID := p.ID.Value

	// The daemon's reconcile pass confirms the stored record through its
	// own copy, so this handle never sees the rewrite.
	fr.failCreate = false
	eng.ReconcileAll(ctx)
	if p.ID.Value != tempID {
		t.Fatalf("reconcile of a different copy must not touch this handle")
	}

	// Saving the stale handle again must still find the confirmed record.
	p.Setup.Subject = "Physics"
	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("second SavePaper: %v", err)
	}
	eng.Wait()

	if p.ID.Temporary() {
		t.Errorf("save should have rewritten the stale id on the handle")
	}
	if ids := storedIDs(t, st); len(ids) != 1 || ids[0] != "42" {
		t.Fatalf("stale-handle save split the paper into %v", ids)
	}
	if fr.creates != 2 {
		// One failed attempt, one successful push; never a third.
		t.Errorf("expected 2 create attempts total, got %d", fr.creates)
	}
	if fr.records["42"].Setup.Subject != "Physics" {
		t.Errorf("edit did not reach the server")
	}
}

func TestCreateFailureLeavesTemporaryAndRetries(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	fr.failCreate = true
	p := samplePaper(t)
	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("SavePaper: %v", err)
	}
	eng.Wait()

	papers, _ := st.LoadAll()
	if len(papers) != 1 || !papers[0].ID.Temporary() {
		t.Fatalf("offline save should leave one temporary record, got %v", storedIDs(t, st))
	}

	// Server comes back; a full reconcile pushes the pending paper.
	fr.failCreate = false
	stats := eng.ReconcileAll(ctx)
	if stats.Pushed != 1 {
		t.Fatalf("expected 1 pushed, got %+v", stats)
	}
	papers, _ = st.LoadAll()
	if len(papers) != 1 || papers[0].ID.Temporary() {
		t.Fatalf("retry should have confirmed the record, got %v", storedIDs(t, st))
	}
}

func TestReconcileUpdatesConfirmedPaper(t *testing.T) {
	eng, _, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	p.ID = schema.ConfirmedID("7")
	fr.records["7"] = p.Clone()

	p.Setup.Subject = "Physics"
	out := eng.Reconcile(ctx, p)
	if out.Kind != OutcomeSynced {
		t.Fatalf("expected synced, got %s", out)
	}
	if fr.creates != 0 || fr.updates != 1 {
		t.Errorf("confirmed paper must go through update, got creates=%d updates=%d", fr.creates, fr.updates)
	}
	if fr.records["7"].Setup.Subject != "Physics" {
		t.Errorf("update did not reach the server")
	}
}

func TestUpdateFailureKeepsLocalEdits(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	p.ID = schema.ConfirmedID("7")
	fr.failUpdate = true

	if err := eng.SavePaper(ctx, p); err != nil {
		t.Fatalf("SavePaper: %v", err)
	}
	eng.Wait()

	papers, _ := st.LoadAll()
	if len(papers) != 1 || papers[0].ID.Value != "7" {
		t.Fatalf("failed update must not disturb the local record, got %v", storedIDs(t, st))
	}
}

func TestRefreshAddsUnknownAndKeepsLocal(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	// Local copy of paper 7 has unsynced edits; the server holds a stale
	// version plus a paper unknown locally.
	local := samplePaper(t)
	local.ID = schema.ConfirmedID("7")
	local.Setup.Subject = "Chemistry (edited)"
	if err := st.Upsert(local); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	stale := samplePaper(t)
	stale.ID = schema.ConfirmedID("7")
	stale.Setup.Subject = "Chemistry"
	fr.records["7"] = stale

	other := samplePaper(t)
	other.ID = schema.ConfirmedID("8")
	other.Setup.Subject = "Biology"
	fr.records["8"] = other

	added, out := eng.Refresh(ctx)
	if out.Kind != OutcomeSynced {
		t.Fatalf("expected synced refresh, got %s", out)
	}
	if added != 1 {
		t.Fatalf("expected 1 added, got %d", added)
	}

	papers, _ := st.LoadAll()
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers after refresh, got %v", storedIDs(t, st))
	}
	for _, p := range papers {
		if p.ID.Value == "7" && p.Setup.Subject != "Chemistry (edited)" {
			t.Errorf("refresh overwrote local edits: %q", p.Setup.Subject)
		}
	}
}

func TestRefreshDoesNotPropagateRemoteDeletion(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	local := samplePaper(t)
	local.ID = schema.ConfirmedID("7")
	if err := st.Upsert(local); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Server has no record of paper 7 at all.
	added, out := eng.Refresh(ctx)
	if out.Kind != OutcomeSynced || added != 0 {
		t.Fatalf("unexpected refresh result: added=%d out=%s", added, out)
	}
	if ids := storedIDs(t, st); len(ids) != 1 || ids[0] != "7" {
		t.Fatalf("remote deletion must not remove local paper, got %v", ids)
	}
}

func TestRefreshFailureLeavesStoreUntouched(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	local := samplePaper(t)
	if err := st.Upsert(local); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	fr.failList = true

	added, out := eng.Refresh(ctx)
	if out.Kind != OutcomeLocalOnly || added != 0 {
		t.Fatalf("expected local-only on list failure, got added=%d out=%s", added, out)
	}
	if len(storedIDs(t, st)) != 1 {
		t.Fatalf("failed refresh must not touch the store")
	}
}

func TestDeleteConfirmedReachesServer(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	p.ID = schema.ConfirmedID("7")
	fr.records["7"] = p.Clone()
	if err := st.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := eng.DeletePaper(ctx, "7"); err != nil {
		t.Fatalf("DeletePaper: %v", err)
	}
	eng.Wait()

	if len(storedIDs(t, st)) != 0 {
		t.Errorf("local record not deleted")
	}
	if fr.deletes != 1 {
		t.Errorf("expected 1 remote delete, got %d", fr.deletes)
	}
	if _, ok := fr.records["7"]; ok {
		t.Errorf("server record not deleted")
	}
}

func TestDeleteTemporaryStaysLocal(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	if err := st.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := eng.DeletePaper(ctx, p.ID.Value); err != nil {
		t.Fatalf("DeletePaper: %v", err)
	}
	eng.Wait()

	if len(storedIDs(t, st)) != 0 {
		t.Errorf("local record not deleted")
	}
	if fr.deletes != 0 {
		t.Errorf("temporary id must not trigger a remote delete, got %d", fr.deletes)
	}
}

func TestDuplicateConfirmedUsesServerCopy(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	p.ID = schema.ConfirmedID("7")
	fr.records["7"] = p.Clone()
	if err := st.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	dup, err := eng.DuplicatePaper(ctx, "7")
	if err != nil {
		t.Fatalf("DuplicatePaper: %v", err)
	}
	eng.Wait()

	if fr.duplicates != 1 || fr.creates != 0 {
		t.Errorf("confirmed source must duplicate server-side, got duplicates=%d creates=%d", fr.duplicates, fr.creates)
	}
	if dup.ID.Temporary() {
		t.Errorf("returned copy was not confirmed under the server id")
	}
	ids := storedIDs(t, st)
	if len(ids) != 2 {
		t.Fatalf("expected source + copy, got %v", ids)
	}
	papers, _ := st.LoadAll()
	for _, stored := range papers {
		if stored.ID.Temporary() {
			t.Errorf("copy was not confirmed under the server id: %v", ids)
		}
	}
}

func TestDuplicateTemporaryCreatesFresh(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	p := samplePaper(t)
	if err := st.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	dup, err := eng.DuplicatePaper(ctx, p.ID.Value)
	if err != nil {
		t.Fatalf("DuplicatePaper: %v", err)
	}
	eng.Wait()

	if dup.ID.Value == p.ID.Value {
		t.Fatalf("copy shares the source id")
	}
	if fr.duplicates != 0 || fr.creates != 1 {
		t.Errorf("temporary source must go through create, got duplicates=%d creates=%d", fr.duplicates, fr.creates)
	}
}

func TestDuplicateUnknownID(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	if _, err := eng.DuplicatePaper(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestImportValidPaper(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	src := samplePaper(t)
	src.ID = schema.ConfirmedID("999")
	raw, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := eng.ImportPaper(ctx, raw)
	if out.Kind != OutcomeSynced {
		t.Fatalf("expected synced import, got %s", out)
	}
	if out.PaperID.Value == "999" {
		t.Errorf("import must not reuse the document's own id")
	}
	if len(storedIDs(t, st)) != 1 {
		t.Fatalf("expected one stored paper, got %v", storedIDs(t, st))
	}
}

func TestImportRejectsGarbageAtomically(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	for _, raw := range [][]byte{
		[]byte("not json"),
		[]byte(`{"setup":{},"questions":[{"id":"q-1","type":"no-such-type","number":1}]}`),
	} {
		out := eng.ImportPaper(ctx, raw)
		if out.Kind != OutcomeImportError {
			t.Errorf("payload %q: expected import-error, got %s", raw, out)
		}
	}
	if len(storedIDs(t, st)) != 0 {
		t.Errorf("rejected imports must leave the store empty, got %v", storedIDs(t, st))
	}
	if fr.creates != 0 {
		t.Errorf("rejected imports must not reach the server")
	}
}

func TestImportOfflineStaysLocal(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	fr.failCreate = true
	raw, _ := json.Marshal(samplePaper(t))
	out := eng.ImportPaper(ctx, raw)
	if out.Kind != OutcomeLocalOnly {
		t.Fatalf("expected local-only import while offline, got %s", out)
	}
	papers, _ := st.LoadAll()
	if len(papers) != 1 || !papers[0].ID.Temporary() {
		t.Fatalf("offline import should leave one temporary record")
	}
}

func TestReconcileAllStats(t *testing.T) {
	eng, st, fr := newTestEngine(t)
	ctx := context.Background()

	temp := samplePaper(t)
	if err := st.Upsert(temp); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	confirmed := samplePaper(t)
	confirmed.ID = schema.ConfirmedID("7")
	if err := st.Upsert(confirmed); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	serverOnly := samplePaper(t)
	serverOnly.ID = schema.ConfirmedID("90")
	fr.records["90"] = serverOnly

	stats := eng.ReconcileAll(ctx)
	if stats.Pushed != 2 || stats.LocalOnly != 0 || stats.Added != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(storedIDs(t, st)) != 3 {
		t.Fatalf("expected 3 papers after full sync, got %v", storedIDs(t, st))
	}
}

type recordingNotifier struct {
	mu      gosync.Mutex
	actions []string
}

func (r *recordingNotifier) PaperUpdated(id, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingNotifier) SyncCompleted(pushed, added int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, "sync-complete")
}

func TestNotifierReceivesLifecycle(t *testing.T) {
	st := store.NewMemStore()
	fr := newFakeRemote()
	n := &recordingNotifier{}
	eng := New(st, fr, log.New(io.Discard, "", 0), WithNotifier(n))

	p := samplePaper(t)
	if err := eng.SavePaper(context.Background(), p); err != nil {
		t.Fatalf("SavePaper: %v", err)
	}
	eng.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	want := map[string]bool{"saved": false, "confirmed": false}
	for _, a := range n.actions {
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for action, seen := range want {
		if !seen {
			t.Errorf("notifier never saw %q (got %v)", action, n.actions)
		}
	}
}
