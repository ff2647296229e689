package store

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// openBackends returns every Store implementation against a fresh backing
// medium, keyed by name, so the conformance tests below run identically
// for all of them.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	logger := log.New(os.Stderr, "[test] ", 0)

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "papers.json"), logger)
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "papers.db"), logger)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"file":   fileStore,
		"mem":    NewMemStore(),
		"sqlite": sqliteStore,
	}
}

func makePaper(t *testing.T, subject string, created time.Time) *schema.Paper {
	t.Helper()
	p := schema.NewPaper(schema.Setup{
		Class:   "Class 9",
		Subject: subject,
		Columns: 1,
	})
	p.CreatedAt = created
	p.UpdatedAt = created
	return p
}

func ids(papers []*schema.Paper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.ID.Value
	}
	return out
}

func TestStoreUpsertDeleteSequences(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			a := makePaper(t, "Physics", base)
			b := makePaper(t, "Chemistry", base.Add(time.Minute))
			c := makePaper(t, "Biology", base.Add(2*time.Minute))

			for _, p := range []*schema.Paper{a, b, c} {
				if err := s.Upsert(p); err != nil {
					t.Fatalf("Upsert failed: %v", err)
				}
			}

			// Replace, not append, on matching id.
			a.Setup.Subject = "Physics (revised)"
			if err := s.Upsert(a); err != nil {
				t.Fatalf("second Upsert failed: %v", err)
			}

			if err := s.Delete(b.ID.Value); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			// Deleting an absent id is a no-op.
			if err := s.Delete("local-nope"); err != nil {
				t.Fatalf("Delete of unknown id failed: %v", err)
			}

			papers, err := s.LoadAll()
			if err != nil {
				t.Fatalf("LoadAll failed: %v", err)
			}
			if len(papers) != 2 {
				t.Fatalf("expected 2 papers, got %d (%v)", len(papers), ids(papers))
			}
			if papers[0].ID.Value != a.ID.Value || papers[1].ID.Value != c.ID.Value {
				t.Errorf("wrong survivors or order: %v", ids(papers))
			}
			if papers[0].Setup.Subject != "Physics (revised)" {
				t.Errorf("upsert did not replace: %q", papers[0].Setup.Subject)
			}
		})
	}
}

func TestStoreClear(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Upsert(makePaper(t, "Math", base)); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
			if err := s.Clear(); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			papers, err := s.LoadAll()
			if err != nil {
				t.Fatalf("LoadAll failed: %v", err)
			}
			if len(papers) != 0 {
				t.Errorf("expected empty collection after Clear, got %d", len(papers))
			}
		})
	}
}

func TestStoreRoundTripsDocument(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			p := makePaper(t, "Math", base)
			q := schema.NewQuestion(schema.QuestionCreative, 10)
			if _, err := q.AddSubQuestion(5); err != nil {
				t.Fatal(err)
			}
			tbl := schema.NewBlock(schema.BlockTable)
			tbl.Table.Data[0][1] = "x²"
			q.Blocks = append(q.Blocks, tbl)
			p.AppendQuestion(q)

			if err := s.Upsert(p); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
			papers, err := s.LoadAll()
			if err != nil {
				t.Fatalf("LoadAll failed: %v", err)
			}
			if len(papers) != 1 {
				t.Fatalf("expected 1 paper, got %d", len(papers))
			}
			got := papers[0]
			if err := got.Validate(); err != nil {
				t.Fatalf("loaded paper invalid: %v", err)
			}
			loadedQ := got.Questions[0]
			if loadedQ.SubQuestions[0].Label != schema.SubQuestionLabels[0] {
				t.Errorf("sub-question label lost: %q", loadedQ.SubQuestions[0].Label)
			}
			if loadedQ.Blocks[1].Table.Data[0][1] != "x²" {
				t.Errorf("table cell lost: %v", loadedQ.Blocks[1].Table.Data)
			}
		})
	}
}

func TestStoreRejectsPaperWithoutID(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Upsert(&schema.Paper{}); err == nil {
				t.Error("Upsert accepted a paper without an id")
			}
		})
	}
}
