package store

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "papers.json"), log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	papers, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("expected empty collection, got %d", len(papers))
	}
}

func TestFileStoreCorruptFileFailsSoft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to seed corrupt file: %v", err)
	}

	s, err := NewFileStore(path, log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	// Corruption is recovered as an empty collection, never an error.
	papers, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on corrupt file returned error: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("expected empty collection, got %d", len(papers))
	}

	// The damaged file is set aside, not destroyed.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	found := false
	for _, e := range entries {
		if strings.Contains(e.Name(), ".corrupt-") {
			found = true
		}
	}
	if !found {
		t.Error("corrupt file was not set aside")
	}

	// The store is usable again immediately.
	p := makePaper(t, "Recovery", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	if err := s.Upsert(p); err != nil {
		t.Fatalf("Upsert after corruption failed: %v", err)
	}
	papers, err = s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(papers) != 1 {
		t.Errorf("expected 1 paper after recovery, got %d", len(papers))
	}
}

func TestFileStoreWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papers.json")
	s, err := NewFileStore(path, log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s.Upsert(makePaper(t, "Math", time.Now().UTC())); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// No temp file may remain after a successful write.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after write")
	}
}
