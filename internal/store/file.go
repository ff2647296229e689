package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// FileStore keeps the whole collection in a single JSON file, the direct
// analogue of a single storage key holding the serialized array. Every
// write re-serializes the full collection and lands atomically via a temp
// file and rename.
type FileStore struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file-backed store at path. The parent directory
// is created if needed. If logger is nil, a default logger writing to
// stderr is used.
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// LoadAll implements Store. A missing file is an empty collection. An
// unreadable or unparsable file is set aside under a timestamped
// .corrupt suffix and an empty collection is returned; the warning is
// logged but never surfaced as an error.
func (s *FileStore) LoadAll() ([]*schema.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() ([]*schema.Paper, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []*schema.Paper{}, nil
	}
	if err != nil {
		s.logger.Printf("WARNING: cannot read %s: %v (treating store as empty)", s.path, err)
		return []*schema.Paper{}, nil
	}

	var papers []*schema.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		s.sidelineCorrupt(err)
		return []*schema.Paper{}, nil
	}
	sortPapers(papers)
	return papers, nil
}

// sidelineCorrupt moves the damaged file out of the way so the next write
// starts clean without destroying whatever is left of the old data.
func (s *FileStore) sidelineCorrupt(cause error) {
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, backup); err != nil {
		s.logger.Printf("WARNING: store corrupt (%v) and could not be set aside: %v", cause, err)
		return
	}
	s.logger.Printf("WARNING: store corrupt (%v); moved to %s, starting empty", cause, backup)
}

// Upsert implements Store.
func (s *FileStore) Upsert(p *schema.Paper) error {
	if p == nil || p.ID.IsZero() {
		return fmt.Errorf("cannot store a paper without an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	papers, err := s.loadLocked()
	if err != nil {
		return err
	}
	replaced := false
	for i := range papers {
		if papers[i].ID.Value == p.ID.Value {
			papers[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		papers = append(papers, p)
	}
	return s.writeLocked(papers)
}

// Delete implements Store.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	papers, err := s.loadLocked()
	if err != nil {
		return err
	}
	kept := papers[:0]
	for _, p := range papers {
		if p.ID.Value != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(papers) {
		return nil
	}
	return s.writeLocked(kept)
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked([]*schema.Paper{})
}

// Close implements Store. The file store holds no open handles.
func (s *FileStore) Close() error { return nil }

// Path returns the backing file path (used by the daemon's watcher).
func (s *FileStore) Path() string { return s.path }

// writeLocked serializes the whole collection and writes it atomically.
func (s *FileStore) writeLocked(papers []*schema.Paper) error {
	sortPapers(papers)
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
