package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/paperdesk/paperdesk/internal/schema"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore keeps one row per paper in an embedded SQLite database with
// WAL mode. Documents are stored whole as JSON; the schema carries only
// the columns needed for ordering, so this backend stays interchangeable
// with the file store.
type SQLiteStore struct {
	conn   *sql.DB
	path   string
	logger *log.Logger
}

// OpenSQLite creates or opens the database at path and initializes the
// schema. The caller must Close when done. If logger is nil, a default
// logger writing to stderr is used.
func OpenSQLite(path string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{conn: conn, path: path, logger: logger}

	// WAL for concurrent readers, a busy timeout so a second process backs
	// off instead of erroring immediately.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_papers_created ON papers(created_at);
	`
	if _, err := s.conn.Exec(ddl); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// LoadAll implements Store. A row whose document no longer parses is
// skipped with a warning; one damaged row must not hide the rest of the
// collection.
func (s *SQLiteStore) LoadAll() ([]*schema.Paper, error) {
	rows, err := s.conn.Query(`SELECT id, doc FROM papers ORDER BY created_at, id`)
	if err != nil {
		s.logger.Printf("WARNING: cannot query papers: %v (treating store as empty)", err)
		return []*schema.Paper{}, nil
	}
	defer rows.Close()

	papers := []*schema.Paper{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			s.logger.Printf("WARNING: cannot scan paper row: %v", err)
			continue
		}
		var p schema.Paper
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			s.logger.Printf("WARNING: skipping unparsable paper %s: %v", id, err)
			continue
		}
		papers = append(papers, &p)
	}
	if err := rows.Err(); err != nil {
		s.logger.Printf("WARNING: paper scan interrupted: %v", err)
	}
	sortPapers(papers)
	return papers, nil
}

// Upsert implements Store.
func (s *SQLiteStore) Upsert(p *schema.Paper) error {
	if p == nil || p.ID.IsZero() {
		return fmt.Errorf("cannot store a paper without an id")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal paper %s: %w", p.ID, err)
	}

	query := `
	INSERT INTO papers (id, doc, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		doc = excluded.doc,
		updated_at = excluded.updated_at
	`
	_, err = s.conn.Exec(query, p.ID.Value, string(doc),
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
		p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert paper %s: %w", p.ID, err)
	}
	return nil
}

// Delete implements Store. Unknown ids are a no-op.
func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.conn.Exec(`DELETE FROM papers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete paper %s: %w", id, err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	if _, err := s.conn.Exec(`DELETE FROM papers`); err != nil {
		return fmt.Errorf("failed to clear papers: %w", err)
	}
	return nil
}

// Close implements Store. Performs a WAL checkpoint so all changes land in
// the main database file.
func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Printf("WARNING: failed to checkpoint WAL: %v", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Count returns the number of stored papers.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count papers: %w", err)
	}
	return n, nil
}
