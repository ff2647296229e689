// Package export moves paper documents between the local store and
// portable files: pretty-printed JSON for a single paper, JSONL for the
// whole collection, and YAML for humans.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps a CLI flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "jsonl":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, jsonl, or yaml)", s)
}

// Options contains configuration for an export run.
type Options struct {
	Path   string // output file path
	Format Format
	Backup bool // keep a timestamped copy of an existing output file
}

// Result contains statistics about an export run.
type Result struct {
	PapersWritten int
	BackupCreated string
}

// Export writes the papers to opts.Path in the requested format. The
// write is atomic: the file is staged under a temp name and renamed into
// place, so a crash mid-export never leaves a truncated file behind.
func Export(papers []*schema.Paper, opts Options) (*Result, error) {
	result := &Result{}

	if opts.Backup {
		backup, err := backupExisting(opts.Path)
		if err != nil {
			return nil, err
		}
		result.BackupCreated = backup
	}

	var data []byte
	var err error
	switch opts.Format {
	case FormatJSON:
		data, err = json.MarshalIndent(papers, "", "  ")
	case FormatJSONL:
		data, err = marshalJSONL(papers)
	case FormatYAML:
		data, err = marshalYAML(papers)
	default:
		return nil, fmt.Errorf("unknown export format %q", opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode papers: %w", err)
	}

	if err := writeAtomic(opts.Path, data); err != nil {
		return nil, err
	}
	result.PapersWritten = len(papers)
	return result, nil
}

// ExportPaper writes a single paper as pretty-printed JSON, suitable for
// re-import elsewhere.
func ExportPaper(p *schema.Paper, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode paper %s: %w", p.ID, err)
	}
	return writeAtomic(path, data)
}

// ReadJSONL parses a JSONL collection file. The read is all-or-nothing:
// one malformed record rejects the whole file, so a partially valid
// backup is never half-applied.
func ReadJSONL(path string) ([]*schema.Paper, error) {
	// #nosec G304 - controlled path from CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection file: %w", err)
	}
	defer file.Close()

	var papers []*schema.Paper
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var p schema.Paper
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("invalid JSON at line %d: %w", line, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid paper at line %d: %w", line, err)
		}
		papers = append(papers, &p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}
	return papers, nil
}

func marshalJSONL(papers []*schema.Paper) ([]byte, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, p := range papers {
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

// marshalYAML routes through the JSON codec first so the YAML keys match
// the documented JSON field names (yaml.v3 would otherwise lowercase the
// Go field names and bypass the id codec).
func marshalYAML(papers []*schema.Paper) ([]byte, error) {
	raw, err := json.Marshal(papers)
	if err != nil {
		return nil, err
	}
	var generic []map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

func backupExisting(path string) (string, error) {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read existing file for backup: %w", err)
	}
	backupPath := path + ".backup." + time.Now().Format("20060102-150405")
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
