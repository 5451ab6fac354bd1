package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"obfuskeep/internal/util/jsonutil"
)

// Writer appends dataset records to a JSONL file. A sidecar manifest
// (<output>.keys) records one key per written entry, so an interrupted run
// can resume by membership rather than guessing from record counts.
// Appends are serialized; multiple workers may share one Writer.
type Writer struct {
	mu   sync.Mutex
	out  *os.File
	keys *os.File
}

// NewWriter opens path (and its sidecar manifest) for appending, creating
// parent directories as needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("dataset: create output dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	keys, err := os.OpenFile(keysPath(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("dataset: open manifest: %w", err)
	}
	return &Writer{out: out, keys: keys}, nil
}

// Append writes one record and its resume key. Each append goes straight to
// the file so an interrupted run loses at most the record in flight.
func (w *Writer) Append(e Entry, key string) error {
	blob, err := jsonutil.MarshalNoEscape(e)
	if err != nil {
		return fmt.Errorf("dataset: marshal entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(append(blob, '\n')); err != nil {
		return fmt.Errorf("dataset: append entry: %w", err)
	}
	if _, err := fmt.Fprintln(w.keys, key); err != nil {
		return fmt.Errorf("dataset: append manifest key: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	kerr := w.keys.Close()
	if err := w.out.Close(); err != nil {
		return err
	}
	return kerr
}

// ProcessedKeys loads the resume manifest for the output at path. A missing
// or unreadable manifest means nothing was processed.
func ProcessedKeys(path string) map[string]struct{} {
	done := make(map[string]struct{})
	f, err := os.Open(keysPath(path))
	if err != nil {
		return done
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if key := strings.TrimSpace(sc.Text()); key != "" {
			done[key] = struct{}{}
		}
	}
	return done
}

// ReadEntries loads every parseable record from a JSONL file, skipping blank
// and malformed lines.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return entries, nil
}

func keysPath(path string) string {
	return path + ".keys"
}
