package crowdfund

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// This file contains the JSONL persistence of a Table: one file per
// collection, one record per line, lines in key order. The files stay
// human-readable and git-friendly.
//
//   Load:   read the file line by line, decode each record and index it by key.
//   Insert: append a single line to the file.
//   Update: write all records to a temporary file in the same folder, then
//           rename it over the collection file.

// Load reads the collection file and attaches it to the table: later writes
// go to that file. A missing file is an empty collection.
func (t *Table[K, R]) Load(filename string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.file = filename

	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open %s collection %q: %w", t.name, filename, err)
	}
	defer f.Close()
	return t.decode(filename, f)
}

// decode reads records in JSONL format from r. filename is for error messages only.
func (t *Table[K, R]) decode(filename string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	i := 0
	for scanner.Scan() {
		i++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var rec R
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("parse error %s:%d: %w", filename, i, err)
		}
		k := t.key(rec)
		if _, exists := t.rows[k]; exists {
			return fmt.Errorf("parse error %s:%d: key %v: %w", filename, i, k, ErrDuplicateKey)
		}
		t.rows[k] = rec
		if k > t.last {
			t.last = k
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %q: %w", filename, err)
	}
	return nil
}

// encodeRecord marshals a single record to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func encodeRecord(w io.Writer, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// appendLine appends a record to the collection file. Caller must hold the lock.
func (t *Table[K, R]) appendLine(rec R) error {
	if t.file == "" {
		return nil
	}
	f, err := os.OpenFile(t.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening %s file %q: %w", t.name, t.file, err)
	}
	if err := encodeRecord(f, rec); err != nil {
		f.Close()
		return fmt.Errorf("error appending to %q: %w", t.file, err)
	}
	return f.Close()
}

// rewrite persists all records, replacing the collection file. Caller must hold the lock.
func (t *Table[K, R]) rewrite() error {
	if t.file == "" {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(t.file), filepath.Base(t.file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary %s file: %w", t.name, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	w := bufio.NewWriter(tmp)
	for _, rec := range t.sorted(nil) {
		if err := encodeRecord(w, rec); err != nil {
			tmp.Close()
			return fmt.Errorf("error encoding %s: %w", t.name, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", t.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", t.name, err)
	}
	if err := os.Rename(tmp.Name(), t.file); err != nil {
		return fmt.Errorf("error replacing %q: %w", t.file, err)
	}
	return nil
}
