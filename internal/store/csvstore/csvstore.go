// Package csvstore keeps orders in a local CSV file with the medium's seven
// columns. Appends are single O_APPEND writes; status updates rewrite the
// file through a temp file and rename, so readers never see a torn file.
//
// Operations from this process are serialized. Writers in other processes
// are not coordinated with: a status update racing an external edit is
// last-write-wins, and separate local copies must be reconciled by hand.
package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

// Store is a CSV-file backed store.OrderStore.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store for the file at path. The file is not touched until
// the first call.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Bootstrap creates the file with only the header row when it is missing.
func (s *Store) Bootstrap(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, store.Unavailable("bootstrap", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, store.Unavailable("bootstrap", err)
	}
	defer f.Close()

	if _, err := f.Write(encode([][]string{store.Columns})); err != nil {
		return false, store.Unavailable("bootstrap", err)
	}
	if err := f.Sync(); err != nil {
		return false, store.Unavailable("bootstrap", err)
	}
	return true, nil
}

// ListAll reads the whole file.
func (s *Store) ListAll(ctx context.Context) ([]order.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Unavailable("list", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, rows, err := s.read()
	if err != nil {
		return nil, err
	}

	recs := make([]order.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := store.DecodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Append checks the id against the file, then appends one row.
func (s *Store) Append(ctx context.Context, rec order.Record) error {
	if err := ctx.Err(); err != nil {
		return store.Unavailable("append", err)
	}
	if err := order.CheckLines(rec.Lines); err != nil {
		return fmt.Errorf("append %s: %w", rec.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, rows, err := s.read()
	if err != nil {
		return err
	}
	if rowIndex(rows, rec.ID) >= 0 {
		return fmt.Errorf("append %s: %w", rec.ID, store.ErrDuplicateOrderID)
	}

	var out [][]string
	if len(raw) == 0 {
		out = append(out, store.Columns)
	}
	out = append(out, store.EncodeRow(rec))
	buf := encode(out)
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		buf = append([]byte{'\n'}, buf...)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return store.Unavailable("append", err)
	}
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	n, werr := f.Write(buf)
	if werr == nil {
		werr = f.Sync()
	}
	if werr != nil && n > 0 {
		// Never leave a partial row behind.
		_ = f.Truncate(size)
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return store.Unavailable("append", werr)
	}
	return nil
}

// UpdateStatus locates the row by order number and rewrites only its Status
// cell. Other rows are written back cell for cell, even ones that fail to
// decode.
func (s *Store) UpdateStatus(ctx context.Context, id string, to order.Status) (order.Record, error) {
	if err := ctx.Err(); err != nil {
		return order.Record{}, store.Unavailable("update status", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, rows, err := s.read()
	if err != nil {
		return order.Record{}, err
	}

	i := rowIndex(rows, id)
	if i < 0 {
		return order.Record{}, fmt.Errorf("update %s: %w", id, store.ErrNotFound)
	}
	current, err := store.DecodeRow(rows[i])
	if err != nil {
		return order.Record{}, fmt.Errorf("update %s: %w", id, err)
	}
	if err := order.ValidateTransition(current.Status, to); err != nil {
		return order.Record{}, fmt.Errorf("update %s: %w", id, err)
	}

	rows[i][store.ColStatus] = string(to)
	if err := s.replace(append([][]string{store.Columns}, rows...)); err != nil {
		return order.Record{}, err
	}
	return current.WithStatus(to), nil
}

// read returns the raw file bytes and the data rows after the header.
func (s *Store) read() ([]byte, [][]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, store.Unavailable("read "+s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, nil
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %w", s.path, store.ErrCorruptRow, err)
	}
	if err := store.CheckHeader(all[0]); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return raw, all[1:], nil
}

// replace writes rows to a temp file in the same directory and renames it
// over the original.
func (s *Store) replace(rows [][]string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return store.Unavailable("update status", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(encode(rows)); err != nil {
		tmp.Close()
		return store.Unavailable("update status", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return store.Unavailable("update status", err)
	}
	if err := tmp.Close(); err != nil {
		return store.Unavailable("update status", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return store.Unavailable("update status", err)
	}
	return nil
}

func rowIndex(rows [][]string, id string) int {
	for i, row := range rows {
		if len(row) > store.ColOrderNo && strings.TrimSpace(row[store.ColOrderNo]) == id {
			return i
		}
	}
	return -1
}

func encode(rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(rows) // writes to a bytes.Buffer cannot fail
	return buf.Bytes()
}
