package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"restaurant-offers/internal/models"
)

// CSVStore is a file-backed Store. The file carries the fixed header as
// row 1; every operation reads the file fresh so external edits between
// calls are picked up, matching how the original sheet was shared with
// operators. Writes rewrite the file atomically via a temp file rename.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// OpenCSV opens the sheet file at path, creating it with the header row
// if it does not exist. An existing file with a different header is
// rejected rather than silently rewritten.
func OpenCSV(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.writeAll(nil); err != nil {
			return nil, fmt.Errorf("failed to create sheet file: %w", err)
		}
		return s, nil
	}

	if _, err := s.readAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// Records returns all data rows in file order.
func (s *CSVStore) Records(ctx context.Context) ([]models.PendingOfferRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	rows := make([]models.PendingOfferRow, 0, len(records))
	for i, cells := range records {
		rows = append(rows, cellsToRow(i, cells))
	}
	return rows, nil
}

// Append adds one row at the end of the sheet.
func (s *CSVStore) Append(ctx context.Context, row models.PendingOfferRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	records = append(records, rowToCells(row))
	return s.writeAll(records)
}

// DeleteRow removes the data row at the given zero-based index.
func (s *CSVStore) DeleteRow(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(records) {
		return fmt.Errorf("row index %d out of range (have %d rows)", index, len(records))
	}

	records = append(records[:index], records[index+1:]...)
	return s.writeAll(records)
}

// readAll returns the data rows (header stripped) after validating the
// header line.
func (s *CSVStore) readAll() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short rows, cellsToRow pads

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file: %w", err)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("sheet file %s has no header row", s.path)
	}

	if err := checkHeader(all[0]); err != nil {
		return nil, err
	}

	return all[1:], nil
}

// writeAll rewrites the whole file (header plus data rows) atomically.
func (s *CSVStore) writeAll(records [][]string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".pending-offers-*")
	if err != nil {
		return fmt.Errorf("failed to create temp sheet file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(Headers); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write sheet header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to write sheet row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush sheet file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp sheet file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace sheet file: %w", err)
	}
	return nil
}

func checkHeader(got []string) error {
	if len(got) != len(Headers) {
		return fmt.Errorf("sheet header has %d columns, want %d", len(got), len(Headers))
	}
	for i, h := range Headers {
		if got[i] != h {
			return fmt.Errorf("sheet header column %d is %q, want %q", i+1, got[i], h)
		}
	}
	return nil
}
