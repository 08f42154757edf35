package sheet

import (
	"context"
	"fmt"
	"sync"

	"restaurant-offers/internal/models"
)

// MemStore is an in-memory Store used by tests and by demo mode when no
// sheet file is configured. Deletions records the indices passed to
// DeleteRow in call order, which lets tests assert descending deletion.
type MemStore struct {
	mu        sync.Mutex
	rows      []models.PendingOfferRow
	Deletions []int
}

// NewMemStore creates an empty in-memory sheet.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Records(ctx context.Context) ([]models.PendingOfferRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PendingOfferRow, len(s.rows))
	copy(out, s.rows)
	for i := range out {
		out[i].Index = i
	}
	return out, nil
}

func (s *MemStore) Append(ctx context.Context, row models.PendingOfferRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, row)
	return nil
}

func (s *MemStore) DeleteRow(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("row index %d out of range (have %d rows)", index, len(s.rows))
	}
	s.Deletions = append(s.Deletions, index)
	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	return nil
}
