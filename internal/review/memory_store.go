package review

import (
	"context"
	"sync"
)

// MemoryStore keeps records in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates a MemoryStore holding the given records.
func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]Record, len(records))}
	for _, r := range records {
		s.records[r.ItemID] = r
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, itemID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[itemID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *MemoryStore) Upsert(_ context.Context, record Record) error {
	if err := ValidateItemID(record.ItemID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ItemID] = record
	return nil
}

// ListAll returns every record ordered by next review.
func (s *MemoryStore) ListAll(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.RUnlock()
	SortByNextReview(out)
	return out, nil
}
