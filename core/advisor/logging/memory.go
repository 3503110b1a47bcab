package logging

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory, for tests and ephemeral runs.
type MemoryStore struct {
	mu   sync.Mutex
	recs []AdviceRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec AdviceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q AdviceQuery) ([]AdviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []AdviceRecord
	for _, r := range s.recs {
		if !q.matches(r) {
			continue
		}
		res = append(res, r)
		if q.Limit > 0 && len(res) == q.Limit {
			break
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
