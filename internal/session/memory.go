package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nao1215/spindle/internal/model"
)

// MemoryStore keeps session records in process memory. It is used for
// one-shot runs and tests; nothing survives process exit.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.SessionRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.SessionRecord),
	}
}

// Put inserts or replaces a record by its ID.
func (s *MemoryStore) Put(_ context.Context, record *model.SessionRecord) error {
	if record.ID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// Get returns the record with the given ID, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(record), nil
}

// Touch updates the last-used time of the record.
func (s *MemoryStore) Touch(_ context.Context, id string, when time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return false, nil
	}
	record.LastUsed = when
	return true, nil
}

// Remove deletes the record.
func (s *MemoryStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

// List returns all records ordered by creation time, oldest first.
func (s *MemoryStore) List(_ context.Context) ([]*model.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*model.SessionRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, cloneRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// cloneRecord copies a record so callers cannot mutate stored state
// through a shared pointer.
func cloneRecord(record *model.SessionRecord) *model.SessionRecord {
	clone := *record
	if record.Metadata != nil {
		clone.Metadata = make(map[string]string, len(record.Metadata))
		for k, v := range record.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
