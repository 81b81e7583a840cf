package session

import (
	"context"
	"time"

	"github.com/nao1215/spindle/internal/model"
)

// Store persists session records.
//
// Design decision: Get returns (nil, nil) for an absent session rather
// than a sentinel error because:
// 1. Absence is an expected outcome for every caller, not a fault
// 2. Callers that care (duplicate checks, clears) test the pointer
// 3. It keeps error paths for actual storage failures only
type Store interface {
	// Put inserts or replaces a record by its ID.
	Put(ctx context.Context, record *model.SessionRecord) error

	// Get returns the record with the given ID, or nil when absent.
	Get(ctx context.Context, id string) (*model.SessionRecord, error)

	// Touch updates the last-used time of the record. It reports whether
	// a record with that ID existed.
	Touch(ctx context.Context, id string, when time.Time) (bool, error)

	// Remove deletes the record. It reports whether a record with that
	// ID existed.
	Remove(ctx context.Context, id string) (bool, error)

	// List returns all records ordered by creation time, oldest first.
	List(ctx context.Context) ([]*model.SessionRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
