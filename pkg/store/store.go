// Package store persists computed diagram documents with enough
// metadata to list and fetch them later. The memory implementation
// backs tests and single-process use; the Mongo implementation backs
// the HTTP service.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aerogramlab/aerogram/pkg/errors"
)

// Entry is one archived diagram document plus the scalars worth
// indexing on.
type Entry struct {
	ID           string    `json:"id" bson:"_id"`
	Station      string    `json:"station" bson:"station"`
	ObservedAt   time.Time `json:"observed_at" bson:"observed_at"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	SoundingHash string    `json:"sounding_hash" bson:"sounding_hash"`

	CAPE        float64 `json:"cape" bson:"cape"`
	CIN         float64 `json:"cin" bson:"cin"`
	LCLPressure float64 `json:"lcl_pressure" bson:"lcl_pressure"`

	// Document is the full serialized diagram JSON.
	Document []byte `json:"document,omitempty" bson:"document"`
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Station string
	// MinCAPE keeps entries at or above this CAPE.
	MinCAPE float64
	// Limit caps the result count; 0 means no cap.
	Limit int
}

// Store archives diagram documents.
type Store interface {
	// Put inserts or replaces an entry by ID.
	Put(ctx context.Context, e Entry) error

	// Get fetches an entry by ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (Entry, error)

	// List returns matching entries, newest observation first. The
	// Document field is omitted; fetch it with Get.
	List(ctx context.Context, f ListFilter) ([]Entry, error)

	// Delete removes an entry by ID, or a NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// Close releases backing resources.
	Close(ctx context.Context) error
}

// MemoryStore keeps entries in a map, guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Put(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "entry has no ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, errors.New(errors.ErrCodeNotFound, "no entry with ID %q", id)
	}
	return e, nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if f.Station != "" && e.Station != f.Station {
			continue
		}
		if e.CAPE < f.MinCAPE {
			continue
		}
		e.Document = nil
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ObservedAt.After(out[j].ObservedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "no entry with ID %q", id)
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
