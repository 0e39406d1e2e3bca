// Package memstore provides an in-memory Store used by tests and the
// "memory" backend for local runs.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jala-community/jala-match/pkg/store"
)

// Store keeps records in insertion order per kind, guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	data map[store.Kind][]store.Record
	now  func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		data: make(map[store.Kind][]store.Record),
		now:  time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close() {}

// List returns all records of a kind, newest first, matching the row
// store's ordering.
func (s *Store) List(_ context.Context, kind store.Kind) ([]store.Record, error) {
	if _, err := store.TableFor(kind); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[kind]
	out := make([]store.Record, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i].Clone())
	}
	return out, nil
}

// Append stores a new record with defaults, id and timestamps applied.
func (s *Store) Append(_ context.Context, kind store.Kind, payload store.Record) (store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	rec := make(store.Record, len(t.Columns))
	defaulted := payload.Clone()
	store.ApplyDefaults(kind, defaulted)
	for _, col := range t.Columns {
		rec[col.Name] = store.CoerceValue(col, defaulted[col.Name])
	}

	if rec["id"] == "" {
		rec["id"] = uuid.NewString()
	}
	now := s.now().UTC().Format(time.RFC3339)
	if rec["createdAt"] == "" {
		rec["createdAt"] = now
	}
	if rec["updatedAt"] == "" {
		rec["updatedAt"] = now
	}

	s.mu.Lock()
	s.data[kind] = append(s.data[kind], rec)
	s.mu.Unlock()

	return rec.Clone(), nil
}

// Patch merges fields onto the record matched by id. Returns nil, nil
// when absent.
func (s *Store) Patch(_ context.Context, kind store.Kind, id string, patch store.Record) (store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.data[kind] {
		if rec["id"] != id {
			continue
		}
		for _, col := range t.Columns {
			if col.Generated() {
				continue
			}
			if v, ok := patch[col.Name]; ok {
				rec[col.Name] = store.CoerceValue(col, v)
			}
		}
		rec["updatedAt"] = s.now().UTC().Format(time.RFC3339)
		return rec.Clone(), nil
	}

	return nil, nil
}

// Remove deletes the record matched by id. Returns false when absent.
func (s *Store) Remove(_ context.Context, kind store.Kind, id string) (bool, error) {
	if _, err := store.TableFor(kind); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.data[kind]
	for i, rec := range rows {
		if rec["id"] == id {
			s.data[kind] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}
