// Package memory provides volatile map-backed stores. Nothing survives a restart.
package memory

import (
	"sync"

	"github.com/mrlokans/library/internal/storage"
)

// table keeps rows keyed by ID and remembers insertion order for listings.
type table[T any] struct {
	mu    sync.RWMutex
	id    func(T) string
	rows  map[string]T
	order []string
}

func newTable[T any](id func(T) string) *table[T] {
	return &table[T]{id: id, rows: make(map[string]T)}
}

func (t *table[T]) put(row T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.putLocked(row)
	return row
}

func (t *table[T]) putAll(rows []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range rows {
		t.putLocked(row)
	}
}

func (t *table[T]) putLocked(row T) {
	key := t.id(row)
	if _, exists := t.rows[key]; !exists {
		t.order = append(t.order, key)
	}
	t.rows[key] = row
}

func (t *table[T]) get(id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &row, nil
}

func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, key := range t.order {
		row := t.rows[key]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, key := range t.order {
		if key == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}
