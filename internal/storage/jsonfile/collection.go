// Package jsonfile stores each entity kind as a single JSON array document.
//
// Every mutation reads the whole document, applies the change in memory and
// atomically replaces the file. Absent fields fall back to defaults and rows
// without an identifier are skipped with a warning.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/utils"
)

const (
	filePerm  = 0644
	logPrefix = "[JSON]"
)

// collection maps entities of type T to their on-disk record R.
type collection[T any, R any] struct {
	path     string
	mu       sync.Mutex
	id       func(T) string
	toRecord func(T) R
	// fromRecord returns false for rows that cannot be used
	fromRecord func(R) (T, bool)
}

func (c *collection[T, R]) open() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", c.path, err)
	}
	_, err := c.read()
	return err
}

func (c *collection[T, R]) read() ([]T, error) {
	data, err := utils.ReadFileIfExists(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.path, err)
	}

	items := make([]T, 0, len(rows))
	for i, raw := range rows {
		var rec R
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("%s %s: skipping row %d: %v", logPrefix, c.path, i, err)
			continue
		}
		item, ok := c.fromRecord(rec)
		if !ok {
			log.Printf("%s %s: skipping row %d without id", logPrefix, c.path, i)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *collection[T, R]) write(items []T) error {
	records := make([]R, 0, len(items))
	for _, item := range items {
		records = append(records, c.toRecord(item))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.path, err)
	}
	data = append(data, '\n')
	return utils.WriteFileAtomic(c.path, data, filePerm)
}

func (c *collection[T, R]) upsertLocked(items []T, item T) []T {
	key := c.id(item)
	for i := range items {
		if c.id(items[i]) == key {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func (c *collection[T, R]) save(item T) (T, error) {
	return item, c.saveAll([]T{item})
}

func (c *collection[T, R]) saveAll(batch []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	for _, item := range batch {
		items = c.upsertLocked(items, item)
	}
	return c.write(items)
}

func (c *collection[T, R]) all() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

func (c *collection[T, R]) get(id string) (*T, error) {
	items, err := c.all()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.id(items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (c *collection[T, R]) filter(keep func(T) bool) ([]T, error) {
	items, err := c.all()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *collection[T, R]) remove(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return false, err
	}
	kept := items[:0]
	for _, item := range items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	return true, c.write(kept)
}
