// Package repository provides the CRUD accessors for each collection kept in
// the data store. Every accessor reads and writes "<collection>:<id>" keys and
// answers queries by scanning the collection prefix; there are no indexes and
// no referential checks between collections.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

// Record is implemented by every stored entity. Stamp returns a copy carrying
// the generated id and, depending on the type, the creation time.
type Record[T any] interface {
	Stamp(id string, now time.Time) T
}

// ErrInvalidUpdate is returned when the merged record no longer decodes as
// the collection type.
var ErrInvalidUpdate = errors.New("update does not match the record type")

// Fields is a partial update. Keys are JSON field names; each present key
// replaces the stored value wholesale.
type Fields map[string]any

// Collection is the accessor for one collection of T.
type Collection[T Record[T]] struct {
	store    *store.Store
	name     string
	singular string
	ids      IDGenerator
	now      func() time.Time
}

func newCollection[T Record[T]](st *store.Store, name, singular string, ids IDGenerator, now func() time.Time) *Collection[T] {
	return &Collection[T]{
		store:    st,
		name:     name,
		singular: singular,
		ids:      ids,
		now:      now,
	}
}

// Name returns the collection name used as key prefix.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) key(id string) string {
	return c.name + ":" + id
}

func (c *Collection[T]) prefix() string {
	return c.name + ":"
}

// Create stamps rec with a fresh id and writes it. No uniqueness checks are
// made; an id collision silently replaces the earlier record.
func (c *Collection[T]) Create(rec T) (*T, error) {
	now := c.now()
	id := c.ids.NewID(c.singular, now)

	raw, err := c.store.Set(c.key(id), rec.Stamp(id, now))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", c.singular, err)
	}
	return decode[T](raw)
}

// Get returns the record with the given id, or nil when there is none.
func (c *Collection[T]) Get(id string) (*T, error) {
	raw, ok := c.store.Get(c.key(id))
	if !ok {
		return nil, nil
	}
	rec, err := decode[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key(id), err)
	}
	return rec, nil
}

// All returns every record in the collection in store iteration order.
func (c *Collection[T]) All() ([]T, error) {
	return c.Filter(func(T) bool { return true })
}

// Filter scans the whole collection and keeps the records matching keep.
// Entries that are not JSON objects are skipped.
func (c *Collection[T]) Filter(keep func(T) bool) ([]T, error) {
	return c.scan(func(map[string]json.RawMessage) bool { return true }, keep)
}

// FilterBy keeps the records whose stored fields equal every given string.
// Only the named fields are inspected, so a mistyped unrelated field never
// hides a record.
func (c *Collection[T]) FilterBy(match map[string]string) ([]T, error) {
	return c.scan(func(obj map[string]json.RawMessage) bool {
		for field, want := range match {
			var got string
			if err := json.Unmarshal(obj[field], &got); err != nil || got != want {
				return false
			}
		}
		return true
	}, func(T) bool { return true })
}

func (c *Collection[T]) scan(match func(map[string]json.RawMessage) bool, keep func(T) bool) ([]T, error) {
	out := make([]T, 0)
	for _, e := range c.store.GetByPrefix(c.prefix()) {
		obj, err := object(e.Value)
		if err != nil {
			slog.Warn("skipping non-object record", "key", e.Key, "error", err)
			continue
		}
		if !match(obj) {
			continue
		}
		rec, err := decode[T](e.Value)
		if err != nil {
			slog.Warn("skipping undecodable record", "key", e.Key, "error", err)
			continue
		}
		if keep(*rec) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// Update shallow-merges fields over the stored record and writes it back.
// A missing record yields nil and nothing is written.
func (c *Collection[T]) Update(id string, fields Fields) (*T, error) {
	key := c.key(id)
	raw, ok := c.store.Get(key)
	if !ok {
		return nil, nil
	}

	current, err := object(raw)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}

	// only the incoming fields are type-checked; stored fields are kept as is
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}
	var check T
	if err := json.Unmarshal(patch, &check); err != nil {
		return nil, fmt.Errorf("update %s: %w: %v", key, ErrInvalidUpdate, err)
	}

	merged := make(map[string]any, len(current)+len(fields))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}

	stored, err := c.store.Set(key, json.RawMessage(encoded))
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}
	return decode[T](stored)
}

// Delete removes the record. Records referencing it are left in place.
func (c *Collection[T]) Delete(id string) error {
	if err := c.store.Delete(c.key(id)); err != nil {
		return fmt.Errorf("delete %s: %w", c.key(id), err)
	}
	return nil
}

var errNotObject = errors.New("stored value is not a JSON object")

func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// decode reads a stored object into T. Fields whose JSON type does not fit
// T are left at their zero value; the store enforces no schema.
func decode[T any](raw json.RawMessage) (*T, error) {
	if _, err := object(raw); err != nil {
		return nil, err
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}
	return &rec, nil
}
