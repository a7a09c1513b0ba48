// Package store holds the key/value data store behind every collection.
//
// A Store keeps the whole mapping in memory and writes a complete JSON
// snapshot through its Persister after every mutation. There is no partial
// persistence: the persisted blob is always the serialization of the full
// mapping as of the last successful write.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/metrics"
)

// ErrInvalidSnapshot is returned by Import for input that is not a JSON
// object.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Entry is a key/value pair returned by prefix scans.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Store is the process-wide mapping from keys to JSON values. Construct one
// with New at start-up and hand it to every accessor.
type Store struct {
	mu        sync.RWMutex
	data      map[string]json.RawMessage
	keys      []string // iteration order
	persister Persister
}

// New builds a Store populated from the persister's blob. A missing blob
// yields an empty store.
func New(p Persister) (*Store, error) {
	if p == nil {
		return nil, errors.New("store: persister is required")
	}

	blob, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load data store: %w", err)
	}

	data, keys, err := decodeSnapshot(blob)
	if err != nil {
		return nil, fmt.Errorf("decode data store: %w", err)
	}

	s := &Store{data: data, keys: keys, persister: p}
	metrics.StoreKeys.Set(float64(len(keys)))
	slog.Info("data store loaded", "keys", len(keys))
	return s, nil
}

// Set stores value under key, replacing any previous value, and returns the
// stored JSON. A value that cannot be encoded is rejected before anything
// changes.
func (s *Store) Set(key string, value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value for %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("set").Inc()
	if _, ok := s.data[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.data[key] = raw

	if err := s.persist(); err != nil {
		return raw, err
	}
	return raw, nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.StoreOperations.WithLabelValues("get").Inc()
	v, ok := s.data[key]
	return v, ok
}

// GetMany returns the values of the keys that exist, in the order the keys
// were given. Missing keys are dropped.
func (s *Store) GetMany(keys []string) []json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.StoreOperations.WithLabelValues("get_many").Inc()
	out := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Delete removes key. Deleting an absent key still rewrites the snapshot.
func (s *Store) Delete(key string) error {
	return s.DeleteMany([]string{key})
}

// DeleteMany removes every given key and persists once.
func (s *Store) DeleteMany(keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("delete").Inc()
	for _, k := range keys {
		s.remove(k)
	}
	return s.persist()
}

// GetByPrefix scans every key and returns the entries whose key starts with
// prefix, in iteration order. The empty prefix matches everything.
func (s *Store) GetByPrefix(prefix string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.StoreOperations.WithLabelValues("get_by_prefix").Inc()
	out := make([]Entry, 0)
	for _, k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Entry{Key: k, Value: s.data[k]})
		}
	}
	return out
}

// GetAll returns a copy of the whole mapping.
func (s *Store) GetAll() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.StoreOperations.WithLabelValues("get_all").Inc()
	out := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Clear empties the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("clear").Inc()
	s.data = make(map[string]json.RawMessage)
	s.keys = nil
	return s.persist()
}

// Export returns the raw snapshot as a JSON object.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.StoreOperations.WithLabelValues("export").Inc()
	return encodeSnapshot(s.data, s.keys), nil
}

// Import replaces the whole mapping with the JSON object in data. Invalid
// input leaves the store untouched.
func (s *Store) Import(data []byte) error {
	next, keys, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("import").Inc()
	s.data = next
	s.keys = keys
	return s.persist()
}

// Close releases the persister.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persister.Close()
}

// remove deletes k from the mapping and the order slice. Caller holds mu.
func (s *Store) remove(k string) {
	if _, ok := s.data[k]; !ok {
		return
	}
	delete(s.data, k)
	for i, existing := range s.keys {
		if existing == k {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// persist writes the full snapshot. The in-memory mapping is not rolled back
// on failure. Caller holds mu.
func (s *Store) persist() error {
	metrics.StoreKeys.Set(float64(len(s.keys)))

	start := time.Now()
	err := s.persister.Save(encodeSnapshot(s.data, s.keys))
	metrics.StorePersistDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StorePersistFailures.Inc()
		slog.Error("data store persist failed", "keys", len(s.keys), "error", err)
		return fmt.Errorf("persist data store: %w", err)
	}
	return nil
}

func encodeSnapshot(data map[string]json.RawMessage, keys []string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(data[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// decodeSnapshot parses a JSON object keeping the document order of its keys.
// A repeated key keeps its first position and its last value.
func decodeSnapshot(blob []byte) (map[string]json.RawMessage, []string, error) {
	data := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(blob)) == 0 {
		return data, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(blob))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("snapshot must be a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %w", key, err)
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %w", key, err)
		}

		if _, seen := data[key]; !seen {
			keys = append(keys, key)
		}
		data[key] = compact.Bytes()
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if dec.More() {
		return nil, nil, fmt.Errorf("trailing data after snapshot")
	}
	return data, keys, nil
}
