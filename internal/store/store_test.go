package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPersister struct {
	MemoryPersister
	fail bool
}

func (f *failingPersister) Save(blob []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.MemoryPersister.Save(blob)
}

func newTestStore(t *testing.T) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister()
	s, err := New(p)
	require.NoError(t, err)
	return s, p
}

func keysOf(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func TestSetGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	values := map[string]any{
		"string": "hello",
		"number": 42.5,
		"bool":   true,
		"null":   nil,
		"list":   []any{"a", 1.0},
		"object": map[string]any{"name": "Dr. Martin"},
	}

	for k, v := range values {
		stored, err := s.Set(k, v)
		require.NoError(t, err)

		got, ok := s.Get(k)
		require.True(t, ok, "key %s", k)
		assert.JSONEq(t, string(stored), string(got))

		var decoded any
		require.NoError(t, json.Unmarshal(got, &decoded))
		assert.Equal(t, v, decoded)
	}
}

func TestSetOverwrites(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Set("k", "first")
	require.NoError(t, err)
	_, err = s.Set("k", "second")
	require.NoError(t, err)

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, `"second"`, string(got))
	assert.Equal(t, 1, s.Len())
}

func TestSetRejectsUnencodableValue(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Set("bad", make(chan int))
	require.Error(t, err)

	_, ok := s.Get("bad")
	assert.False(t, ok)
}

func TestGetAbsent(t *testing.T) {
	s, _ := newTestStore(t)

	v, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Set("users:1", "a")
	require.NoError(t, err)

	require.NoError(t, s.Delete("users:1"))
	require.NoError(t, s.Delete("users:1"))
	require.NoError(t, s.Delete("never-set"))

	_, ok := s.Get("users:1")
	assert.False(t, ok)
	_, ok = s.Get("never-set")
	assert.False(t, ok)
}

func TestGetManyKeepsOrderAndDropsMissing(t *testing.T) {
	s, _ := newTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Set(k, k)
		require.NoError(t, err)
	}

	got := s.GetMany([]string{"c", "missing", "a"})
	require.Len(t, got, 2)
	assert.Equal(t, `"c"`, string(got[0]))
	assert.Equal(t, `"a"`, string(got[1]))
}

func TestDeleteMany(t *testing.T) {
	s, _ := newTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Set(k, k)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteMany([]string{"a", "c", "zzz"}))
	assert.Equal(t, []string{"b"}, keysOf(s.GetByPrefix("")))
}

func TestGetByPrefix(t *testing.T) {
	s, _ := newTestStore(t)
	for _, k := range []string{"users:1", "consultations:1", "users:2", "usersettings"} {
		_, err := s.Set(k, k)
		require.NoError(t, err)
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"users:", []string{"users:1", "users:2"}},
		{"users", []string{"users:1", "users:2", "usersettings"}},
		{"consultations:", []string{"consultations:1"}},
		{"", []string{"users:1", "consultations:1", "users:2", "usersettings"}},
		{"ordonnances:", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := s.GetByPrefix(tt.prefix)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, keysOf(got))
		})
	}
}

func TestOrderAfterDeleteAndReset(t *testing.T) {
	s, _ := newTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Set(k, k)
		require.NoError(t, err)
	}

	_, err := s.Set("a", "a2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keysOf(s.GetByPrefix("")))

	require.NoError(t, s.Delete("a"))
	_, err = s.Set("a", "a3")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, keysOf(s.GetByPrefix("")))
}

func TestEveryMutationPersistsFullSnapshot(t *testing.T) {
	s, p := newTestStore(t)

	_, err := s.Set("users:1", map[string]any{"email": "a@x.com"})
	require.NoError(t, err)
	_, err = s.Set("users:2", map[string]any{"email": "b@x.com"})
	require.NoError(t, err)

	blob, err := p.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"users:1":{"email":"a@x.com"},"users:2":{"email":"b@x.com"}}`, string(blob))

	require.NoError(t, s.Delete("users:1"))
	blob, err = p.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"users:2":{"email":"b@x.com"}}`, string(blob))
}

func TestReloadPreservesMappingAndOrder(t *testing.T) {
	p := NewMemoryPersister()
	s, err := New(p)
	require.NoError(t, err)

	for _, k := range []string{"z", "a", "m"} {
		_, err := s.Set(k, k)
		require.NoError(t, err)
	}

	reloaded, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, keysOf(reloaded.GetByPrefix("")))
	assert.Equal(t, s.GetAll(), reloaded.GetAll())
}

func TestNewRejectsCorruptBlob(t *testing.T) {
	for _, blob := range []string{`[1,2]`, `{"a":`, `null`, `{"a":1} x`} {
		p := NewMemoryPersister()
		require.NoError(t, p.Save([]byte(blob)))

		_, err := New(p)
		assert.Error(t, err, "blob %s", blob)
	}
}

func TestNewWithEmptyBlob(t *testing.T) {
	p := NewMemoryPersister()
	require.NoError(t, p.Save([]byte("  ")))

	s, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestClear(t *testing.T) {
	s, p := newTestStore(t)
	_, err := s.Set("a", 1)
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.GetAll())

	blob, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(blob))
}

func TestExportImport(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Set("users:1", map[string]any{"name": "A"})
	require.NoError(t, err)

	snapshot, err := s.Export()
	require.NoError(t, err)
	assert.JSONEq(t, `{"users:1":{"name":"A"}}`, string(snapshot))

	other, _ := newTestStore(t)
	require.NoError(t, other.Import(snapshot))
	got, ok := other.Get("users:1")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"A"}`, string(got))
}

func TestImportReplacesEverything(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Set("old", 1)
	require.NoError(t, err)

	require.NoError(t, s.Import([]byte(`{"new": 2}`)))
	_, ok := s.Get("old")
	assert.False(t, ok)
	assert.Equal(t, []string{"new"}, keysOf(s.GetByPrefix("")))
}

func TestImportInvalidLeavesStoreUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Set("keep", 1)
	require.NoError(t, err)

	require.ErrorIs(t, s.Import([]byte(`not json`)), ErrInvalidSnapshot)
	_, ok := s.Get("keep")
	assert.True(t, ok)
}

func TestPersistFailureKeepsMemoryAhead(t *testing.T) {
	p := &failingPersister{}
	s, err := New(p)
	require.NoError(t, err)

	_, err = s.Set("a", 1)
	require.NoError(t, err)

	p.fail = true
	_, err = s.Set("b", 2)
	require.Error(t, err)

	// memory holds b, the persisted blob does not
	_, ok := s.Get("b")
	assert.True(t, ok)

	blob, err := p.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(blob))
}
