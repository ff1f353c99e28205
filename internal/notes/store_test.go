package notes

import (
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/biome/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	s   *Store
	kv  *store.Store
	now time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	h := &harness{kv: kv, now: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)}
	n := 0
	h.s = New(kv, nil,
		WithIDGenerator(func() string { n++; return fmt.Sprintf("n-%d", n) }),
		WithClock(func() time.Time { return h.now }),
	)
	return h
}

func TestAddNote(t *testing.T) {
	h := newHarness(t)
	n, ok := h.s.Add(" Groceries ", "milk\neggs")
	require.True(t, ok)
	assert.Equal(t, "n-1", n.ID)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "milk\neggs", n.Content)
	assert.Equal(t, h.now, n.CreatedAt)

	_, ok = h.s.Add("", "content only")
	assert.True(t, ok)
	_, ok = h.s.Add("  ", "\n")
	assert.False(t, ok)
	assert.Len(t, h.s.List(), 2)
}

func TestUpdateNote(t *testing.T) {
	h := newHarness(t)
	n, _ := h.s.Add("Draft", "")
	h.now = h.now.Add(time.Minute)

	require.True(t, h.s.Update(n.ID, "Final", "body"))
	got, ok := h.s.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.Equal(t, h.now, got.UpdatedAt)

	assert.False(t, h.s.Update(n.ID, "", ""))
	assert.False(t, h.s.Update("missing", "x", "y"))
}

func TestListMostRecentFirst(t *testing.T) {
	h := newHarness(t)
	a, _ := h.s.Add("a", "")
	h.now = h.now.Add(time.Second)
	h.s.Add("b", "")
	h.now = h.now.Add(time.Second)
	h.s.Update(a.ID, "a2", "")

	list := h.s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].Title)
	assert.Equal(t, "b", list[1].Title)
}

func TestDeleteNote(t *testing.T) {
	h := newHarness(t)
	n, _ := h.s.Add("gone", "")
	require.True(t, h.s.Delete(n.ID))
	assert.False(t, h.s.Delete(n.ID))
	assert.Empty(t, h.s.List())
}

func TestNotesPersist(t *testing.T) {
	h := newHarness(t)
	h.s.Add("keep", "me")

	reloaded := New(h.kv, nil)
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, "keep", list[0].Title)
	assert.True(t, list[0].CreatedAt.Equal(h.now))

	require.NoError(t, h.kv.Set(store.KeyNotes, "}"))
	assert.Empty(t, New(h.kv, nil).List())
}
