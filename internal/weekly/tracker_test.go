package weekly

import (
	"testing"
	"time"

	"github.com/sadopc/biome/internal/pomodoro"
	"github.com/sadopc/biome/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounts struct{ done, total int }

func (f fixedCounts) Counts() (int, int) { return f.done, f.total }

func newKV(t *testing.T) *store.Store {
	t.Helper()
	kv, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 30, 0, 0, time.Local)
}

func TestStartOfWeek(t *testing.T) {
	// 2026-10-17 is a Saturday.
	sat := time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local)
	cases := map[string]time.Time{
		"saturday itself": date(2026, 10, 17, 15),
		"sunday":          date(2026, 10, 18, 9),
		"friday":          date(2026, 10, 23, 23),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, sat, StartOfWeek(in))
		})
	}
	assert.Equal(t, sat.AddDate(0, 0, -7), StartOfWeek(date(2026, 10, 16, 8)))
}

func TestFirstCheckSeedsMarker(t *testing.T) {
	kv := newKV(t)
	counter := pomodoro.NewCounter(kv, nil)
	counter.Increment()
	tr := New(kv, nil, counter, fixedCounts{})

	_, rolled := tr.Check(date(2026, 10, 19, 10))
	assert.False(t, rolled)
	assert.Equal(t, 1, counter.Value())

	raw, ok, err := kv.Get(store.KeyWeekStart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "2026-10-17")
}

func TestSameWeekDoesNotRoll(t *testing.T) {
	kv := newKV(t)
	tr := New(kv, nil, pomodoro.NewCounter(kv, nil), fixedCounts{})
	tr.Check(date(2026, 10, 17, 10))
	_, rolled := tr.Check(date(2026, 10, 23, 22))
	assert.False(t, rolled)
	assert.Empty(t, tr.History())
}

func TestNewWeekRollsUp(t *testing.T) {
	kv := newKV(t)
	counter := pomodoro.NewCounter(kv, nil)
	tr := New(kv, nil, counter, fixedCounts{done: 3, total: 4})
	tr.Check(date(2026, 10, 18, 10))
	for i := 0; i < 5; i++ {
		counter.Increment()
	}

	score, rolled := tr.Check(date(2026, 10, 25, 8))
	require.True(t, rolled)
	assert.True(t, score.WeekStart.Equal(time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 5, score.Pomodoros)
	assert.Equal(t, 3, score.TasksCompleted)
	assert.Equal(t, 4, score.TasksTotal)
	assert.Equal(t, 75, score.Progress)
	assert.Equal(t, 0, counter.Value())
	assert.Equal(t, 0, tr.Current())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last.Pomodoros)

	// Reload sees the history and the moved marker.
	reloaded := New(kv, nil, pomodoro.NewCounter(kv, nil), fixedCounts{})
	require.Len(t, reloaded.History(), 1)
	_, rolled = reloaded.Check(date(2026, 10, 26, 8))
	assert.False(t, rolled)
}

func TestHistoryIsBounded(t *testing.T) {
	kv := newKV(t)
	tr := New(kv, nil, pomodoro.NewCounter(kv, nil), fixedCounts{})
	now := date(2026, 1, 3, 12)
	tr.Check(now)
	for i := 0; i < HistoryLimit+3; i++ {
		now = now.AddDate(0, 0, 7)
		_, rolled := tr.Check(now)
		require.True(t, rolled)
	}
	h := tr.History()
	assert.Len(t, h, HistoryLimit)
	assert.True(t, h[0].WeekStart.Before(h[len(h)-1].WeekStart))
}

func TestMalformedMarkerReseeds(t *testing.T) {
	kv := newKV(t)
	counter := pomodoro.NewCounter(kv, nil)
	counter.Increment()
	require.NoError(t, kv.Set(store.KeyWeekStart, `"last tuesday"`))

	tr := New(kv, nil, counter, fixedCounts{})
	_, rolled := tr.Check(date(2026, 10, 20, 9))
	assert.False(t, rolled)
	assert.Equal(t, 1, counter.Value())

	require.NoError(t, kv.Set(store.KeyWeekStart, "{broken"))
	_, rolled = tr.Check(date(2026, 10, 20, 9))
	assert.False(t, rolled)
}

func TestNoTasksScoresZeroProgress(t *testing.T) {
	kv := newKV(t)
	tr := New(kv, nil, pomodoro.NewCounter(kv, nil), fixedCounts{})
	tr.Check(date(2026, 10, 17, 9))
	score, rolled := tr.Check(date(2026, 10, 31, 9))
	require.True(t, rolled)
	assert.Equal(t, 0, score.Progress)
	_, ok := New(kv, nil, pomodoro.NewCounter(kv, nil), fixedCounts{}).Last()
	assert.True(t, ok)
}
