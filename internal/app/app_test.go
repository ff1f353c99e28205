package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/biome/internal/pomodoro"
	"github.com/sadopc/biome/internal/store"
	"github.com/sadopc/biome/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newApp(t *testing.T) (*App, *fakeClock, *store.Store) {
	t.Helper()
	kv, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)} // Monday
	return open(kv, clock), clock, kv
}

func open(kv store.KV, clock *fakeClock) *App {
	n := 0
	return New(kv, Options{Clock: clock, IDs: func() string { n++; return fmt.Sprintf("id-%d", n) }})
}

func messages(ns []Notice) []string {
	var out []string
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

func finishPhase(a *App, clock *fakeClock) {
	a.Engine.Start()
	clock.Advance(time.Duration(a.Engine.TimeLeft()) * time.Second)
	a.Engine.Tick()
}

func TestWorkCompletionCreditsFocusedTask(t *testing.T) {
	a, clock, _ := newApp(t)
	task, ok := a.Tasks.Add(tasks.Draft{Title: "Write report", Day: tasks.Monday})
	require.True(t, ok)
	require.True(t, a.FocusTask(task.ID))

	finishPhase(a, clock)

	got, _ := a.Tasks.Get(task.ID)
	assert.Equal(t, 1, got.Pomodoros())
	assert.Equal(t, 1, a.Counter.Value())
	assert.Equal(t, []string{"Pomodoro completed! Time for a break"}, messages(a.Notices()))
	assert.Empty(t, a.Notices(), "drained")

	finishPhase(a, clock) // break
	got, _ = a.Tasks.Get(task.ID)
	assert.Equal(t, 1, got.Pomodoros())
	assert.Equal(t, []string{"Break completed! Time to focus"}, messages(a.Notices()))
}

func TestWorkCompletionWithoutFocus(t *testing.T) {
	a, clock, _ := newApp(t)
	task, _ := a.Tasks.Add(tasks.Draft{Title: "Idle", Day: tasks.Monday})
	finishPhase(a, clock)

	got, _ := a.Tasks.Get(task.ID)
	assert.Equal(t, 0, got.Pomodoros())
	assert.Equal(t, 1, a.Engine.Completed())
}

func TestFocusOnlyDuringWork(t *testing.T) {
	a, _, _ := newApp(t)
	task, _ := a.Tasks.Add(tasks.Draft{Title: "Focus", Day: tasks.Monday})

	a.Engine.ChangePhase(pomodoro.ShortBreak)
	assert.False(t, a.FocusTask(task.ID))
	_, ok := a.Tasks.Current()
	assert.False(t, ok)

	a.Engine.ChangePhase(pomodoro.Work)
	assert.True(t, a.FocusTask(task.ID))
	assert.False(t, a.FocusTask("missing"))
	cur, ok := a.Tasks.Current()
	require.True(t, ok)
	assert.Equal(t, task.ID, cur.ID)
}

func TestProgressMilestones(t *testing.T) {
	a, _, _ := newApp(t)
	var ids []string
	for i := 0; i < 4; i++ {
		task, _ := a.Tasks.Add(tasks.Draft{Title: fmt.Sprintf("t%d", i), Day: tasks.Monday})
		ids = append(ids, task.ID)
	}
	a.Tasks.Add(tasks.Draft{Title: "other day", Day: tasks.Tuesday})
	a.Notices()

	a.Tasks.Toggle(ids[0])
	assert.Empty(t, a.Notices())
	a.Tasks.Toggle(ids[1])
	assert.Equal(t, []string{"Halfway there!"}, messages(a.Notices()))
	a.Tasks.Toggle(ids[2])
	assert.Equal(t, []string{"Almost done!"}, messages(a.Notices()))
	a.Tasks.Toggle(ids[3])
	assert.Equal(t, []string{"All tasks done for Monday!"}, messages(a.Notices()))

	// Dropping below and climbing back re-arms the milestone.
	a.Tasks.Toggle(ids[3])
	assert.Empty(t, a.Notices())
	a.Tasks.Toggle(ids[3])
	assert.Equal(t, []string{"All tasks done for Monday!"}, messages(a.Notices()))
}

func TestMilestoneJumpReportsHighestOnly(t *testing.T) {
	a, _, _ := newApp(t)
	task, _ := a.Tasks.Add(tasks.Draft{Title: "solo", Day: tasks.Friday})
	a.Tasks.Toggle(task.ID)
	assert.Equal(t, []string{"All tasks done for Friday!"}, messages(a.Notices()))
}

func TestAddingTaskLowersProgressWithoutNotice(t *testing.T) {
	a, _, _ := newApp(t)
	task, _ := a.Tasks.Add(tasks.Draft{Title: "one", Day: tasks.Sunday})
	a.Tasks.Toggle(task.ID)
	a.Notices()

	a.Tasks.Add(tasks.Draft{Title: "two", Day: tasks.Sunday})
	assert.Equal(t, 50, a.Tasks.DayProgress(tasks.Sunday))
	assert.Empty(t, a.Notices(), "progress fell, nothing crossed upward")
}

func TestExistingProgressDoesNotFireOnStartup(t *testing.T) {
	a, clock, kv := newApp(t)
	task, _ := a.Tasks.Add(tasks.Draft{Title: "done", Day: tasks.Monday})
	a.Tasks.Toggle(task.ID)

	reopened := open(kv, clock)
	assert.Empty(t, reopened.Notices())
	reopened.Tasks.Add(tasks.Draft{Title: "new", Day: tasks.Tuesday})
	assert.Empty(t, reopened.Notices())
}

func TestUpdateSettingsNotice(t *testing.T) {
	a, _, _ := newApp(t)
	work := 30
	s := a.UpdateSettings(pomodoro.SettingsPatch{WorkDuration: &work})
	assert.Equal(t, 30, s.WorkDuration)
	assert.Equal(t, 1800, a.Engine.TimeLeft())
	assert.Equal(t, []string{"Settings updated"}, messages(a.Notices()))
}

func TestProjectName(t *testing.T) {
	a, _, _ := newApp(t)
	p, _ := a.Projects.Add("Thesis", "")
	task, _ := a.Tasks.Add(tasks.Draft{Title: "Chapter 1", Day: tasks.Monday, ProjectID: p.ID})
	assert.Equal(t, "Thesis", a.ProjectName(task))

	a.Projects.Delete(p.ID)
	got, ok := a.Tasks.Get(task.ID)
	require.True(t, ok, "deleting a project keeps its tasks")
	assert.Equal(t, p.ID, got.ProjectID)
	assert.Equal(t, "No project", a.ProjectName(got))
	assert.Equal(t, "No project", a.ProjectName(tasks.Task{}))
}

func TestWeeklyRolloverOnStartup(t *testing.T) {
	a, clock, kv := newApp(t)
	finishPhase(a, clock)
	finishPhase(a, clock)
	finishPhase(a, clock)
	require.Equal(t, 2, a.Counter.Value())

	clock.Advance(7 * 24 * time.Hour)
	next := open(kv, clock)
	assert.Equal(t, []string{"Last week: 2 pomodoros, 0% of tasks done"}, messages(next.Notices()))
	assert.Equal(t, 0, next.Counter.Value())
	last, ok := next.Weekly.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Pomodoros)
}

func TestToday(t *testing.T) {
	a, clock, _ := newApp(t)
	assert.Equal(t, tasks.Monday, a.Today())
	clock.Advance(5 * 24 * time.Hour)
	assert.Equal(t, tasks.Saturday, a.Today())
}
