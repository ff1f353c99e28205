// Package app wires the stores together and owns the cross-store side
// effects: pomodoro completions credit the focused task, task changes raise
// progress milestones and the weekly score rolls over at startup.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/biome/internal/layout"
	"github.com/sadopc/biome/internal/notes"
	"github.com/sadopc/biome/internal/pomodoro"
	"github.com/sadopc/biome/internal/projects"
	"github.com/sadopc/biome/internal/store"
	"github.com/sadopc/biome/internal/tasks"
	"github.com/sadopc/biome/internal/weekly"
)

// Notice is a short message for the status line.
type Notice struct {
	Message string
	At      time.Time
}

type Options struct {
	Logger           *slog.Logger
	Clock            pomodoro.Clock
	SnapshotInterval time.Duration
	AutoStartDelay   time.Duration
	// IDs overrides the uuid generator for tasks and projects.
	IDs func() string
}

type App struct {
	Tasks    *tasks.Store
	Projects *projects.Store
	Engine   *pomodoro.Engine
	Counter  *pomodoro.Counter
	Weekly   *weekly.Tracker
	Layout   *layout.Store
	Notes    *notes.Store

	logger   *slog.Logger
	clock    pomodoro.Clock
	progress map[tasks.Day]int
	notices  []Notice
}

func New(kv store.KV, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = pomodoro.SystemClock{}
	}
	var taskOpts []tasks.Option
	var projectOpts []projects.Option
	if opts.IDs != nil {
		taskOpts = append(taskOpts, tasks.WithIDGenerator(opts.IDs))
		projectOpts = append(projectOpts, projects.WithIDGenerator(opts.IDs))
	}

	a := &App{
		logger:   opts.Logger,
		clock:    opts.Clock,
		progress: map[tasks.Day]int{},
	}
	a.Tasks = tasks.New(kv, opts.Logger, taskOpts...)
	a.Projects = projects.New(kv, opts.Logger, projectOpts...)
	a.Counter = pomodoro.NewCounter(kv, opts.Logger)
	a.Engine = pomodoro.New(kv, pomodoro.Options{
		Clock:            opts.Clock,
		Logger:           opts.Logger,
		Counter:          a.Counter,
		SnapshotInterval: opts.SnapshotInterval,
		AutoStartDelay:   opts.AutoStartDelay,
	})
	a.Weekly = weekly.New(kv, opts.Logger, a.Counter, a.Tasks)
	a.Layout = layout.New(kv, opts.Logger, layout.WithClock(opts.Clock.Now))
	a.Notes = notes.New(kv, opts.Logger, notes.WithClock(opts.Clock.Now))

	for _, d := range tasks.Days {
		a.progress[d] = a.Tasks.DayProgress(d)
	}
	a.Engine.Subscribe(a.onCompletion)
	a.Tasks.OnChange(a.checkMilestones)

	if score, rolled := a.Weekly.Check(opts.Clock.Now()); rolled {
		a.notify(fmt.Sprintf("Last week: %d pomodoros, %d%% of tasks done", score.Pomodoros, score.Progress))
	}
	return a
}

func (a *App) notify(msg string) {
	a.notices = append(a.notices, Notice{Message: msg, At: a.clock.Now()})
}

// Notices returns and clears the queued notices.
func (a *App) Notices() []Notice {
	out := a.notices
	a.notices = nil
	return out
}

func (a *App) onCompletion(c pomodoro.Completion) {
	if c.Finished != pomodoro.Work {
		a.notify("Break completed! Time to focus")
		return
	}
	if t, ok := a.Tasks.Current(); ok {
		a.Tasks.IncrementPomodoro(t.ID)
		a.logger.Debug("credited pomodoro", "task", t.ID, "pomodoros", t.Pomodoros()+1)
	}
	a.notify("Pomodoro completed! Time for a break")
}

var milestones = []struct {
	at  int
	msg func(tasks.Day) string
}{
	{100, func(d tasks.Day) string { return fmt.Sprintf("All tasks done for %s!", d.Title()) }},
	{75, func(tasks.Day) string { return "Almost done!" }},
	{50, func(tasks.Day) string { return "Halfway there!" }},
}

// checkMilestones raises one notice per day whose progress rose past a
// milestone since the last change. Falling progress only re-arms.
func (a *App) checkMilestones() {
	for _, d := range tasks.Days {
		now := a.Tasks.DayProgress(d)
		prev := a.progress[d]
		a.progress[d] = now
		if now <= prev {
			continue
		}
		for _, m := range milestones {
			if prev < m.at && now >= m.at {
				a.notify(m.msg(d))
				break
			}
		}
	}
}

// FocusTask makes id the pomodoro target. Only allowed during work.
func (a *App) FocusTask(id string) bool {
	if a.Engine.Phase() != pomodoro.Work {
		return false
	}
	return a.Tasks.SetCurrentPomodoroTask(id)
}

// UpdateSettings applies patch to the timer and queues a notice.
func (a *App) UpdateSettings(patch pomodoro.SettingsPatch) pomodoro.Settings {
	s := a.Engine.UpdateSettings(patch)
	a.notify("Settings updated")
	return s
}

// ProjectName resolves the task's project, "No project" when unset or gone.
func (a *App) ProjectName(t tasks.Task) string {
	return a.Projects.Resolve(t.ProjectID).Name
}

func (a *App) Now() time.Time { return a.clock.Now() }

// Today is the task day for the current clock.
func (a *App) Today() tasks.Day {
	return tasks.DayOf(a.clock.Now())
}
