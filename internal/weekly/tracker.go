package weekly

import (
	"log/slog"
	"time"

	"github.com/sadopc/biome/internal/store"
)

// HistoryLimit is how many weekly scores are kept.
const HistoryLimit = 12

// Score is the rollup of one finished week.
type Score struct {
	WeekStart      time.Time `json:"weekStart"`
	Pomodoros      int       `json:"pomodoros"`
	TasksCompleted int       `json:"tasksCompleted"`
	TasksTotal     int       `json:"tasksTotal"`
	Progress       int       `json:"progress"`
}

// Counter is the weekly pomodoro tally.
type Counter interface {
	Value() int
	Reset() int
}

// TaskCounts reports completed and total tasks.
type TaskCounts interface {
	Counts() (done, total int)
}

// StartOfWeek returns local midnight of the most recent Saturday, which is
// t's own date when t falls on a Saturday.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(time.Saturday) + 7) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Tracker rolls the weekly counter into a score history when a new week
// begins.
type Tracker struct {
	kv      store.KV
	logger  *slog.Logger
	counter Counter
	tasks   TaskCounts
	history []Score
}

func New(kv store.KV, logger *slog.Logger, counter Counter, tasks TaskCounts) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		kv:      kv,
		logger:  logger.With("component", "weekly"),
		counter: counter,
		tasks:   tasks,
	}
	t.history = store.Load(kv, store.KeyWeeklyScores, []Score{}, t.logger)
	return t
}

func (t *Tracker) marker() (time.Time, bool) {
	raw := store.Load(t.kv, store.KeyWeekStart, "", t.logger)
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.logger.Warn("discarding malformed week marker", "value", raw, "error", err)
		return time.Time{}, false
	}
	return ts, true
}

func (t *Tracker) setMarker(week time.Time) {
	_ = store.Save(t.kv, store.KeyWeekStart, week.Format(time.RFC3339), t.logger)
}

// Check compares now against the stored week marker. When now belongs to a
// later week, the finished week is scored, the counter reset and the marker
// moved; the score is returned with true.
func (t *Tracker) Check(now time.Time) (Score, bool) {
	week := StartOfWeek(now)
	prev, ok := t.marker()
	if !ok {
		t.setMarker(week)
		return Score{}, false
	}
	if !week.After(prev) {
		return Score{}, false
	}

	done, total := t.tasks.Counts()
	score := Score{
		WeekStart:      prev,
		Pomodoros:      t.counter.Reset(),
		TasksCompleted: done,
		TasksTotal:     total,
	}
	if total > 0 {
		score.Progress = done * 100 / total
	}
	t.history = append(t.history, score)
	if len(t.history) > HistoryLimit {
		t.history = t.history[len(t.history)-HistoryLimit:]
	}
	_ = store.Save(t.kv, store.KeyWeeklyScores, t.history, t.logger)
	t.setMarker(week)
	t.logger.Info("week rolled over", "week_start", prev.Format(time.DateOnly), "pomodoros", score.Pomodoros)
	return score, true
}

// History returns the recorded scores, oldest first.
func (t *Tracker) History() []Score {
	return append([]Score{}, t.history...)
}

// Last returns the most recent score.
func (t *Tracker) Last() (Score, bool) {
	if len(t.history) == 0 {
		return Score{}, false
	}
	return t.history[len(t.history)-1], true
}

// Current returns the running tally for the week in progress.
func (t *Tracker) Current() int {
	return t.counter.Value()
}
