package tasks

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sadopc/biome/internal/store"
)

// Store owns the task list. Every mutation persists before returning.
// Mutators report whether anything changed; invalid input is a no-op.
type Store struct {
	kv     store.KV
	logger *slog.Logger
	newID  func() string

	tasks     []Task
	selected  []string
	observers []func()
}

type Option func(*Store)

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New loads the task list from kv. A missing or malformed list starts empty.
func New(kv store.KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     kv,
		logger: logger.With("component", "tasks"),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.tasks = store.Load(kv, store.KeyTasks, []Task{}, s.logger)
	s.normalize()
	return s
}

// normalize drops records that would break invariants and repairs the
// at-most-one pomodoro flag if storage was edited by hand.
func (s *Store) normalize() {
	kept := s.tasks[:0]
	seenCurrent := false
	for _, t := range s.tasks {
		if t.ID == "" || strings.TrimSpace(t.Title) == "" || !t.Day.Valid() {
			s.logger.Warn("dropping invalid stored task", "id", t.ID)
			continue
		}
		if _, ok := ParsePriority(string(t.Priority)); !ok {
			t.Priority = PriorityLow
		}
		if t.Subtasks == nil {
			t.Subtasks = []SubTask{}
		}
		if t.CurrentPomodoroTask {
			if seenCurrent {
				t.CurrentPomodoroTask = false
			}
			seenCurrent = true
		}
		kept = append(kept, t)
	}
	s.tasks = kept
}

// OnChange registers fn to run after every successful mutation.
func (s *Store) OnChange(fn func()) {
	s.observers = append(s.observers, fn)
}

func (s *Store) commit() {
	_ = store.Save(s.kv, store.KeyTasks, s.tasks, s.logger)
	for _, fn := range s.observers {
		fn()
	}
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add creates a task. An empty title or an unknown day is rejected.
func (s *Store) Add(d Draft) (Task, bool) {
	title := strings.TrimSpace(d.Title)
	if title == "" || !d.Day.Valid() {
		return Task{}, false
	}
	priority, ok := ParsePriority(string(d.Priority))
	if !ok {
		priority = PriorityLow
	}
	t := Task{
		ID:        s.newID(),
		Title:     title,
		Day:       d.Day,
		Priority:  priority,
		ProjectID: d.ProjectID,
		Subtasks:  []SubTask{},
	}
	if d.PomodoroEstimate != nil && *d.PomodoroEstimate > 0 {
		t.PomodoroEstimate = intPtr(*d.PomodoroEstimate)
	}
	s.tasks = append(s.tasks, t)
	s.commit()
	return t.clone(), true
}

// Edit merges the non-nil fields of p. A blank title, unknown day or
// priority in the patch is ignored; a non-positive estimate clears it.
func (s *Store) Edit(id string, p Patch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	t := &s.tasks[i]
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			t.Title = title
		}
	}
	if p.Day != nil && p.Day.Valid() {
		t.Day = *p.Day
	}
	if p.Priority != nil {
		if pr, ok := ParsePriority(string(*p.Priority)); ok {
			t.Priority = pr
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.PomodoroEstimate != nil {
		if *p.PomodoroEstimate > 0 {
			t.PomodoroEstimate = intPtr(*p.PomodoroEstimate)
		} else {
			t.PomodoroEstimate = nil
		}
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	s.commit()
	return true
}

func (s *Store) Toggle(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.commit()
	return true
}

// Delete removes the task, its subtasks and any selection of it.
func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.unselect(id)
	s.commit()
	return true
}

func (s *Store) AddSubtask(taskID, title string) (SubTask, bool) {
	i := s.index(taskID)
	title = strings.TrimSpace(title)
	if i < 0 || title == "" {
		return SubTask{}, false
	}
	st := SubTask{ID: s.newID(), Title: title}
	s.tasks[i].Subtasks = append(s.tasks[i].Subtasks, st)
	s.commit()
	return st, true
}

func (s *Store) subtask(taskID, subtaskID string) (int, int) {
	i := s.index(taskID)
	if i < 0 {
		return -1, -1
	}
	for j, st := range s.tasks[i].Subtasks {
		if st.ID == subtaskID {
			return i, j
		}
	}
	return i, -1
}

func (s *Store) ToggleSubtask(taskID, subtaskID string) bool {
	i, j := s.subtask(taskID, subtaskID)
	if j < 0 {
		return false
	}
	st := &s.tasks[i].Subtasks[j]
	st.Completed = !st.Completed
	s.commit()
	return true
}

func (s *Store) DeleteSubtask(taskID, subtaskID string) bool {
	i, j := s.subtask(taskID, subtaskID)
	if j < 0 {
		return false
	}
	subs := s.tasks[i].Subtasks
	s.tasks[i].Subtasks = append(subs[:j], subs[j+1:]...)
	s.commit()
	return true
}

func (s *Store) EditSubtask(taskID, subtaskID, title string) bool {
	i, j := s.subtask(taskID, subtaskID)
	title = strings.TrimSpace(title)
	if j < 0 || title == "" {
		return false
	}
	s.tasks[i].Subtasks[j].Title = title
	s.commit()
	return true
}

// SetCurrentPomodoroTask flags id as the pomodoro target and clears the flag
// on every other task, so at most one task carries it.
func (s *Store) SetCurrentPomodoroTask(id string) bool {
	if s.index(id) < 0 {
		return false
	}
	for i := range s.tasks {
		s.tasks[i].CurrentPomodoroTask = s.tasks[i].ID == id
	}
	s.commit()
	return true
}

func (s *Store) ClearCurrentPomodoroTask() bool {
	changed := false
	for i := range s.tasks {
		if s.tasks[i].CurrentPomodoroTask {
			s.tasks[i].CurrentPomodoroTask = false
			changed = true
		}
	}
	if changed {
		s.commit()
	}
	return changed
}

// Current returns the task flagged as the pomodoro target.
func (s *Store) Current() (Task, bool) {
	for _, t := range s.tasks {
		if t.CurrentPomodoroTask {
			return t.clone(), true
		}
	}
	return Task{}, false
}

// IncrementPomodoro adds one completed pomodoro. The estimate is not a cap.
func (s *Store) IncrementPomodoro(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks[i].PomodorosCompleted = intPtr(s.tasks[i].Pomodoros() + 1)
	s.commit()
	return true
}

func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].clone(), true
}

// All returns every task in list order.
func (s *Store) All() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.clone())
	}
	return out
}

// ByDay returns the day's tasks in list order.
func (s *Store) ByDay(day Day) []Task {
	var out []Task
	for _, t := range s.tasks {
		if t.Day == day {
			out = append(out, t.clone())
		}
	}
	return out
}

// Counts returns completed and total tasks across all days.
func (s *Store) Counts() (done, total int) {
	for _, t := range s.tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(s.tasks)
}

// DayProgress is the rounded completion percentage for day, 0 when empty.
func (s *Store) DayProgress(day Day) int {
	done, total := 0, 0
	for _, t := range s.tasks {
		if t.Day != day {
			continue
		}
		total++
		if t.Completed {
			done++
		}
	}
	return percent(done, total)
}

// OverallProgress is the rounded completion percentage of all tasks.
func (s *Store) OverallProgress() int {
	return percent(s.Counts())
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// Sort orders tasks by priority (high first), then incomplete before
// completed. Equal tasks keep their relative order.
func (s *Store) Sort() {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		a, b := s.tasks[i], s.tasks[j]
		if ra, rb := a.Priority.rank(), b.Priority.rank(); ra != rb {
			return ra < rb
		}
		return !a.Completed && b.Completed
	})
	s.commit()
}

// Copy duplicates each task onto day with a fresh id, no subtasks, no
// completed pomodoros and completed=false. Unknown ids are skipped.
func (s *Store) Copy(ids []string, day Day) []Task {
	if !day.Valid() {
		return nil
	}
	var created []Task
	for _, id := range ids {
		i := s.index(id)
		if i < 0 {
			continue
		}
		src := s.tasks[i]
		t := Task{
			ID:        s.newID(),
			Title:     src.Title,
			Day:       day,
			Priority:  src.Priority,
			ProjectID: src.ProjectID,
			Subtasks:  []SubTask{},
		}
		if src.PomodoroEstimate != nil {
			t.PomodoroEstimate = intPtr(*src.PomodoroEstimate)
		}
		s.tasks = append(s.tasks, t)
		created = append(created, t.clone())
	}
	if len(created) > 0 {
		s.commit()
	}
	return created
}

// UncheckAll marks every task incomplete. Subtasks are left alone.
func (s *Store) UncheckAll() {
	for i := range s.tasks {
		s.tasks[i].Completed = false
	}
	s.commit()
}

// ToggleSelect adds id to or removes it from the bulk-action selection.
// The selection is not persisted.
func (s *Store) ToggleSelect(id string, selected bool) {
	if !selected {
		s.unselect(id)
		return
	}
	if s.index(id) < 0 || s.IsSelected(id) {
		return
	}
	s.selected = append(s.selected, id)
}

func (s *Store) unselect(id string) {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}

func (s *Store) IsSelected(id string) bool {
	for _, sel := range s.selected {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *Store) Selected() []string {
	return append([]string(nil), s.selected...)
}

func (s *Store) ClearSelection() {
	s.selected = nil
}

// RepeatSelected copies the selected tasks onto day and clears the
// selection. An empty selection is a no-op.
func (s *Store) RepeatSelected(day Day) []Task {
	if len(s.selected) == 0 {
		return nil
	}
	created := s.Copy(s.selected, day)
	if len(created) > 0 {
		s.ClearSelection()
	}
	return created
}
