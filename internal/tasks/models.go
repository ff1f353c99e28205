package tasks

import (
	"strings"
	"time"
)

// Day is a weekday column. The week starts on Saturday.
type Day string

const (
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
)

// Days lists every day in week order.
var Days = []Day{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayToDay = map[time.Weekday]Day{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// DayOf returns the column for the calendar date of t.
func DayOf(t time.Time) Day {
	return weekdayToDay[t.Weekday()]
}

// ParseDay accepts a day name in any case.
func ParseDay(s string) (Day, bool) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

func (d Day) Valid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// Title returns the day name with a leading capital.
func (d Day) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority maps an empty string to low, the default of the input form.
func ParsePriority(s string) (Priority, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityLow, true
	}
	p := Priority(s)
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// rank orders high before medium before low.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Day                 Day       `json:"day"`
	Priority            Priority  `json:"priority"`
	Completed           bool      `json:"completed"`
	PomodoroEstimate    *int      `json:"pomodoroEstimate,omitempty"`
	PomodorosCompleted  *int      `json:"pomodorosCompleted,omitempty"`
	ProjectID           string    `json:"projectId,omitempty"`
	CurrentPomodoroTask bool      `json:"currentPomodoroTask,omitempty"`
	Subtasks            []SubTask `json:"subtasks"`
}

// Pomodoros returns the completed pomodoro count, zero when unset.
func (t Task) Pomodoros() int {
	if t.PomodorosCompleted == nil {
		return 0
	}
	return *t.PomodorosCompleted
}

// Estimate returns the planned pomodoro count, zero when unset.
func (t Task) Estimate() int {
	if t.PomodoroEstimate == nil {
		return 0
	}
	return *t.PomodoroEstimate
}

// SubtaskCounts returns completed and total subtasks.
func (t Task) SubtaskCounts() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

func (t Task) clone() Task {
	c := t
	if t.PomodoroEstimate != nil {
		c.PomodoroEstimate = intPtr(*t.PomodoroEstimate)
	}
	if t.PomodorosCompleted != nil {
		c.PomodorosCompleted = intPtr(*t.PomodorosCompleted)
	}
	c.Subtasks = append([]SubTask(nil), t.Subtasks...)
	if c.Subtasks == nil {
		c.Subtasks = []SubTask{}
	}
	return c
}

// Draft carries the fields accepted when adding a task.
type Draft struct {
	Title            string
	Day              Day
	Priority         Priority
	PomodoroEstimate *int
	ProjectID        string
}

// Patch lists the fields to merge into an existing task. Nil fields are left
// unchanged.
type Patch struct {
	Title            *string
	Day              *Day
	Priority         *Priority
	Completed        *bool
	PomodoroEstimate *int
	ProjectID        *string
}

func intPtr(n int) *int { return &n }
