package layout

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sadopc/biome/internal/store"
)

type WidgetType string

const (
	Tasks     WidgetType = "tasks"
	Pomodoro  WidgetType = "pomodoro"
	Projects  WidgetType = "projects"
	AzanTimes WidgetType = "azanTimes"
	Notes     WidgetType = "notes"
	Progress  WidgetType = "progress"
)

type Size string

const (
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
	Full   Size = "full"
)

func (s Size) Valid() bool {
	switch s {
	case Small, Medium, Large, Full:
		return true
	}
	return false
}

type Widget struct {
	ID      string     `json:"id"`
	Type    WidgetType `json:"type"`
	Title   string     `json:"title"`
	Size    Size       `json:"size"`
	Order   int        `json:"order"`
	Visible bool       `json:"visible"`
}

type kind struct {
	title string
	size  Size
}

// Types lists every widget type in catalogue order.
var Types = []WidgetType{Tasks, Pomodoro, Projects, AzanTimes, Notes, Progress}

var catalogue = map[WidgetType]kind{
	Tasks:     {"Task Manager", Full},
	Pomodoro:  {"Pomodoro Timer", Medium},
	Projects:  {"Projects", Medium},
	AzanTimes: {"Azan Times", Medium},
	Notes:     {"Quick Notes", Medium},
	Progress:  {"Progress", Small},
}

// Title returns the display title for a widget type.
func (t WidgetType) Title() string { return catalogue[t].title }

func (t WidgetType) Valid() bool {
	_, ok := catalogue[t]
	return ok
}

// Defaults is the layout of a fresh install.
func Defaults() []Widget {
	return []Widget{
		{ID: "tasks", Type: Tasks, Title: "Task Manager", Size: Full, Order: 0, Visible: true},
		{ID: "pomodoro", Type: Pomodoro, Title: "Pomodoro Timer", Size: Medium, Order: 1, Visible: true},
		{ID: "notes", Type: Notes, Title: "Quick Notes", Size: Medium, Order: 2, Visible: true},
		{ID: "progress", Type: Progress, Title: "Progress", Size: Small, Order: 3, Visible: true},
	}
}

// Store persists the dashboard widget arrangement.
type Store struct {
	kv      store.KV
	logger  *slog.Logger
	now     func() time.Time
	widgets []Widget
}

type Option func(*Store)

// WithClock sets the time source used to mint widget ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv store.KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger.With("component", "layout"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.widgets = store.Load(kv, store.KeyWidgets, Defaults(), s.logger)
	if len(s.widgets) == 0 {
		s.widgets = Defaults()
	}
	return s
}

func (s *Store) save() {
	_ = store.Save(s.kv, store.KeyWidgets, s.widgets, s.logger)
}

func (s *Store) index(id string) int {
	for i := range s.widgets {
		if s.widgets[i].ID == id {
			return i
		}
	}
	return -1
}

// Add shows a widget of type t. A hidden one is re-shown; otherwise a new
// widget is appended after the highest order.
func (s *Store) Add(t WidgetType) (Widget, bool) {
	k, ok := catalogue[t]
	if !ok {
		return Widget{}, false
	}
	for i, w := range s.widgets {
		if w.Type == t && !w.Visible {
			s.widgets[i].Visible = true
			s.save()
			return s.widgets[i], true
		}
	}
	highest := -1
	for _, w := range s.widgets {
		highest = max(highest, w.Order)
	}
	w := Widget{
		ID:      fmt.Sprintf("%s-%d", t, s.now().UnixMilli()),
		Type:    t,
		Title:   k.title,
		Size:    k.size,
		Order:   highest + 1,
		Visible: true,
	}
	s.widgets = append(s.widgets, w)
	s.save()
	return w, true
}

// Remove hides a widget. The task manager cannot be removed.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 || id == string(Tasks) || !s.widgets[i].Visible {
		return false
	}
	s.widgets[i].Visible = false
	s.save()
	return true
}

func (s *Store) SetSize(id string, size Size) bool {
	i := s.index(id)
	if i < 0 || !size.Valid() {
		return false
	}
	s.widgets[i].Size = size
	s.save()
	return true
}

// ToggleSize grows small and medium widgets to large and shrinks the rest
// to medium.
func (s *Store) ToggleSize(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	switch s.widgets[i].Size {
	case Small, Medium:
		s.widgets[i].Size = Large
	default:
		s.widgets[i].Size = Medium
	}
	s.save()
	return true
}

func (s *Store) MoveUp(id string) bool   { return s.move(id, -1) }
func (s *Store) MoveDown(id string) bool { return s.move(id, 1) }

// move swaps order with the visible widget whose order is exactly one step
// away. Gaps left by hidden widgets block the move.
func (s *Store) move(id string, step int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	target := s.widgets[i].Order + step
	for j, w := range s.widgets {
		if j != i && w.Visible && w.Order == target {
			s.widgets[j].Order -= step
			s.widgets[i].Order = target
			s.save()
			return true
		}
	}
	return false
}

// Visible returns the shown widgets sorted by order.
func (s *Store) Visible() []Widget {
	var out []Widget
	for _, w := range s.widgets {
		if w.Visible {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out
}

// Available returns the types with no visible widget.
func (s *Store) Available() []WidgetType {
	shown := map[WidgetType]bool{}
	for _, w := range s.widgets {
		if w.Visible {
			shown[w.Type] = true
		}
	}
	var out []WidgetType
	for _, t := range Types {
		if !shown[t] {
			out = append(out, t)
		}
	}
	return out
}

// All returns every widget, hidden ones included.
func (s *Store) All() []Widget {
	return append([]Widget{}, s.widgets...)
}
