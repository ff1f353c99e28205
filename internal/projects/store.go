package projects

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sadopc/biome/internal/store"
)

// Palette is the fixed set of project colours offered by the UI.
var Palette = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
	"#6366f1",
	"#14b8a6",
}

type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NoProject stands in for a missing or dangling project reference.
var NoProject = Project{Name: "No project", Color: "#6b7280"}

// Patch is a partial edit. Nil fields are kept.
type Patch struct {
	Name  *string
	Color *string
}

// Store owns the project list. Deleting a project never touches tasks;
// readers resolve dangling references through Resolve.
type Store struct {
	kv       store.KV
	logger   *slog.Logger
	newID    func() string
	projects []Project
}

type Option func(*Store)

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(kv store.KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     kv,
		logger: logger.With("component", "projects"),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	loaded := store.Load(kv, store.KeyProjects, []Project{}, s.logger)
	for _, p := range loaded {
		if p.ID == "" || strings.TrimSpace(p.Name) == "" {
			s.logger.Warn("dropping invalid stored project", "id", p.ID)
			continue
		}
		s.projects = append(s.projects, p)
	}
	return s
}

func (s *Store) save() {
	if s.projects == nil {
		s.projects = []Project{}
	}
	_ = store.Save(s.kv, store.KeyProjects, s.projects, s.logger)
}

func (s *Store) index(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// Add creates a project. An empty colour picks the first palette entry.
func (s *Store) Add(name, color string) (Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, false
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = Palette[0]
	}
	p := Project{ID: s.newID(), Name: name, Color: color}
	s.projects = append(s.projects, p)
	s.save()
	return p, true
}

func (s *Store) Edit(id string, patch Patch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	p := s.projects[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return false
		}
		p.Name = name
	}
	if patch.Color != nil && strings.TrimSpace(*patch.Color) != "" {
		p.Color = strings.TrimSpace(*patch.Color)
	}
	s.projects[i] = p
	s.save()
	return true
}

func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	s.save()
	return true
}

func (s *Store) Get(id string) (Project, bool) {
	if i := s.index(id); i >= 0 {
		return s.projects[i], true
	}
	return Project{}, false
}

// List returns a copy of the projects in creation order.
func (s *Store) List() []Project {
	return append([]Project{}, s.projects...)
}

// Resolve returns the project for id, or NoProject when id is empty or no
// longer exists.
func (s *Store) Resolve(id string) Project {
	if p, ok := s.Get(id); ok && id != "" {
		return p
	}
	return NoProject
}
