package notes

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/biome/internal/store"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store keeps quick notes.
type Store struct {
	kv     store.KV
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
	notes  []Note
}

type Option func(*Store)

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv store.KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     kv,
		logger: logger.With("component", "notes"),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.notes = store.Load(kv, store.KeyNotes, []Note{}, s.logger)
	return s
}

func (s *Store) save() {
	if s.notes == nil {
		s.notes = []Note{}
	}
	_ = store.Save(s.kv, store.KeyNotes, s.notes, s.logger)
}

func blank(title, content string) bool {
	return strings.TrimSpace(title) == "" && strings.TrimSpace(content) == ""
}

// Add stores a note. A note needs a title or some content.
func (s *Store) Add(title, content string) (Note, bool) {
	if blank(title, content) {
		return Note{}, false
	}
	now := s.now()
	n := Note{
		ID:        s.newID(),
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes = append(s.notes, n)
	s.save()
	return n, true
}

func (s *Store) Update(id, title, content string) bool {
	if blank(title, content) {
		return false
	}
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes[i].Title = strings.TrimSpace(title)
			s.notes[i].Content = content
			s.notes[i].UpdatedAt = s.now()
			s.save()
			return true
		}
	}
	return false
}

func (s *Store) Delete(id string) bool {
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			s.save()
			return true
		}
	}
	return false
}

func (s *Store) Get(id string) (Note, bool) {
	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// List returns notes, most recently updated first.
func (s *Store) List() []Note {
	out := append([]Note{}, s.notes...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
