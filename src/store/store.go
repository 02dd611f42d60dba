// Package store persists tasks, notes and settings as JSON files in one
// directory. Every write replaces the file atomically.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("store: not found")

const (
	MaxTasks = 500
	MaxNotes = 200
	// CompletedRetention is how long completed tasks are kept.
	CompletedRetention = 30 * 24 * time.Hour

	tasksFile    = "tasks.json"
	notesFile    = "notes.json"
	settingsFile = "settings.json"
)

type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// Open prepares dir, creating empty files for anything missing.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir, now: time.Now}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	for _, name := range []string{tasksFile, notesFile} {
		if _, err := os.Stat(s.path(name)); os.IsNotExist(err) {
			if err := s.write(name, []struct{}{}); err != nil {
				return nil, err
			}
		}
	}
	if _, err := os.Stat(s.path(settingsFile)); os.IsNotExist(err) {
		now := s.now().UTC().Format(time.RFC3339)
		if err := s.write(settingsFile, Settings{"createdAt": now, "lastUpdated": now}); err != nil {
			return nil, err
		}
	}
	if _, err := s.Cleanup(context.Background()); err != nil {
		return nil, fmt.Errorf("apply retention: %w", err)
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// Tasks

// GetTasks returns all tasks, newest first.
func (s *Store) GetTasks(ctx context.Context) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []Task
	return tasks, s.read(tasksFile, &tasks)
}

func (s *Store) GetTask(ctx context.Context, id string) (Task, error) {
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, ErrNotFound
}

// AddTask prepends t, assigning ID and timestamps when unset, drops expired
// completed tasks and prunes to MaxTasks.
func (s *Store) AddTask(ctx context.Context, t Task) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []Task
	if err := s.read(tasksFile, &tasks); err != nil {
		return Task{}, err
	}

	now := s.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	tasks = s.dropExpired(append([]Task{t}, tasks...))
	if len(tasks) > MaxTasks {
		tasks = tasks[:MaxTasks]
	}
	return t, s.write(tasksFile, tasks)
}

func (s *Store) UpdateTask(ctx context.Context, id string, p TaskPatch) (Task, error) {
	return s.mutateTask(id, func(t *Task) {
		if p.Text != nil {
			t.Text = *p.Text
		}
		if p.Status != nil {
			t.Status = *p.Status
			if t.Status == StatusCompleted && t.CompletedAt == nil {
				now := s.now()
				t.CompletedAt = &now
			}
			if t.Status == StatusPending {
				t.CompletedAt = nil
			}
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.DueDate != nil {
			t.DueDate = p.DueDate
		}
		if p.Tags != nil {
			t.Tags = p.Tags
		}
		if p.Reminder != nil {
			t.Reminder = p.Reminder
		}
	})
}

func (s *Store) CompleteTask(ctx context.Context, id string) (Task, error) {
	done := StatusCompleted
	return s.UpdateTask(ctx, id, TaskPatch{Status: &done})
}

func (s *Store) mutateTask(id string, f func(*Task)) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []Task
	if err := s.read(tasksFile, &tasks); err != nil {
		return Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		f(&tasks[i])
		tasks[i].UpdatedAt = s.now()
		t := tasks[i]
		return t, s.write(tasksFile, s.dropExpired(tasks))
	}
	return Task{}, ErrNotFound
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []Task
	if err := s.read(tasksFile, &tasks); err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return ErrNotFound
	}
	return s.write(tasksFile, kept)
}

// Notes

func (s *Store) GetNotes(ctx context.Context) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var notes []Note
	return notes, s.read(notesFile, &notes)
}

func (s *Store) AddNote(ctx context.Context, n Note) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []Note
	if err := s.read(notesFile, &notes); err != nil {
		return Note{}, err
	}
	now := s.now()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if n.Tags == nil {
		n.Tags = []string{}
	}

	notes = append([]Note{n}, notes...)
	if len(notes) > MaxNotes {
		notes = notes[:MaxNotes]
	}
	return n, s.write(notesFile, notes)
}

func (s *Store) UpdateNote(ctx context.Context, id string, p NotePatch) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []Note
	if err := s.read(notesFile, &notes); err != nil {
		return Note{}, err
	}
	for i := range notes {
		if notes[i].ID != id {
			continue
		}
		if p.Text != nil {
			notes[i].Text = *p.Text
		}
		if p.Tags != nil {
			notes[i].Tags = p.Tags
		}
		notes[i].UpdatedAt = s.now()
		return notes[i], s.write(notesFile, notes)
	}
	return Note{}, ErrNotFound
}

// Settings

func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := Settings{}
	return settings, s.read(settingsFile, &settings)
}

// SaveSettings merges values into the stored settings.
func (s *Store) SaveSettings(ctx context.Context, values Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := Settings{}
	if err := s.read(settingsFile, &settings); err != nil {
		return err
	}
	for k, v := range values {
		settings[k] = v
	}
	settings["lastUpdated"] = s.now().UTC().Format(time.RFC3339)
	return s.write(settingsFile, settings)
}

// Utilities

func (s *Store) Export(ctx context.Context) (Export, error) {
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return Export{}, err
	}
	notes, err := s.GetNotes(ctx)
	if err != nil {
		return Export{}, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return Export{}, err
	}
	return Export{Tasks: tasks, Notes: notes, Settings: settings, ExportedAt: s.now()}, nil
}

func (s *Store) Info(ctx context.Context) (Info, error) {
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return Info{}, err
	}
	notes, err := s.GetNotes(ctx)
	if err != nil {
		return Info{}, err
	}
	info := Info{DataPath: s.dir, TaskCount: len(tasks), NoteCount: len(notes)}
	for _, name := range []string{tasksFile, notesFile, settingsFile} {
		if st, err := os.Stat(s.path(name)); err == nil {
			info.TotalSize += st.Size()
		}
	}
	return info, nil
}

// Cleanup drops completed tasks older than CompletedRetention and notes
// beyond MaxNotes.
func (s *Store) Cleanup(ctx context.Context) (CleanupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res CleanupResult
	var tasks []Task
	if err := s.read(tasksFile, &tasks); err != nil {
		return res, err
	}
	kept := s.dropExpired(tasks)
	res.TasksRemoved = len(tasks) - len(kept)
	if res.TasksRemoved > 0 {
		if err := s.write(tasksFile, kept); err != nil {
			return res, err
		}
	}

	var notes []Note
	if err := s.read(notesFile, &notes); err != nil {
		return res, err
	}
	if len(notes) > MaxNotes {
		res.NotesRemoved = len(notes) - MaxNotes
		if err := s.write(notesFile, notes[:MaxNotes]); err != nil {
			return res, err
		}
	}
	return res, nil
}

// dropExpired removes completed tasks older than CompletedRetention.
func (s *Store) dropExpired(tasks []Task) []Task {
	cutoff := s.now().Add(-CompletedRetention)
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == StatusCompleted && !doneAt(t).After(cutoff) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func doneAt(t Task) time.Time {
	switch {
	case t.CompletedAt != nil:
		return *t.CompletedAt
	case !t.UpdatedAt.IsZero():
		return t.UpdatedAt
	default:
		return t.CreatedAt
	}
}

// read decodes name into v. A missing or empty file leaves v untouched.
func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write saves v to name atomically.
func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(name))
}
