// Package tasks turns captured text into stored tasks and answers the
// questions the tray and CLI ask about them.
package tasks

import (
	"context"
	"regexp"
	"strings"
	"time"

	"kairo/src/store"
)

// Store is the part of *store.Store the manager uses.
type Store interface {
	GetTasks(ctx context.Context) ([]store.Task, error)
	AddTask(ctx context.Context, t store.Task) (store.Task, error)
	UpdateTask(ctx context.Context, id string, p store.TaskPatch) (store.Task, error)
	CompleteTask(ctx context.Context, id string) (store.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// NewTask describes a task to create. Empty fields get defaults.
type NewTask struct {
	Text         string
	OriginalText string
	App          string
	Context      string
	Priority     store.Priority
	DueDate      *time.Time
	Tags         []string
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	Today     int `json:"today"`
}

type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(s Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

// Create stores a task. When no due date or tags are given they are
// extracted from the text.
func (m *Manager) Create(ctx context.Context, n NewTask) (store.Task, error) {
	original := n.OriginalText
	if original == "" {
		original = n.Text
	}
	app := n.App
	if app == "" {
		app = "Unknown"
	}
	due := n.DueDate
	if due == nil {
		due = ExtractDueDate(n.Text, m.now())
	}
	tags := n.Tags
	if tags == nil {
		tags = ExtractTags(n.Text)
	}

	return m.store.AddTask(ctx, store.Task{
		Text:         n.Text,
		OriginalText: original,
		Source:       store.Source{App: app, Timestamp: m.now(), Context: n.Context},
		Status:       store.StatusPending,
		Priority:     n.Priority,
		DueDate:      due,
		Tags:         tags,
	})
}

func (m *Manager) All(ctx context.Context) ([]store.Task, error) {
	return m.store.GetTasks(ctx)
}

func (m *Manager) ByStatus(ctx context.Context, status store.Status) ([]store.Task, error) {
	return m.filter(ctx, func(t store.Task) bool { return t.Status == status })
}

// Today returns tasks due between local midnight today and tomorrow.
func (m *Manager) Today(ctx context.Context) ([]store.Task, error) {
	start, end := dayBounds(m.now())
	return m.filter(ctx, func(t store.Task) bool { return dueWithin(t, start, end) })
}

func (m *Manager) Update(ctx context.Context, id string, p store.TaskPatch) (store.Task, error) {
	return m.store.UpdateTask(ctx, id, p)
}

func (m *Manager) Complete(ctx context.Context, id string) (store.Task, error) {
	return m.store.CompleteTask(ctx, id)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteTask(ctx, id)
}

// Search matches query against text, original text and tags, case-insensitively.
func (m *Manager) Search(ctx context.Context, query string) ([]store.Task, error) {
	q := strings.ToLower(query)
	return m.filter(ctx, func(t store.Task) bool {
		if strings.Contains(strings.ToLower(t.Text), q) || strings.Contains(strings.ToLower(t.OriginalText), q) {
			return true
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	tasks, err := m.store.GetTasks(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := m.now()
	start, end := dayBounds(now)

	st := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case store.StatusPending:
			st.Pending++
		case store.StatusCompleted:
			st.Completed++
		}
		if t.DueDate != nil && t.Status != store.StatusCompleted && t.DueDate.Before(now) {
			st.Overdue++
		}
		if dueWithin(t, start, end) {
			st.Today++
		}
	}
	return st, nil
}

func (m *Manager) filter(ctx context.Context, keep func(store.Task) bool) ([]store.Task, error) {
	tasks, err := m.store.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := []store.Task{}
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	y, mo, d := now.Date()
	start := time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func dueWithin(t store.Task, start, end time.Time) bool {
	return t.DueDate != nil && !t.DueDate.Before(start) && t.DueDate.Before(end)
}

// ExtractDueDate understands "today", "tomorrow" and "friday"; each resolves
// to 17:00 local time. "friday" on a Friday means next week.
func ExtractDueDate(text string, now time.Time) *time.Time {
	lower := strings.ToLower(text)
	at5 := func(t time.Time) *time.Time {
		y, mo, d := t.Date()
		v := time.Date(y, mo, d, 17, 0, 0, 0, now.Location())
		return &v
	}
	switch {
	case strings.Contains(lower, "tomorrow"):
		return at5(now.AddDate(0, 0, 1))
	case strings.Contains(lower, "today"):
		return at5(now)
	case strings.Contains(lower, "friday"):
		days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return at5(now.AddDate(0, 0, days))
	}
	return nil
}

var (
	hashtag  = regexp.MustCompile(`#\w+`)
	autoTags = []struct {
		tag   string
		words []string
	}{
		{"email", []string{"email", "send", "reply"}},
		{"meeting", []string{"meeting", "call", "discuss"}},
		{"urgent", []string{"urgent", "asap", "important"}},
		{"bug", []string{"bug", "fix", "error"}},
	}
)

// ExtractTags derives keyword tags plus any #hashtags, without duplicates.
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)
	tags := []string{}
	seen := map[string]bool{}
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	for _, rule := range autoTags {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				add(rule.tag)
				break
			}
		}
	}
	for _, h := range hashtag.FindAllString(text, -1) {
		add(h[1:])
	}
	return tags
}
