package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kairo/src/store"
)

// Tuesday.
var now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	m := NewManager(s)
	m.now = func() time.Time { return now }
	return m
}

func TestExtractDueDate(t *testing.T) {
	tests := []struct {
		text string
		want *time.Time
	}{
		{"call Bob tomorrow", ptr(time.Date(2026, 3, 11, 17, 0, 0, 0, time.UTC))},
		{"finish today", ptr(time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC))},
		{"report by Friday", ptr(time.Date(2026, 3, 13, 17, 0, 0, 0, time.UTC))},
		{"someday", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDueDate(tt.text, now))
		})
	}

	friday := time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, ptr(time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)), ExtractDueDate("friday", friday))
}

func TestExtractTags(t *testing.T) {
	assert.Equal(t, []string{"email", "urgent"}, ExtractTags("Reply to the email ASAP"))
	assert.Equal(t, []string{"bug", "backend", "p1"}, ExtractTags("fix #backend crash #p1 #backend"))
	assert.Empty(t, ExtractTags("water the plants"))
}

func TestCreateExtracts(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	task, err := m.Create(ctx, NewTask{Text: "Discuss budget tomorrow #finance"})
	require.NoError(t, err)
	assert.Equal(t, []string{"meeting", "finance"}, task.Tags)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, 11, task.DueDate.Day())
	assert.Equal(t, "Unknown", task.Source.App)
	assert.Equal(t, task.Text, task.OriginalText)
}

func TestQueriesAndStats(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	yesterday := now.AddDate(0, 0, -1)
	_, err := m.Create(ctx, NewTask{Text: "ship release today"})
	require.NoError(t, err)
	overdue, err := m.Create(ctx, NewTask{Text: "late thing", DueDate: &yesterday})
	require.NoError(t, err)
	done, err := m.Create(ctx, NewTask{Text: "old thing", Tags: []string{"Archive"}})
	require.NoError(t, err)
	_, err = m.Complete(ctx, done.ID)
	require.NoError(t, err)

	today, err := m.Today(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "ship release today", today[0].Text)

	found, err := m.Search(ctx, "archive")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, done.ID, found[0].ID)

	none, err := m.Search(ctx, "no such words")
	require.NoError(t, err)
	assert.NotNil(t, none, "empty results encode as []")
	assert.Empty(t, none)

	pending, err := m.ByStatus(ctx, store.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	st, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Pending: 2, Completed: 1, Overdue: 1, Today: 1}, st)

	require.NoError(t, m.Delete(ctx, overdue.ID))
	all, err := m.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func ptr(t time.Time) *time.Time { return &t }
