package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"kairo/src/actions"
	"kairo/src/chat"
	"kairo/src/content"
	"kairo/src/llm"
	"kairo/src/tasks"
)

func ids(list []actions.Action) []actions.ID {
	out := make([]actions.ID, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestOrderActions(t *testing.T) {
	list := []actions.Action{
		{ID: actions.FixGrammar}, {ID: actions.Custom}, {ID: actions.Summarize}, {ID: actions.Explain},
	}

	ordered, hl := orderActions(list, []actions.ID{actions.Explain, actions.Translate, actions.Explain, actions.Custom})

	assert.Equal(t, []actions.ID{actions.Explain, actions.FixGrammar, actions.Summarize, actions.Custom}, ids(ordered))
	assert.True(t, hl[actions.Explain])
	assert.False(t, hl[actions.Translate], "unknown suggestions are ignored")
	assert.False(t, hl[actions.Custom])
}

func TestOrderActionsWithoutSuggestions(t *testing.T) {
	list := actions.Default().List(content.KindImage)
	ordered, hl := orderActions(list, nil)
	assert.Len(t, ordered, len(list))
	assert.Empty(t, hl)
	assert.Equal(t, actions.Custom, ordered[len(ordered)-1].ID)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `"a b c"`, preview(content.FromText(content.Text{Text: "a\n  b\tc"})))
	assert.Equal(t, "Screenshot 10x20", preview(content.FromImage(content.Image{Width: 10, Height: 20})))
	assert.Equal(t, "Nothing captured", preview(content.Content{}))

	long := preview(content.FromText(content.Text{Text: strings.Repeat("é", 200)}))
	assert.True(t, strings.HasSuffix(long, `..."`))
	assert.Equal(t, previewLimit+5, len([]rune(long)))
}

func TestTranscriptMarkdown(t *testing.T) {
	md := transcriptMarkdown([]chat.Message{
		{Role: llm.RoleSystem, Text: "Ready"},
		{Role: llm.RoleUser, Text: "Fix it"},
		{Role: llm.RoleAssistant, Text: "Fixed."},
		{Role: llm.RoleAssistant, Text: "Error: boom", Err: true},
	})
	assert.Equal(t, "*Ready*\n\n---\n\n**You:** Fix it\n\n---\n\n**Kairo:**\n\nFixed.\n\n---\n\n**Kairo:** `Error: boom`", md)
	assert.Empty(t, transcriptMarkdown(nil))
}

func TestTaskSummary(t *testing.T) {
	assert.Equal(t, "Tasks: 3 pending, 1 due today", taskSummary(tasks.Stats{Pending: 3, Today: 1}))
	assert.Equal(t, "Tasks: 3 pending, 2 overdue", taskSummary(tasks.Stats{Pending: 3, Overdue: 2}))
}
