package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"kairo/src/actions"
	"kairo/src/chat"
	"kairo/src/content"
	"kairo/src/llm"
	"kairo/src/tasks"
)

const previewLimit = 80

// orderActions puts suggested actions first, in suggestion order, followed
// by the rest in catalog order. Custom always goes last.
func orderActions(list []actions.Action, suggested []actions.ID) (ordered []actions.Action, highlight map[actions.ID]bool) {
	byID := make(map[actions.ID]actions.Action, len(list))
	for _, a := range list {
		byID[a.ID] = a
	}
	highlight = make(map[actions.ID]bool)
	for _, id := range suggested {
		a, ok := byID[id]
		if !ok || highlight[id] || id == actions.Custom {
			continue
		}
		highlight[id] = true
		ordered = append(ordered, a)
	}
	var custom *actions.Action
	for i, a := range list {
		switch {
		case a.ID == actions.Custom:
			custom = &list[i]
		case !highlight[a.ID]:
			ordered = append(ordered, a)
		}
	}
	if custom != nil {
		ordered = append(ordered, *custom)
	}
	return ordered, highlight
}

// preview is the one-line description of the captured content.
func preview(c content.Content) string {
	switch {
	case c.Text != nil:
		s := strings.Join(strings.Fields(c.Text.Text), " ")
		if utf8.RuneCountInString(s) > previewLimit {
			r := []rune(s)
			s = string(r[:previewLimit]) + "..."
		}
		return fmt.Sprintf("%q", s)
	case c.Image != nil:
		return fmt.Sprintf("Screenshot %dx%d", c.Image.Width, c.Image.Height)
	default:
		return "Nothing captured"
	}
}

// transcriptMarkdown renders the chat transcript for a RichText widget.
func transcriptMarkdown(msgs []chat.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		switch {
		case m.Role == llm.RoleSystem:
			b.WriteString("*" + m.Text + "*")
		case m.Role == llm.RoleUser:
			b.WriteString("**You:** " + m.Text)
		case m.Err:
			b.WriteString("**Kairo:** `" + m.Text + "`")
		default:
			b.WriteString("**Kairo:**\n\n" + m.Text)
		}
	}
	return b.String()
}

func taskSummary(s tasks.Stats) string {
	if s.Overdue > 0 {
		return fmt.Sprintf("Tasks: %d pending, %d overdue", s.Pending, s.Overdue)
	}
	return fmt.Sprintf("Tasks: %d pending, %d due today", s.Pending, s.Today)
}
