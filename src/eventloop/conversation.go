package eventloop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kairo/src/actions"
	"kairo/src/capture"
	"kairo/src/chat"
	"kairo/src/content"
	"kairo/src/llm"
	"kairo/src/store"
	"kairo/src/tasks"
)

// ErrNothingToSave is returned when there is no text to save.
var ErrNothingToSave = errors.New("nothing to save")

// ChatState is what the chat window renders.
type ChatState struct {
	Heading    string
	Content    content.Content
	Transcript []chat.Message
	Busy       bool
}

// ChatView is the chat window. Methods may be called from any goroutine.
type ChatView interface {
	Show()
	Render(st ChatState)
}

type noteAdder interface {
	AddNote(ctx context.Context, n store.Note) (store.Note, error)
}

// Conversation is the chat destination of the capture pipeline. It turns a
// handoff into a chat session and runs the chosen instruction as the first
// question.
type Conversation struct {
	ctx     context.Context
	session *chat.Session
	view    ChatView
	tasks   *tasks.Manager
	notes   noteAdder
	log     zerolog.Logger

	mu      sync.Mutex
	heading string
}

// NewConversation binds a session to a view. tasks and notes may be nil,
// which disables saving.
func NewConversation(ctx context.Context, s *chat.Session, view ChatView, tm *tasks.Manager, notes noteAdder, logger zerolog.Logger) *Conversation {
	return &Conversation{
		ctx:     ctx,
		session: s,
		view:    view,
		tasks:   tm,
		notes:   notes,
		log:     logger.With().Str("cmp", "conversation").Logger(),
		heading: "Kairo",
	}
}

// Deliver implements capture.ChatSurface.
func (c *Conversation) Deliver(h capture.Handoff) {
	heading := "Kairo"
	if !h.NoContent() && h.ActionID != "" && h.ActionID != actions.Custom {
		heading = actions.DisplayName(h.ActionID)
	}
	c.mu.Lock()
	c.heading = heading
	c.mu.Unlock()

	c.session.Begin(h.Content)
	c.log.Info().
		Uint64("generation", h.Generation).
		Str("action", string(h.ActionID)).
		Str("content", h.Content.Summary()).
		Msg("handoff received")

	c.view.Show()
	if strings.TrimSpace(h.Instruction) == "" {
		c.render()
		return
	}
	if err := c.Ask(h.Instruction); err != nil {
		c.log.Warn().Err(err).Msg("initial instruction not sent")
		c.render()
	}
}

// Ask sends a question about the current content.
func (c *Conversation) Ask(prompt string) error {
	err := c.session.Send(c.ctx, prompt, func(chat.Message) { c.render() })
	if errors.Is(err, chat.ErrEmptyPrompt) {
		return err
	}
	c.render()
	return err
}

// NewChat drops the conversation and shows an empty chat.
func (c *Conversation) NewChat() {
	c.mu.Lock()
	c.heading = "Kairo"
	c.mu.Unlock()
	c.session.Reset()
	c.render()
}

// Open shows the window with the current conversation.
func (c *Conversation) Open() {
	c.view.Show()
	c.render()
}

// LastAnswer is the most recent successful assistant reply.
func (c *Conversation) LastAnswer() string {
	msgs := c.session.Transcript()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleAssistant && !msgs[i].Err {
			return msgs[i].Text
		}
	}
	return ""
}

// SaveTask stores the captured text as a task, or the last answer when
// nothing was captured.
func (c *Conversation) SaveTask() (store.Task, error) {
	if c.tasks == nil {
		return store.Task{}, errors.New("task storage unavailable")
	}
	text := c.capturedText()
	if text == "" {
		text = c.LastAnswer()
	}
	if strings.TrimSpace(text) == "" {
		return store.Task{}, ErrNothingToSave
	}
	return c.tasks.Create(c.ctx, tasks.NewTask{Text: text, App: "kairo", Context: c.currentHeading()})
}

// SaveNote stores the last answer as a note, or the captured text when
// there is no answer yet.
func (c *Conversation) SaveNote() (store.Note, error) {
	if c.notes == nil {
		return store.Note{}, errors.New("note storage unavailable")
	}
	text := c.LastAnswer()
	if text == "" {
		text = c.capturedText()
	}
	if strings.TrimSpace(text) == "" {
		return store.Note{}, ErrNothingToSave
	}
	return c.notes.AddNote(c.ctx, store.Note{
		Text:   text,
		Source: store.Source{App: "kairo", Timestamp: time.Now(), Context: c.currentHeading()},
		Tags:   tasks.ExtractTags(text),
	})
}

func (c *Conversation) capturedText() string {
	if t := c.session.Content().Text; t != nil {
		return t.Text
	}
	return ""
}

func (c *Conversation) currentHeading() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heading
}

func (c *Conversation) render() {
	c.view.Render(ChatState{
		Heading:    c.currentHeading(),
		Content:    c.session.Content(),
		Transcript: c.session.Transcript(),
		Busy:       c.session.Busy(),
	})
}
