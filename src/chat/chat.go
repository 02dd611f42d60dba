// Package chat holds the conversation shown in the chat window: the captured
// content, the turns exchanged with the model, and prompt assembly.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kairo/src/content"
	"kairo/src/llm"
	"kairo/src/worker"
)

var (
	ErrBusy        = errors.New("chat: a request is already running")
	ErrEmptyPrompt = errors.New("chat: prompt is empty")
)

const listHint = "The text is a list. Keep it as a numbered list with one item per line."

// Submitter runs a completion off the caller's goroutine. *worker.Pool
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req llm.Request, cb worker.ResultCallback) bool
}

// Message is one line of the visible transcript.
type Message struct {
	Role llm.Role
	Text string
	Err  bool
	At   time.Time
}

type Session struct {
	mu         sync.Mutex
	submit     Submitter
	timeout    time.Duration
	log        zerolog.Logger
	now        func() time.Time
	content    content.Content
	turns      []llm.Turn
	transcript []Message
	busy       bool
	// cancel stops the request in flight.
	cancel context.CancelFunc
	// epoch changes on Begin/Reset so answers to an abandoned
	// conversation are dropped.
	epoch uint64
}

func NewSession(s Submitter, timeout time.Duration, logger zerolog.Logger) *Session {
	return &Session{
		submit:  s,
		timeout: timeout,
		log:     logger.With().Str("cmp", "chat").Logger(),
		now:     time.Now,
	}
}

// Begin starts a new conversation about c. Empty content opens a plain chat.
func (s *Session) Begin(c content.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.content = c
	switch c.Kind {
	case content.KindText:
		if c.Text != nil {
			s.noteLocked(fmt.Sprintf("Ready to analyze your text (%d characters)", len(c.Text.Text)))
			return
		}
	case content.KindImage:
		if c.Image != nil {
			s.noteLocked(fmt.Sprintf("Ready to analyze your screenshot (%dx%d)", c.Image.Width, c.Image.Height))
			return
		}
	}
	s.noteLocked("No text selected. Select some text and press the hotkey, or paste text here.")
}

// SetText replaces the content with text typed or pasted into the window.
func (s *Session) SetText(t content.Text) {
	s.Begin(content.FromText(t))
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.content = content.Content{}
	s.turns = nil
	s.transcript = nil
	s.busy = false
}

func (s *Session) noteLocked(text string) {
	s.transcript = append(s.transcript, Message{Role: llm.RoleSystem, Text: text, At: s.now()})
}

func (s *Session) Content() content.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Transcript returns a copy of the visible messages.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.transcript...)
}

// Send asks prompt about the current content. done is called from a worker
// goroutine with the assistant message, which carries Err on failure.
func (s *Session) Send(ctx context.Context, prompt string, done func(Message)) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}

	jobCtx, cancel := context.WithTimeout(ctx, s.timeout)

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		cancel()
		return ErrBusy
	}
	req := s.requestLocked(prompt)
	epoch := s.epoch
	s.busy = true
	s.cancel = cancel
	s.transcript = append(s.transcript, Message{Role: llm.RoleUser, Text: prompt, At: s.now()})
	s.mu.Unlock()

	ok := s.submit.Submit(jobCtx, req, func(text string, err error) {
		defer cancel()
		msg, keep := s.finish(epoch, prompt, text, err)
		if keep && done != nil {
			done(msg)
		}
	})
	if !ok {
		cancel()
		s.mu.Lock()
		if s.epoch == epoch {
			s.busy = false
			s.cancel = nil
			s.transcript = append(s.transcript, Message{
				Role: llm.RoleAssistant,
				Text: "Kairo is still busy with another request. Try again in a moment.",
				Err:  true,
				At:   s.now(),
			})
		}
		s.mu.Unlock()
		return ErrBusy
	}
	return nil
}

func (s *Session) finish(epoch uint64, prompt, text string, err error) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.log.Debug().Msg("dropping answer for an abandoned conversation")
		return Message{}, false
	}
	s.busy = false
	s.cancel = nil

	msg := Message{Role: llm.RoleAssistant, At: s.now()}
	if err != nil {
		s.log.Error().Err(err).Msg("completion failed")
		msg.Text = "Error: " + err.Error()
		msg.Err = true
	} else {
		msg.Text = text
		s.turns = append(s.turns,
			llm.Turn{Role: llm.RoleUser, Text: prompt},
			llm.Turn{Role: llm.RoleAssistant, Text: text},
		)
	}
	s.transcript = append(s.transcript, msg)
	return msg, true
}

func (s *Session) requestLocked(prompt string) llm.Request {
	req := llm.Request{
		SystemPrompt: SystemPrompt(s.content),
		History:      append([]llm.Turn(nil), s.turns...),
		UserContent:  UserPrompt(s.content, prompt, len(s.turns) == 0),
	}
	if s.content.Kind == content.KindImage && s.content.Image != nil {
		img := *s.content.Image
		req.Image = &img
	}
	return req
}

// SystemPrompt introduces the assistant and quotes the captured text.
func SystemPrompt(c content.Content) string {
	const base = "You are Kairo, an intelligent AI assistant that acts at the perfect moment. " +
		"You help users analyze, improve, and understand text. " +
		"Always provide helpful, accurate, and concise responses."
	switch {
	case c.Kind == content.KindText && c.Text != nil:
		return fmt.Sprintf("%s The user has selected this text to analyze: %q", base, c.Text.Text)
	case c.Kind == content.KindImage && c.Image != nil:
		return base + " The user has captured the attached screenshot to analyze."
	default:
		return base
	}
}

// UserPrompt is the user message for prompt. The list hint is added to the
// first turn only.
func UserPrompt(c content.Content, prompt string, first bool) string {
	if first && c.Kind == content.KindText && c.Text != nil && c.Text.LooksLikeList {
		return prompt + "\n\n" + listHint
	}
	return prompt
}
