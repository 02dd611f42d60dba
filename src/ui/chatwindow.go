package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"kairo/src/chat"
	"kairo/src/eventloop"
	"kairo/src/store"
)

// ChatHandlers connect the window to the conversation.
type ChatHandlers struct {
	Ask      func(prompt string) error
	NewChat  func()
	SaveTask func() (store.Task, error)
	SaveNote func() (store.Note, error)
	Copy     func() error
}

// ChatWindow implements eventloop.ChatView.
type ChatWindow struct {
	shell *Shell
	h     ChatHandlers

	win     fyne.Window
	heading *widget.Label
	subject *widget.Label
	body    *widget.RichText
	scroll  *container.Scroll
	input   *widget.Entry
	send    *widget.Button
	busy    *widget.ProgressBarInfinite
	status  *widget.Label
}

func (s *Shell) NewChatWindow() *ChatWindow { return &ChatWindow{shell: s} }

// Bind sets the callbacks. It must be called before the window is shown.
func (c *ChatWindow) Bind(h ChatHandlers) { c.h = h }

func (c *ChatWindow) ensure() {
	if c.win != nil {
		return
	}
	c.win = c.shell.app.NewWindow("Kairo")
	c.heading = widget.NewLabelWithStyle("Kairo", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	c.subject = widget.NewLabel("")
	c.subject.Truncation = fyne.TextTruncateEllipsis
	c.body = widget.NewRichTextFromMarkdown("")
	c.body.Wrapping = fyne.TextWrapWord
	c.scroll = container.NewVScroll(c.body)
	c.busy = widget.NewProgressBarInfinite()
	c.busy.Hide()
	c.status = widget.NewLabel("")

	c.input = widget.NewMultiLineEntry()
	c.input.SetPlaceHolder("Ask a follow-up question...")
	c.input.SetMinRowsVisible(3)
	c.input.Wrapping = fyne.TextWrapWord
	c.send = widget.NewButtonWithIcon("Send", theme.MailSendIcon(), c.ask)

	tools := container.NewHBox(
		widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
			if c.h.NewChat != nil {
				c.h.NewChat()
			}
		}),
		widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), c.copyAnswer),
		widget.NewButtonWithIcon("Task", theme.ConfirmIcon(), c.saveTask),
		widget.NewButtonWithIcon("Note", theme.DocumentSaveIcon(), c.saveNote),
		c.status,
	)
	top := container.NewVBox(c.heading, c.subject, widget.NewSeparator())
	bottom := container.NewVBox(c.busy, container.NewBorder(nil, nil, nil, c.send, c.input), tools)

	c.win.SetContent(container.NewBorder(top, bottom, nil, nil, c.scroll))
	c.win.Resize(fyne.NewSize(520, 640))
	c.win.SetCloseIntercept(c.win.Hide)
}

func (c *ChatWindow) ask() {
	if c.h.Ask == nil {
		return
	}
	err := c.h.Ask(c.input.Text)
	switch {
	case err == nil:
		c.input.SetText("")
		c.status.SetText("")
	case errors.Is(err, chat.ErrBusy):
		c.status.SetText("Still answering...")
	case errors.Is(err, chat.ErrEmptyPrompt):
	default:
		c.status.SetText(err.Error())
	}
}

func (c *ChatWindow) copyAnswer() {
	if c.h.Copy == nil {
		return
	}
	if err := c.h.Copy(); err != nil {
		c.status.SetText(err.Error())
		return
	}
	c.status.SetText("Copied")
}

func (c *ChatWindow) saveTask() {
	if c.h.SaveTask == nil {
		return
	}
	t, err := c.h.SaveTask()
	if err != nil {
		c.status.SetText(err.Error())
		return
	}
	if len(t.Tags) > 0 {
		c.status.SetText(fmt.Sprintf("Task saved %v", t.Tags))
		return
	}
	c.status.SetText("Task saved")
}

func (c *ChatWindow) saveNote() {
	if c.h.SaveNote == nil {
		return
	}
	if _, err := c.h.SaveNote(); err != nil {
		c.status.SetText(err.Error())
		return
	}
	c.status.SetText("Note saved")
}

// Show implements eventloop.ChatView.
func (c *ChatWindow) Show() {
	fyne.Do(func() {
		c.ensure()
		c.win.Show()
		c.win.RequestFocus()
		c.win.Canvas().Focus(c.input)
	})
}

// Render implements eventloop.ChatView.
func (c *ChatWindow) Render(st eventloop.ChatState) {
	fyne.Do(func() {
		c.ensure()
		c.heading.SetText(st.Heading)
		c.subject.SetText(preview(st.Content))
		c.body.ParseMarkdown(transcriptMarkdown(st.Transcript))
		if st.Busy {
			c.busy.Show()
			c.send.Disable()
		} else {
			c.busy.Hide()
			c.send.Enable()
		}
		c.scroll.ScrollToBottom()
	})
}
