package capture

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/rs/zerolog"

	"kairo/src/actions"
	"kairo/src/classify"
	"kairo/src/content"
	"kairo/src/placement"
)

const (
	DefaultSettleDelay  = 150 * time.Millisecond
	DefaultDismissGrace = 400 * time.Millisecond
)

// Options configures a Coordinator. Clipboard, Catalog and Windows are required.
type Options struct {
	Clipboard   Clipboard
	Screenshots Screenshotter
	Catalog     *actions.Catalog
	Windows     Windows

	Displays  func() []image.Rectangle
	PopupSize image.Point

	SettleDelay  time.Duration
	DismissGrace time.Duration
	Clock        Clock
	Logger       zerolog.Logger

	// OnState is called on the coordinator goroutine after every transition.
	OnState func(generation uint64, st State)
}

type event interface{ generation() uint64 }

type triggerEvent struct{ cursor image.Point }
type screenshotTriggerEvent struct{ cursor image.Point }
type resetEvent struct{}

type copyDoneEvent struct {
	gen     uint64
	attempt int
	err     error
}

type settledEvent struct {
	gen     uint64
	attempt int
}

type screenshotDoneEvent struct {
	gen       uint64
	png       []byte
	cancelled bool
	err       error
}

type selectEvent struct {
	gen uint64
	sel ActionSelection
}

type instructionEvent struct {
	gen  uint64
	text string
}

type dismissEvent struct{ gen uint64 }
type graceEvent struct{ gen uint64 }

func (triggerEvent) generation() uint64           { return 0 }
func (screenshotTriggerEvent) generation() uint64 { return 0 }
func (resetEvent) generation() uint64             { return 0 }
func (e copyDoneEvent) generation() uint64        { return e.gen }
func (e settledEvent) generation() uint64         { return e.gen }
func (e screenshotDoneEvent) generation() uint64  { return e.gen }
func (e selectEvent) generation() uint64          { return e.gen }
func (e instructionEvent) generation() uint64     { return e.gen }
func (e dismissEvent) generation() uint64         { return e.gen }
func (e graceEvent) generation() uint64           { return e.gen }

type session struct {
	gen      uint64
	state    State
	cursor   image.Point
	attempt  int
	previous string
	content  content.Content

	copyUnsupported bool
	dismissed       bool

	timer  Timer
	cancel context.CancelFunc
}

// Coordinator owns the capture session. Exported methods are safe to call
// from any goroutine; they only post events to the Run loop.
type Coordinator struct {
	opts  Options
	log   zerolog.Logger
	clock Clock

	inbox chan event
	done  chan struct{}

	// Owned by Run.
	ctx    context.Context
	gen    uint64
	sess   *session
	picker ActionPicker
	chat   ChatSurface
}

// New validates opts and returns an idle coordinator.
func New(opts Options) (*Coordinator, error) {
	if opts.Clipboard == nil {
		return nil, errors.New("capture: clipboard is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("capture: action catalog is required")
	}
	if opts.Windows.NewPicker == nil || opts.Windows.NewChat == nil {
		return nil, errors.New("capture: window factories are required")
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.DismissGrace <= 0 {
		opts.DismissGrace = DefaultDismissGrace
	}
	if opts.PopupSize.X <= 0 || opts.PopupSize.Y <= 0 {
		opts.PopupSize = placement.DefaultSize
	}
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Coordinator{
		opts:  opts,
		log:   opts.Logger.With().Str("cmp", "capture").Logger(),
		clock: clock,
		inbox: make(chan event, 32),
		done:  make(chan struct{}),
	}, nil
}

// Trigger starts a clipboard capture at the cursor, superseding any session.
func (c *Coordinator) Trigger(cursor image.Point) { c.post(triggerEvent{cursor}) }

// TriggerScreenshot starts a region screenshot capture.
func (c *Coordinator) TriggerScreenshot(cursor image.Point) {
	c.post(screenshotTriggerEvent{cursor})
}

// Select reports the picker choice for the given session.
func (c *Coordinator) Select(generation uint64, sel ActionSelection) {
	c.post(selectEvent{generation, sel})
}

// ProvideInstruction answers RequestInstruction.
func (c *Coordinator) ProvideInstruction(generation uint64, text string) {
	c.post(instructionEvent{generation, text})
}

// Dismiss reports that the picker was closed without a choice.
func (c *Coordinator) Dismiss(generation uint64) { c.post(dismissEvent{generation}) }

// Reset abandons the current session, if any.
func (c *Coordinator) Reset() { c.post(resetEvent{}) }

func (c *Coordinator) post(ev event) {
	select {
	case c.inbox <- ev:
	case <-c.done:
	}
}

// Run processes events until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			c.abandon()
			return ctx.Err()
		case ev := <-c.inbox:
			c.handle(ev)
		}
	}
}

func (c *Coordinator) handle(ev event) {
	switch e := ev.(type) {
	case triggerEvent:
		c.startCopy(e.cursor)
		return
	case screenshotTriggerEvent:
		c.startScreenshot(e.cursor)
		return
	case resetEvent:
		c.abandon()
		return
	}

	s := c.sess
	if s == nil || s.gen != ev.generation() {
		c.log.Debug().Uint64("gen", ev.generation()).Msgf("discarding stale %T", ev)
		return
	}

	switch e := ev.(type) {
	case copyDoneEvent:
		c.onCopyDone(s, e)
	case settledEvent:
		c.onSettled(s, e)
	case screenshotDoneEvent:
		c.onScreenshot(s, e)
	case selectEvent:
		c.onSelect(s, e.sel)
	case instructionEvent:
		c.onInstruction(s, e.text)
	case dismissEvent:
		c.onDismiss(s)
	case graceEvent:
		if s.dismissed {
			c.log.Debug().Uint64("gen", s.gen).Msg("picker dismissed")
			if c.picker != nil {
				c.picker.Close()
			}
			c.finish(s)
		}
	}
}

func (c *Coordinator) begin(cursor image.Point, st State) *session {
	c.abandon()
	c.gen++
	s := &session{gen: c.gen, cursor: cursor}
	c.sess = s
	c.transition(s, st)
	return s
}

func (c *Coordinator) startCopy(cursor image.Point) {
	s := c.begin(cursor, StateAwaitingCopy)

	prev, err := c.opts.Clipboard.ReadText()
	if err != nil {
		c.log.Warn().Err(err).Msg("reading clipboard before copy")
		prev = ""
	}
	s.previous = prev

	if !c.opts.Clipboard.CanSimulateCopy() {
		s.copyUnsupported = true
		c.evaluate(s, prev)
		return
	}
	c.issueCopy(s)
}

func (c *Coordinator) issueCopy(s *session) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	s.cancel = cancel
	gen, attempt := s.gen, s.attempt
	go func() {
		err := c.opts.Clipboard.SimulateCopy(ctx)
		c.post(copyDoneEvent{gen: gen, attempt: attempt, err: err})
	}()
}

func (c *Coordinator) onCopyDone(s *session, e copyDoneEvent) {
	if e.attempt != s.attempt {
		return
	}
	if e.err != nil {
		c.log.Warn().Err(e.err).Int("attempt", e.attempt).Msg("simulated copy failed")
	}
	gen, attempt := s.gen, s.attempt
	s.timer = c.clock.AfterFunc(c.opts.SettleDelay, func() {
		c.post(settledEvent{gen: gen, attempt: attempt})
	})
}

func (c *Coordinator) onSettled(s *session, e settledEvent) {
	if e.attempt != s.attempt {
		return
	}
	cur, err := c.opts.Clipboard.ReadText()
	if err != nil {
		c.log.Warn().Err(err).Msg("reading clipboard after copy")
		cur = ""
	}
	c.evaluate(s, cur)
}

// evaluate decides what the clipboard text after a copy attempt means.
// Empty is terminal at once; unchanged non-empty text earns one retry.
func (c *Coordinator) evaluate(s *session, cur string) {
	switch {
	case classify.IsBlank(cur):
		c.log.Info().Uint64("gen", s.gen).Msg("clipboard empty, opening chat")
		c.noContent(s)
	case s.copyUnsupported || cur != s.previous:
		s.content = content.FromText(classify.Text(cur))
		c.present(s)
	case s.attempt == 0:
		s.attempt = 1
		c.transition(s, StateAwaitingRetryCopy)
		c.issueCopy(s)
	default:
		c.log.Info().Uint64("gen", s.gen).Msg("clipboard unchanged after retry, opening chat")
		c.noContent(s)
	}
}

func (c *Coordinator) startScreenshot(cursor image.Point) {
	if c.opts.Screenshots == nil {
		c.log.Warn().Msg("screenshot capture is not available")
		return
	}
	s := c.begin(cursor, StateAwaitingScreenshot)
	ctx, cancel := context.WithCancel(c.ctx)
	s.cancel = cancel
	gen := s.gen
	go func() {
		png, cancelled, err := c.opts.Screenshots.Capture(ctx, cursor)
		c.post(screenshotDoneEvent{gen: gen, png: png, cancelled: cancelled, err: err})
	}()
}

func (c *Coordinator) onScreenshot(s *session, e screenshotDoneEvent) {
	switch {
	case e.cancelled:
		c.log.Debug().Uint64("gen", s.gen).Msg("screenshot cancelled")
		c.finish(s)
		return
	case e.err != nil:
		c.log.Error().Err(e.err).Msg("screenshot failed")
		c.finish(s)
		return
	}
	img, err := classify.Image(e.png)
	if err != nil {
		c.log.Error().Err(err).Msg("screenshot is not a usable image")
		c.finish(s)
		return
	}
	s.content = content.FromImage(img)
	c.present(s)
}

func (c *Coordinator) present(s *session) {
	var displays []image.Rectangle
	if c.opts.Displays != nil {
		displays = c.opts.Displays()
	}
	kind := s.content.Kind
	pos := placement.Compute(s.cursor, displays, c.opts.PopupSize, kind)
	display, _ := placement.DisplayFor(s.cursor, displays)

	ev := ContentReady{
		Generation: s.gen,
		Content:    s.content,
		Placement:  placement.Rect(pos, c.opts.PopupSize),
		Display:    display,
		Actions:    c.opts.Catalog.List(kind),
	}
	if kind == content.KindText {
		d := classify.Detect(s.content.Text.Text)
		ev.Genre, ev.Suggested = d.Genre, d.Suggested
	}

	picker := c.ensurePicker()
	if picker == nil {
		// Without a picker the content still reaches the chat.
		c.handoff(s, actions.Custom, "")
		return
	}
	c.transition(s, StateAwaitingSelection)
	c.log.Info().Uint64("gen", s.gen).Str("content", s.content.Summary()).Msg("content ready")
	picker.Present(ev)
}

func (c *Coordinator) onSelect(s *session, sel ActionSelection) {
	if s.state != StateAwaitingSelection {
		c.log.Debug().Stringer("state", s.state).Msg("ignoring selection")
		return
	}
	c.stopTimer(s)
	s.dismissed = false

	if sel.Instruction != nil {
		c.handoff(s, sel.ActionID, *sel.Instruction)
		return
	}
	instr, err := c.opts.Catalog.Instruction(s.content.Kind, sel.ActionID)
	if err != nil {
		c.log.Warn().Err(err).Str("action", string(sel.ActionID)).Msg("ignoring selection")
		return
	}
	if instr == nil {
		c.transition(s, StateAwaitingInstruction)
		if c.picker != nil {
			c.picker.RequestInstruction(s.gen)
		}
		return
	}
	c.handoff(s, sel.ActionID, *instr)
}

func (c *Coordinator) onInstruction(s *session, text string) {
	if s.state != StateAwaitingInstruction {
		return
	}
	if classify.IsBlank(text) {
		c.log.Debug().Msg("ignoring blank instruction")
		return
	}
	c.stopTimer(s)
	c.handoff(s, actions.Custom, text)
}

func (c *Coordinator) onDismiss(s *session) {
	if s.state != StateAwaitingSelection && s.state != StateAwaitingInstruction {
		return
	}
	if s.dismissed {
		return
	}
	s.dismissed = true
	gen := s.gen
	s.timer = c.clock.AfterFunc(c.opts.DismissGrace, func() {
		c.post(graceEvent{gen: gen})
	})
}

func (c *Coordinator) handoff(s *session, id actions.ID, instruction string) {
	if c.picker != nil {
		c.picker.Close()
	}
	chat := c.ensureChat()
	if chat != nil {
		c.log.Info().Uint64("gen", s.gen).Str("action", string(id)).Msg("handing off to chat")
		chat.Deliver(Handoff{
			Generation:  s.gen,
			Content:     s.content,
			ActionID:    id,
			Instruction: instruction,
		})
	}
	c.finish(s)
}

func (c *Coordinator) noContent(s *session) {
	if chat := c.ensureChat(); chat != nil {
		chat.Deliver(Handoff{Generation: s.gen})
	}
	c.finish(s)
}

func (c *Coordinator) ensurePicker() ActionPicker {
	if c.picker != nil {
		return c.picker
	}
	p, err := c.opts.Windows.NewPicker()
	if err != nil {
		c.log.Error().Err(err).Msg("creating action picker")
		return nil
	}
	c.picker = p
	return p
}

func (c *Coordinator) ensureChat() ChatSurface {
	if c.chat != nil {
		return c.chat
	}
	ch, err := c.opts.Windows.NewChat()
	if err != nil {
		c.log.Error().Err(err).Msg("creating chat window")
		return nil
	}
	c.chat = ch
	return ch
}

func (c *Coordinator) stopTimer(s *session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (c *Coordinator) finish(s *session) {
	c.stopTimer(s)
	if s.cancel != nil {
		s.cancel()
	}
	if c.sess == s {
		c.sess = nil
	}
	c.transition(s, StateIdle)
}

// abandon drops the current session without routing anything.
func (c *Coordinator) abandon() {
	s := c.sess
	if s == nil {
		return
	}
	if s.state == StateAwaitingSelection || s.state == StateAwaitingInstruction {
		if c.picker != nil {
			c.picker.Close()
		}
	}
	c.log.Debug().Uint64("gen", s.gen).Stringer("state", s.state).Msg("session superseded")
	c.finish(s)
}

func (c *Coordinator) transition(s *session, st State) {
	s.state = st
	if c.opts.OnState != nil {
		c.opts.OnState(s.gen, st)
	}
}
