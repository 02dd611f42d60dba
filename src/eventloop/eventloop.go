// Package eventloop wires the resident process together: hotkeys and
// delegated launches feed the capture coordinator, and the store watcher
// keeps the shell informed. Every long-running part is supervised by one
// errgroup so a fatal error or shutdown stops them all.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"kairo/src/hotkey"
	"kairo/src/singleinstance"
	"kairo/src/store"
)

// Triggerer is the part of *capture.Coordinator the loop drives.
type Triggerer interface {
	Trigger(cursor image.Point)
	TriggerScreenshot(cursor image.Point)
	Run(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type server interface {
	Serve(ctx context.Context) error
}

type watcher interface {
	Watch(ctx context.Context) (<-chan store.Change, error)
}

type Options struct {
	Coordinator Triggerer
	// Cursor returns the pointer position at trigger time.
	Cursor func() image.Point
	// ShowChat opens the chat window without a capture.
	ShowChat func()
	// OnStoreChange runs on the loop's watcher goroutine.
	OnStoreChange func(store.Change)
	Logger        zerolog.Logger
}

type Loop struct {
	opts    Options
	log     zerolog.Logger
	hotkeys runner
	server  server
	store   watcher
}

func New(opts Options) (*Loop, error) {
	if opts.Coordinator == nil {
		return nil, errors.New("eventloop: coordinator is required")
	}
	if opts.Cursor == nil {
		opts.Cursor = func() image.Point { return image.Point{} }
	}
	return &Loop{opts: opts, log: opts.Logger.With().Str("cmp", "eventloop").Logger()}, nil
}

// Bindings returns the hotkey bindings for the two capture flows.
func (l *Loop) Bindings(textCombo, screenshotCombo string) []hotkey.Binding {
	return []hotkey.Binding{
		{Name: "capture", Combo: textCombo, Fire: l.Capture},
		{Name: "screenshot", Combo: screenshotCombo, Fire: l.Screenshot},
	}
}

// UseHotkeys makes Run consume global key events with h.
func (l *Loop) UseHotkeys(h runner) { l.hotkeys = h }

// UseServer makes Run answer delegated launches. Listen must already have
// succeeded.
func (l *Loop) UseServer(s server) { l.server = s }

// UseStore makes Run watch the data directory for changes.
func (l *Loop) UseStore(w watcher) { l.store = w }

func (l *Loop) Capture()    { l.opts.Coordinator.Trigger(l.opts.Cursor()) }
func (l *Loop) Screenshot() { l.opts.Coordinator.TriggerScreenshot(l.opts.Cursor()) }

// HandleCommand runs a command forwarded by a second launch.
func (l *Loop) HandleCommand(cmd singleinstance.Command) error {
	switch cmd {
	case singleinstance.CommandCapture:
		l.Capture()
	case singleinstance.CommandScreenshot:
		l.Screenshot()
	case singleinstance.CommandShowChat:
		if l.opts.ShowChat == nil {
			return errors.New("chat window unavailable")
		}
		l.opts.ShowChat()
	default:
		return fmt.Errorf("%w: %q", singleinstance.ErrUnknownCommand, cmd)
	}
	return nil
}

// Run blocks until ctx is cancelled or the coordinator fails.
func (l *Loop) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return l.opts.Coordinator.Run(ctx) })

	if l.hotkeys != nil {
		g.Go(func() error {
			// Without a global hook the tray and delegated launches still work.
			if err := l.hotkeys.Run(ctx); err != nil {
				l.log.Error().Err(err).Msg("hotkey listener stopped")
			}
			return nil
		})
	}
	if l.server != nil {
		g.Go(func() error {
			if err := l.server.Serve(ctx); err != nil {
				l.log.Error().Err(err).Msg("single-instance server stopped")
			}
			return nil
		})
	}
	if l.store != nil {
		changes, err := l.store.Watch(ctx)
		if err != nil {
			l.log.Warn().Err(err).Msg("store watch unavailable")
		} else {
			g.Go(func() error {
				l.forward(ctx, changes)
				return nil
			})
		}
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (l *Loop) forward(ctx context.Context, changes <-chan store.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			l.log.Debug().Str("kind", string(ch.Kind)).Msg("store changed")
			if l.opts.OnStoreChange != nil {
				l.opts.OnStoreChange(ch)
			}
		}
	}
}
