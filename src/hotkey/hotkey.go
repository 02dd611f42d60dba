// Package hotkey watches global key events and fires bindings when their
// full chord is held.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
)

// Binding fires Fire when every key of Combo (e.g. "Ctrl+Alt+L") is down.
type Binding struct {
	Name  string
	Combo string
	Fire  func()
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "option":
			part = "alt"
		case "win", "super", "meta", "command":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

type key struct {
	name    string
	codes   []uint16
	pressed bool
}

// chord tracks the pressed state of one binding's keys.
type chord struct {
	binding Binding
	keys    []key
}

func newChord(b Binding, codesFor func(string) []uint16) (*chord, error) {
	names := parseHotkey(b.Combo)
	if len(names) == 0 {
		return nil, fmt.Errorf("hotkey %q: empty combination", b.Combo)
	}
	c := &chord{binding: b}
	for _, n := range names {
		codes := codesFor(n)
		if len(codes) == 0 {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", b.Combo, n)
		}
		c.keys = append(c.keys, key{name: n, codes: codes})
	}
	return c, nil
}

// down records a key press and reports whether the chord just completed.
// Completing the chord resets it so holding the keys fires once.
func (c *chord) down(code uint16) bool {
	for i := range c.keys {
		if containsCode(c.keys[i].codes, code) {
			c.keys[i].pressed = true
		}
	}
	for _, k := range c.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *chord) up(code uint16) {
	for i := range c.keys {
		if containsCode(c.keys[i].codes, code) {
			c.keys[i].pressed = false
		}
	}
}

func containsCode(codes []uint16, code uint16) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// Listener dispatches key events to chords.
type Listener struct {
	mu     sync.Mutex
	chords []*chord
	log    zerolog.Logger
}

// NewListener validates bindings. Bindings with an empty combo are skipped;
// invalid ones are an error.
func NewListener(bindings []Binding, logger zerolog.Logger) (*Listener, error) {
	l := &Listener{log: logger.With().Str("cmp", "hotkey").Logger()}
	var errs []error
	for _, b := range bindings {
		if strings.TrimSpace(b.Combo) == "" {
			continue
		}
		c, err := newChord(b, keyCodes)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		l.chords = append(l.chords, c)
		l.log.Info().Str("binding", b.Name).Str("combo", b.Combo).Msg("hotkey registered")
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(l.chords) == 0 {
		return nil, errors.New("no hotkeys configured")
	}
	return l, nil
}

func (l *Listener) handle(kind uint8, code uint16) {
	var fire []func()
	l.mu.Lock()
	for _, c := range l.chords {
		switch kind {
		case gohook.KeyDown:
			if c.down(code) {
				l.log.Debug().Str("binding", c.binding.Name).Msg("hotkey activated")
				fire = append(fire, c.binding.Fire)
			}
		case gohook.KeyUp:
			c.up(code)
		}
	}
	l.mu.Unlock()

	for _, f := range fire {
		if f != nil {
			f()
		}
	}
}

// Run consumes the global hook until ctx is done. Callbacks run on the hook
// goroutine and must not block.
func (l *Listener) Run(ctx context.Context) error {
	evChan := gohook.Start()
	if evChan == nil {
		return errors.New("gohook.Start returned nil channel")
	}
	defer gohook.End()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evChan:
			if !ok {
				l.log.Warn().Msg("event channel closed")
				return nil
			}
			if ev.Kind == gohook.KeyDown || ev.Kind == gohook.KeyUp {
				l.handle(ev.Kind, eventCode(ev))
			}
		}
	}
}
