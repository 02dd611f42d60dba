package hotkey

import (
	"testing"

	gohook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+L", []string{"ctrl", "alt", "l"}},
		{"Ctrl+Shift+F13", []string{"ctrl", "shift", "f13"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Command+Option+K", []string{"cmd", "alt", "k"}},
		{" ctrl + + x ", []string{"ctrl", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseHotkey(tt.input))
		})
	}
}

func TestFunctionKey(t *testing.T) {
	n, ok := functionKey("f12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	_, ok = functionKey("f25")
	assert.False(t, ok)
	_, ok = functionKey("fx")
	assert.False(t, ok)
}

// fakeCodes gives each modifier a left and right code and each other key one.
func fakeCodes(name string) []uint16 {
	switch name {
	case "ctrl":
		return []uint16{1, 2}
	case "alt":
		return []uint16{3, 4}
	case "l":
		return []uint16{10}
	case "s":
		return []uint16{11}
	}
	return nil
}

func TestChordFiresOncePerPress(t *testing.T) {
	c, err := newChord(Binding{Combo: "Ctrl+Alt+L"}, fakeCodes)
	require.NoError(t, err)

	assert.False(t, c.down(1))
	assert.False(t, c.down(4), "right alt counts")
	assert.True(t, c.down(10))
	// Keys are still physically held; autorepeat must not refire.
	assert.False(t, c.down(10))
}

func TestChordRelease(t *testing.T) {
	c, err := newChord(Binding{Combo: "Ctrl+L"}, fakeCodes)
	require.NoError(t, err)

	c.down(1)
	c.up(1)
	assert.False(t, c.down(10))
}

func TestNewChordUnknownKey(t *testing.T) {
	_, err := newChord(Binding{Combo: "Ctrl+Hyper"}, fakeCodes)
	assert.ErrorContains(t, err, "unknown key")
	_, err = newChord(Binding{Combo: " + "}, fakeCodes)
	assert.Error(t, err)
}

func TestListenerDispatchesToMatchingBinding(t *testing.T) {
	var text, shot int
	l := &Listener{log: zerolog.Nop()}
	for _, b := range []Binding{
		{Name: "capture", Combo: "Ctrl+Alt+L", Fire: func() { text++ }},
		{Name: "screenshot", Combo: "Ctrl+Alt+S", Fire: func() { shot++ }},
	} {
		c, err := newChord(b, fakeCodes)
		require.NoError(t, err)
		l.chords = append(l.chords, c)
	}

	l.handle(gohook.KeyDown, 1)
	l.handle(gohook.KeyDown, 3)
	l.handle(gohook.KeyDown, 11)
	assert.Equal(t, 0, text)
	assert.Equal(t, 1, shot)
}

func TestNewListenerRequiresBindings(t *testing.T) {
	_, err := NewListener([]Binding{{Name: "off", Combo: ""}}, zerolog.Nop())
	assert.Error(t, err)
}
