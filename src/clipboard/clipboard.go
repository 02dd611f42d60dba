// Package clipboard bridges the OS clipboard and the simulated copy keystroke.
package clipboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"golang.design/x/clipboard"
)

// ErrSimulateCopyUnsupported is returned by SimulateCopy where no copy
// keystroke can be injected (for example a Wayland session).
var ErrSimulateCopyUnsupported = errors.New("clipboard: simulated copy is not supported on this platform")

// modifierRelease is how long SimulateCopy waits for the user to let go of
// the hotkey modifiers before injecting the copy chord.
const modifierRelease = 60 * time.Millisecond

// Bridge is the process-wide clipboard. Writes are serialized.
type Bridge struct {
	writeMu sync.Mutex
	keyTap  func(key string, mods ...interface{}) error
	canCopy bool
}

// Init initializes the native clipboard and returns a bridge.
func Init() (*Bridge, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return &Bridge{keyTap: robotgo.KeyTap, canCopy: copySupported()}, nil
}

// ReadText returns the clipboard text, or "" when it holds none.
func (b *Bridge) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// WriteText performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func (b *Bridge) WriteText(text string) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *Bridge) CanSimulateCopy() bool { return b.canCopy }

// SimulateCopy sends the platform copy chord to the focused application.
// It returns once the keystroke is injected; the clipboard updates later.
func (b *Bridge) SimulateCopy(ctx context.Context) error {
	if !b.canCopy {
		return ErrSimulateCopyUnsupported
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(modifierRelease):
	}
	return b.keyTap("c", copyModifier)
}
