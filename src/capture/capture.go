// Package capture turns a hotkey trigger into a routed (content, instruction)
// pair. All session state lives on the goroutine running Coordinator.Run;
// collaborators post back into it and are matched by session generation.
package capture

import (
	"context"
	"image"
	"time"

	"kairo/src/actions"
	"kairo/src/classify"
	"kairo/src/content"
)

// Clipboard is the OS clipboard as the coordinator needs it.
type Clipboard interface {
	ReadText() (string, error)
	// CanSimulateCopy reports whether SimulateCopy does anything on this
	// platform. When false the current clipboard is used as-is.
	CanSimulateCopy() bool
	SimulateCopy(ctx context.Context) error
}

// Screenshotter runs the native region-selection tool. cancelled is true
// when the user aborted the selection; that is not an error.
type Screenshotter interface {
	Capture(ctx context.Context, cursor image.Point) (png []byte, cancelled bool, err error)
}

// ActionPicker is the floating popup offering actions for captured content.
type ActionPicker interface {
	Present(ev ContentReady)
	// RequestInstruction asks the user for freeform text after the custom
	// action was picked. The answer comes back via ProvideInstruction.
	RequestInstruction(generation uint64)
	Close()
}

// ChatSurface receives handoffs. A handoff with empty content means the
// capture produced nothing usable and the chat is shown on its own.
type ChatSurface interface {
	Deliver(h Handoff)
}

// Windows creates the destination windows on first use.
type Windows struct {
	NewPicker func() (ActionPicker, error)
	NewChat   func() (ChatSurface, error)
}

// ContentReady is emitted once per session with usable content.
type ContentReady struct {
	Generation uint64
	Content    content.Content
	// Placement is the popup rectangle in virtual-screen coordinates.
	Placement image.Rectangle
	Display   image.Rectangle
	Actions   []actions.Action
	// Suggested orders the actions for text content; may be empty.
	Suggested []actions.ID
	Genre     classify.Genre
}

// ActionSelection is the user's choice in the picker. Instruction is nil
// only for actions.Custom, or when the picker wants the catalog to resolve it.
type ActionSelection struct {
	ActionID    actions.ID
	Instruction *string
}

// Handoff is what the chat surface receives.
type Handoff struct {
	Generation  uint64
	Content     content.Content
	ActionID    actions.ID
	Instruction string
}

// NoContent reports whether this is the no-content destination.
func (h Handoff) NoContent() bool { return h.Content.Empty() }

// State is the coordinator's session state.
type State int

const (
	StateIdle State = iota
	StateAwaitingCopy
	StateAwaitingRetryCopy
	StateAwaitingScreenshot
	StateAwaitingSelection
	StateAwaitingInstruction
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCopy:
		return "awaiting-copy"
	case StateAwaitingRetryCopy:
		return "awaiting-retry-copy"
	case StateAwaitingScreenshot:
		return "awaiting-screenshot"
	case StateAwaitingSelection:
		return "awaiting-selection"
	case StateAwaitingInstruction:
		return "awaiting-instruction"
	default:
		return "unknown"
	}
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the part of *time.Timer the coordinator uses.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
