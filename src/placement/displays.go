package placement

import (
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// Displays returns the bounds of all active displays in virtual-screen
// coordinates.
func Displays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}

// Cursor returns the mouse position in virtual-screen coordinates.
func Cursor() image.Point {
	x, y := robotgo.Location()
	return image.Pt(x, y)
}
