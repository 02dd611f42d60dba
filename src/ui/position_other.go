//go:build !windows

package ui

import (
	"image"

	"fyne.io/fyne/v2"
)

// moveWindow is unsupported: fyne does not expose window positions on this
// platform, so the caller centres the window instead.
func moveWindow(fyne.Window, image.Rectangle) bool { return false }
