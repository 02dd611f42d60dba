package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSetWindowPos = user32.NewProc("SetWindowPos")
)

const (
	swpNoSize   = 0x0001
	swpShowWin  = 0x0040
	hwndTopmost = ^uintptr(0) // (HWND)-1
)

// moveWindow puts w's top-left corner at r.Min and keeps it above other
// windows.
func moveWindow(w fyne.Window, r image.Rectangle) bool {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return false
	}
	moved := false
	nw.RunNative(func(ctx any) {
		wc, ok := ctx.(driver.WindowsWindowContext)
		if !ok || wc.HWND == 0 {
			return
		}
		x, y := int32(r.Min.X), int32(r.Min.Y)
		ret, _, _ := procSetWindowPos.Call(wc.HWND, hwndTopmost, uintptr(x), uintptr(y), 0, 0, swpNoSize|swpShowWin)
		moved = ret != 0
	})
	return moved
}
