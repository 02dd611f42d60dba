package ui

import (
	"image"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"kairo/src/actions"
	"kairo/src/capture"
)

// PickerController receives the user's choices. *capture.Coordinator
// satisfies it.
type PickerController interface {
	Select(generation uint64, sel capture.ActionSelection)
	ProvideInstruction(generation uint64, text string)
	Dismiss(generation uint64)
}

// Picker is the floating action popup. The fyne window is created on the
// first Present.
type Picker struct {
	shell      *Shell
	ctrl       PickerController
	moveWindow func(fyne.Window, image.Rectangle) bool

	// Fields below are only touched on the fyne goroutine.
	win     fyne.Window
	gen     uint64
	preview *widget.Label
	buttons *fyne.Container
	custom  *fyne.Container
	entry   *widget.Entry
	visible bool
}

func (s *Shell) NewPicker(ctrl PickerController) *Picker {
	return &Picker{shell: s, ctrl: ctrl, moveWindow: moveWindow}
}

func (p *Picker) ensure() {
	if p.win != nil {
		return
	}
	if drv, ok := p.shell.app.Driver().(desktop.Driver); ok {
		p.win = drv.CreateSplashWindow()
	} else {
		p.win = p.shell.app.NewWindow("Kairo")
	}
	p.preview = widget.NewLabel("")
	p.preview.Truncation = fyne.TextTruncateEllipsis
	p.buttons = container.NewGridWithColumns(3)

	p.entry = widget.NewEntry()
	p.entry.SetPlaceHolder("What should Kairo do with this?")
	p.entry.OnSubmitted = func(text string) { p.submitCustom(text) }
	send := widget.NewButton("Send", func() { p.submitCustom(p.entry.Text) })
	p.custom = container.NewBorder(nil, nil, nil, send, p.entry)
	p.custom.Hide()

	p.win.SetContent(container.NewVBox(p.preview, p.buttons, p.custom))
	p.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			p.dismiss()
		}
	})
	p.win.SetCloseIntercept(p.dismiss)
	// Clicking into another application moves Kairo out of the foreground.
	p.shell.app.Lifecycle().SetOnExitedForeground(p.dismiss)
}

// dismiss hides the popup and tells the controller. Runs on the fyne
// goroutine.
func (p *Picker) dismiss() {
	if !p.visible {
		return
	}
	p.visible = false
	p.win.Hide()
	p.ctrl.Dismiss(p.gen)
}

func (p *Picker) submitCustom(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.ctrl.ProvideInstruction(p.gen, text)
}

// Present implements capture.ActionPicker.
func (p *Picker) Present(ev capture.ContentReady) {
	fyne.Do(func() {
		p.ensure()
		p.gen = ev.Generation
		p.preview.SetText(preview(ev.Content))
		p.entry.SetText("")
		p.custom.Hide()

		ordered, highlight := orderActions(ev.Actions, ev.Suggested)
		p.buttons.RemoveAll()
		for _, a := range ordered {
			p.buttons.Add(p.actionButton(ev.Generation, a, highlight[a.ID]))
		}

		p.resize(ev.Placement)
		p.win.Show()
		p.visible = true
		// The native window only exists once shown.
		p.move(ev.Placement)
		p.win.RequestFocus()
	})
}

func (p *Picker) actionButton(gen uint64, a actions.Action, suggested bool) *widget.Button {
	id := a.ID
	b := widget.NewButton(a.Label, func() {
		p.ctrl.Select(gen, capture.ActionSelection{ActionID: id})
	})
	if suggested {
		b.Importance = widget.HighImportance
	}
	return b
}

// resize sizes the window to r, given in physical pixels.
func (p *Picker) resize(r image.Rectangle) {
	if r.Empty() {
		return
	}
	scale := p.win.Canvas().Scale()
	if scale <= 0 {
		scale = 1
	}
	p.win.Resize(fyne.NewSize(float32(r.Dx())/scale, float32(r.Dy())/scale))
}

// move puts the shown window at r where the platform allows, and centres it
// otherwise.
func (p *Picker) move(r image.Rectangle) {
	if r.Empty() || !p.moveWindow(p.win, r) {
		p.win.CenterOnScreen()
	}
}

// RequestInstruction implements capture.ActionPicker.
func (p *Picker) RequestInstruction(generation uint64) {
	fyne.Do(func() {
		if p.win == nil || generation != p.gen {
			return
		}
		p.custom.Show()
		p.win.Canvas().Focus(p.entry)
	})
}

// Close implements capture.ActionPicker.
func (p *Picker) Close() {
	fyne.Do(func() {
		if p.win != nil {
			p.visible = false
			p.win.Hide()
		}
	})
}
