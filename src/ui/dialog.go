package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

func errorContent(msg string, dismiss func()) fyne.CanvasObject {
	text := widget.NewLabel(msg)
	text.Wrapping = fyne.TextWrapWord
	ok := widget.NewButton("OK", dismiss)
	return container.NewBorder(nil, container.NewHBox(layout.NewSpacer(), ok), nil, nil, text)
}
