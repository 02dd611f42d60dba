// Package ui is the fyne shell: action picker, chat window, log viewer and
// tray menu. Methods that touch widgets hop onto the fyne goroutine with
// fyne.Do, so they may be called from any goroutine.
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog"

	"kairo/src/tasks"
)

const appID = "dev.kairo.app"

// TrayActions are the tray menu callbacks. They run on the fyne goroutine
// and must not block.
type TrayActions struct {
	ShowChat   func()
	Capture    func()
	Screenshot func()
	Quit       func()
}

type Shell struct {
	app fyne.App
	log zerolog.Logger

	menu       *fyne.Menu
	statusItem *fyne.MenuItem
	tasksItem  *fyne.MenuItem

	logs *logViewer
}

func New(logger zerolog.Logger) *Shell {
	a := app.NewWithID(appID)
	a.SetIcon(Icon)
	return &Shell{app: a, log: logger.With().Str("cmp", "ui").Logger()}
}

// Run blocks on the UI event loop. It must be called from main.
func (s *Shell) Run() { s.app.Run() }

func (s *Shell) Quit() { fyne.Do(s.app.Quit) }

// SetupTray installs the tray icon and menu. It is a no-op where the
// platform has no system tray.
func (s *Shell) SetupTray(a TrayActions) {
	desk, ok := s.app.(desktop.App)
	if !ok {
		s.log.Warn().Msg("system tray not supported")
		return
	}
	s.statusItem = fyne.NewMenuItem("Kairo: idle", nil)
	s.statusItem.Disabled = true
	s.tasksItem = fyne.NewMenuItem("Tasks: -", nil)
	s.tasksItem.Disabled = true

	quit := fyne.NewMenuItem("Quit", a.Quit)
	quit.IsQuit = true

	s.menu = fyne.NewMenu("Kairo",
		s.statusItem,
		s.tasksItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Chat", a.ShowChat),
		fyne.NewMenuItem("Capture Selection", a.Capture),
		fyne.NewMenuItem("Capture Screenshot", a.Screenshot),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("View Logs", s.ShowLogs),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	desk.SetSystemTrayMenu(s.menu)
	desk.SetSystemTrayIcon(Icon)
}

// SetStatus shows the capture state in the tray menu.
func (s *Shell) SetStatus(text string) {
	fyne.Do(func() {
		if s.statusItem == nil {
			return
		}
		s.statusItem.Label = "Kairo: " + text
		s.menu.Refresh()
	})
}

// SetTaskStats shows task counts in the tray menu.
func (s *Shell) SetTaskStats(st tasks.Stats) {
	fyne.Do(func() {
		if s.tasksItem == nil {
			return
		}
		s.tasksItem.Label = taskSummary(st)
		s.menu.Refresh()
	})
}

// ShowError pops up an error dialog window.
func (s *Shell) ShowError(title, msg string) {
	fyne.Do(func() {
		w := s.app.NewWindow(title)
		w.SetContent(errorContent(msg, w.Close))
		w.Resize(fyne.NewSize(420, 160))
		w.CenterOnScreen()
		w.Show()
	})
}
