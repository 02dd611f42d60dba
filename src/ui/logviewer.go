package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"kairo/src/logutil"
)

const logViewerLines = 500

type logViewer struct {
	shell  *Shell
	win    fyne.Window
	search *widget.Entry
	grid   *widget.TextGrid
	scroll *container.Scroll
	path   *widget.Label
	lines  []string
}

// ShowLogs opens the log viewer with the most recent lines.
func (s *Shell) ShowLogs() {
	fyne.Do(func() {
		if s.logs == nil {
			s.logs = newLogViewer(s)
		}
		s.logs.reload()
		s.logs.win.Show()
		s.logs.win.RequestFocus()
	})
}

func newLogViewer(s *Shell) *logViewer {
	v := &logViewer{shell: s, win: s.app.NewWindow("Kairo Logs")}
	v.search = widget.NewEntry()
	v.search.SetPlaceHolder("Filter")
	v.search.OnChanged = func(string) { v.render() }
	v.grid = widget.NewTextGrid()
	v.scroll = container.NewScroll(v.grid)
	v.path = widget.NewLabel("")
	v.path.Truncation = fyne.TextTruncateEllipsis

	refresh := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), v.reload)
	clear := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), v.clear)
	top := container.NewBorder(nil, nil, nil, container.NewHBox(refresh, clear), v.search)

	v.win.SetContent(container.NewBorder(top, v.path, nil, nil, v.scroll))
	v.win.Resize(fyne.NewSize(900, 560))
	v.win.SetCloseIntercept(v.win.Hide)
	return v
}

func (v *logViewer) reload() {
	path := logutil.LogPath()
	if path == "" {
		v.lines = []string{"File logging is disabled (ENABLE_FILE_LOGGING=false)."}
		v.path.SetText("")
		v.render()
		return
	}
	v.path.SetText(path)
	lines, err := logutil.RecentLines(path, logViewerLines)
	if err != nil {
		v.shell.log.Warn().Err(err).Msg("reading log file")
		lines = []string{"Could not read log file: " + err.Error()}
	}
	v.lines = lines
	v.render()
}

func (v *logViewer) render() {
	v.grid.SetText(strings.Join(logutil.Filter(v.lines, v.search.Text), "\n"))
	v.scroll.ScrollToBottom()
}

func (v *logViewer) clear() {
	path := logutil.LogPath()
	if path == "" {
		return
	}
	if err := logutil.Clear(path); err != nil {
		v.shell.log.Error().Err(err).Msg("clearing log file")
	}
	v.reload()
}
