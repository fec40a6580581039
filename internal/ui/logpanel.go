package ui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const maxLogLines = 1000

// LogBuffer collects log output and mirrors it into an attached panel.
// It can be handed to the logger before any window exists.
type LogBuffer struct {
	mu      sync.Mutex
	content []string
	grid    *widget.TextGrid
}

func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	text := strings.TrimSpace(string(p))
	if text != "" {
		b.add(text)
	}
	return len(p), nil
}

func (b *LogBuffer) add(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.content = append(b.content, text)
	if len(b.content) > maxLogLines {
		b.content = b.content[len(b.content)-maxLogLines:]
	}
	if b.grid != nil {
		b.grid.SetText(strings.Join(b.content, "\n"))
	}
}

// Lines returns a copy of what has been written so far.
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.content...)
}

func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.content = nil
	if b.grid != nil {
		b.grid.SetText("")
	}
}

func (b *LogBuffer) attach(grid *widget.TextGrid) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid = grid
	grid.SetText(strings.Join(b.content, "\n"))
}

// LogPanel is a secondary window showing the log buffer.
type LogPanel struct {
	window fyne.Window
	buffer *LogBuffer

	mu        sync.Mutex
	isVisible bool
}

func NewLogPanel(a fyne.App, buffer *LogBuffer) *LogPanel {
	lp := &LogPanel{buffer: buffer}
	lp.window = a.NewWindow("Log")

	grid := widget.NewTextGrid()
	buffer.attach(grid)

	clearBtn := widget.NewButton("Clear", buffer.Clear)

	lp.window.SetContent(container.NewBorder(
		container.NewHBox(clearBtn),
		nil, nil, nil,
		container.NewScroll(grid),
	))
	lp.window.Resize(fyne.NewSize(800, 500))
	lp.window.SetCloseIntercept(lp.Hide)
	return lp
}

func (lp *LogPanel) Show() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.isVisible = true
	lp.window.Show()
}

func (lp *LogPanel) Hide() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.isVisible = false
	lp.window.Hide()
}

func (lp *LogPanel) Toggle() {
	if lp.IsVisible() {
		lp.Hide()
		return
	}
	lp.Show()
}

func (lp *LogPanel) IsVisible() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.isVisible
}
