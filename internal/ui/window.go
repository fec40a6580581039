// Package ui is the desktop front end: paste an item, choose which stats to
// search and send it to the trade site. It owns the preference store; the
// pipeline only ever sees the values passed into a search.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"exiled-search/internal/app"
	"exiled-search/internal/stats"
	"exiled-search/internal/storage"
	"exiled-search/internal/trade"
	"exiled-search/pkg/logger"
)

// Prefs is the slice of storage.DB the window needs.
type Prefs interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	GetInt(key string, def int) (int, error)
	SetInt(key string, v int) error
	GetBool(key string, def bool) (bool, error)
	SetBool(key string, v bool) error
	StatSelected(line string) (bool, error)
	SetStatSelected(line string, selected bool) error
}

const (
	minScale = 50
	maxScale = 100
)

// logLevels are offered in the window; a change applies on the next start.
var logLevels = []string{"debug", "info", "warn", "error"}

type statCheck struct {
	line  stats.PreviewLine
	check *widget.Check
}

type Window struct {
	pipeline *app.Pipeline
	prefs    Prefs
	log      *logger.Logger
	logs     *LogPanel

	window     fyne.Window
	input      *widget.Entry
	scale      *widget.Slider
	scaleLabel *widget.Label
	profile    *widget.Select
	colorblind *widget.Check
	minimize   *widget.Check
	logLevel   *widget.Select
	statBox    *fyne.Container
	status     *widget.Label
	searchBtn  *widget.Button

	checks    []statCheck
	previewed string

	// inflight tracks searches started from the button.
	inflight sync.WaitGroup
}

// pendingSearch is what a search needs from the widgets, read on the UI
// goroutine before the pipeline runs.
type pendingSearch struct {
	req        app.SearchRequest
	closeAfter bool
}

// New builds the main window. logs may be nil.
func New(a fyne.App, pipeline *app.Pipeline, prefs Prefs, logs *LogPanel, log *logger.Logger) *Window {
	if log == nil {
		log = logger.Nop()
	}
	w := &Window{pipeline: pipeline, prefs: prefs, log: log, logs: logs}
	w.window = a.NewWindow("Exiled Search")

	w.input = widget.NewMultiLineEntry()
	w.input.SetPlaceHolder("Paste item text (Ctrl+Alt+C in game)")
	w.input.SetMinRowsVisible(8)

	w.scaleLabel = widget.NewLabel("")
	w.scale = widget.NewSlider(minScale, maxScale)
	w.scale.Step = 5
	w.scale.OnChanged = func(v float64) {
		w.scaleLabel.SetText(fmt.Sprintf("Scale %d%%", int(v)))
	}

	w.profile = widget.NewSelect(trade.ProfileNames(), nil)
	w.colorblind = widget.NewCheck("Colorblind mode", func(bool) { w.renderStats() })
	w.minimize = widget.NewCheck("Close after search", nil)
	w.logLevel = widget.NewSelect(logLevels, nil)

	w.statBox = container.NewVBox()
	w.status = widget.NewLabel("")
	w.status.Wrapping = fyne.TextWrapWord

	previewBtn := widget.NewButton("Preview", func() { _ = w.Preview() })
	w.searchBtn = widget.NewButton("Search", w.searchTapped)
	w.searchBtn.Importance = widget.HighImportance

	buttons := container.NewHBox(previewBtn, w.searchBtn)
	if logs != nil {
		buttons.Add(widget.NewButton("Log", logs.Toggle))
	}

	settings := container.NewVBox(
		container.NewBorder(nil, nil, w.scaleLabel, nil, w.scale),
		container.NewHBox(widget.NewLabel("Delays"), w.profile, w.colorblind, w.minimize),
		container.NewHBox(widget.NewLabel("Log level"), w.logLevel),
	)

	w.window.SetContent(container.NewBorder(
		container.NewVBox(w.input, settings, buttons),
		w.status,
		nil, nil,
		container.NewVScroll(w.statBox),
	))
	w.window.Resize(fyne.NewSize(640, 720))

	w.loadPrefs()
	return w
}

func (w *Window) loadPrefs() {
	if text, ok, err := w.prefs.Get(storage.PrefLastItemText); err == nil && ok {
		w.input.SetText(text)
	}

	scale, err := w.prefs.GetInt(storage.PrefScalePercent, maxScale)
	if err != nil {
		w.log.Warn("Failed to load scale", "error", err)
	}
	w.scale.SetValue(float64(scale))
	w.scale.OnChanged(w.scale.Value)

	profile := w.pipeline.Status().DelayProfile
	if p, ok, err := w.prefs.Get(storage.PrefDelayProfile); err == nil && ok {
		if _, known := trade.Profile(p); known {
			profile = p
		}
	}
	w.profile.SetSelected(profile)

	if v, err := w.prefs.GetBool(storage.PrefColorblindMode, false); err == nil {
		w.colorblind.SetChecked(v)
	}
	if v, err := w.prefs.GetBool(storage.PrefMinimizeAfterSearch, false); err == nil {
		w.minimize.SetChecked(v)
	}

	level := w.log.Level().String()
	if v, ok, err := w.prefs.Get(storage.PrefLogLevel); err == nil && ok {
		level = v
	}
	w.logLevel.SetSelected(level)
}

func (w *Window) savePrefs() {
	save := func(err error) {
		if err != nil {
			w.log.Warn("Failed to save preference", "error", err)
		}
	}
	save(w.prefs.Set(storage.PrefLastItemText, w.input.Text))
	save(w.prefs.SetInt(storage.PrefScalePercent, w.scalePercent()))
	save(w.prefs.Set(storage.PrefDelayProfile, w.profile.Selected))
	save(w.prefs.SetBool(storage.PrefColorblindMode, w.colorblind.Checked))
	save(w.prefs.SetBool(storage.PrefMinimizeAfterSearch, w.minimize.Checked))
	if w.logLevel.Selected != "" {
		save(w.prefs.Set(storage.PrefLogLevel, w.logLevel.Selected))
	}
	for _, c := range w.checks {
		if c.line.Status == stats.StatusMapped {
			save(w.prefs.SetStatSelected(c.line.Text, c.check.Checked))
		}
	}
}

func (w *Window) scalePercent() int {
	return int(w.scale.Value)
}

// Preview parses the pasted text and lists its stats.
func (w *Window) Preview() error {
	w.previewed = w.input.Text
	prepared, err := w.pipeline.Prepare(w.input.Text)
	if err != nil {
		w.checks = nil
		w.renderStats()
		w.setStatus(err.Error())
		return err
	}

	w.checks = w.checks[:0]
	for _, line := range prepared.Preview {
		check := widget.NewCheck(line.Text, nil)
		if line.Status == stats.StatusMapped {
			selected, err := w.prefs.StatSelected(line.Text)
			if err != nil {
				selected = true
			}
			check.SetChecked(selected)
		} else {
			check.Disable()
		}
		w.checks = append(w.checks, statCheck{line: line, check: check})
	}
	w.renderStats()
	w.setStatus(fmt.Sprintf("%s: %d stats", prepared.Item.ItemClass, len(prepared.Preview)))
	return nil
}

func (w *Window) renderStats() {
	w.statBox.RemoveAll()
	for _, c := range w.checks {
		c.check.Text = c.line.Text + w.suffix(c.line.Status)
		c.check.Refresh()
		w.statBox.Add(c.check)
	}
	w.statBox.Refresh()
}

func (w *Window) suffix(status stats.Status) string {
	switch status {
	case stats.StatusUnsupported:
		if w.colorblind.Checked {
			return "  [X not searchable]"
		}
		return "  (not searchable)"
	case stats.StatusUnmapped:
		if w.colorblind.Checked {
			return "  [? unknown]"
		}
		return "  (unknown)"
	}
	return ""
}

// selected returns the checked stat lines.
func (w *Window) selected() []string {
	var out []string
	for _, c := range w.checks {
		if c.line.Status == stats.StatusMapped && c.check.Checked {
			out = append(out, c.line.Text)
		}
	}
	return out
}

// Search runs the pipeline with the checked stats. It must be called from
// the UI goroutine; the button hands only the pipeline run to a goroutine.
func (w *Window) Search(ctx context.Context) (*app.Outcome, error) {
	pending, err := w.beginSearch()
	if err != nil {
		return nil, err
	}
	out, err := w.pipeline.Search(ctx, pending.req)
	w.finishSearch(pending, out, err)
	return out, err
}

func (w *Window) searchTapped() {
	pending, err := w.beginSearch()
	if err != nil {
		return
	}
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		out, err := w.pipeline.Search(context.Background(), pending.req)
		w.finishSearch(pending, out, err)
	}()
}

// beginSearch previews if the text changed, saves prefs, disables the
// button and snapshots the request.
func (w *Window) beginSearch() (pendingSearch, error) {
	if len(w.checks) == 0 || w.previewed != w.input.Text {
		if err := w.Preview(); err != nil {
			return pendingSearch{}, err
		}
	}
	w.savePrefs()

	w.searchBtn.Disable()
	w.setStatus("Searching...")

	chosen := w.selected()
	return pendingSearch{
		req: app.SearchRequest{
			Text:    w.input.Text,
			Scale:   w.scalePercent(),
			Profile: w.profile.Selected,
			Pick: func(*app.Prepared) ([]string, error) {
				return chosen, nil
			},
		},
		closeAfter: w.minimize.Checked,
	}, nil
}

func (w *Window) finishSearch(pending pendingSearch, out *app.Outcome, err error) {
	defer w.searchBtn.Enable()

	switch {
	case err != nil:
		w.setStatus(err.Error())
	case !out.Result.Success:
		w.setStatus("Search failed: " + out.Result.Error)
	default:
		w.setStatus("Searching for " + out.ItemName + " at " + strconv.Itoa(pending.req.Scale) + "%")
		if pending.closeAfter {
			w.window.Close()
		}
	}
}

func (w *Window) setStatus(text string) {
	w.status.SetText(text)
}

// Run shows the window and blocks until the app quits.
func (w *Window) Run() {
	w.window.ShowAndRun()
}
