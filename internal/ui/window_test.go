package ui

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exiled-search/internal/app"
	"exiled-search/internal/item"
	"exiled-search/internal/stats"
	"exiled-search/internal/storage"
	"exiled-search/internal/trade"
)

const ringText = `Item Class: Rings
Rarity: Rare
Storm Loop
Sapphire Ring
--------
Item Level: 72
--------
+28% to Lightning Resistance (implicit)
--------
+36% to Lightning Resistance
+23 to Dexterity
+55 to maximum Life
Cannot be Frozen for 4 seconds`

type memPrefs struct {
	values map[string]string
	stats  map[string]bool
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: map[string]string{}, stats: map[string]bool{}}
}

func (m *memPrefs) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}
func (m *memPrefs) Set(key, value string) error { m.values[key] = value; return nil }
func (m *memPrefs) GetInt(key string, def int) (int, error) {
	if v, ok := m.values[key]; ok {
		return strconv.Atoi(v)
	}
	return def, nil
}
func (m *memPrefs) SetInt(key string, v int) error { return m.Set(key, strconv.Itoa(v)) }
func (m *memPrefs) GetBool(key string, def bool) (bool, error) {
	if v, ok := m.values[key]; ok {
		return v == "true", nil
	}
	return def, nil
}
func (m *memPrefs) SetBool(key string, v bool) error { return m.Set(key, strconv.FormatBool(v)) }
func (m *memPrefs) StatSelected(line string) (bool, error) {
	if v, ok := m.stats[line]; ok {
		return v, nil
	}
	return true, nil
}
func (m *memPrefs) SetStatSelected(line string, v bool) error { m.stats[line] = v; return nil }

type recordingSearcher struct {
	got   *item.ParsedItem
	scale int
	calls atomic.Int32

	// release, when set, holds PerformSearch until closed.
	release chan struct{}
}

func (r *recordingSearcher) Validate(context.Context) trade.ValidationReport {
	return trade.ValidationReport{OverallValid: true}
}

func (r *recordingSearcher) PerformSearch(_ context.Context, parsed *item.ParsedItem, scale int) trade.Result {
	r.calls.Add(1)
	if r.release != nil {
		<-r.release
	}
	r.got, r.scale = parsed, scale
	return trade.Result{Success: true}
}

func newTestWindow(t *testing.T, prefs *memPrefs) (*Window, *recordingSearcher) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	searcher := &recordingSearcher{}
	p, _ := trade.Profile(trade.DefaultProfile)
	pipeline := app.NewPipeline(searcher, stats.DefaultRegistry(), trade.NewDelaySelector(p))
	return New(a, pipeline, prefs, NewLogPanel(a, NewLogBuffer()), nil), searcher
}

func TestWindowRestoresPrefs(t *testing.T) {
	prefs := newMemPrefs()
	prefs.values[storage.PrefLastItemText] = ringText
	prefs.values[storage.PrefScalePercent] = "80"
	prefs.values[storage.PrefDelayProfile] = "slow"
	prefs.values[storage.PrefColorblindMode] = "true"

	w, _ := newTestWindow(t, prefs)

	assert.Equal(t, ringText, w.input.Text)
	assert.Equal(t, 80, w.scalePercent())
	assert.Equal(t, "Scale 80%", w.scaleLabel.Text)
	assert.Equal(t, "slow", w.profile.Selected)
	assert.True(t, w.colorblind.Checked)
}

func TestWindowLogLevelPref(t *testing.T) {
	prefs := newMemPrefs()
	prefs.values[storage.PrefLogLevel] = "warn"
	w, _ := newTestWindow(t, prefs)
	assert.Equal(t, "warn", w.logLevel.Selected)

	w.logLevel.SetSelected("debug")
	w.savePrefs()
	assert.Equal(t, "debug", prefs.values[storage.PrefLogLevel])

	// a disabled logger has no level to offer, so nothing is saved
	fresh := newMemPrefs()
	w, _ = newTestWindow(t, fresh)
	assert.Empty(t, w.logLevel.Selected)
	w.savePrefs()
	assert.NotContains(t, fresh.values, storage.PrefLogLevel)
}

func TestWindowPreviewAndSearch(t *testing.T) {
	prefs := newMemPrefs()
	prefs.stats["+23 to Dexterity"] = false
	w, searcher := newTestWindow(t, prefs)

	w.input.SetText(ringText)
	require.NoError(t, w.Preview())
	require.Len(t, w.checks, 4)

	byText := map[string]statCheck{}
	for _, c := range w.checks {
		byText[c.line.Text] = c
	}
	assert.True(t, byText["Cannot be Frozen for 4 seconds"].check.Disabled())
	assert.Equal(t, "Cannot be Frozen for 4 seconds  (not searchable)", byText["Cannot be Frozen for 4 seconds"].check.Text)
	assert.False(t, byText["+23 to Dexterity"].check.Checked)

	byText["+55 to maximum Life"].check.SetChecked(false)

	out, err := w.Search(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Result.Success)
	assert.Equal(t, []string{"+64% total to Lightning Resistance"}, searcher.got.ExplicitStats)
	assert.Equal(t, 100, searcher.scale)

	assert.Equal(t, ringText, prefs.values[storage.PrefLastItemText])
	assert.False(t, prefs.stats["+55 to maximum Life"])
	assert.Contains(t, w.status.Text, "Storm Loop Sapphire Ring")
}

func TestWindowSearchRejectsBadText(t *testing.T) {
	w, searcher := newTestWindow(t, newMemPrefs())
	w.input.SetText("not an item")

	_, err := w.Search(context.Background())
	assert.ErrorIs(t, err, item.ErrInvalidFormat)
	assert.Nil(t, searcher.got)
	assert.Empty(t, w.checks)
}

func TestWindowSearchButtonIgnoresSecondTap(t *testing.T) {
	w, searcher := newTestWindow(t, newMemPrefs())
	searcher.release = make(chan struct{})
	w.input.SetText(ringText)

	test.Tap(w.searchBtn)
	assert.True(t, w.searchBtn.Disabled())
	assert.Equal(t, "Searching...", w.status.Text)

	// a second tap and a preview while the pipeline runs touch only UI state
	test.Tap(w.searchBtn)
	require.NoError(t, w.Preview())

	close(searcher.release)
	w.inflight.Wait()

	assert.EqualValues(t, 1, searcher.calls.Load())
	assert.False(t, w.searchBtn.Disabled())
	assert.ElementsMatch(t, []string{"+64% total to Lightning Resistance", "+23 to Dexterity", "+55 to maximum Life"},
		searcher.got.ExplicitStats)
	assert.Contains(t, w.status.Text, "Storm Loop Sapphire Ring")
}

func TestLogBuffer(t *testing.T) {
	b := NewLogBuffer()
	_, err := b.Write([]byte("  first\n"))
	require.NoError(t, err)
	_, _ = b.Write([]byte("\n"))
	assert.Equal(t, []string{"first"}, b.Lines())

	for i := 0; i < maxLogLines+5; i++ {
		_, _ = b.Write([]byte("line"))
	}
	assert.Len(t, b.Lines(), maxLogLines)

	b.Clear()
	assert.Empty(t, b.Lines())
}
