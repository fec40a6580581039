package input

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exiled-search/internal/wm"
	"exiled-search/pkg/logger"
)

type fakeWindows struct {
	window  wm.Window
	focused int
}

func (f *fakeWindows) FindWindow([]string, []string) (wm.Window, error) { return f.window, nil }
func (f *fakeWindows) FocusWindow(wm.Window) error {
	f.focused++
	return nil
}

type fakeKeyboard struct {
	clipboard string
	onTap     string
	taps      [][]string
	tapErr    error
}

func (k *fakeKeyboard) KeyTap(key string, modifiers ...string) error {
	k.taps = append(k.taps, append([]string{key}, modifiers...))
	if k.tapErr != nil {
		return k.tapErr
	}
	k.clipboard = k.onTap
	return nil
}
func (k *fakeKeyboard) ReadClipboard() (string, error) { return k.clipboard, nil }
func (k *fakeKeyboard) WriteClipboard(text string) error {
	k.clipboard = text
	return nil
}

func newTestInput(w *fakeWindows, k *fakeKeyboard) *Input {
	in := NewInput(w, k, []string{"steam_app_2694490"}, nil, []string{"ctrl", "alt", "c"}, logger.Nop())
	in.settle = 0
	in.deadline = 0
	return in
}

func TestCaptureItem(t *testing.T) {
	w := &fakeWindows{window: wm.Window{ID: "1", Class: "steam_app_2694490"}}
	k := &fakeKeyboard{clipboard: "old", onTap: "Item Class: Rings\nRarity: Rare"}

	text, err := newTestInput(w, k).CaptureItem(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Item Class: Rings\nRarity: Rare", text)
	assert.Equal(t, 1, w.focused)
	assert.Equal(t, [][]string{{"c", "ctrl", "alt"}}, k.taps)
}

func TestCaptureItemNoGame(t *testing.T) {
	_, err := newTestInput(&fakeWindows{}, &fakeKeyboard{}).CaptureItem(context.Background())
	assert.ErrorIs(t, err, ErrGameNotRunning)
}

func TestCaptureItemNothingCopiedRestoresClipboard(t *testing.T) {
	k := &fakeKeyboard{clipboard: "keep me"}
	_, err := newTestInput(&fakeWindows{window: wm.Window{ID: "1"}}, k).CaptureItem(context.Background())
	assert.ErrorIs(t, err, ErrNothingCopied)
	assert.Equal(t, "keep me", k.clipboard)
}

func TestCaptureItemTapFailure(t *testing.T) {
	k := &fakeKeyboard{tapErr: errors.New("no display"), clipboard: "party invite link"}
	_, err := newTestInput(&fakeWindows{window: wm.Window{ID: "1"}}, k).CaptureItem(context.Background())
	assert.ErrorContains(t, err, "no display")
	assert.Equal(t, "party invite link", k.clipboard)
}

func TestReadClipboard(t *testing.T) {
	in := newTestInput(&fakeWindows{}, &fakeKeyboard{clipboard: "  \n"})
	_, err := in.ReadClipboard()
	assert.ErrorIs(t, err, ErrNothingCopied)
}
