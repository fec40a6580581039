package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"

	"exiled-search/internal/wm"
	"exiled-search/pkg/logger"
)

var (
	ErrGameNotRunning = errors.New("Path of Exile 2 needs to be running")
	ErrNothingCopied  = errors.New("no item text was copied")
)

// Copy timing parameters.
const (
	focusDelay       = 150 * time.Millisecond // after focusing the game window
	clipboardPoll    = 25 * time.Millisecond
	clipboardTimeout = 1500 * time.Millisecond
)

// WindowFocuser is the part of wm.Manager the capture needs.
type WindowFocuser interface {
	FindWindow(classNames []string, titles []string) (wm.Window, error)
	FocusWindow(wm.Window) error
}

// Keyboard sends key taps and reaches the system clipboard.
type Keyboard interface {
	KeyTap(key string, modifiers ...string) error
	ReadClipboard() (string, error)
	WriteClipboard(text string) error
}

type robotKeyboard struct{}

// RobotKeyboard drives the real keyboard and clipboard.
func RobotKeyboard() Keyboard { return robotKeyboard{} }

func (robotKeyboard) KeyTap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

func (robotKeyboard) ReadClipboard() (string, error) { return robotgo.ReadAll() }

func (robotKeyboard) WriteClipboard(text string) error { return robotgo.WriteAll(text) }

type Input struct {
	windows  WindowFocuser
	keys     Keyboard
	log      *logger.Logger
	classes  []string
	titles   []string
	hotkey   []string
	settle   time.Duration
	deadline time.Duration
}

func NewInput(windows WindowFocuser, keys Keyboard, classes, titles, hotkey []string, log *logger.Logger) *Input {
	if log == nil {
		log = logger.Nop()
	}
	return &Input{
		windows:  windows,
		keys:     keys,
		log:      log,
		classes:  classes,
		titles:   titles,
		hotkey:   hotkey,
		settle:   focusDelay,
		deadline: clipboardTimeout,
	}
}

// CaptureItem focuses the game, presses the copy hotkey over the hovered
// item and returns the text the game put on the clipboard.
func (i *Input) CaptureItem(ctx context.Context) (string, error) {
	if len(i.hotkey) == 0 {
		return "", fmt.Errorf("copy hotkey is not configured")
	}

	window, err := i.windows.FindWindow(i.classes, i.titles)
	if err != nil {
		return "", fmt.Errorf("failed to find game window: %w", err)
	}
	if !window.Found() {
		return "", ErrGameNotRunning
	}
	if err := i.windows.FocusWindow(window); err != nil {
		return "", fmt.Errorf("failed to focus window: %w", err)
	}
	if err := sleep(ctx, i.settle); err != nil {
		return "", err
	}

	previous, _ := i.keys.ReadClipboard()
	if err := i.keys.WriteClipboard(""); err != nil {
		i.log.Warn("Failed to clear clipboard", "error", err)
	}

	key := i.hotkey[len(i.hotkey)-1]
	mods := i.hotkey[:len(i.hotkey)-1]
	i.log.Debug("Sending copy hotkey", "key", key, "modifiers", mods, "window_class", window.Class)
	if err := i.keys.KeyTap(key, mods...); err != nil {
		i.restoreClipboard(previous)
		return "", fmt.Errorf("failed to send copy hotkey: %w", err)
	}

	text, err := i.waitClipboard(ctx)
	if err != nil {
		i.restoreClipboard(previous)
		return "", err
	}
	i.log.Info("Captured item text", "bytes", len(text))
	return text, nil
}

// restoreClipboard puts back what the user had before the capture cleared it.
func (i *Input) restoreClipboard(previous string) {
	if previous == "" {
		return
	}
	if err := i.keys.WriteClipboard(previous); err != nil {
		i.log.Warn("Failed to restore clipboard", "error", err)
	}
}

// ReadClipboard returns the clipboard as is.
func (i *Input) ReadClipboard() (string, error) {
	text, err := i.keys.ReadClipboard()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingCopied
	}
	return text, nil
}

func (i *Input) waitClipboard(ctx context.Context) (string, error) {
	deadline := time.Now().Add(i.deadline)
	for {
		text, err := i.keys.ReadClipboard()
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if time.Now().After(deadline) {
			return "", ErrNothingCopied
		}
		if err := sleep(ctx, clipboardPoll); err != nil {
			return "", err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
