package wm

import (
	"os/exec"
	"strings"
	"time"
)

// focusSettle gives the compositor time to hand over keyboard focus before
// keys are sent.
const focusSettle = 100 * time.Millisecond

type WindowManager interface {
	// FindWindow returns the first window whose class or title contains one
	// of the given strings. A zero Window means nothing matched.
	FindWindow(classNames []string, titles []string) (Window, error)
	FocusWindow(Window) error
	Name() string
}

type Window struct {
	ID      string // X11 window id
	Class   string
	Title   string
	Address string // Hyprland client address
}

func (w Window) Found() bool {
	return w.ID != "" || w.Address != ""
}

type commandRunner func(name string, args ...string) ([]byte, error)

func runCombined(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

func containsFold(s string, subs []string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
