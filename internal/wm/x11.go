package wm

import (
	"fmt"
	"os/exec"
	"time"

	"exiled-search/pkg/logger"
)

// X11 drives xdotool.
type X11 struct {
	log *logger.Logger
	run commandRunner
}

func NewX11(log *logger.Logger) (*X11, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return nil, fmt.Errorf("xdotool is required for X11 support but was not found: %w", err)
	}
	return &X11{log: log, run: runCombined}, nil
}

func (x *X11) Name() string {
	return "X11"
}

// search returns the first window id xdotool reports for the query, or "".
func (x *X11) search(flag, query string) string {
	out, err := x.run("xdotool", "search", "--onlyvisible", flag, query)
	if err != nil {
		// xdotool exits 1 when nothing matches
		return ""
	}
	return firstLine(out)
}

func (x *X11) FindWindow(classNames []string, titles []string) (Window, error) {
	for _, class := range classNames {
		id := x.search("--class", class)
		if id == "" {
			continue
		}
		out, err := x.run("xdotool", "getwindowname", id)
		if err != nil {
			return Window{}, fmt.Errorf("failed to read window name: %w", err)
		}
		return Window{ID: id, Class: class, Title: firstLine(out)}, nil
	}

	for _, title := range titles {
		id := x.search("--name", title)
		if id == "" {
			continue
		}
		out, err := x.run("xdotool", "getwindowclassname", id)
		if err != nil {
			return Window{}, fmt.Errorf("failed to read window class: %w", err)
		}
		return Window{ID: id, Class: firstLine(out), Title: title}, nil
	}

	x.log.Debug("Game window not found", "classes", classNames, "titles", titles)
	return Window{}, nil
}

func (x *X11) FocusWindow(w Window) error {
	if w.ID == "" {
		return fmt.Errorf("cannot focus window: no window ID provided")
	}

	x.log.Debug("Focusing window", "id", w.ID)
	if out, err := x.run("xdotool", "windowactivate", "--sync", w.ID); err != nil {
		return fmt.Errorf("failed to focus window: %w: %s", err, out)
	}

	time.Sleep(focusSettle)
	return nil
}
