package wm

import (
	"fmt"
	"os"

	"exiled-search/pkg/logger"
)

// Manager picks the window manager backend for the running session.
type Manager struct {
	wm  WindowManager
	log *logger.Logger
}

type backend int

const (
	backendNone backend = iota
	backendHyprland
	backendX11
)

func detect(getenv func(string) string) (backend, error) {
	switch session := getenv("XDG_SESSION_TYPE"); session {
	case "wayland":
		if getenv("HYPRLAND_INSTANCE_SIGNATURE") == "" {
			return backendNone, fmt.Errorf("unsupported Wayland compositor: only Hyprland is supported")
		}
		return backendHyprland, nil
	case "x11":
		return backendX11, nil
	default:
		return backendNone, fmt.Errorf("unsupported session type: %q", session)
	}
}

func NewManager(log *logger.Logger) (*Manager, error) {
	b, err := detect(os.Getenv)
	if err != nil {
		return nil, err
	}

	var wm WindowManager
	switch b {
	case backendHyprland:
		wm, err = NewHyprland(log)
	case backendX11:
		wm, err = NewX11(log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize window manager: %w", err)
	}

	log.Info("Window manager initialized", "name", wm.Name())
	return NewManagerWith(wm, log), nil
}

func NewManagerWith(wm WindowManager, log *logger.Logger) *Manager {
	return &Manager{wm: wm, log: log}
}

func (m *Manager) FindWindow(classNames []string, titles []string) (Window, error) {
	return m.wm.FindWindow(classNames, titles)
}

func (m *Manager) FocusWindow(w Window) error {
	return m.wm.FocusWindow(w)
}

func (m *Manager) GetWMName() string {
	return m.wm.Name()
}
