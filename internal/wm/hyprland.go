package wm

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"exiled-search/pkg/logger"
)

type Hyprland struct {
	log *logger.Logger
	run commandRunner

	// last remembers the previous lookup so repeated polls log only changes.
	last Window
}

type hyprClient struct {
	Address string `json:"address"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	Mapped  *bool  `json:"mapped"`
	Hidden  bool   `json:"hidden"`
}

func (c hyprClient) visible() bool {
	return (c.Mapped == nil || *c.Mapped) && !c.Hidden
}

func NewHyprland(log *logger.Logger) (*Hyprland, error) {
	path, err := exec.LookPath("hyprctl")
	if err != nil {
		return nil, fmt.Errorf("hyprctl not found in PATH: %w", err)
	}
	log.Debug("Found hyprctl", "path", path)

	return &Hyprland{log: log, run: runCombined}, nil
}

func (h *Hyprland) Name() string {
	return "Hyprland"
}

func (h *Hyprland) clients() ([]hyprClient, error) {
	output, err := h.run("hyprctl", "clients", "-j")
	if err != nil {
		h.log.Error("Failed to execute hyprctl", err, "output", string(output))
		return nil, fmt.Errorf("hyprctl error: %w", err)
	}
	if len(output) == 0 {
		return nil, nil
	}

	var clients []hyprClient
	if err := json.Unmarshal(output, &clients); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	return clients, nil
}

// FindWindow checks each client against classes then titles, in the order
// hyprctl lists them.
func (h *Hyprland) FindWindow(classNames []string, titles []string) (Window, error) {
	clients, err := h.clients()
	if err != nil {
		return Window{}, err
	}

	var found Window
	for _, c := range clients {
		if !c.visible() {
			continue
		}
		if containsFold(c.Class, classNames) || containsFold(c.Title, titles) {
			found = Window{Class: c.Class, Title: c.Title, Address: c.Address}
			break
		}
	}

	if found != h.last {
		if found.Found() {
			h.log.Debug("Found game window", "class", found.Class, "title", found.Title, "address", found.Address)
		} else {
			h.log.Info("Game window not found", "classes", classNames, "titles", titles)
		}
		h.last = found
	}
	return found, nil
}

func (h *Hyprland) FocusWindow(w Window) error {
	if w.Address == "" {
		return fmt.Errorf("cannot focus window: no address provided")
	}
	h.log.Debug("Focusing window", "address", w.Address)

	if output, err := h.run("hyprctl", "dispatch", "focuswindow", "address:"+w.Address); err != nil {
		return fmt.Errorf("failed to focus window: %w: %s", err, output)
	}

	time.Sleep(focusSettle)
	return nil
}

// BindKey registers a compositor keybinding that runs command.
func (h *Hyprland) BindKey(mods, key, command string) error {
	bind := fmt.Sprintf("%s,%s,exec,%s", mods, key, command)
	h.log.Debug("Adding keybinding", "bind", bind)
	if output, err := h.run("hyprctl", "keyword", "bind", bind); err != nil {
		return fmt.Errorf("failed to add keybinding: %w: %s", err, output)
	}
	return nil
}

func (h *Hyprland) UnbindKey(mods, key string) error {
	if output, err := h.run("hyprctl", "keyword", "unbind", mods+","+key); err != nil {
		return fmt.Errorf("failed to remove keybinding: %w: %s", err, output)
	}
	return nil
}
