package rofi

import (
	"errors"
	"fmt"
	"html"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"exiled-search/internal/stats"
	"exiled-search/pkg/logger"
)

// ErrCancelled is returned when the menu is dismissed.
var ErrCancelled = errors.New("stat selection cancelled")

const (
	exitCancel  = 1
	exitMapped  = 10 // custom-1: take every mapped stat
	pickMessage = "Return (search selected) | A (all mapped) | Shift+Return (toggle)"
)

var baseArgs = []string{
	"-dmenu",
	"-multi-select",
	"-markup-rows",
	"-i",
	"-p", "Stats",
	"-kb-custom-1", "a",
	"-kb-accept-entry", "Return",
	"-kb-select-1", "Shift+Return",
}

var rowIndex = regexp.MustCompile(`^\[(\d+)\]`)

// runner executes rofi with stdin and returns its output and exit code.
type runner func(args []string, stdin string) (string, int, error)

func execRofi(args []string, stdin string) (string, int, error) {
	cmd := exec.Command("rofi", args...)
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		return "", 0, err
	}
	return string(out), 0, nil
}

// StatPicker shows the stat preview and returns the lines the user keeps.
type StatPicker struct {
	log        *logger.Logger
	colorblind bool
	run        runner
}

func NewStatPicker(colorblind bool, log *logger.Logger) *StatPicker {
	if log == nil {
		log = logger.Nop()
	}
	return &StatPicker{log: log, colorblind: colorblind, run: execRofi}
}

// FormatLine renders one preview row with its index so the selection can be
// mapped back even when two rows carry the same text.
func (p *StatPicker) FormatLine(index int, line stats.PreviewLine) string {
	text := html.EscapeString(line.Text)
	switch line.Status {
	case stats.StatusMapped:
		return fmt.Sprintf("[%d] %s", index, text)
	case stats.StatusUnsupported:
		return fmt.Sprintf("[%d] <span %s>%s (not searchable)</span>", index, p.mutedAttr(), text)
	}
	return fmt.Sprintf("[%d] <span %s>%s (unknown)</span>", index, p.mutedAttr(), text)
}

func (p *StatPicker) mutedAttr() string {
	if p.colorblind {
		return `style="italic"`
	}
	return `foreground="#808080"`
}

// Pick runs the menu. Mapped rows start active.
func (p *StatPicker) Pick(preview []stats.PreviewLine) ([]string, error) {
	if len(preview) == 0 {
		return nil, nil
	}

	rows := make([]string, len(preview))
	var active []string
	for i, l := range preview {
		rows[i] = p.FormatLine(i, l)
		if l.Status == stats.StatusMapped {
			active = append(active, strconv.Itoa(i))
		}
	}

	args := append(append([]string{}, baseArgs...), "-mesg", pickMessage)
	if len(active) > 0 {
		args = append(args, "-a", strings.Join(active, ","))
	}

	p.log.Debug("Showing stat picker", "rows", len(rows))
	out, code, err := p.run(args, strings.Join(rows, "\n"))
	if err != nil {
		p.log.Error("Failed to run Rofi", err)
		return nil, fmt.Errorf("failed to run rofi: %w", err)
	}

	switch code {
	case 0:
		return p.selected(preview, out)
	case exitMapped:
		var all []string
		for _, l := range preview {
			if l.Status == stats.StatusMapped {
				all = append(all, l.Text)
			}
		}
		return all, nil
	case exitCancel:
		return nil, ErrCancelled
	}
	p.log.Warn("Unhandled Rofi exit code", "exit_code", code)
	return nil, ErrCancelled
}

func (p *StatPicker) selected(preview []stats.PreviewLine, out string) ([]string, error) {
	var picked []string
	for _, row := range strings.Split(strings.TrimSpace(out), "\n") {
		m := rowIndex.FindStringSubmatch(strings.TrimSpace(row))
		if m == nil {
			continue
		}
		i, _ := strconv.Atoi(m[1])
		if i >= len(preview) {
			continue
		}
		picked = append(picked, preview[i].Text)
	}
	if len(picked) == 0 {
		return nil, ErrCancelled
	}
	p.log.Debug("Stats selected", "count", len(picked))
	return picked, nil
}
