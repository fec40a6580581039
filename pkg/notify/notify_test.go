package notify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteNotifyCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	n := NewNotifyService(`f() { printf '%s|%s' "$1" "$2" > `+out+`; }; f`, nil)

	require.NoError(t, n.Show("it's done: 3 filters", Info))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "INFO|it's done: 3 filters", string(data))
}

func TestExecuteNotifyCommand_Failure(t *testing.T) {
	n := NewNotifyService("exit 3", nil)
	assert.Error(t, n.executeNotifyCommand("x", Error))
}

func TestWriteToLogFileAppends(t *testing.T) {
	n := NewNotifyService("", nil)
	n.logPath = filepath.Join(t.TempDir(), "logs", "notifications.log")

	require.NoError(t, n.writeToLogFile(title, "first", Info))
	require.NoError(t, n.writeToLogFile(title, "second", Error))

	data, err := os.ReadFile(n.logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exiled Search - INFO: first")
	assert.Contains(t, string(data), "Exiled Search - ERROR: second")
}

func fakeDesktop(installed map[string]bool, fail map[string]bool, calls *[]string) *NotifyService {
	n := NewNotifyService("", nil)
	n.lookPath = func(name string) (string, error) {
		if installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	n.run = func(name string, args ...string) ([]byte, error) {
		*calls = append(*calls, name+" "+strings.Join(args, " "))
		if fail[name] {
			return []byte("no bus"), errors.New("exit 1")
		}
		return nil, nil
	}
	n.interactive = func() bool { return false }
	return n
}

func TestShowPrefersFirstInstalledTool(t *testing.T) {
	var calls []string
	n := fakeDesktop(map[string]bool{"notify-send": true, "kdialog": true}, nil, &calls)

	require.NoError(t, n.Show("Searching for Storm Loop", Info))
	assert.Equal(t, []string{
		"notify-send -a exiled-search -u normal -i system-search -t 4000 Exiled Search Searching for Storm Loop",
	}, calls)
}

func TestShowFallsThroughFailingTool(t *testing.T) {
	var calls []string
	n := fakeDesktop(map[string]bool{"dunstify": true, "kdialog": true}, map[string]bool{"dunstify": true}, &calls)

	require.NoError(t, n.Show("boom", Error))
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "-u critical")
	assert.Equal(t, "kdialog --title Exiled Search --passivepopup boom 8", calls[1])
}

func TestShowWithoutDesktop(t *testing.T) {
	var calls []string
	n := fakeDesktop(nil, nil, &calls)
	n.logPath = filepath.Join(t.TempDir(), "notifications.log")

	require.NoError(t, n.Show("no desktop here", Info))
	assert.Empty(t, calls)
	data, err := os.ReadFile(n.logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "no desktop here")

	var buf bytes.Buffer
	stderr = &buf
	t.Cleanup(func() { stderr = os.Stderr })
	n.interactive = func() bool { return true }
	require.NoError(t, n.Show("on the tty", Error))
	assert.Equal(t, "[ERROR] Exiled Search: on the tty\n", buf.String())
}
