package notify

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var stderr io.Writer = os.Stderr

func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func defaultNotificationLog() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "exiled-search", "notifications.log")
	}
	return filepath.Join(os.TempDir(), "exiled-search-notifications.log")
}

// writeToLogFile is the channel of last resort, for runs with no desktop
// and no terminal (hotkey launches under some compositors).
func (n *NotifyService) writeToLogFile(title, message string, nType NotificationType) error {
	path := n.logPath
	if path == "" {
		path = defaultNotificationLog()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create notification log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open notification log: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s %s - %s: %s\n", time.Now().Format(time.RFC3339), title, nType, message)
	return err
}
