package notify

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Successive search results replace each other instead of stacking up.
const replaceID = 2694490

var errNoDesktopTool = errors.New("no desktop notification tool found")

type desktopTool struct {
	name string
	args func(message string, nType NotificationType) []string
}

func expiry(nType NotificationType) time.Duration {
	if nType == Error {
		return 8 * time.Second
	}
	return 4 * time.Second
}

func urgency(nType NotificationType) string {
	if nType == Error {
		return "critical"
	}
	return "normal"
}

func icon(nType NotificationType) string {
	if nType == Error {
		return "dialog-error"
	}
	return "system-search"
}

var desktopTools = []desktopTool{
	{
		name: "dunstify",
		args: func(message string, nType NotificationType) []string {
			return []string{
				"-a", "exiled-search",
				"-r", strconv.Itoa(replaceID),
				"-u", urgency(nType),
				"-i", icon(nType),
				"-t", strconv.FormatInt(expiry(nType).Milliseconds(), 10),
				title, message,
			}
		},
	},
	{
		name: "notify-send",
		args: func(message string, nType NotificationType) []string {
			return []string{
				"-a", "exiled-search",
				"-u", urgency(nType),
				"-i", icon(nType),
				"-t", strconv.FormatInt(expiry(nType).Milliseconds(), 10),
				title, message,
			}
		},
	},
	{
		name: "kdialog",
		args: func(message string, nType NotificationType) []string {
			secs := strconv.Itoa(int(expiry(nType).Seconds()))
			return []string{"--title", title, "--passivepopup", message, secs}
		},
	},
}

// showDesktop hands the message to the first notifier found on PATH.
func (n *NotifyService) showDesktop(message string, nType NotificationType) error {
	for _, tool := range desktopTools {
		if _, err := n.lookPath(tool.name); err != nil {
			continue
		}
		out, err := n.run(tool.name, tool.args(message, nType)...)
		if err != nil {
			n.log.Warn("Desktop notification failed", "tool", tool.name, "error", err, "output", string(out))
			continue
		}
		return nil
	}
	return errNoDesktopTool
}

func (n *NotifyService) printToTerminal(message string, nType NotificationType) error {
	_, err := fmt.Fprintf(stderr, "[%s] %s: %s\n", nType, title, message)
	return err
}
