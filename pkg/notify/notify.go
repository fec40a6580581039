package notify

import (
	"fmt"
	"os/exec"

	"exiled-search/pkg/logger"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	Error NotificationType = iota
	Info
)

func (t NotificationType) String() string {
	if t == Error {
		return "ERROR"
	}
	return "INFO"
}

const title = "Exiled Search"

// Notifier shows a message to the user.
type Notifier interface {
	Show(message string, nType NotificationType) error
}

type commandRunner func(name string, args ...string) ([]byte, error)

func runCombined(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// NotifyService delivers a message through the first channel that works:
// the configured command, a desktop notifier, the terminal, then a log file.
type NotifyService struct {
	log           *logger.Logger
	notifyCommand string
	logPath       string
	run           commandRunner
	lookPath      func(string) (string, error)
	interactive   func() bool
}

// NewNotifyService creates a new notification service
func NewNotifyService(notifyCommand string, log *logger.Logger) *NotifyService {
	if log == nil {
		log = logger.Nop()
	}
	return &NotifyService{
		log:           log,
		notifyCommand: notifyCommand,
		run:           runCombined,
		lookPath:      exec.LookPath,
		interactive:   stderrIsTerminal,
	}
}

// Show displays a notification of the specified type
func (n *NotifyService) Show(message string, nType NotificationType) error {
	if n.notifyCommand != "" {
		err := n.executeNotifyCommand(message, nType)
		if err == nil {
			return nil
		}
		n.log.Warn("Custom notification command failed", "command", n.notifyCommand, "error", err)
	}

	err := n.showDesktop(message, nType)
	if err == nil {
		return nil
	}
	n.log.Debug("No desktop notification", "error", err)

	if n.interactive() {
		return n.printToTerminal(message, nType)
	}
	return n.writeToLogFile(title, message, nType)
}

// executeNotifyCommand runs the user's command with the type and message
// as positional arguments.
func (n *NotifyService) executeNotifyCommand(message string, nType NotificationType) error {
	n.log.Debug("Executing notify command", "notify_command", n.notifyCommand, "type", nType)

	out, err := n.run("sh", "-c", n.notifyCommand+` "$1" "$2"`, "sh", nType.String(), message)
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}
	return nil
}
