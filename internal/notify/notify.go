package notify

import (
	"fmt"
	"log"
	"os/exec"
)

type Notifier interface {
	RecordingChanged(question int, on bool)
	ReportReady()
	Error(msg string)
}

// New picks a notifier by config type. Unknown types fall back to Nop.
func New(enabled bool, notifierType string) Notifier {
	if !enabled {
		return Nop{}
	}
	switch notifierType {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

type Desktop struct{}

func (Desktop) RecordingChanged(question int, on bool) {
	state := "Stopped"
	if on {
		state = "Started"
	}
	cmd := exec.Command("notify-send", "-a", "Firvoice",
		fmt.Sprintf("Firvoice: %s Recording Question %d", state, question+1))
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (Desktop) ReportReady() {
	cmd := exec.Command("notify-send", "-a", "Firvoice", "Firvoice: Report Ready")
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "Firvoice", "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log reports through the process log instead of the desktop.
type Log struct{}

func (Log) RecordingChanged(question int, on bool) {
	state := "stopped"
	if on {
		state = "started"
	}
	log.Printf("notify: recording %s for question %d", state, question+1)
}

func (Log) ReportReady() {
	log.Printf("notify: report ready")
}

func (Log) Error(msg string) {
	log.Printf("notify: error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingChanged(question int, on bool) {}
func (Nop) ReportReady()                           {}
func (Nop) Error(msg string)                       {}
