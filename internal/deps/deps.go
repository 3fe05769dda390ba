package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// CheckPwRecord checks if pw-record is installed and returns its status
func CheckPwRecord() Status {
	path, err := exec.LookPath("pw-record")
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}

	// pw-record --version outputs version info
	cmd := exec.Command(path, "--version")
	output, err := cmd.Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

// CheckFFplay checks if ffplay is installed and returns its status
func CheckFFplay() Status {
	path, err := exec.LookPath("ffplay")
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}

	// ffplay -version outputs version info on first line
	cmd := exec.Command(path, "-version")
	output, err := cmd.Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

// CheckNotifySend checks if notify-send is installed
func CheckNotifySend() Status {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return Status{Installed: false}
	}
	return Status{Installed: true, Path: path}
}
