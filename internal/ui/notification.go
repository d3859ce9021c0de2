package ui

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type Urgency string

// For a list of possible icons, see: https://specifications.freedesktop.org/icon-naming-spec/icon-naming-spec-latest.html
const (
	IconDialogError = "dialog-error"
	IconDialogInfo  = "dialog-information"
	IconDialogWarn  = "dialog-warning"

	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

func NotifyInfo(title, text string) {
	NotifySend(UrgencyLow, title, text, IconDialogInfo)
}

func NotifyWarn(title, text string) {
	NotifySend(UrgencyNormal, title, text, IconDialogWarn)
}

func NotifyError(title, text string) {
	NotifySend(UrgencyCritical, title, text, IconDialogError)
}

// NotifySend shows a desktop notification to the user owning the current X display.
// Failures are only logged, a missing notification must never stop the daemon.
func NotifySend(urgency Urgency, title, text, icon string) {
	display, exists := os.LookupEnv("DISPLAY")
	if !exists {
		Debug("Cannot send notification, missing env variable 'DISPLAY'")
		return
	}

	user, uid, err := findDisplayUser(display)
	if err != nil {
		Warning("Cannot send notification: %v", err)
		return
	}

	cmd := exec.Command("sudo", "-u", user,
		"DISPLAY="+display,
		"DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/"+uid+"/bus",
		"notify-send",
		"-a", "nvfancontrol",
		"-u", string(urgency),
		"-i", icon,
		title, text,
	)
	if err = cmd.Run(); err != nil {
		Error("Error sending notification: %v", err)
	}
}

// findDisplayUser returns the name and uid of the user logged in on the given display
func findDisplayUser(display string) (user string, uid string, err error) {
	output, err := exec.Command("who").Output()
	if err != nil {
		return "", "", fmt.Errorf("unable to find user of display session: %w", err)
	}

	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.Contains(line, display) {
			user = fields[0]
			break
		}
	}
	if len(user) <= 0 {
		return "", "", errors.New("unable to detect user of current display session")
	}

	output, err = exec.Command("id", "-u", user).Output()
	uid = strings.TrimSpace(string(output))
	if err != nil || len(uid) <= 0 {
		return "", "", fmt.Errorf("unable to detect user id of %s: %v", user, err)
	}
	return user, uid, nil
}
