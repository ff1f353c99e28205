package tui

import (
	"fmt"

	"github.com/sadopc/biome/internal/prayer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewPomodoro
	viewProjects
	viewReports
	viewSettings
)

var viewNames = []string{"Tasks", "Pomodoro", "Projects", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type prayerMsg struct {
	day prayer.Day
	err error
}

// --- Helpers ---

// formatClock renders seconds as MM:SS. Minutes may exceed 59.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
