package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/biome/internal/pomodoro"
)

// tickMsg carries the engine generation it was scheduled under. A tick from
// an older generation belongs to a run that was paused, reset or skipped.
type tickMsg struct {
	gen uint64
}

// timerDriver schedules engine ticks so that at most one tick chain is live.
type timerDriver struct {
	engine *pomodoro.Engine
	every  time.Duration
}

func (d timerDriver) schedule() tea.Cmd {
	if !d.engine.NeedsTick() {
		return nil
	}
	gen := d.engine.Generation()
	return tea.Tick(d.every, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// handle advances the engine for msg and returns the next tick. Stale ticks
// are dropped without rescheduling.
func (d timerDriver) handle(msg tickMsg) tea.Cmd {
	if msg.gen != d.engine.Generation() {
		return nil
	}
	d.engine.Tick()
	return d.schedule()
}
