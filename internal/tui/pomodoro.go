package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/pomodoro"
)

var phaseCycle = []pomodoro.Phase{pomodoro.Work, pomodoro.ShortBreak, pomodoro.LongBreak}

type pomodoroModel struct {
	app    *app.App
	driver timerDriver
	width  int
	height int

	bar progress.Model
}

func newPomodoroModel(a *app.App, driver timerDriver) pomodoroModel {
	bar := progress.New(progress.WithSolidFill(string(colorPrimary)), progress.WithoutPercentage())
	return pomodoroModel{app: a, driver: driver, bar: bar}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.bar.Width = max(10, min(w-12, 60))
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	e := p.app.Engine
	switch {
	case key.Matches(km, keys.Toggle):
		e.Toggle()
	case key.Matches(km, keys.Reset):
		e.Reset()
	case key.Matches(km, keys.Skip):
		e.Skip()
	case key.Matches(km, keys.Phase):
		e.ChangePhase(nextPhase(e.Phase()))
	default:
		return p, nil
	}
	return p, p.driver.schedule()
}

func nextPhase(cur pomodoro.Phase) pomodoro.Phase {
	for i, ph := range phaseCycle {
		if ph == cur {
			return phaseCycle[(i+1)%len(phaseCycle)]
		}
	}
	return pomodoro.Work
}

// elapsedFraction is how much of the current phase has run.
func elapsedFraction(st pomodoro.State) float64 {
	total := st.Settings.Seconds(st.Phase)
	if total <= 0 {
		return 0
	}
	return 1 - float64(st.TimeLeft)/float64(total)
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	st := p.app.Engine.State()

	title := titleStyle.Render("Pomodoro Timer")
	phaseLabel := phaseStyle(st.Phase).Render(strings.ToUpper(st.Phase.Label()))
	timeDisplay := phaseStyle(st.Phase).Width(max(w-6, 10)).Align(lipgloss.Center).Render(formatClock(st.TimeLeft))

	var indicator string
	switch {
	case st.Running:
		indicator = successStyle.Render("●  RUNNING")
	case st.AutoStartPending:
		indicator = warningStyle.Render("…  STARTING")
	default:
		indicator = mutedStyle.Render("⏸  PAUSED")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		phaseLabel,
		timeDisplay,
		indicator,
		"",
		p.bar.ViewAs(elapsedFraction(st)),
		"",
		renderSessions(st),
		p.renderFocus(),
		mutedStyle.Render(fmt.Sprintf("This week: %d pomodoros", p.app.Counter.Value())),
	)

	controls := mutedStyle.Render("space: start/pause  r: reset  s: skip  p: switch phase")

	style := panelStyle
	if st.Running {
		style = activePanelStyle
	}
	return style.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderSessions draws one dot per session in the current long-break cycle.
func renderSessions(st pomodoro.State) string {
	interval := st.Settings.LongBreakInterval
	filled := st.CompletedPomodoros % interval
	if filled == 0 && st.CompletedPomodoros > 0 && st.Phase == pomodoro.LongBreak {
		filled = interval
	}
	var parts []string
	for i := 0; i < interval; i++ {
		switch {
		case i < filled:
			parts = append(parts, successStyle.Render("●"))
		case i == filled && st.Phase == pomodoro.Work:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d completed", st.CompletedPomodoros))
	return strings.Join(parts, " ") + counter
}

func (p pomodoroModel) renderFocus() string {
	t, ok := p.app.Tasks.Current()
	if !ok {
		return mutedStyle.Render("No focus task. Press f on a task during work.")
	}
	est := ""
	if t.PomodoroEstimate != nil {
		est = fmt.Sprintf(" (%d/%d)", t.Pomodoros(), t.Estimate())
	} else if t.Pomodoros() > 0 {
		est = fmt.Sprintf(" (%d)", t.Pomodoros())
	}
	return highlightStyle.Render("Focusing on: "+t.Title) + mutedStyle.Render(est)
}

// renderTimerWidget is the compact timer shown on the task dashboard.
func renderTimerWidget(a *app.App) string {
	st := a.Engine.State()
	state := "paused"
	if st.Running {
		state = "running"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Pomodoro")+"  "+phaseStyle(st.Phase).Render(st.Phase.Label()),
		phaseStyle(st.Phase).Render(formatClock(st.TimeLeft))+mutedStyle.Render("  "+state),
		renderSessions(st),
	)
}
