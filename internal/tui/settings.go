package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/pomodoro"
)

type settingsModel struct {
	app    *app.App
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	work          *string
	shortBreak    *string
	longBreak     *string
	interval      *string
	autoBreaks    *bool
	autoPomodoros *bool
}

func newSettingsModel(a *app.App) settingsModel {
	w, sb, lb, iv := "", "", "", ""
	ab, ap := false, false
	return settingsModel{
		app:           a,
		work:          &w,
		shortBreak:    &sb,
		longBreak:     &lb,
		interval:      &iv,
		autoBreaks:    &ab,
		autoPomodoros: &ap,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func validatePositive(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number above zero")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.app.Engine.Settings()
	*s.work = strconv.Itoa(cur.WorkDuration)
	*s.shortBreak = strconv.Itoa(cur.ShortBreakDuration)
	*s.longBreak = strconv.Itoa(cur.LongBreakDuration)
	*s.interval = strconv.Itoa(cur.LongBreakInterval)
	*s.autoBreaks = cur.AutoStartBreaks
	*s.autoPomodoros = cur.AutoStartPomodoros

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.work).Validate(validatePositive),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validatePositive),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validatePositive),
			huh.NewInput().Title("Pomodoros before long break").Value(s.interval).Validate(validatePositive),
		).Title("Durations"),
		huh.NewGroup(
			huh.NewConfirm().Title("Auto-start breaks").Value(s.autoBreaks),
			huh.NewConfirm().Title("Auto-start pomodoros").Value(s.autoPomodoros),
		).Title("Automation"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		s.app.UpdateSettings(s.patch())
		return s, nil
	}

	return s, cmd
}

func atoiPtr(v string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func (s settingsModel) patch() pomodoro.SettingsPatch {
	ab, ap := *s.autoBreaks, *s.autoPomodoros
	return pomodoro.SettingsPatch{
		WorkDuration:       atoiPtr(*s.work),
		ShortBreakDuration: atoiPtr(*s.shortBreak),
		LongBreakDuration:  atoiPtr(*s.longBreak),
		LongBreakInterval:  atoiPtr(*s.interval),
		AutoStartBreaks:    &ab,
		AutoStartPomodoros: &ap,
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.app.Engine.Settings()
	items := []struct{ label, value string }{
		{"Work", fmt.Sprintf("%d min", cur.WorkDuration)},
		{"Short break", fmt.Sprintf("%d min", cur.ShortBreakDuration)},
		{"Long break", fmt.Sprintf("%d min", cur.LongBreakDuration)},
		{"Long break every", fmt.Sprintf("%d pomodoros", cur.LongBreakInterval)},
		{"Auto-start breaks", onOff(cur.AutoStartBreaks)},
		{"Auto-start pomodoros", onOff(cur.AutoStartPomodoros)},
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for _, it := range items {
		label := lipgloss.NewStyle().Width(24).Render(it.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(it.value)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Saving resets the running timer. Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
