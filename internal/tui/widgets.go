package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/layout"
	"github.com/sadopc/biome/internal/prayer"
)

const noteWidgetLimit = 5

// prayerState is the last fetch result for the azan widget.
type prayerState struct {
	enabled bool
	loaded  bool
	day     prayer.Day
	err     error
}

// widgetsModel lays out the dashboard widgets and owns arrange mode.
type widgetsModel struct {
	app    *app.App
	width  int
	height int

	arranging bool
	cursor    int

	prayer prayerState
	bar    progress.Model
}

func newWidgetsModel(a *app.App) widgetsModel {
	return widgetsModel{
		app: a,
		bar: progress.New(progress.WithDefaultGradient()),
	}
}

func (w *widgetsModel) setSize(width, height int) {
	w.width = width
	w.height = height
	w.bar.Width = max(10, width/2-10)
}

func (w widgetsModel) selected() (layout.Widget, bool) {
	vis := w.app.Layout.Visible()
	if w.cursor < 0 || w.cursor >= len(vis) {
		return layout.Widget{}, false
	}
	return vis[w.cursor], true
}

func (w widgetsModel) update(km tea.KeyMsg) (widgetsModel, tea.Cmd) {
	l := w.app.Layout
	sel, ok := w.selected()

	switch {
	case key.Matches(km, keys.Back), key.Matches(km, keys.Layout):
		w.arranging = false
		return w, nil
	case key.Matches(km, keys.Up):
		if w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(km, keys.Down):
		if w.cursor < len(l.Visible())-1 {
			w.cursor++
		}
	case key.Matches(km, keys.Left):
		if ok && l.MoveUp(sel.ID) && w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(km, keys.Right):
		if ok && l.MoveDown(sel.ID) {
			w.cursor++
		}
	case key.Matches(km, keys.Edit):
		if ok {
			l.ToggleSize(sel.ID)
		}
	case key.Matches(km, keys.Delete):
		if !ok {
			return w, nil
		}
		if !l.Remove(sel.ID) {
			return w, statusErr("The task manager cannot be removed")
		}
		w.cursor = min(w.cursor, len(l.Visible())-1)
		return w, status("Removed " + sel.Title)
	case key.Matches(km, keys.New):
		avail := l.Available()
		if len(avail) == 0 {
			return w, statusErr("Every widget is already shown")
		}
		added, _ := l.Add(avail[0])
		w.cursor = len(l.Visible()) - 1
		return w, status("Added " + added.Title)
	}
	return w, nil
}

func widgetFull(s layout.Size) bool {
	return s == layout.Full || s == layout.Large
}

// render lays out full and large widgets on their own row and pairs the
// smaller ones side by side.
func (w widgetsModel) render(taskList func(width, maxLines int) string) string {
	vis := w.app.Layout.Visible()
	full := w.width - 4
	half := (w.width - 6) / 2

	var rows []string
	var pending []string
	flush := func() {
		switch len(pending) {
		case 0:
		case 1:
			rows = append(rows, pending[0])
		default:
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, pending...))
		}
		pending = nil
	}

	for i, wd := range vis {
		width := half
		if widgetFull(wd.Size) {
			width = full
		}
		body := w.renderWidget(wd, width-4, taskList)
		style := panelStyle
		if w.arranging && i == w.cursor {
			style = activePanelStyle
		}
		head := titleStyle.Render(wd.Title)
		if w.arranging {
			head += mutedStyle.Render(fmt.Sprintf("  [%s]", wd.Size))
		}
		box := style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, head, body))

		if widgetFull(wd.Size) {
			flush()
			rows = append(rows, box)
			continue
		}
		pending = append(pending, box)
		if len(pending) == 2 {
			flush()
		}
	}
	flush()

	if w.arranging {
		rows = append(rows, mutedStyle.Render("↑/↓ select  ←/→ move  e resize  d remove  n add  esc done"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (w widgetsModel) renderWidget(wd layout.Widget, width int, taskList func(int, int) string) string {
	switch wd.Type {
	case layout.Tasks:
		return taskList(width, max(5, w.height-16))
	case layout.Pomodoro:
		return renderTimerWidget(w.app)
	case layout.Notes:
		return w.renderNotes(width)
	case layout.Progress:
		return w.renderProgress()
	case layout.Projects:
		return w.renderProjects(width)
	case layout.AzanTimes:
		return w.renderPrayer()
	}
	return mutedStyle.Render("unknown widget")
}

func (w widgetsModel) renderNotes(width int) string {
	list := w.app.Notes.List()
	if len(list) == 0 {
		return mutedStyle.Render("No notes yet. Press N to write one.")
	}
	var lines []string
	for i, n := range list {
		if i == noteWidgetLimit {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("+%d more", len(list)-noteWidgetLimit)))
			break
		}
		title := n.Title
		if title == "" {
			title = strings.SplitN(strings.TrimSpace(n.Content), "\n", 2)[0]
		}
		lines = append(lines, "• "+truncate(title, width-14)+mutedStyle.Render("  "+n.UpdatedAt.Format("Jan 02")))
	}
	return strings.Join(lines, "\n")
}

func (w widgetsModel) renderProgress() string {
	ts := w.app.Tasks
	done, total := ts.Counts()
	today := w.app.Today()
	return lipgloss.JoinVertical(lipgloss.Left,
		w.bar.ViewAs(float64(ts.OverallProgress())/100),
		mutedStyle.Render(fmt.Sprintf("%d/%d tasks this week", done, total)),
		mutedStyle.Render(fmt.Sprintf("%s: %d%%", today.Title(), ts.DayProgress(today))),
	)
}

func (w widgetsModel) renderProjects(width int) string {
	list := w.app.Projects.List()
	if len(list) == 0 {
		return mutedStyle.Render("No projects. Add some in the Projects view.")
	}
	counts := map[string]int{}
	for _, t := range w.app.Tasks.All() {
		counts[t.ProjectID]++
	}
	var lines []string
	for _, p := range list {
		lines = append(lines, fmt.Sprintf("%s %s%s", dot(p.Color), truncate(p.Name, width-12),
			mutedStyle.Render(fmt.Sprintf("  %d", counts[p.ID]))))
	}
	return strings.Join(lines, "\n")
}

func (w widgetsModel) renderPrayer() string {
	ps := w.prayer
	switch {
	case !ps.enabled:
		return mutedStyle.Render("Set location.latitude and location.longitude in the config.")
	case ps.err != nil:
		return errorStyle.Render("Could not load prayer times")
	case !ps.loaded:
		return mutedStyle.Render("Loading…")
	}

	now := w.app.Now()
	var lines []string
	lines = append(lines, mutedStyle.Render(ps.day.Location))
	if ps.day.Hijri != "" {
		lines = append(lines, mutedStyle.Render(ps.day.Hijri))
	}
	next, hasNext := prayer.NextPrayer(ps.day.Timings, now)
	for _, p := range ps.day.Timings.Ordered(now) {
		line := fmt.Sprintf("%-8s %s", p.Name, p.At.Format("15:04"))
		if hasNext && next.Name == p.Name {
			line = highlightStyle.Render(line + "  ◂")
		}
		lines = append(lines, line)
	}
	if hasNext {
		lines = append(lines, "", accentStyle.Render(fmt.Sprintf("Next: %s in %s", next.Name, formatUntil(next.At.Sub(now)))))
	}
	return strings.Join(lines, "\n")
}

func formatUntil(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
