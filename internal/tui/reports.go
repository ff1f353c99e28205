package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/tasks"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	app    *app.App
	width  int
	height int

	mode  reportMode
	chart barchart.Model
}

func newReportsModel(a *app.App) reportsModel {
	return reportsModel{
		app:   a,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right), key.Matches(msg, keys.Tab):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
		}
	}
	return r, nil
}

func (r reportsModel) chartSize() (int, int) {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	return chartWidth, chartHeight
}

// dailyBars stacks done and open tasks for each day of the week.
func (r reportsModel) dailyBars() []barchart.BarData {
	doneStyle := lipgloss.NewStyle().Foreground(colorSuccess)
	openStyle := lipgloss.NewStyle().Foreground(colorSubtle)
	var bars []barchart.BarData
	for _, d := range tasks.Days {
		done, open := 0, 0
		for _, t := range r.app.Tasks.ByDay(d) {
			if t.Completed {
				done++
			} else {
				open++
			}
		}
		bars = append(bars, barchart.BarData{
			Label: d.Title()[:3],
			Values: []barchart.BarValue{
				{Name: "Done", Value: float64(done), Style: doneStyle},
				{Name: "Open", Value: float64(open), Style: openStyle},
			},
		})
	}
	return bars
}

// weeklyBars charts pomodoros per recorded week plus the current one.
func (r reportsModel) weeklyBars() []barchart.BarData {
	pastStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	nowStyle := lipgloss.NewStyle().Foreground(colorAccent)
	var bars []barchart.BarData
	for _, s := range r.app.Weekly.History() {
		bars = append(bars, barchart.BarData{
			Label:  s.WeekStart.Format("Jan02"),
			Values: []barchart.BarValue{{Name: "Pomodoros", Value: float64(s.Pomodoros), Style: pastStyle}},
		})
	}
	bars = append(bars, barchart.BarData{
		Label:  "Now",
		Values: []barchart.BarValue{{Name: "Pomodoros", Value: float64(r.app.Weekly.Current()), Style: nowStyle}},
	})
	return bars
}

func (r reportsModel) renderChart() string {
	w, h := r.chartSize()
	chart := barchart.New(w, h)
	if r.mode == reportWeekly {
		chart.PushAll(r.weeklyBars())
	} else {
		chart.PushAll(r.dailyBars())
	}
	chart.Draw()
	return chart.View()
}

func (r reportsModel) view() string {
	w := r.width - 4

	// Mode tabs
	dailyTab := inactiveTabStyle.Render("This Week")
	weeklyTab := inactiveTabStyle.Render("History")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("This Week")
	} else {
		weeklyTab = activeTabStyle.Render("History")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Reports"), "  ", modeTabs)

	var table, legend string
	if r.mode == reportWeekly {
		table = r.renderHistoryTable(w)
		legend = fmt.Sprintf("  %s past weeks  %s this week",
			lipgloss.NewStyle().Foreground(colorPrimary).Render("●"),
			lipgloss.NewStyle().Foreground(colorAccent).Render("●"))
	} else {
		table = r.renderDayTable(w)
		legend = fmt.Sprintf("  %s done  %s open",
			lipgloss.NewStyle().Foreground(colorSuccess).Render("●"),
			lipgloss.NewStyle().Foreground(colorSubtle).Render("●"))
	}

	nav := mutedStyle.Render("  ←/→/tab: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.renderChart(), "", legend, "", table, "", nav,
		),
	)
}

func (r reportsModel) renderDayTable(w int) string {
	ts := r.app.Tasks
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %10s %10s", "Day", "Tasks", "Progress", "Pomodoros")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	for _, d := range tasks.Days {
		list := ts.ByDay(d)
		done, poms := 0, 0
		for _, t := range list {
			if t.Completed {
				done++
			}
			poms += t.Pomodoros()
		}
		rows = append(rows, fmt.Sprintf("  %-12s %8s %9d%% %10d",
			d.Title(), fmt.Sprintf("%d/%d", done, len(list)), ts.DayProgress(d), poms))
	}
	done, total := ts.Counts()
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	rows = append(rows, titleStyle.Render(fmt.Sprintf("  %-12s %8s %9d%% %10d",
		"Week", fmt.Sprintf("%d/%d", done, total), ts.OverallProgress(), r.app.Weekly.Current())))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderHistoryTable(w int) string {
	history := r.app.Weekly.History()
	if len(history) == 0 {
		return mutedStyle.Render("  No finished weeks yet")
	}
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-14s %10s %8s %10s", "Week of", "Pomodoros", "Tasks", "Progress")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))
	for i := len(history) - 1; i >= 0; i-- {
		s := history[i]
		rows = append(rows, fmt.Sprintf("  %-14s %10d %8s %9d%%",
			s.WeekStart.Format("Jan 02, 2006"), s.Pomodoros,
			fmt.Sprintf("%d/%d", s.TasksCompleted, s.TasksTotal), s.Progress))
	}
	return strings.Join(rows, "\n")
}
