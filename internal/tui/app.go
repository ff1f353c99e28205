package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/config"
	"github.com/sadopc/biome/internal/export"
	"github.com/sadopc/biome/internal/pomodoro"
	"github.com/sadopc/biome/internal/prayer"
)

const prayerTimeout = 15 * time.Second

// Options configures the root model.
type Options struct {
	TickInterval time.Duration
	// Prayer is nil when the azan widget has no location to query.
	Prayer   *prayer.Client
	Location config.Location
	// ExportDir defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	app    *app.App
	opts   Options
	driver timerDriver
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tasks    tasksModel
	pomodoro pomodoroModel
	projects projectsModel
	reports  reportsModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(a *app.App, opts Options) App {
	if opts.TickInterval <= 0 {
		opts.TickInterval = pomodoro.DefaultTickInterval
	}
	h := help.New()
	h.ShowAll = false

	driver := timerDriver{engine: a.Engine, every: opts.TickInterval}
	m := App{
		app:        a,
		opts:       opts,
		driver:     driver,
		activeView: viewTasks,
		tasks:      newTasksModel(a),
		pomodoro:   newPomodoroModel(a, driver),
		projects:   newProjectsModel(a),
		reports:    newReportsModel(a),
		settings:   newSettingsModel(a),
		help:       h,
	}
	m.tasks.widgets.prayer.enabled = opts.Prayer != nil && opts.Location.Enabled()
	m.takeNotices()
	return m
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.driver.schedule(), a.fetchPrayer())
}

func (a App) fetchPrayer() tea.Cmd {
	if !a.tasks.widgets.prayer.enabled {
		return nil
	}
	client, loc := a.opts.Prayer, a.opts.Location
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), prayerTimeout)
		defer cancel()
		day, err := client.Fetch(ctx, loc.Latitude, loc.Longitude)
		return prayerMsg{day: day, err: err}
	}
}

// takeNotices moves the newest queued notice into the status line.
func (a *App) takeNotices() {
	if n := a.app.Notices(); len(n) > 0 {
		a.status = n[len(n)-1].Message
		a.statusError = false
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	next := model.(App)
	next.takeNotices()
	return next, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasks.setSize(a.width, contentHeight)
		a.pomodoro.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPomodoro
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProjects
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab) && a.activeView != viewReports:
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		case key.Matches(msg, keys.Toggle) && a.activeView == viewTasks && !a.tasks.widgets.arranging:
			a.app.Engine.Toggle()
			return a, a.driver.schedule()
		}

	case tickMsg:
		return a, a.driver.handle(msg)

	case prayerMsg:
		ps := &a.tasks.widgets.prayer
		ps.loaded = true
		ps.day, ps.err = msg.day, msg.err
		if msg.err != nil {
			a.status = "Prayer times unavailable"
			a.statusError = true
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewPomodoro:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewProjects:
		return a.projects.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasks.view()
	case viewPomodoro:
		content = a.pomodoro.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("biome")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Timer indicator in footer
	st := a.app.Engine.State()
	timerInfo := ""
	switch {
	case st.Running:
		timerInfo = phaseStyle(st.Phase).Render(fmt.Sprintf(" ● %s %s", st.Phase.Label(), formatClock(st.TimeLeft)))
	case st.TimeLeft < st.Settings.Seconds(st.Phase):
		timerInfo = warningStyle.Render(fmt.Sprintf(" ⏸ %s %s", st.Phase.Label(), formatClock(st.TimeLeft)))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Tasks")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	all := a.app.Tasks.All()
	index := export.Index(a.app.Projects.List())
	dir := a.opts.ExportDir
	dateStr := a.app.Now().Format("2006-01-02")
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("biome-export-%s.csv", dateStr))
			if err := export.ToCSV(all, index, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("biome-export-%s.json", dateStr))
			if err := export.ToJSON(all, index, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
