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
	"github.com/sadopc/biome/internal/projects"
	"github.com/sadopc/biome/internal/tasks"
)

// row is a cursor position: a task, or one of its subtasks when subID is
// set.
type row struct {
	day    tasks.Day
	taskID string
	subID  string
}

type taskForm string

const (
	formTask    taskForm = "task"
	formEdit    taskForm = "edit"
	formSubtask taskForm = "subtask"
	formEditSub taskForm = "edit_subtask"
	formCopy    taskForm = "copy"
	formNote    taskForm = "note"
)

type tasksModel struct {
	app    *app.App
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	formType   taskForm
	editing    row

	// Form field pointers (survive value copies)
	formTitle    *string
	formDay      *string
	formPriority *string
	formEstimate *string
	formProject  *string
	formContent  *string

	widgets widgetsModel
}

func newTasksModel(a *app.App) tasksModel {
	title, day, prio, est, proj, content := "", "", "", "", "", ""
	return tasksModel{
		app:          a,
		formTitle:    &title,
		formDay:      &day,
		formPriority: &prio,
		formEstimate: &est,
		formProject:  &proj,
		formContent:  &content,
		widgets:      newWidgetsModel(a),
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.widgets.setSize(w, h)
}

// dayOrder puts today first, then the rest of the week in order.
func dayOrder(today tasks.Day) []tasks.Day {
	start := 0
	for i, d := range tasks.Days {
		if d == today {
			start = i
		}
	}
	out := make([]tasks.Day, 0, len(tasks.Days))
	for i := range tasks.Days {
		out = append(out, tasks.Days[(start+i)%len(tasks.Days)])
	}
	return out
}

func (m tasksModel) rows() []row {
	var out []row
	for _, d := range dayOrder(m.app.Today()) {
		for _, t := range m.app.Tasks.ByDay(d) {
			out = append(out, row{day: d, taskID: t.ID})
			for _, st := range t.Subtasks {
				out = append(out, row{day: d, taskID: t.ID, subID: st.ID})
			}
		}
	}
	return out
}

func (m tasksModel) current() (row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m *tasksModel) clamp() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func statusErr(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.widgets.arranging {
		var cmd tea.Cmd
		m.widgets, cmd = m.widgets.update(km)
		return m, cmd
	}

	cur, hasRow := m.current()
	ts := m.app.Tasks

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case key.Matches(km, keys.New):
		day := m.app.Today()
		if hasRow {
			day = cur.day
		}
		return m.showTaskForm(formTask, tasks.Task{Day: day, Priority: tasks.PriorityLow})
	case key.Matches(km, keys.Edit):
		if !hasRow {
			return m, nil
		}
		t, _ := ts.Get(cur.taskID)
		if cur.subID != "" {
			for _, st := range t.Subtasks {
				if st.ID == cur.subID {
					*m.formTitle = st.Title
				}
			}
			m.editing = cur
			return m.showTitleForm(formEditSub, "Subtask")
		}
		m.editing = cur
		return m.showTaskForm(formEdit, t)
	case key.Matches(km, keys.Done), key.Matches(km, keys.Enter):
		if !hasRow {
			return m, nil
		}
		if cur.subID != "" {
			ts.ToggleSubtask(cur.taskID, cur.subID)
		} else {
			ts.Toggle(cur.taskID)
		}
	case key.Matches(km, keys.Delete):
		if !hasRow {
			return m, nil
		}
		if cur.subID != "" {
			ts.DeleteSubtask(cur.taskID, cur.subID)
		} else {
			ts.Delete(cur.taskID)
		}
		m.clamp()
	case key.Matches(km, keys.Select):
		if hasRow {
			ts.ToggleSelect(cur.taskID, !ts.IsSelected(cur.taskID))
		}
	case key.Matches(km, keys.Copy):
		if !hasRow && len(ts.Selected()) == 0 {
			return m, nil
		}
		m.editing = cur
		return m.showCopyForm()
	case key.Matches(km, keys.Sort):
		ts.Sort()
		return m, status("Tasks sorted by priority")
	case key.Matches(km, keys.Uncheck):
		ts.UncheckAll()
		return m, status("All tasks unchecked")
	case key.Matches(km, keys.Focus):
		if !hasRow {
			return m, nil
		}
		if !m.app.FocusTask(cur.taskID) {
			return m, statusErr("Focus can only change during a work session")
		}
		t, _ := ts.Get(cur.taskID)
		return m, status("Focusing on " + t.Title)
	case key.Matches(km, keys.Subtask):
		if !hasRow {
			return m, nil
		}
		*m.formTitle = ""
		m.editing = cur
		return m.showTitleForm(formSubtask, "New Subtask")
	case key.Matches(km, keys.Note):
		return m.showNoteForm()
	case key.Matches(km, keys.Layout):
		m.widgets.arranging = true
		m.widgets.cursor = 0
	}
	return m, nil
}

func dayOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(tasks.Days))
	for i, d := range tasks.Days {
		opts[i] = huh.NewOption(d.Title(), string(d))
	}
	return opts
}

func projectOptions(list []projects.Project) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption(projects.NoProject.Name, "")}
	for _, p := range list {
		opts = append(opts, huh.NewOption(fmt.Sprintf("● %s", p.Name), p.ID))
	}
	return opts
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func validateEstimate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}

func (m tasksModel) showTaskForm(kind taskForm, t tasks.Task) (tasksModel, tea.Cmd) {
	*m.formTitle = t.Title
	*m.formDay = string(t.Day)
	*m.formPriority = string(t.Priority)
	*m.formEstimate = ""
	if t.PomodoroEstimate != nil {
		*m.formEstimate = strconv.Itoa(*t.PomodoroEstimate)
	}
	*m.formProject = t.ProjectID
	if _, ok := m.app.Projects.Get(t.ProjectID); !ok {
		*m.formProject = ""
	}
	m.formType = kind

	prioOptions := make([]huh.Option[string], len(tasks.Priorities))
	for i, p := range tasks.Priorities {
		prioOptions[i] = huh.NewOption(string(p), string(p))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.formTitle).Validate(validateTitle),
			huh.NewSelect[string]().Title("Day").Options(dayOptions()...).Value(m.formDay),
			huh.NewSelect[string]().Title("Priority").Options(prioOptions...).Value(m.formPriority),
			huh.NewInput().Title("Pomodoro estimate").Placeholder("optional").Value(m.formEstimate).Validate(validateEstimate),
			huh.NewSelect[string]().Title("Project").Options(projectOptions(m.app.Projects.List())...).Value(m.formProject),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showTitleForm(kind taskForm, title string) (tasksModel, tea.Cmd) {
	m.formType = kind
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(m.formTitle).Validate(validateTitle),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showCopyForm() (tasksModel, tea.Cmd) {
	m.formType = formCopy
	*m.formDay = string(m.app.Today())
	title := "Copy task to"
	if n := len(m.app.Tasks.Selected()); n > 0 {
		title = fmt.Sprintf("Repeat %d selected tasks on", n)
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title(title).Options(dayOptions()...).Value(m.formDay),
		),
	).WithShowHelp(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showNoteForm() (tasksModel, tea.Cmd) {
	m.formType = formNote
	*m.formTitle = ""
	*m.formContent = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Note title").Value(m.formTitle),
			huh.NewText().Title("Content").Value(m.formContent),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.submitForm()
	}
	return m, cmd
}

func parseEstimate(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func (m *tasksModel) submitForm() tea.Cmd {
	ts := m.app.Tasks
	day, _ := tasks.ParseDay(*m.formDay)
	switch m.formType {
	case formTask:
		prio, _ := tasks.ParsePriority(*m.formPriority)
		if _, ok := ts.Add(tasks.Draft{
			Title:            *m.formTitle,
			Day:              day,
			Priority:         prio,
			PomodoroEstimate: parseEstimate(*m.formEstimate),
			ProjectID:        *m.formProject,
		}); !ok {
			return statusErr("Task not added")
		}
	case formEdit:
		prio, _ := tasks.ParsePriority(*m.formPriority)
		est := parseEstimate(*m.formEstimate)
		if est == nil {
			zero := 0
			est = &zero
		}
		ts.Edit(m.editing.taskID, tasks.Patch{
			Title:            m.formTitle,
			Day:              &day,
			Priority:         &prio,
			PomodoroEstimate: est,
			ProjectID:        m.formProject,
		})
	case formSubtask:
		ts.AddSubtask(m.editing.taskID, *m.formTitle)
	case formEditSub:
		ts.EditSubtask(m.editing.taskID, m.editing.subID, *m.formTitle)
	case formCopy:
		var created []tasks.Task
		if len(ts.Selected()) > 0 {
			created = ts.RepeatSelected(day)
		} else if m.editing.taskID != "" {
			created = ts.Copy([]string{m.editing.taskID}, day)
		}
		return status(fmt.Sprintf("Copied %d task(s) to %s", len(created), day.Title()))
	case formNote:
		if _, ok := m.app.Notes.Add(*m.formTitle, *m.formContent); !ok {
			return statusErr("Empty note discarded")
		}
		return status("Note saved")
	}
	m.clamp()
	return nil
}

func (m tasksModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	if m.formActive && m.form != nil {
		titles := map[taskForm]string{
			formTask:    "New Task",
			formEdit:    "Edit Task",
			formSubtask: "New Subtask",
			formEditSub: "Edit Subtask",
			formCopy:    "Copy Tasks",
			formNote:    "New Note",
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(titles[m.formType]), "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}
	return m.widgets.render(m.renderTaskList)
}

// renderTaskList draws the day columns as one scrolling list, keeping the
// cursor line in view.
func (m tasksModel) renderTaskList(w, maxLines int) string {
	var lines []string
	cursorLine := 0
	idx := 0
	today := m.app.Today()
	ts := m.app.Tasks

	for _, d := range dayOrder(today) {
		dayTasks := ts.ByDay(d)
		done := 0
		for _, t := range dayTasks {
			if t.Completed {
				done++
			}
		}
		name := d.Title()
		if d == today {
			name += " (today)"
		}
		header := titleStyle.Render(name)
		if len(dayTasks) > 0 {
			header += mutedStyle.Render(fmt.Sprintf("  %d/%d  %d%%", done, len(dayTasks), ts.DayProgress(d)))
		}
		lines = append(lines, header)
		if len(dayTasks) == 0 {
			lines = append(lines, mutedStyle.Render("    no tasks"))
		}

		for _, t := range dayTasks {
			if idx == m.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderTaskLine(t, idx == m.cursor, w))
			idx++
			for _, st := range t.Subtasks {
				if idx == m.cursor {
					cursorLine = len(lines)
				}
				lines = append(lines, renderSubtaskLine(st, idx == m.cursor, w))
				idx++
			}
		}
	}

	if maxLines > 0 && len(lines) > maxLines {
		start := max(0, cursorLine-maxLines/2)
		end := min(len(lines), start+maxLines)
		start = max(0, end-maxLines)
		lines = lines[start:end]
	}
	return strings.Join(lines, "\n")
}

func (m tasksModel) renderTaskLine(t tasks.Task, selected bool, w int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	mark := " "
	if m.app.Tasks.IsSelected(t.ID) {
		mark = highlightStyle.Render("•")
	}
	check := mutedStyle.Render("○")
	if t.Completed {
		check = successStyle.Render("✓")
	}

	var meta []string
	meta = append(meta, priorityStyle(t.Priority).Render(string(t.Priority)))
	if t.PomodoroEstimate != nil || t.Pomodoros() > 0 {
		meta = append(meta, mutedStyle.Render(fmt.Sprintf("◷ %d/%d", t.Pomodoros(), t.Estimate())))
	}
	if p := m.app.Projects.Resolve(t.ProjectID); t.ProjectID != "" && p.ID != "" {
		meta = append(meta, dot(p.Color)+" "+mutedStyle.Render(p.Name))
	}
	if done, total := t.SubtaskCounts(); total > 0 {
		meta = append(meta, mutedStyle.Render(fmt.Sprintf("%d/%d subtasks", done, total)))
	}
	if t.CurrentPomodoroTask {
		meta = append(meta, accentStyle.Render("◎ focus"))
	}

	titleStyleFor := normalItemStyle
	switch {
	case selected:
		titleStyleFor = selectedItemStyle
	case t.Completed:
		titleStyleFor = doneStyle
	}
	title := titleStyleFor.Render(truncate(t.Title, max(10, w/2)))
	return fmt.Sprintf("%s%s %s %s  %s", cursor, mark, check, title, strings.Join(meta, "  "))
}

func renderSubtaskLine(st tasks.SubTask, selected bool, w int) string {
	cursor := "  "
	style := mutedStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	check := "○"
	if st.Completed {
		check = "✓"
		if !selected {
			style = doneStyle
		}
	}
	return fmt.Sprintf("%s      %s %s", cursor, check, style.Render(truncate(st.Title, max(10, w/2))))
}
