package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/projects"
	"github.com/sadopc/biome/internal/tasks"
)

type projectsModel struct {
	app    *app.App
	width  int
	height int

	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected project

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project"

	// Form field pointers (survive value copies)
	formName  *string
	formColor *string

	editingID string
}

func newProjectsModel(a *app.App) projectsModel {
	name, color := "", projects.Palette[0]
	return projectsModel{
		app:       a,
		formName:  &name,
		formColor: &color,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p projectsModel) selected() (projects.Project, bool) {
	list := p.app.Projects.List()
	if p.cursor < 0 || p.cursor >= len(list) {
		return projects.Project{}, false
	}
	return list[p.cursor], true
}

// projectTasks returns the tasks assigned to id in week order.
func (p projectsModel) projectTasks(id string) []tasks.Task {
	var out []tasks.Task
	for _, d := range tasks.Days {
		for _, t := range p.app.Tasks.ByDay(d) {
			if t.ProjectID == id {
				out = append(out, t)
			}
		}
	}
	return out
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	n := len(p.app.Projects.List())
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < n-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if n > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm("project", projects.Project{Color: projects.Palette[0]})
	case key.Matches(msg, keys.Edit):
		if proj, ok := p.selected(); ok {
			p.editingID = proj.ID
			return p.showProjectForm("edit_project", proj)
		}
	case key.Matches(msg, keys.Delete):
		if proj, ok := p.selected(); ok {
			p.app.Projects.Delete(proj.ID)
			if p.cursor >= n-1 {
				p.cursor = max(0, n-2)
			}
			return p, status("Deleted " + proj.Name)
		}
	}
	return p, nil
}

func (p projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	proj, ok := p.selected()
	if !ok {
		p.viewingTasks = false
		return p, nil
	}
	list := p.projectTasks(proj.ID)
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(list)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		if p.taskCursor < len(list) {
			p.app.Tasks.Toggle(list[p.taskCursor].ID)
		}
	}
	return p, nil
}

func (p projectsModel) showProjectForm(kind string, proj projects.Project) (projectsModel, tea.Cmd) {
	*p.formName = proj.Name
	*p.formColor = proj.Color
	p.formType = kind

	colorOptions := make([]huh.Option[string], 0, len(projects.Palette)+1)
	for _, c := range projects.Palette {
		colorOptions = append(colorOptions, huh.NewOption(dot(c)+" "+c, c))
	}
	if !containsColor(proj.Color) && proj.Color != "" {
		colorOptions = append(colorOptions, huh.NewOption(dot(proj.Color)+" "+proj.Color, proj.Color))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(validateTitle),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func containsColor(c string) bool {
	for _, pc := range projects.Palette {
		if strings.EqualFold(pc, c) {
			return true
		}
	}
	return false
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		switch p.formType {
		case "project":
			if _, ok := p.app.Projects.Add(*p.formName, *p.formColor); ok {
				p.cursor = len(p.app.Projects.List()) - 1
				return p, status("Project created")
			}
		case "edit_project":
			if p.app.Projects.Edit(p.editingID, projects.Patch{Name: p.formName, Color: p.formColor}) {
				return p, status("Project updated")
			}
		}
		return p, statusErr("Project name is required")
	}

	return p, cmd
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.formType == "edit_project" {
			title = titleStyle.Render("Edit Project")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")
	list := p.app.Projects.List()

	if len(list) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header
	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s %-10s", "", "Name", "Tasks", "Pomodoros"))
	rows = append(rows, header)

	for i, proj := range list {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		done, total, poms := 0, 0, 0
		for _, t := range p.projectTasks(proj.ID) {
			total++
			if t.Completed {
				done++
			}
			poms += t.Pomodoros()
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s %-10s %-10d", cursor, dot(proj.Color),
			truncate(proj.Name, 24), fmt.Sprintf("%d/%d", done, total), poms))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderTaskView() string {
	w := p.width - 4
	proj, _ := p.selected()
	title := titleStyle.Render(fmt.Sprintf("%s %s · Tasks", dot(proj.Color), proj.Name))
	list := p.projectTasks(proj.ID)

	if len(list) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Assign one from the Tasks view."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, t := range list {
		cursor := "  "
		style := normalItemStyle
		if i == p.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		} else if t.Completed {
			style = doneStyle
		}
		check := "○"
		if t.Completed {
			check = "✓"
		}
		day := mutedStyle.Render(fmt.Sprintf("  %s", t.Day.Title()))
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, check, t.Title))+day)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  x: toggle  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
