package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/biome/internal/projects"
	"github.com/sadopc/biome/internal/tasks"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonSubtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type jsonTask struct {
	ID        string        `json:"id"`
	Day       string        `json:"day"`
	Title     string        `json:"title"`
	Priority  string        `json:"priority"`
	Completed bool          `json:"completed"`
	Estimate  *int          `json:"pomodoro_estimate,omitempty"`
	Pomodoros int           `json:"pomodoros_completed"`
	Project   string        `json:"project"`
	ProjectID string        `json:"project_id,omitempty"`
	Subtasks  []jsonSubtask `json:"subtasks"`
}

func ToJSON(ts []tasks.Task, index map[string]projects.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, ts, index, time.Now())
}

// WriteJSON writes an indented document with one entry per task.
func WriteJSON(out io.Writer, ts []tasks.Task, index map[string]projects.Project, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(ts),
		Tasks:      []jsonTask{},
	}

	for _, t := range ts {
		subs := make([]jsonSubtask, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			subs = append(subs, jsonSubtask{Title: st.Title, Completed: st.Completed})
		}
		export.Tasks = append(export.Tasks, jsonTask{
			ID:        t.ID,
			Day:       string(t.Day),
			Title:     t.Title,
			Priority:  string(t.Priority),
			Completed: t.Completed,
			Estimate:  t.PomodoroEstimate,
			Pomodoros: t.Pomodoros(),
			Project:   projectName(t.ProjectID, index),
			ProjectID: t.ProjectID,
			Subtasks:  subs,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
