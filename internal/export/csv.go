package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sadopc/biome/internal/projects"
	"github.com/sadopc/biome/internal/tasks"
)

var csvHeader = []string{"ID", "Day", "Title", "Priority", "Completed", "Estimate", "Pomodoros", "Project", "Subtasks Done", "Subtasks Total"}

func projectName(id string, index map[string]projects.Project) string {
	if p, ok := index[id]; ok && id != "" {
		return p.Name
	}
	return projects.NoProject.Name
}

// Index keys projects by id for the exporters.
func Index(list []projects.Project) map[string]projects.Project {
	m := make(map[string]projects.Project, len(list))
	for _, p := range list {
		m[p.ID] = p
	}
	return m
}

func ToCSV(ts []tasks.Task, index map[string]projects.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, ts, index)
}

// WriteCSV writes one row per task.
func WriteCSV(out io.Writer, ts []tasks.Task, index map[string]projects.Project) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range ts {
		done, total := t.SubtaskCounts()
		estimate := ""
		if t.PomodoroEstimate != nil {
			estimate = strconv.Itoa(*t.PomodoroEstimate)
		}
		row := []string{
			t.ID,
			string(t.Day),
			t.Title,
			string(t.Priority),
			strconv.FormatBool(t.Completed),
			estimate,
			strconv.Itoa(t.Pomodoros()),
			projectName(t.ProjectID, index),
			strconv.Itoa(done),
			strconv.Itoa(total),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
