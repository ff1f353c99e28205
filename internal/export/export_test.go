package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/biome/internal/projects"
	"github.com/sadopc/biome/internal/tasks"
)

func intp(n int) *int { return &n }

func sampleData() ([]tasks.Task, map[string]projects.Project) {
	ts := []tasks.Task{
		{
			ID:                 "t1",
			Title:              "Write report",
			Day:                tasks.Monday,
			Priority:           tasks.PriorityHigh,
			Completed:          true,
			PomodoroEstimate:   intp(3),
			PomodorosCompleted: intp(2),
			ProjectID:          "p1",
			Subtasks: []tasks.SubTask{
				{ID: "s1", Title: "outline", Completed: true},
				{ID: "s2", Title: "draft"},
			},
		},
		{
			ID:        "t2",
			Title:     "Gym",
			Day:       tasks.Tuesday,
			Priority:  tasks.PriorityLow,
			ProjectID: "deleted",
			Subtasks:  []tasks.SubTask{},
		},
		{
			ID:       "t3",
			Title:    "Read",
			Day:      tasks.Friday,
			Priority: tasks.PriorityMedium,
		},
	}

	index := Index([]projects.Project{
		{ID: "p1", Name: "Project Alpha", Color: "#3b82f6"},
		{ID: "p2", Name: "Project Beta", Color: "#10b981"},
	})

	return ts, index
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	ts, index := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(ts, index, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	want := []string{"t1", "monday", "Write report", "high", "true", "3", "2", "Project Alpha", "1", "2"}
	for i, v := range want {
		if records[1][i] != v {
			t.Fatalf("row[%d] = %q, want %q", i, records[1][i], v)
		}
	}

	// Dangling project and no estimate
	row := records[2]
	if row[7] != "No project" {
		t.Fatalf("Project = %q, want No project", row[7])
	}
	if row[5] != "" {
		t.Fatalf("Estimate = %q, want empty", row[5])
	}
	if row[6] != "0" {
		t.Fatalf("Pomodoros = %q, want 0", row[6])
	}

	// No project id at all
	if records[3][7] != "No project" {
		t.Fatalf("Project = %q, want No project", records[3][7])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestWriteCSVSpecialCharacters(t *testing.T) {
	ts := []tasks.Task{{
		ID:        "t1",
		Title:     `title with "quotes" and, commas`,
		Day:       tasks.Sunday,
		Priority:  tasks.PriorityLow,
		ProjectID: "p1",
	}}
	index := Index([]projects.Project{{ID: "p1", Name: `Project "Special"`}})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ts, index); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][2] != `title with "quotes" and, commas` {
		t.Fatalf("title mangled: %q", records[1][2])
	}
	if records[1][7] != `Project "Special"` {
		t.Fatalf("project name mangled: %q", records[1][7])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	ts, index := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(ts, index, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Tasks) != 3 {
		t.Fatalf("count = %d, tasks = %d, want 3", result.Count, len(result.Tasks))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	first := result.Tasks[0]
	if first.Project != "Project Alpha" || first.ProjectID != "p1" {
		t.Fatalf("project = %q (%q)", first.Project, first.ProjectID)
	}
	if first.Estimate == nil || *first.Estimate != 3 {
		t.Fatalf("estimate = %v, want 3", first.Estimate)
	}
	if first.Pomodoros != 2 {
		t.Fatalf("pomodoros = %d, want 2", first.Pomodoros)
	}
	if len(first.Subtasks) != 2 || !first.Subtasks[0].Completed {
		t.Fatalf("subtasks = %+v", first.Subtasks)
	}

	if result.Tasks[1].Project != "No project" {
		t.Fatalf("expected 'No project', got %q", result.Tasks[1].Project)
	}
	if result.Tasks[1].Estimate != nil {
		t.Fatal("estimate should be omitted")
	}
	if result.Tasks[2].Subtasks == nil {
		t.Fatal("subtasks should be an empty list, not null")
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	if err := WriteJSON(&buf, nil, nil, now); err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.ExportedAt != "2026-10-17T12:00:00Z" {
		t.Fatalf("exported_at = %q", result.ExportedAt)
	}
	if !strings.Contains(buf.String(), `"tasks": []`) {
		t.Fatalf("empty export should carry an empty list:\n%s", buf.String())
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}
