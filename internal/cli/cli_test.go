package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/store"
	"github.com/sadopc/biome/internal/tasks"
	"github.com/sadopc/biome/internal/weekly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	dir    string
	config string
	db     string
	log    string
}

func setup(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "biome.db"),
		log:    filepath.Join(dir, "biome.log"),
	}
	content := fmt.Sprintf("db_path: %s\nlog_file: %s\nlog_level: info\n", e.db, e.log)
	require.NoError(t, os.WriteFile(e.config, []byte(content), 0o644))
	return e
}

func run(t *testing.T, e env, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.Execute()
	return buf.String(), err
}

// seed opens the database directly and hands the wired app to fn.
func seed(t *testing.T, e env, fn func(st *store.Store, a *app.App)) {
	t.Helper()
	st, err := store.New(e.db)
	require.NoError(t, err)
	defer st.Close()
	fn(st, app.New(st, app.Options{}))
}

func TestVersion(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "version")
	require.NoError(t, err)
	assert.Equal(t, "biome test\n", out)
}

func TestStatusFreshDatabase(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Work 25:00 (paused)")
	assert.Contains(t, out, "Focus:     none")
	assert.Contains(t, out, "0/0 tasks (0%)")
	assert.FileExists(t, e.db)
	assert.FileExists(t, e.log)
}

func TestStatusShowsFocusTask(t *testing.T) {
	e := setup(t)
	seed(t, e, func(_ *store.Store, a *app.App) {
		task, ok := a.Tasks.Add(tasks.Draft{Title: "Write essay", Day: a.Today()})
		require.True(t, ok)
		require.True(t, a.FocusTask(task.ID))
	})

	out, err := run(t, e, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus:     Write essay (0/0)")
	assert.Contains(t, out, "0/1 tasks (0%)")
}

func TestExportCSVToStdout(t *testing.T) {
	e := setup(t)
	seed(t, e, func(_ *store.Store, a *app.App) {
		a.Tasks.Add(tasks.Draft{Title: "Buy milk", Day: tasks.Monday})
	})

	out, err := run(t, e, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "ID,Day,Title,Priority")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "No project")
}

func TestExportJSONFile(t *testing.T) {
	e := setup(t)
	seed(t, e, func(_ *store.Store, a *app.App) {
		a.Tasks.Add(tasks.Draft{Title: "One", Day: tasks.Monday})
		a.Tasks.Add(tasks.Draft{Title: "Two", Day: tasks.Friday})
	})

	path := filepath.Join(e.dir, "out.json")
	out, err := run(t, e, "export", "--format", "json", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 tasks")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Count int `json:"count"`
		Tasks []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Len(t, doc.Tasks, 2)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := setup(t)
	_, err := run(t, e, "export", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestWeekFresh(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "week")
	require.NoError(t, err)
	assert.Contains(t, out, "This week: 0 pomodoros")
	assert.Contains(t, out, "No finished weeks yet.")
}

func TestWeekRollsOver(t *testing.T) {
	e := setup(t)
	lastWeek := weekly.StartOfWeek(time.Now()).AddDate(0, 0, -7)
	seed(t, e, func(st *store.Store, _ *app.App) {
		require.NoError(t, store.Save(st, store.KeyWeekStart, lastWeek.Format(time.RFC3339), nil))
		require.NoError(t, store.Save(st, store.KeyPomodoroCount, 6, nil))
	})

	out, err := run(t, e, "week")
	require.NoError(t, err)
	assert.Contains(t, out, "Last week: 6 pomodoros")
	assert.Contains(t, out, "This week: 0 pomodoros")
	assert.Contains(t, out, lastWeek.Format("2006-01-02"))

	// The rollover happens once.
	out, err = run(t, e, "week")
	require.NoError(t, err)
	assert.NotContains(t, out, "Last week")
}

func TestConfigShow(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "db_path: "+e.db)
	assert.Contains(t, out, "tick_interval: 200ms")
}

func TestConfigInitAndPath(t *testing.T) {
	dir := t.TempDir()
	e := env{config: filepath.Join(dir, "nested", "config.yaml")}

	out, err := run(t, e, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, e.config+"\n", out)

	out, err = run(t, e, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+e.config)
	assert.FileExists(t, e.config)

	_, err = run(t, e, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestMissingExplicitConfigFails(t *testing.T) {
	e := env{config: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := run(t, e, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
