package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dialin/internal/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the CLI against db and returns stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"log", "history", "delete", "favorite", "insight", "stats", "caffeine", "recipes", "beans", "export", "import"} {
		assert.Contains(t, names, want)
	}
}

func TestLogAndInsight(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")

	out, err := runCLI(t, db, "log", "--bean", "Kenya AA", "--grind", "12", "--rating", "sour")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged")
	assert.Contains(t, out, "Slightly under-extracted")
	assert.Contains(t, out, "Next: grind 11 (-1), temperature Med")

	out, err = runCLI(t, db, "--json", "insight", "kenya aa")
	require.NoError(t, err)
	var insight map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &insight))
	assert.Equal(t, "small", insight["tip"].(map[string]any)["adjustment"])

	out, err = runCLI(t, db, "insight", "Brazil")
	require.NoError(t, err)
	assert.Contains(t, out, "No shots for this bean yet")
}

func TestInsight_CompletesBeanNames(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")
	for _, bean := range []string{"Kenya AA", "Brazil", "kenya peaberry"} {
		_, err := runCLI(t, db, "log", "--bean", bean, "--rating", "balanced")
		require.NoError(t, err)
	}

	root := newRootCmd()
	require.NoError(t, root.PersistentFlags().Set("db", db))
	insight, _, err := root.Find([]string{"insight"})
	require.NoError(t, err)
	require.NotNil(t, insight.ValidArgsFunction)

	beans, directive := insight.ValidArgsFunction(insight, nil, "ken")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.ElementsMatch(t, []string{"Kenya AA", "kenya peaberry"}, beans)

	beans, _ = insight.ValidArgsFunction(insight, []string{"Brazil"}, "")
	assert.Empty(t, beans)
}

func TestLog_Validation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")

	_, err := runCLI(t, db, "log", "--bean", "Kenya", "--grind", "30", "--rating", "sour")
	assert.ErrorIs(t, err, models.ErrGrindOutOfRange)

	_, err = runCLI(t, db, "log", "--bean", "Kenya", "--rating", "perfect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rating")

	_, err = runCLI(t, db, "log", "--bean", "Kenya", "--rating", "balanced", "--milk", "oat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type:style")
}

func TestLog_ColdBrewWithMilk(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")

	_, err := runCLI(t, db, "log", "--bean", "Brazil", "--brew-type", "over ice", "--milk", "plant:cold foam", "--rating", "very bitter")
	require.NoError(t, err)

	out, err := runCLI(t, db, "--json", "history")
	require.NoError(t, err)
	var shots []models.ShotLog
	require.NoError(t, json.Unmarshal([]byte(out), &shots))
	require.Len(t, shots, 1)
	assert.Equal(t, models.BrewOverIce, shots[0].BrewType)
	assert.Nil(t, shots[0].Temperature)
	assert.Equal(t, models.MilkColdFoam, shots[0].Milk.Style)
}

func TestHistoryFavoriteDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")

	_, err := runCLI(t, db, "log", "--bean", "Kenya", "--rating", "balanced")
	require.NoError(t, err)
	_, err = runCLI(t, db, "log", "--bean", "Brazil", "--rating", "bitter")
	require.NoError(t, err)

	out, err := runCLI(t, db, "--json", "history", "--rating", "balanced")
	require.NoError(t, err)
	var shots []models.ShotLog
	require.NoError(t, json.Unmarshal([]byte(out), &shots))
	require.Len(t, shots, 1)
	id := shots[0].ID

	out, err = runCLI(t, db, "favorite", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Starred")

	out, err = runCLI(t, db, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "*"+id), "favorite listed first: %q", lines[1])

	_, err = runCLI(t, db, "delete", id)
	require.NoError(t, err)
	_, err = runCLI(t, db, "delete", id)
	assert.Error(t, err)
}

func TestStatsAndCaffeine(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")
	_, err := runCLI(t, db, "log", "--bean", "Kenya", "--rating", "balanced", "--basket", "luxe")
	require.NoError(t, err)

	out, err := runCLI(t, db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total shots:    1")
	assert.Contains(t, out, "Balanced rate:  100%")

	out, err = runCLI(t, db, "caffeine")
	require.NoError(t, err)
	assert.Contains(t, out, "Today:       189 mg (1 shots)")
}

func TestRecipesAndBeans(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.db")
	_, err := runCLI(t, db, "log", "--bean", "Kenya", "--rating", "balanced")
	require.NoError(t, err)

	out, err := runCLI(t, db, "--json", "history")
	require.NoError(t, err)
	var shots []models.ShotLog
	require.NoError(t, json.Unmarshal([]byte(out), &shots))

	out, err = runCLI(t, db, "recipes", "save", shots[0].ID, "--name", "House")
	require.NoError(t, err)
	assert.Contains(t, out, "(House)")

	out, err = runCLI(t, db, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "House")

	_, err = runCLI(t, db, "beans", "add", "--name", "Gesha", "--roast-level", "light", "--roast-date", "2025-01-01")
	require.NoError(t, err)

	_, err = runCLI(t, db, "beans", "add", "--name", "Bad", "--roast-date", "01/01/2025")
	assert.ErrorIs(t, err, models.ErrInvalidRoastDate)

	out, err = runCLI(t, db, "beans")
	require.NoError(t, err)
	assert.Contains(t, out, "Gesha")
	assert.Contains(t, out, "Stale")
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	backup := filepath.Join(dir, "backup.json")
	csvPath := filepath.Join(dir, "shots.csv")

	_, err := runCLI(t, src, "log", "--bean", "Kenya", "--rating", "sour", "--notes", `a "bright" one`)
	require.NoError(t, err)

	_, err = runCLI(t, src, "export", "backup", backup)
	require.NoError(t, err)
	_, err = runCLI(t, src, "export", "csv", csvPath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a ""bright"" one"`)

	out, err := runCLI(t, dst, "import", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 shots")

	out, err = runCLI(t, dst, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Kenya")
}

func TestImport_RejectsMissingShots(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "dialin.db")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":1}`), 0o644))

	_, err := runCLI(t, db, "import", bad)
	require.Error(t, err)
	assert.Equal(t, "invalid backup file: missing shots array", err.Error())
}

func TestSQLiteStorage(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dialin.sqlite")

	_, err := runCLI(t, db, "--storage", "sqlite", "log", "--bean", "Kenya", "--rating", "balanced")
	require.NoError(t, err)

	out, err := runCLI(t, db, "--storage", "sqlite", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Kenya")
}
