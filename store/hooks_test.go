package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, install, uninstall Script) *SQLHooks {
	t.Helper()
	h, err := Open("", ":memory:", install, uninstall)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func tableNames(t *testing.T, h *SQLHooks) []string {
	t.Helper()
	rows, err := h.DB().Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestDefaultScriptsInstallAndUninstall(t *testing.T) {
	h := openMemory(t, DefaultInstallScript(), DefaultUninstallScript())
	ctx := context.Background()

	require.NoError(t, h.Install(ctx))
	assert.Contains(t, tableNames(t, h), "users")
	assert.Contains(t, tableNames(t, h), "posts")
	assert.Contains(t, tableNames(t, h), "upvotes")

	require.NoError(t, h.Uninstall(ctx))
	assert.Empty(t, tableNames(t, h))
}

func TestUninstallWhenNothingIsInstalled(t *testing.T) {
	h := openMemory(t, DefaultInstallScript(), DefaultUninstallScript())
	require.NoError(t, h.Uninstall(context.Background()))
	require.NoError(t, h.Uninstall(context.Background()))
}

func TestReinstallAfterUninstallStartsEmpty(t *testing.T) {
	h := openMemory(t, DefaultInstallScript(), DefaultUninstallScript())
	ctx := context.Background()

	require.NoError(t, h.Install(ctx))
	_, err := h.DB().Exec(`INSERT INTO users (username, email, password) VALUES ('a', 'a@example.com', 'p')`)
	require.NoError(t, err)

	require.NoError(t, h.Uninstall(ctx))
	require.NoError(t, h.Install(ctx))

	var count int
	require.NoError(t, h.DB().QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestFailingScriptReportsDatabaseMessage(t *testing.T) {
	h := openMemory(t, Script{Name: "broken.sql", SQL: "CREATE TABLE oops ("}, Script{})

	err := h.Install(context.Background())
	require.Error(t, err)
	var se *ScriptError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "broken.sql", se.Script)
	assert.True(t, se.Fatal())
	assert.Contains(t, err.Error(), "database said:")
	assert.Contains(t, err.Error(), se.Err.Error())
}

func TestEmptyScriptDoesNothing(t *testing.T) {
	h := openMemory(t, Script{}, Script{})
	assert.NoError(t, h.Install(context.Background()))
	assert.NoError(t, h.Uninstall(context.Background()))
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.sql")
	require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE t (x INTEGER);"), 0o600))

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "install.sql", s.Name)
	assert.Equal(t, "CREATE TABLE t (x INTEGER);", s.SQL)

	_, err = LoadScript(filepath.Join(t.TempDir(), "nope.sql"))
	assert.Error(t, err)
}

func TestFuncHooks(t *testing.T) {
	var calls []string
	h := FuncHooks{
		InstallFunc:   func(context.Context) error { calls = append(calls, "install"); return nil },
		UninstallFunc: func(context.Context) error { calls = append(calls, "uninstall"); return errors.New("boom") },
	}
	assert.NoError(t, h.Install(context.Background()))
	assert.EqualError(t, h.Uninstall(context.Background()), "boom")
	assert.Equal(t, []string{"install", "uninstall"}, calls)

	assert.NoError(t, NoopHooks().Install(context.Background()))
	assert.NoError(t, NoopHooks().Uninstall(context.Background()))
}
