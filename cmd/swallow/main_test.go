package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/skadiD/swallow"
	"github.com/skadiD/swallow/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestQuery(t *testing.T) {
	pterm.DisableStyling()
	dsn := "sqlite3://" + filepath.Join(t.TempDir(), "app.db")

	out, err := run(t, "-d", dsn, "query", "CREATE TABLE items (a INTEGER, b TEXT)")
	require.NoError(t, err)
	assert.Contains(t, out, "0 row(s) affected")

	out, err = run(t, "-d", dsn, "query", "INSERT INTO items (a, b) VALUES (1, 'first'), (2, 'second')")
	require.NoError(t, err)
	assert.Contains(t, out, "2 row(s) affected")

	out, err = run(t, "-d", dsn, "query", "--stats", "SELECT a, b FROM items ORDER BY a")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "1 queries, 2 rows")

	_, err = run(t, "-d", dsn, "query", "SELECT * FROM missing")
	assert.Error(t, err)

	_, err = run(t, "query", "SELECT 1")
	assert.ErrorIs(t, err, database.ErrNoDatabase)
}

func TestCacheCommands(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := cache.NewFile(dir)
	require.NoError(t, err)
	ns := cache.WithPrefix(b, "app:")
	require.NoError(t, ns.Store(ctx, "k1", cache.Rows{{"a": int64(1)}}, 0))
	require.NoError(t, ns.Store(ctx, "k2", cache.Rows{{"a": int64(2)}}, 0))

	out, err := run(t, "--cache", dir, "--config", writeConfig(t, "cache_prefix: \"app:\"\n"), "cache", "clear", "k1", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "k1: cleared")
	assert.Contains(t, out, "nope: missing")

	out, err = run(t, "--cache", dir, "cache", "flush")
	require.NoError(t, err)
	assert.Contains(t, out, "cache flushed")
	_, hit, err := ns.Fetch(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGen_RequiresDatabase(t *testing.T) {
	_, err := run(t, "gen", "--dry-run")
	assert.ErrorIs(t, err, database.ErrNoDatabase)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swallow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
