package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skadiD/swallow"
	"github.com/skadiD/swallow/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "swallow.yaml", "database: \"sqlite3::memory:\"\ncache: memory\ncache_prefix: \"file:\"\nstats: true\n")
	t.Setenv("SWALLOW_CACHE_PREFIX", "env:")

	cfg, err := Load(Options{File: file, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Database:    "sqlite3::memory:",
		Cache:       "memory",
		CachePrefix: "env:",
		Stats:       true,
	}, cfg)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cache)
	assert.False(t, cfg.ShowSQL)

	_, err = Load(Options{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "SWALLOW_SHOW_SQL=true\nSWALLOW_DATABASE=sqlite3::memory:\n")
	t.Setenv("SWALLOW_DATABASE", "pdosqlite::memory:")
	t.Cleanup(func() { _ = os.Unsetenv("SWALLOW_SHOW_SQL") })

	cfg, err := Load(Options{File: writeFile(t, dir, "c.yaml", "cache: memory\n"), EnvFiles: []string{env}})
	require.NoError(t, err)
	assert.True(t, cfg.ShowSQL)
	// 已存在的环境变量不被 .env 覆盖
	assert.Equal(t, "pdosqlite::memory:", cfg.Database)
}

func TestConfig_Open(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{Database: "sqlite3::memory:", Cache: "memory", CachePrefix: "t:", Stats: true}
	db, err := cfg.Open(ctx)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping(ctx))
	_, ok := db.Cache().(*cache.Namespace)
	assert.True(t, ok)

	_, err = (&Config{}).Open(ctx)
	assert.ErrorIs(t, err, database.ErrNoDatabase)

	_, err = (&Config{Database: "sqlite3::memory:", Cache: "ftp://nope"}).Open(ctx)
	assert.ErrorIs(t, err, cache.ErrUnsupportedCache)
}
