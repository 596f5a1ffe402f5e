package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/producticons/core/storage"
)

func testDirs(t *testing.T) *storage.Dirs {
	t.Helper()
	return &storage.Dirs{
		Config: t.TempDir(),
		Data:   t.TempDir(),
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100*time.Millisecond, cfg.Themes.Debounce)
	assert.Equal(t, int64(10*1024*1024), cfg.Themes.MaxFileSize)
	assert.Equal(t, 32, cfg.Cache.Documents)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "en", cfg.Language)
	assert.NoError(t, cfg.Validate())
}

func TestManagerGet(t *testing.T) {
	m := NewManager(testDirs(t))
	require.NotNil(t, m.Get())
	assert.Equal(t, "text", m.Get().Log.Format)
}

func TestManagerLoadLayers(t *testing.T) {
	dirs := testDirs(t)
	project := t.TempDir()

	writeConfig(t, dirs.ConfigFile(), `
themes:
  active: user-theme
  debounce: 250ms
log:
  level: debug
`)
	writeConfig(t, storage.ResolveProjectDirs(project).Config, `
themes:
  active: project-theme
  paths: [themes/product.json]
`)

	m := NewManager(dirs).WithProjectRoot(project)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "project-theme", cfg.Themes.Active)
	assert.Equal(t, []string{"themes/product.json"}, cfg.Themes.Paths)
	assert.Equal(t, 250*time.Millisecond, cfg.Themes.Debounce)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestManagerLoadExplicitFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.yaml")
	writeConfig(t, file, "storage:\n  path: /tmp/state.db\n")

	m := NewManager(testDirs(t)).WithProjectRoot(t.TempDir()).WithFile(file)
	require.NoError(t, m.Load())
	assert.Equal(t, "/tmp/state.db", m.Get().Storage.Path)

	missing := NewManager(testDirs(t)).WithProjectRoot(t.TempDir()).WithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, missing.Load())
}

func TestManagerLoadEnvironment(t *testing.T) {
	t.Setenv("PRODUCTICONS_THEMES_ACTIVE", "env-theme")
	t.Setenv("PRODUCTICONS_THEMES_PATHS", "a.json,b.json")
	t.Setenv("PRODUCTICONS_THEMES_WATCH", "true")
	t.Setenv("PRODUCTICONS_CACHE_ICON_TTL", "5m")
	t.Setenv("PRODUCTICONS_LANGUAGE", "de")

	m := NewManager(testDirs(t)).WithProjectRoot(t.TempDir())
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "env-theme", cfg.Themes.Active)
	assert.Equal(t, []string{"a.json", "b.json"}, cfg.Themes.Paths)
	assert.True(t, cfg.Themes.Watch)
	assert.Equal(t, 5*time.Minute, cfg.Cache.IconTTL)
	assert.Equal(t, "de", cfg.Language)
}

func TestManagerLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("PRODUCTICONS_THEMES_DEBOUNCE", "soon")

	m := NewManager(testDirs(t)).WithProjectRoot(t.TempDir())
	assert.Error(t, m.Load())
}

func TestManagerLoadInvalidYAML(t *testing.T) {
	dirs := testDirs(t)
	writeConfig(t, dirs.ConfigFile(), "themes: [not, a, map]")

	m := NewManager(dirs).WithProjectRoot(t.TempDir())
	assert.Error(t, m.Load())
}
