// Package storage resolves platform directories and persists small pieces of
// application state (the active theme, per-scope settings) in SQLite.
package storage

import (
	"os"
	"path/filepath"
	"sync"
)

const appName = "producticons"

// Dirs provides platform-native directory resolution with XDG support.
type Dirs struct {
	Config string // User configuration (config.yaml, icon contributions)
	Data   string // Persistent data (state database, installed themes)
}

// ProjectDirs returns workspace-local directories.
type ProjectDirs struct {
	Root   string // .producticons/
	Config string // .producticons/config.yaml
	Themes string // .producticons/themes/
}

var (
	globalDirs     *Dirs
	globalDirsOnce sync.Once
	globalDirsErr  error
)

// ResolveDirs returns platform-appropriate directories.
// Results are cached after first call.
func ResolveDirs() (*Dirs, error) {
	globalDirsOnce.Do(func() {
		globalDirs, globalDirsErr = resolveDirsImpl()
	})
	return globalDirs, globalDirsErr
}

func resolveDirsImpl() (*Dirs, error) {
	dirs := &Dirs{
		Config: resolveDir("XDG_CONFIG_HOME", platformConfigDefault()),
		Data:   resolveDir("XDG_DATA_HOME", platformDataDefault()),
	}
	return dirs, nil
}

func resolveDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, appName)
	}
	return fallback
}

// ResolveProjectDirs returns workspace-local directories for the given root.
func ResolveProjectDirs(projectRoot string) *ProjectDirs {
	root := filepath.Join(projectRoot, "."+appName)
	return &ProjectDirs{
		Root:   root,
		Config: filepath.Join(root, "config.yaml"),
		Themes: filepath.Join(root, "themes"),
	}
}

// EnsureDir creates a directory with the specified permissions if it doesn't exist.
// Uses 0700 when perm is zero.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0700
	}
	return os.MkdirAll(path, perm)
}

// ConfigDir returns the config subdirectory path.
func (d *Dirs) ConfigDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Config}, subpath...)...)
}

// DataDir returns the data subdirectory path.
func (d *Dirs) DataDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Data}, subpath...)...)
}

// ConfigFile is the default location of the user config file.
func (d *Dirs) ConfigFile() string {
	return d.ConfigDir("config.yaml")
}

// StateDB is the default location of the state database.
func (d *Dirs) StateDB() string {
	return d.DataDir("state.db")
}

// ThemesDir holds product icon themes installed for the user.
func (d *Dirs) ThemesDir() string {
	return d.DataDir("themes")
}
