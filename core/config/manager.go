// Package config loads layered producticons configuration: defaults, the
// user config file, the workspace config file, an explicit file, and finally
// PRODUCTICONS_* environment variables.
package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/adalundhe/producticons/core/storage"
)

const EnvPrefix = "PRODUCTICONS_"

type Manager struct {
	configPtr   unsafe.Pointer
	dirs        *storage.Dirs
	projectRoot string
	extraFile   string
}

type Config struct {
	Themes   ThemesConfig   `yaml:"themes" envPrefix:"THEMES_"`
	Registry RegistryConfig `yaml:"registry" envPrefix:"REGISTRY_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Cache    CacheConfig    `yaml:"cache" envPrefix:"CACHE_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Language string         `yaml:"language" env:"LANGUAGE"`
}

type ThemesConfig struct {
	// Paths are theme files or directories searched for *.json themes.
	Paths []string `yaml:"paths" env:"PATHS"`
	// Active is the settings id of the theme to activate.
	Active       string        `yaml:"active" env:"ACTIVE"`
	Watch        bool          `yaml:"watch" env:"WATCH"`
	Debounce     time.Duration `yaml:"debounce" env:"DEBOUNCE"`
	AllowedRoots []string      `yaml:"allowed_roots" env:"ALLOWED_ROOTS"`
	MaxFileSize  int64         `yaml:"max_file_size" env:"MAX_FILE_SIZE"`
}

type RegistryConfig struct {
	// Path is a YAML file of icon contributions.
	Path string `yaml:"path" env:"PATH"`
}

type StorageConfig struct {
	// Path is the SQLite state database. Empty uses the platform data dir.
	Path string `yaml:"path" env:"PATH"`
}

type CacheConfig struct {
	Documents   int           `yaml:"documents" env:"DOCUMENTS"`
	IconMaxCost int64         `yaml:"icon_max_cost" env:"ICON_MAX_COST"`
	IconTTL     time.Duration `yaml:"icon_ttl" env:"ICON_TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

func NewManager(dirs *storage.Dirs) *Manager {
	m := &Manager{
		dirs:        dirs,
		projectRoot: ".",
	}
	atomic.StorePointer(&m.configPtr, unsafe.Pointer(DefaultConfig()))
	return m
}

// WithProjectRoot sets the workspace whose .producticons/config.yaml is
// loaded.
func (m *Manager) WithProjectRoot(root string) *Manager {
	m.projectRoot = root
	return m
}

// WithFile adds an explicit config file layered over the others.
func (m *Manager) WithFile(path string) *Manager {
	m.extraFile = path
	return m
}

func DefaultConfig() *Config {
	return &Config{
		Themes: ThemesConfig{
			Debounce:    100 * time.Millisecond,
			MaxFileSize: 10 * 1024 * 1024,
		},
		Cache: CacheConfig{
			Documents:   32,
			IconMaxCost: 1 << 23,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Language: "en",
	}
}

func (m *Manager) Get() *Config {
	return (*Config)(atomic.LoadPointer(&m.configPtr))
}

func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if m.dirs != nil {
		if err := mergeYAMLFile(m.dirs.ConfigFile(), cfg, false); err != nil {
			return fmt.Errorf("user config: %w", err)
		}
	}

	if err := mergeYAMLFile(storage.ResolveProjectDirs(m.projectRoot).Config, cfg, false); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	if m.extraFile != "" {
		if err := mergeYAMLFile(m.extraFile, cfg, true); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}

	if err := applyEnvironment(cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return nil
}

func mergeYAMLFile(path string, cfg *Config, required bool) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return nil
	}
	if err != nil {
		return err
	}

	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	DeepMerge(cfg, &layer)
	return nil
}

func applyEnvironment(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}

func (c *Config) Validate() error {
	if c.Themes.Debounce < 0 {
		return fmt.Errorf("themes.debounce must not be negative")
	}
	if c.Themes.MaxFileSize < 0 {
		return fmt.Errorf("themes.max_file_size must not be negative")
	}
	if c.Cache.Documents < 0 {
		return fmt.Errorf("cache.documents must not be negative")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
