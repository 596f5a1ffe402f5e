// Package cmd provides the producticons command line interface.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/adalundhe/producticons/core/cache"
	"github.com/adalundhe/producticons/core/config"
	"github.com/adalundhe/producticons/core/filesystem"
	"github.com/adalundhe/producticons/core/nls"
	"github.com/adalundhe/producticons/core/storage"
	"github.com/adalundhe/producticons/core/themes"
)

// =============================================================================
// Global Flags
// =============================================================================

var (
	configPath string
	logLevel   string
	logFormat  string
	statePath  string
	langFlag   string
	outputJSON bool
)

// appConfig, appDirs and logger are set by the root command before any
// subcommand runs.
var (
	appConfig *config.Config
	appDirs   *storage.Dirs
	logger    *slog.Logger
)

// Caches created by the running command, reported when it finishes.
var (
	documentCache *cache.DocumentCache
	iconCache     *cache.IconCache
)

var rootCmd = &cobra.Command{
	Use:   "producticons",
	Short: "Validate, resolve and activate product icon themes",
	Long: `producticons loads product icon theme files, reports problems in them,
resolves icon ids through the icon registry, renders the font style sheet and
remembers the active theme between runs.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: reportCaches,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file layered over the user and workspace config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "State database path")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "Language for diagnostics (en, de)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	dirs, err := storage.ResolveDirs()
	if err != nil {
		return err
	}

	manager := config.NewManager(dirs)
	if configPath != "" {
		manager.WithFile(configPath)
	}
	if err := manager.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if statePath != "" {
		cfg.Storage.Path = statePath
	}
	if langFlag != "" {
		cfg.Language = langFlag
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = dirs.StateDB()
	}

	l, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	appConfig = cfg
	appDirs = dirs
	logger = l
	documentCache = nil
	iconCache = nil
	return nil
}

func reportCaches(_ *cobra.Command, _ []string) error {
	if documentCache != nil {
		logger.Debug("document cache",
			slog.Int("cached", documentCache.Len()),
			slog.Any("stats", documentCache.Stats().ToSnapshot()))
	}
	if iconCache != nil {
		logger.Debug("icon cache", slog.Any("stats", iconCache.Stats().ToSnapshot()))
	}
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", cfg.Level)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
}

func localizer() *nls.Localizer {
	tag, err := language.Parse(appConfig.Language)
	if err != nil {
		return nls.Default()
	}
	return nls.New(tag)
}

// newThemeLoader builds the theme document loader from the config.
func newThemeLoader() (*themes.Loader, error) {
	fsCfg := filesystem.DefaultLoaderConfig(appConfig.Themes.AllowedRoots...)
	fsCfg.MaxFileSize = appConfig.Themes.MaxFileSize
	fsCfg.AuditLogger = &filesystem.SlogAuditLogger{Logger: logger}
	resources, err := filesystem.NewLoader(fsCfg)
	if err != nil {
		return nil, err
	}

	documents, err := cache.NewDocumentCache(appConfig.Cache.Documents)
	if err != nil {
		return nil, err
	}
	documentCache = documents

	return themes.NewLoader(resources,
		themes.WithLogger(logger),
		themes.WithLocalizer(localizer()),
		themes.WithDocumentCache(documents),
	), nil
}

func openStateStore() (*storage.Store, error) {
	return storage.OpenStore(appConfig.Storage.Path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
