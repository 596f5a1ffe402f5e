package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adalundhe/producticons/core/cache"
	"github.com/adalundhe/producticons/core/iconregistry"
	"github.com/adalundhe/producticons/core/themes"
	"github.com/adalundhe/producticons/core/watcher"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <theme.json> [icon-id...]",
	Short: "Resolve icon ids against a product icon theme",
	Long: `Resolve icon ids against a product icon theme.

An id the theme does not define falls back through the icon registry: to the
icon its contribution refers to, or to the contribution's own glyph. Without
icon ids every icon in the registry is resolved.

Examples:
  producticons resolve ./fluent.json close chevron-down
  producticons resolve ./fluent.json panel-close --registry ./icons.yaml
  producticons resolve ./fluent.json --registry ./icons.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

var resolveRegistry string

func init() {
	resolveCmd.Flags().StringVarP(&resolveRegistry, "registry", "r", "", "Icon contribution file (YAML)")
	rootCmd.AddCommand(resolveCmd)
}

type resolvedIcon struct {
	ID            string `json:"id"`
	Found         bool   `json:"found"`
	FontCharacter string `json:"fontCharacter,omitempty"`
	FontID        string `json:"fontId,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	service, err := newService(registry, nil)
	if err != nil {
		return err
	}
	defer service.Close()

	theme, err := themes.FromFile(args[0], false)
	if err != nil {
		return err
	}
	if err := service.Register(theme); err != nil {
		return err
	}
	if _, err := service.SetActive(cmd.Context(), theme.SettingsID); err != nil {
		return err
	}

	ids := args[1:]
	if len(ids) == 0 {
		for _, c := range registry.Icons() {
			ids = append(ids, c.ID)
		}
	}

	results := make([]resolvedIcon, 0, len(ids))
	for _, id := range ids {
		def, found := service.Icon(id)
		r := resolvedIcon{ID: id, Found: found}
		if found {
			r.FontCharacter = def.FontCharacter
			if def.Font != nil {
				r.FontID = def.Font.ID
				r.FontFamily = def.Font.Family()
			}
		}
		results = append(results, r)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, results)
	}
	printResolved(out, results)
	return nil
}

func loadRegistry() (*iconregistry.Registry, error) {
	path := resolveRegistry
	if path == "" {
		path = appConfig.Registry.Path
	}
	if path == "" {
		return iconregistry.New(), nil
	}
	registry, err := iconregistry.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load icon registry: %w", err)
	}
	logger.Debug("icon registry loaded", slog.String("path", path), slog.Int("icons", registry.Len()))
	return registry, nil
}

// newService builds a theme service from the config. A nil store disables
// persistence of the active theme.
func newService(registry *iconregistry.Registry, store themes.StateStore) (*themes.Service, error) {
	loader, err := newThemeLoader()
	if err != nil {
		return nil, err
	}
	icons, err := cache.NewIconCache(&cache.CacheConfig{
		MaxCost: appConfig.Cache.IconMaxCost,
		TTL:     appConfig.Cache.IconTTL,
	})
	if err != nil {
		return nil, err
	}
	iconCache = icons

	watchCfg := watcher.DefaultWatchConfig()
	if appConfig.Themes.Debounce > 0 {
		watchCfg.Debounce = appConfig.Themes.Debounce
	}

	cfg := themes.ServiceConfig{
		Loader:      loader,
		Store:       store,
		Icons:       icons,
		Logger:      logger,
		WatchConfig: watchCfg,
		Initial:     appConfig.Themes.Active,
	}
	if registry != nil {
		cfg.Registry = registry
	}
	return themes.NewService(cfg), nil
}

func printResolved(w io.Writer, results []resolvedIcon) {
	for _, r := range results {
		if !r.Found {
			fmt.Fprintf(w, "%s%s%s %sabsent%s\n", colorBold, r.ID, colorReset, colorRed, colorReset)
			continue
		}
		font := "default"
		if r.FontFamily != "" {
			font = r.FontFamily
		}
		fmt.Fprintf(w, "%s%s%s %s%s%s %s(%s)%s\n",
			colorBold, r.ID, colorReset,
			colorGreen, r.FontCharacter, colorReset,
			colorGray, font, colorReset)
	}
}
