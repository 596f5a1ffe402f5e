package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/adalundhe/producticons/core/storage"
	"github.com/adalundhe/producticons/core/themes"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage the active product icon theme",
	Long: `Select, inspect and list product icon themes.

The active theme is persisted in the state database together with its style
sheet, so "theme current" works without reading the theme file again.`,
}

var themeUseCmd = &cobra.Command{
	Use:   "use <theme.json | settings-id>",
	Short: "Activate a product icon theme",
	Long: `Activate a product icon theme by file or by settings id.

A settings id is looked up among the themes found in the configured theme
paths. "Default" selects the built-in theme.

Examples:
  producticons theme use ./fluent.json
  producticons theme use fluent
  producticons theme use Default`,
	Args: cobra.ExactArgs(1),
	RunE: runThemeUse,
}

var themeCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active product icon theme",
	Args:  cobra.NoArgs,
	RunE:  runThemeCurrent,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the product icon themes in the configured theme paths",
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the active product icon theme",
	Long: `Forget the active product icon theme.

With --purge the whole state database is deleted instead.`,
	Args: cobra.NoArgs,
	RunE: runThemeReset,
}

var (
	themeCurrentCSS bool
	themeResetPurge bool
)

func init() {
	themeCurrentCmd.Flags().BoolVar(&themeCurrentCSS, "css", false, "Print the stored style sheet")
	themeResetCmd.Flags().BoolVar(&themeResetPurge, "purge", false, "Delete the state database")

	themeCmd.AddCommand(themeUseCmd)
	themeCmd.AddCommand(themeCurrentCmd)
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeResetCmd)
	rootCmd.AddCommand(themeCmd)
}

type themeSummary struct {
	SettingsID  string `json:"settingsId"`
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Icons       int    `json:"icons"`
	Loaded      bool   `json:"loaded"`
	Active      bool   `json:"active"`
	Error       string `json:"error,omitempty"`
}

func summarize(t *themes.ThemeData, activeID string) themeSummary {
	s := themeSummary{
		SettingsID:  t.SettingsID,
		ID:          t.ID,
		Label:       t.Label,
		Description: t.Description,
		Icons:       t.Document().Len(),
		Loaded:      t.IsLoaded(),
		Active:      t.SettingsID == activeID,
	}
	if t.Location != nil {
		s.Location = t.Location.String()
	}
	return s
}

// discoverThemes registers the themes found in the configured theme paths,
// the user's installed themes and the workspace themes. Unreadable configured
// paths are logged and skipped.
func discoverThemes(service *themes.Service) {
	paths := slices.Clone(appConfig.Themes.Paths)
	for _, dir := range []string{appDirs.ThemesDir(), storage.ResolveProjectDirs(".").Themes} {
		if fileExists(dir) {
			paths = append(paths, dir)
		}
	}

	found, err := themes.Discover(paths, appConfig.Themes.Watch)
	if err != nil {
		logger.Warn("theme discovery incomplete", slog.String("error", err.Error()))
	}
	if err := service.Register(found...); err != nil {
		logger.Warn("duplicate product icon themes", slog.String("error", err.Error()))
	}
}

// restoreService builds a service over the state store with every known
// theme registered and the persisted or configured theme active.
func restoreService(ctx context.Context, store *storage.Store) (*themes.Service, error) {
	service, err := newService(nil, store)
	if err != nil {
		return nil, err
	}
	discoverThemes(service)
	if _, err := service.RestoreActive(ctx); err != nil {
		service.Close()
		return nil, err
	}
	return service, nil
}

func runThemeUse(cmd *cobra.Command, args []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	service, err := newService(registry, store)
	if err != nil {
		return err
	}
	defer service.Close()

	settingsID := args[0]
	if fileExists(args[0]) {
		theme, err := themes.FromFile(args[0], appConfig.Themes.Watch)
		if err != nil {
			return err
		}
		if err := service.Register(theme); err != nil {
			return err
		}
		settingsID = theme.SettingsID
	} else {
		discoverThemes(service)
	}

	theme, err := service.SetActive(cmd.Context(), settingsID)
	if err != nil {
		return err
	}

	summary := summarize(theme, theme.SettingsID)
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%sActivated%s %s%s%s (%d icons)\n",
		colorGreen, colorReset, colorBold, summary.Label, colorReset, summary.Icons)
	return nil
}

func runThemeCurrent(cmd *cobra.Command, _ []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := restoreService(cmd.Context(), store)
	if err != nil {
		return err
	}
	defer service.Close()
	theme := service.Active()

	out := cmd.OutOrStdout()
	if themeCurrentCSS {
		_, err := fmt.Fprint(out, theme.StyleSheet())
		return err
	}
	summary := summarize(theme, theme.SettingsID)
	if outputJSON {
		return writeJSON(out, summary)
	}
	fmt.Fprintf(out, "%s%s%s %s(%s)%s\n", colorBold, summary.Label, colorReset, colorGray, summary.SettingsID, colorReset)
	if summary.Description != "" {
		fmt.Fprintf(out, "  %s\n", summary.Description)
	}
	return nil
}

func runThemeList(cmd *cobra.Command, _ []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := restoreService(cmd.Context(), store)
	if err != nil {
		return err
	}
	defer service.Close()
	activeID := service.Active().SettingsID

	// Failures are logged by LoadAll and shown per theme below.
	_ = service.LoadAll(cmd.Context())

	summaries := []themeSummary{summarize(themes.DefaultTheme(), activeID)}
	for _, t := range service.Themes() {
		s := summarize(t, activeID)
		if !s.Loaded {
			s.Error = "failed to load"
		}
		summaries = append(summaries, s)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, summaries)
	}
	printThemeList(out, summaries)
	return nil
}

func printThemeList(w io.Writer, summaries []themeSummary) {
	for _, s := range summaries {
		marker := " "
		if s.Active {
			marker = colorGreen + "*" + colorReset
		}
		switch {
		case s.Error != "":
			fmt.Fprintf(w, "%s %s%s%s %s%s%s\n", marker, colorBold, s.SettingsID, colorReset, colorRed, s.Error, colorReset)
		case s.Location == "":
			fmt.Fprintf(w, "%s %s%s%s %sbuilt-in%s\n", marker, colorBold, s.SettingsID, colorReset, colorGray, colorReset)
		default:
			fmt.Fprintf(w, "%s %s%s%s %d icons %s%s%s\n", marker, colorBold, s.SettingsID, colorReset, s.Icons, colorGray, s.Location, colorReset)
		}
	}
}

func runThemeReset(cmd *cobra.Command, _ []string) error {
	if themeResetPurge {
		if err := storage.RemoveStore(appConfig.Storage.Path); err != nil {
			return err
		}
		logger.Debug("state database removed", slog.String("path", appConfig.Storage.Path))
	} else {
		store, err := openStateStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Remove(cmd.Context(), themes.StorageKey, storage.ScopeGlobal); err != nil {
			return err
		}
	}
	if !outputJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "Product icon theme reset to Default")
	}
	return nil
}
