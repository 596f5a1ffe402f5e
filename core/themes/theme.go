// Package themes manages product icon themes: their identity, loading and
// reloading of theme documents, persistence of the selected theme, and the
// service that resolves icons against the active theme.
package themes

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/adalundhe/producticons/core/icontheme"
	"github.com/adalundhe/producticons/core/nls"
)

const (
	// DefaultThemeID is the id of the built-in theme.
	DefaultThemeID = ""
	// DefaultSettingsID selects the built-in theme in settings.
	DefaultSettingsID = "Default"
)

// ExtensionData identifies the extension that contributed a theme.
type ExtensionData struct {
	ExtensionID        string `json:"extensionId"`
	ExtensionPublisher string `json:"extensionPublisher"`
	ExtensionName      string `json:"extensionName"`
	ExtensionIsBuiltin bool   `json:"extensionIsBuiltin"`
}

// ExtensionPoint is a product icon theme contribution as declared by an
// extension.
type ExtensionPoint struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label,omitempty" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description"`
	Path        string `json:"path" yaml:"path"`
	Watch       bool   `json:"_watch,omitempty" yaml:"watch"`
}

// ThemeData is one product icon theme. The identity fields are set at
// construction and not modified afterwards; the loaded document and style
// sheet change on every successful load.
type ThemeData struct {
	ID            string
	Label         string
	SettingsID    string
	Description   string
	Location      *url.URL
	ExtensionData *ExtensionData
	Watch         bool

	mu         sync.RWMutex
	loaded     bool
	document   *icontheme.Document
	styleSheet string
	generation uint64
}

func newThemeData(id, label, settingsID string) *ThemeData {
	return &ThemeData{
		ID:         id,
		Label:      label,
		SettingsID: settingsID,
		document:   icontheme.EmptyDocument(),
	}
}

// FromExtensionTheme creates an unloaded theme for an extension
// contribution. Without extension data the id is the contribution id.
func FromExtensionTheme(point ExtensionPoint, location *url.URL, ext *ExtensionData) *ThemeData {
	id := point.ID
	if ext != nil {
		id = ext.ExtensionID + "-" + point.ID
	}
	label := point.Label
	if label == "" {
		label = path.Base(strings.ReplaceAll(point.Path, "\\", "/"))
	}

	t := newThemeData(id, label, point.ID)
	t.Description = point.Description
	t.Location = location
	t.ExtensionData = ext
	t.Watch = point.Watch
	return t
}

// NewUnloadedTheme creates a placeholder for a theme id that is not (yet)
// known.
func NewUnloadedTheme(id string) *ThemeData {
	return newThemeData(id, "", "__"+id)
}

var (
	defaultTheme     *ThemeData
	defaultThemeOnce sync.Once
)

// DefaultTheme returns the built-in theme. It has no location and is always
// loaded.
func DefaultTheme() *ThemeData {
	defaultThemeOnce.Do(func() {
		defaultTheme = newThemeData(DefaultThemeID, nls.Default().Sprintf(nls.DefaultThemeLabel), DefaultSettingsID)
		defaultTheme.loaded = true
	})
	return defaultTheme
}

// IsDefault reports whether t is the built-in theme.
func (t *ThemeData) IsDefault() bool {
	return t == DefaultTheme()
}

func (t *ThemeData) IsLoaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Document returns the current theme document. It is never nil.
func (t *ThemeData) Document() *icontheme.Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.document
}

func (t *ThemeData) StyleSheet() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.styleSheet
}

// Generation increases every time a new document is installed.
func (t *ThemeData) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Icon resolves c against the current document.
func (t *ThemeData) Icon(c icontheme.IconContribution, reg icontheme.IconRegistry) (icontheme.IconDefinition, bool) {
	return icontheme.ResolveIcon(c, t.Document(), reg)
}

// EnsureLoaded loads the theme unless it already is, returning the style
// sheet.
func (t *ThemeData) EnsureLoaded(ctx context.Context, loader *Loader) (string, error) {
	if t.IsLoaded() {
		return t.StyleSheet(), nil
	}
	return t.load(ctx, loader)
}

// Reload loads the theme document again.
func (t *ThemeData) Reload(ctx context.Context, loader *Loader) (string, error) {
	return t.load(ctx, loader)
}

// load replaces the document with the one at Location. A theme without a
// location keeps its current style sheet. On error the previous document
// stays in place.
func (t *ThemeData) load(ctx context.Context, loader *Loader) (string, error) {
	if t.Location == nil {
		return t.StyleSheet(), nil
	}

	doc, warnings, err := loader.LoadDocument(ctx, t.Location)
	if err != nil {
		return "", err
	}
	styleSheet := icontheme.StyleSheet(doc)

	t.mu.Lock()
	t.document = doc
	t.styleSheet = styleSheet
	t.loaded = true
	t.generation++
	t.mu.Unlock()

	loader.reportWarnings(t, warnings)
	return styleSheet, nil
}

// restore installs state read from storage.
func (t *ThemeData) restore(styleSheet string) {
	t.mu.Lock()
	t.styleSheet = styleSheet
	t.mu.Unlock()
}
