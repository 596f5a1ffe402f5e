// Package nls holds the localized message catalog used for product icon
// theme diagnostics.
package nls

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a catalog message.
type Key string

const (
	CannotParseIconTheme Key = "error.cannotparseicontheme"
	InvalidFormat        Key = "error.invalidformat"
	MissingProperties    Key = "error.missingProperties"
	InvalidFonts         Key = "error.invalidFonts"
	InvalidIconDefs      Key = "error.invalidIconDefinitions"
	FontWeight           Key = "error.fontWeight"
	FontStyle            Key = "error.fontStyle"
	FontSrc              Key = "error.fontSrc"
	NoFontSrc            Key = "error.noFontSrc"
	FontID               Key = "error.fontId"
	DuplicateFontID      Key = "error.duplicateFontId"
	IconFont             Key = "error.icon.font"
	IconFontCharacter    Key = "error.icon.fontCharacter"
	ParseIconDefinitions Key = "error.parseicondefs"
	DefaultThemeLabel    Key = "defaultTheme"
)

var english = map[Key]string{
	CannotParseIconTheme: "Problems parsing product icons file: %s",
	InvalidFormat:        "Invalid format for product icons theme file: Object expected.",
	MissingProperties:    "Invalid format for product icons theme file: Must contain iconDefinitions and fonts.",
	InvalidFonts:         "Invalid format for product icons theme file: 'fonts' must be a non-empty array.",
	InvalidIconDefs:      "Invalid format for product icons theme file: 'iconDefinitions' must be an object.",
	FontWeight:           "Invalid font weight in font '%s'. Ignoring setting.",
	FontStyle:            "Invalid font style in font '%s'. Ignoring setting.",
	FontSrc:              "Invalid font source in font '%s'. Ignoring source.",
	NoFontSrc:            "No valid font source in font '%s'. Ignoring font definition.",
	FontID:               "Missing or invalid font id '%s'. Skipping font definition.",
	DuplicateFontID:      "Duplicate font id '%s'. Ignoring font definition.",
	IconFont:             "Skipping icon definition '%s'. Unknown font.",
	IconFontCharacter:    "Skipping icon definition '%s'. Unknown fontCharacter.",
	ParseIconDefinitions: "Problems processing product icons definitions in %s:\n%s",
	DefaultThemeLabel:    "Default",
}

var german = map[Key]string{
	CannotParseIconTheme: "Probleme beim Analysieren der Produktsymboldatei: %s",
	InvalidFormat:        "Ungültiges Format für die Produktsymbol-Designdatei: Objekt erwartet.",
	MissingProperties:    "Ungültiges Format für die Produktsymbol-Designdatei: Muss iconDefinitions und fonts enthalten.",
	InvalidFonts:         "Ungültiges Format für die Produktsymbol-Designdatei: 'fonts' muss ein nicht leeres Array sein.",
	InvalidIconDefs:      "Ungültiges Format für die Produktsymbol-Designdatei: 'iconDefinitions' muss ein Objekt sein.",
	FontWeight:           "Ungültige Schriftstärke in Schriftart '%s'. Die Einstellung wird ignoriert.",
	FontStyle:            "Ungültiger Schriftschnitt in Schriftart '%s'. Die Einstellung wird ignoriert.",
	FontSrc:              "Ungültige Schriftartquelle in Schriftart '%s'. Die Quelle wird ignoriert.",
	NoFontSrc:            "Keine gültige Schriftartquelle in Schriftart '%s'. Die Schriftartdefinition wird ignoriert.",
	FontID:               "Fehlende oder ungültige Schriftart-ID '%s'. Die Schriftartdefinition wird übersprungen.",
	DuplicateFontID:      "Doppelte Schriftart-ID '%s'. Die Schriftartdefinition wird ignoriert.",
	IconFont:             "Die Symboldefinition '%s' wird übersprungen. Unbekannte Schriftart.",
	IconFontCharacter:    "Die Symboldefinition '%s' wird übersprungen. Unbekanntes fontCharacter.",
	ParseIconDefinitions: "Probleme beim Verarbeiten der Produktsymboldefinitionen in %s:\n%s",
	DefaultThemeLabel:    "Standard",
}

var (
	supported = []language.Tag{language.English, language.German}
	matcher   = language.NewMatcher(supported)

	buildOnce sync.Once
	builder   *catalog.Builder

	defaultOnce      sync.Once
	defaultLocalizer *Localizer
)

func messages() *catalog.Builder {
	buildOnce.Do(func() {
		builder = catalog.NewBuilder(catalog.Fallback(language.English))
		register(builder, language.English, english)
		register(builder, language.German, german)
	})
	return builder
}

func register(b *catalog.Builder, tag language.Tag, msgs map[Key]string) {
	for key, msg := range msgs {
		// Builder.SetString only fails on malformed tags.
		_ = b.SetString(tag, string(key), msg)
	}
}

// Localizer formats catalog messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the closest supported language. Unsupported
// languages get English.
func New(tag language.Tag) *Localizer {
	matched := language.English
	if _, idx, conf := matcher.Match(tag); conf != language.No {
		matched = supported[idx]
	}
	return &Localizer{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(messages())),
	}
}

// Default returns the shared English localizer.
func Default() *Localizer {
	defaultOnce.Do(func() {
		defaultLocalizer = New(language.English)
	})
	return defaultLocalizer
}

// Language reports the language messages are rendered in.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Sprintf renders the message for key with args.
func (l *Localizer) Sprintf(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}
