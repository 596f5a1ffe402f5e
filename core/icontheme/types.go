// Package icontheme loads product icon theme documents.
//
// A theme document declares icon fonts and maps icon ids to glyphs in
// those fonts:
//
//	{
//		"fonts": [
//			{"id": "codicon", "src": [{"path": "./codicon.woff", "format": "woff"}]}
//		],
//		"iconDefinitions": {
//			"add": {"fontCharacter": "\\ea60"},
//			"close": {"fontCharacter": "\\ea76", "fontId": "codicon"}
//		}
//	}
//
// ParseDocument turns the raw text into an immutable Document, dropping
// invalid entries with warnings. ResolveIcon looks an icon up in a
// Document and falls back through an IconRegistry when the theme does not
// define it.
package icontheme

import "net/url"

// fontFamilyPrefix namespaces theme fonts so they cannot collide with icon
// ids in a shared glyph registry.
const fontFamilyPrefix = "pi-"

// FontSource is one font file and its format tag.
type FontSource struct {
	Location *url.URL
	Format   string
}

// FontDefinition is a named icon font.
type FontDefinition struct {
	ID      string
	Weight  string
	Style   string
	Sources []FontSource
}

// Family returns the namespaced font family name.
func (f *FontDefinition) Family() string {
	return fontFamilyPrefix + f.ID
}

// IconDefinition is a single glyph: a character in a font. A nil Font
// means the default product icon font.
type IconDefinition struct {
	FontCharacter string
	Font          *FontDefinition
}

// Document is a parsed product icon theme. It is never modified after
// ParseDocument returns it.
type Document struct {
	icons   map[string]IconDefinition
	iconIDs []string
	fonts   []*FontDefinition
}

// EmptyDocument returns a document without icons.
func EmptyDocument() *Document {
	return &Document{icons: map[string]IconDefinition{}}
}

// Icon returns the definition the theme declares for id.
func (d *Document) Icon(id string) (IconDefinition, bool) {
	if d == nil {
		return IconDefinition{}, false
	}
	def, ok := d.icons[id]
	return def, ok
}

// IconIDs returns the defined icon ids in declaration order.
func (d *Document) IconIDs() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.iconIDs...)
}

// Fonts returns the fonts that survived sanitization in declaration order.
func (d *Document) Fonts() []FontDefinition {
	if d == nil {
		return nil
	}
	out := make([]FontDefinition, len(d.fonts))
	for i, f := range d.fonts {
		out[i] = *f
	}
	return out
}

// Len returns the number of defined icons.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.icons)
}
