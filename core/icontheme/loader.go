package icontheme

import (
	"net/url"
	"path"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"

	"github.com/adalundhe/producticons/core/nls"
)

// ParseOption configures ParseDocument.
type ParseOption func(*parseOptions)

type parseOptions struct {
	localizer *nls.Localizer
}

// WithLanguage renders errors and warnings in the closest supported
// language.
func WithLanguage(tag language.Tag) ParseOption {
	return func(o *parseOptions) {
		o.localizer = nls.New(tag)
	}
}

// WithLocalizer renders errors and warnings with l.
func WithLocalizer(l *nls.Localizer) ParseOption {
	return func(o *parseOptions) {
		if l != nil {
			o.localizer = l
		}
	}
}

// ParseDocument parses the raw text of a product icon theme located at
// location. Relative font paths are resolved against the directory of
// location.
//
// Only malformed text (*ParseError) and a missing or malformed top-level
// shape (*ValidationError) fail the call. Invalid fonts, sources and icon
// entries are dropped and described in the returned warnings, in document
// order.
func ParseDocument(raw []byte, location *url.URL, opts ...ParseOption) (*Document, []string, error) {
	o := parseOptions{localizer: nls.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	msg := o.localizer

	normalized, problems := normalizeJSONC(raw)
	if len(problems) > 0 {
		return nil, nil, &ParseError{
			Problems: problems,
			message:  msg.Sprintf(nls.CannotParseIconTheme, joinProblems(problems)),
		}
	}

	root := gjson.ParseBytes(normalized)
	if !root.IsObject() {
		return nil, nil, &ValidationError{message: msg.Sprintf(nls.InvalidFormat)}
	}

	fonts := member(root, "fonts")
	iconDefinitions := member(root, "iconDefinitions")
	switch {
	case !present(fonts):
		return nil, nil, &ValidationError{Property: "fonts", message: msg.Sprintf(nls.MissingProperties)}
	case !present(iconDefinitions):
		return nil, nil, &ValidationError{Property: "iconDefinitions", message: msg.Sprintf(nls.MissingProperties)}
	}

	var fontEntries []gjson.Result
	if fonts.IsArray() {
		fontEntries = fonts.Array()
	}
	if len(fontEntries) == 0 {
		return nil, nil, &ValidationError{Property: "fonts", message: msg.Sprintf(nls.InvalidFonts)}
	}
	if !iconDefinitions.IsObject() {
		return nil, nil, &ValidationError{Property: "iconDefinitions", message: msg.Sprintf(nls.InvalidIconDefs)}
	}

	b := &documentBuilder{msg: msg, base: baseDir(location)}
	fontsByID := b.sanitizeFonts(fontEntries)

	// Icons without a fontId use the first declared font, whether or not it
	// survived sanitization.
	primary, hasPrimary := asString(member(fontEntries[0], "id"))

	doc := b.buildIcons(iconDefinitions, fontsByID, primary, hasPrimary)
	return doc, b.warnings, nil
}

type documentBuilder struct {
	msg      *nls.Localizer
	base     *url.URL
	fonts    []*FontDefinition
	warnings []string
}

func (b *documentBuilder) warn(key nls.Key, args ...any) {
	b.warnings = append(b.warnings, b.msg.Sprintf(key, args...))
}

// sanitizeFonts validates every font entry and indexes the survivors by
// id. The first surviving font with a given id wins.
func (b *documentBuilder) sanitizeFonts(entries []gjson.Result) map[string]*FontDefinition {
	byID := make(map[string]*FontDefinition, len(entries))
	for _, entry := range entries {
		font, ok := b.sanitizeFont(entry)
		if !ok {
			continue
		}
		if _, dup := byID[font.ID]; dup {
			b.warn(nls.DuplicateFontID, font.ID)
			continue
		}
		byID[font.ID] = font
		b.fonts = append(b.fonts, font)
	}
	return byID
}

func (b *documentBuilder) sanitizeFont(entry gjson.Result) (*FontDefinition, bool) {
	idValue := member(entry, "id")
	id, ok := asString(idValue)
	if !ok || !fontIDPattern.MatchString(id) {
		b.warn(nls.FontID, display(idValue))
		return nil, false
	}

	font := &FontDefinition{ID: id}

	if v := member(entry, "weight"); present(v) {
		if weight, ok := asString(v); ok && fontWeightPattern.MatchString(weight) {
			font.Weight = weight
		} else {
			b.warn(nls.FontWeight, id)
		}
	}

	if v := member(entry, "style"); present(v) {
		if style, ok := asString(v); ok && fontStylePattern.MatchString(style) {
			font.Style = style
		} else {
			b.warn(nls.FontStyle, id)
		}
	}

	if src := member(entry, "src"); src.IsArray() {
		for _, s := range src.Array() {
			p, okPath := asString(member(s, "path"))
			format, okFormat := asString(member(s, "format"))
			if !okPath || !okFormat || !fontFormatPattern.MatchString(format) {
				b.warn(nls.FontSrc, id)
				continue
			}
			font.Sources = append(font.Sources, FontSource{
				Location: b.base.JoinPath(p),
				Format:   format,
			})
		}
	}

	if len(font.Sources) == 0 {
		b.warn(nls.NoFontSrc, id)
		return nil, false
	}
	return font, true
}

func (b *documentBuilder) buildIcons(defs gjson.Result, fontsByID map[string]*FontDefinition, primary string, hasPrimary bool) *Document {
	keys, values := orderedMembers(defs)

	doc := &Document{
		icons:   make(map[string]IconDefinition, len(keys)),
		iconIDs: make([]string, 0, len(keys)),
		fonts:   b.fonts,
	}

	for _, iconID := range keys {
		def := values[iconID]

		char, ok := asString(member(def, "fontCharacter"))
		if !ok {
			b.warn(nls.IconFontCharacter, iconID)
			continue
		}

		fontID, known := primary, hasPrimary
		if v := member(def, "fontId"); present(v) {
			fontID, known = asString(v)
		}

		var font *FontDefinition
		if known {
			font = fontsByID[fontID]
		}
		if font == nil {
			b.warn(nls.IconFont, iconID)
			continue
		}

		doc.icons[iconID] = IconDefinition{FontCharacter: char, Font: font}
		doc.iconIDs = append(doc.iconIDs, iconID)
	}
	return doc
}

// baseDir returns the directory containing location, the base for
// relative font paths.
func baseDir(location *url.URL) *url.URL {
	if location == nil {
		return &url.URL{}
	}
	dir := *location
	dir.Path = path.Dir(location.Path)
	dir.RawPath = ""
	dir.RawQuery = ""
	dir.Fragment = ""
	return &dir
}

// =============================================================================
// Document tree helpers
// =============================================================================

// member returns the value of key in obj. As with JSON.parse, the last
// occurrence of a duplicated key wins.
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	if !obj.IsObject() {
		return found
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

// orderedMembers returns the distinct keys of obj in first-seen order and
// the last value recorded for each.
func orderedMembers(obj gjson.Result) ([]string, map[string]gjson.Result) {
	var keys []string
	values := make(map[string]gjson.Result)
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = v
		return true
	})
	return keys, values
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

func asString(v gjson.Result) (string, bool) {
	if v.Type != gjson.String {
		return "", false
	}
	return v.String(), true
}

func display(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Raw
}
