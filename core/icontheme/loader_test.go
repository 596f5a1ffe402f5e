package icontheme

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func themeLocation(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("file:///themes/product/theme.json")
	require.NoError(t, err)
	return u
}

func parse(t *testing.T, raw string) (*Document, []string) {
	t.Helper()
	doc, warnings, err := ParseDocument([]byte(raw), themeLocation(t))
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc, warnings
}

func TestParseDocument_SingleIcon(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [{"id": "f1", "src": [{"path": "f.woff", "format": "woff"}]}],
		"iconDefinitions": {"a": {"fontCharacter": ""}}
	}`)

	assert.Empty(t, warnings)
	assert.Equal(t, 1, doc.Len())

	def, ok := doc.Icon("a")
	require.True(t, ok)
	assert.Equal(t, "", def.FontCharacter)
	require.NotNil(t, def.Font)
	assert.Equal(t, "f1", def.Font.ID)
	assert.Equal(t, "pi-f1", def.Font.Family())
	require.Len(t, def.Font.Sources, 1)
	assert.Equal(t, "file:///themes/product/f.woff", def.Font.Sources[0].Location.String())
	assert.Equal(t, "woff", def.Font.Sources[0].Format)
}

func TestParseDocument_ResolvesRelativeSources(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [{
			"id": "f1",
			"src": [
				{"path": "./fonts/f.woff2", "format": "woff2"},
				{"path": "../shared/f.ttf", "format": "truetype"}
			]
		}],
		"iconDefinitions": {}
	}`)

	assert.Empty(t, warnings)
	fonts := doc.Fonts()
	require.Len(t, fonts, 1)
	require.Len(t, fonts[0].Sources, 2)
	assert.Equal(t, "file:///themes/product/fonts/f.woff2", fonts[0].Sources[0].Location.String())
	assert.Equal(t, "file:///themes/shared/f.ttf", fonts[0].Sources[1].Location.String())
}

func TestParseDocument_CommentsAndTrailingCommas(t *testing.T) {
	doc, warnings := parse(t, `{
		// product icons
		"fonts": [{"id": "f1", "src": [{"path": "f.woff", "format": "woff"},],},],
		/* glyphs */
		"iconDefinitions": {"add": {"fontCharacter": "\\ea60"},},
	}`)

	assert.Empty(t, warnings)
	def, ok := doc.Icon("add")
	require.True(t, ok)
	assert.Equal(t, `\ea60`, def.FontCharacter)
}

func TestParseDocument_FontWeightAndStyle(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [
			{"id": "good", "weight": "bold", "style": "italic", "src": [{"path": "a.woff", "format": "woff"}]},
			{"id": "numeric", "weight": "400", "style": "oblique 10deg", "src": [{"path": "b.woff", "format": "woff"}]},
			{"id": "bad", "weight": "heavy", "style": 3, "src": [{"path": "c.woff", "format": "woff"}]}
		],
		"iconDefinitions": {}
	}`)

	fonts := doc.Fonts()
	require.Len(t, fonts, 3)
	assert.Equal(t, "bold", fonts[0].Weight)
	assert.Equal(t, "italic", fonts[0].Style)
	assert.Equal(t, "400", fonts[1].Weight)
	assert.Equal(t, "oblique 10deg", fonts[1].Style)
	assert.Empty(t, fonts[2].Weight)
	assert.Empty(t, fonts[2].Style)

	assert.Equal(t, []string{
		"Invalid font weight in font 'bad'. Ignoring setting.",
		"Invalid font style in font 'bad'. Ignoring setting.",
	}, warnings)
}

func TestParseDocument_InvalidFontID(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [
			{"id": "has space", "src": [{"path": "a.woff", "format": "woff"}]},
			{"src": [{"path": "b.woff", "format": "woff"}]},
			{"id": "ok", "src": [{"path": "c.woff", "format": "woff"}]}
		],
		"iconDefinitions": {"x": {"fontCharacter": "x", "fontId": "ok"}}
	}`)

	assert.Equal(t, []string{
		"Missing or invalid font id 'has space'. Skipping font definition.",
		"Missing or invalid font id ''. Skipping font definition.",
	}, warnings)
	require.Len(t, doc.Fonts(), 1)
	assert.Equal(t, "ok", doc.Fonts()[0].ID)
	assert.Equal(t, 1, doc.Len())
}

func TestParseDocument_InvalidSourcesDropped(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [{
			"id": "f1",
			"src": [
				{"path": "a.woff", "format": "woff"},
				{"path": 12, "format": "woff"},
				{"path": "b.otf", "format": "otf"},
				"c.woff"
			]
		}],
		"iconDefinitions": {}
	}`)

	fonts := doc.Fonts()
	require.Len(t, fonts, 1)
	require.Len(t, fonts[0].Sources, 1)
	assert.Equal(t, "file:///themes/product/a.woff", fonts[0].Sources[0].Location.String())
	assert.Equal(t, []string{
		"Invalid font source in font 'f1'. Ignoring source.",
		"Invalid font source in font 'f1'. Ignoring source.",
		"Invalid font source in font 'f1'. Ignoring source.",
	}, warnings)
}

func TestParseDocument_FontWithoutSourcesExcludesItsIcons(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [
			{"id": "primary", "src": [{"path": "a.woff", "format": "bogus"}]},
			{"id": "other", "src": [{"path": "b.woff", "format": "woff"}]}
		],
		"iconDefinitions": {
			"implicit": {"fontCharacter": "1"},
			"explicit": {"fontCharacter": "2", "fontId": "primary"},
			"kept": {"fontCharacter": "3", "fontId": "other"}
		}
	}`)

	assert.Equal(t, []string{"kept"}, doc.IconIDs())
	_, ok := doc.Icon("implicit")
	assert.False(t, ok)
	_, ok = doc.Icon("explicit")
	assert.False(t, ok)

	assert.Equal(t, []string{
		"Invalid font source in font 'primary'. Ignoring source.",
		"No valid font source in font 'primary'. Ignoring font definition.",
		"Skipping icon definition 'implicit'. Unknown font.",
		"Skipping icon definition 'explicit'. Unknown font.",
	}, warnings)
}

func TestParseDocument_MissingFontIDUsesFirstFont(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [
			{"id": "first", "src": [{"path": "a.woff", "format": "woff"}]},
			{"id": "second", "src": [{"path": "b.woff", "format": "woff"}]}
		],
		"iconDefinitions": {
			"a": {"fontCharacter": "1"},
			"b": {"fontCharacter": "2", "fontId": null},
			"c": {"fontCharacter": "3", "fontId": "second"}
		}
	}`)

	assert.Empty(t, warnings)
	for id, want := range map[string]string{"a": "first", "b": "first", "c": "second"} {
		def, ok := doc.Icon(id)
		require.True(t, ok, id)
		assert.Equal(t, want, def.Font.ID, id)
	}
}

func TestParseDocument_IconEntryProblems(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [{"id": "f1", "src": [{"path": "a.woff", "format": "woff"}]}],
		"iconDefinitions": {
			"nochar": {"fontId": "f1"},
			"numeric": {"fontCharacter": 61},
			"scalar": "\\ea60",
			"unknown": {"fontCharacter": "x", "fontId": "nope"},
			"badfontid": {"fontCharacter": "x", "fontId": 4},
			"ok": {"fontCharacter": "y"}
		}
	}`)

	assert.Equal(t, []string{"ok"}, doc.IconIDs())
	assert.Equal(t, []string{
		"Skipping icon definition 'nochar'. Unknown fontCharacter.",
		"Skipping icon definition 'numeric'. Unknown fontCharacter.",
		"Skipping icon definition 'scalar'. Unknown fontCharacter.",
		"Skipping icon definition 'unknown'. Unknown font.",
		"Skipping icon definition 'badfontid'. Unknown font.",
	}, warnings)
}

func TestParseDocument_AllEntriesInvalidStillSucceeds(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [{"id": "!"}, 7],
		"iconDefinitions": {"a": {}, "b": 1}
	}`)

	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.Fonts())
	assert.Len(t, warnings, 4)
}

func TestParseDocument_DuplicateFontIDFirstWins(t *testing.T) {
	doc, warnings := parse(t, `{
		"fonts": [
			{"id": "f", "src": [{"path": "first.woff", "format": "woff"}]},
			{"id": "f", "src": [{"path": "second.woff", "format": "woff"}]}
		],
		"iconDefinitions": {"a": {"fontCharacter": "1"}}
	}`)

	assert.Equal(t, []string{"Duplicate font id 'f'. Ignoring font definition."}, warnings)
	def, ok := doc.Icon("a")
	require.True(t, ok)
	assert.Equal(t, "file:///themes/product/first.woff", def.Font.Sources[0].Location.String())
}

func TestParseDocument_DuplicateIconKeyLastWins(t *testing.T) {
	doc, _ := parse(t, `{
		"fonts": [{"id": "f", "src": [{"path": "a.woff", "format": "woff"}]}],
		"iconDefinitions": {"a": {"fontCharacter": "1"}, "b": {"fontCharacter": "2"}, "a": {"fontCharacter": "3"}}
	}`)

	assert.Equal(t, []string{"a", "b"}, doc.IconIDs())
	def, _ := doc.Icon("a")
	assert.Equal(t, "3", def.FontCharacter)
}

func TestParseDocument_ParseError(t *testing.T) {
	doc, warnings, err := ParseDocument([]byte(`{"fonts": [ {"id": "f1"`), themeLocation(t))

	assert.Nil(t, doc)
	assert.Nil(t, warnings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.NotEmpty(t, parseErr.Problems)
	assert.Len(t, parseErr.Messages(), len(parseErr.Problems))
	assert.Contains(t, err.Error(), "Problems parsing product icons file: ")
	assert.Contains(t, err.Error(), "Closing brace expected")
}

func TestParseDocument_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		property string
	}{
		{name: "array", in: `[]`, property: ""},
		{name: "string", in: `"theme"`, property: ""},
		{name: "missing fonts", in: `{"iconDefinitions": {}}`, property: "fonts"},
		{name: "missing icons", in: `{"fonts": [{"id": "f"}]}`, property: "iconDefinitions"},
		{name: "empty fonts", in: `{"fonts": [], "iconDefinitions": {}}`, property: "fonts"},
		{name: "fonts not array", in: `{"fonts": {"id": "f"}, "iconDefinitions": {}}`, property: "fonts"},
		{name: "null fonts", in: `{"fonts": null, "iconDefinitions": {}}`, property: "fonts"},
		{name: "icons not object", in: `{"fonts": [{"id": "f"}], "iconDefinitions": []}`, property: "iconDefinitions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDocument([]byte(tt.in), themeLocation(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.False(t, errors.Is(err, ErrParse))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.property, verr.Property)
		})
	}
}

func TestParseDocument_Localized(t *testing.T) {
	_, warnings, err := ParseDocument([]byte(`{
		"fonts": [{"id": "f1", "weight": "heavy", "src": [{"path": "a.woff", "format": "woff"}]}],
		"iconDefinitions": {}
	}`), themeLocation(t), WithLanguage(language.German))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Ungültige Schriftstärke in Schriftart 'f1'. Die Einstellung wird ignoriert.",
	}, warnings)
}

func TestParseDocument_NilLocation(t *testing.T) {
	doc, _, err := ParseDocument([]byte(`{
		"fonts": [{"id": "f1", "src": [{"path": "fonts/a.woff", "format": "woff"}]}],
		"iconDefinitions": {}
	}`), nil)

	require.NoError(t, err)
	assert.Equal(t, "fonts/a.woff", doc.Fonts()[0].Sources[0].Location.String())
}

func TestDocument_AccessorsCopy(t *testing.T) {
	doc, _ := parse(t, `{
		"fonts": [{"id": "f1", "src": [{"path": "a.woff", "format": "woff"}]}],
		"iconDefinitions": {"a": {"fontCharacter": "1"}}
	}`)

	ids := doc.IconIDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"a"}, doc.IconIDs())

	fonts := doc.Fonts()
	fonts[0].ID = "mutated"
	assert.Equal(t, "f1", doc.Fonts()[0].ID)
}

func TestDocument_NilSafe(t *testing.T) {
	var doc *Document
	_, ok := doc.Icon("a")
	assert.False(t, ok)
	assert.Zero(t, doc.Len())
	assert.Nil(t, doc.IconIDs())
	assert.Equal(t, 0, EmptyDocument().Len())
}
