package icontheme

import (
	"fmt"
	"strings"
)

// StyleSheet renders doc as CSS: one @font-face rule per font used by an
// icon, then one ".codicon-<id>:before" rule per icon, both in declaration
// order.
func StyleSheet(doc *Document) string {
	if doc == nil {
		return ""
	}

	used := make(map[*FontDefinition]bool, len(doc.fonts))
	for _, id := range doc.iconIDs {
		used[doc.icons[id].Font] = true
	}

	var b strings.Builder
	for _, font := range doc.fonts {
		if used[font] {
			writeFontFace(&b, font)
		}
	}
	for _, id := range doc.iconIDs {
		def := doc.icons[id]
		fmt.Fprintf(&b, ".codicon-%s:before { content: '%s'; font-family: '%s'; }\n",
			cssIdent(id), cssString(def.FontCharacter), def.Font.Family())
	}
	return b.String()
}

func writeFontFace(b *strings.Builder, font *FontDefinition) {
	srcs := make([]string, len(font.Sources))
	for i, s := range font.Sources {
		srcs[i] = fmt.Sprintf("url('%s') format('%s')", cssString(s.Location.String()), s.Format)
	}

	fmt.Fprintf(b, "@font-face { src: %s; font-family: '%s';", strings.Join(srcs, ", "), font.Family())
	if font.Weight != "" {
		fmt.Fprintf(b, " font-weight: %s;", font.Weight)
	}
	if font.Style != "" {
		fmt.Fprintf(b, " font-style: %s;", font.Style)
	}
	b.WriteString(" font-display: block; }\n")
}

// cssString escapes s for a single-quoted CSS string. Backslashes are kept
// so theme authors can write CSS escapes such as "\\ea60".
func cssString(s string) string {
	r := strings.NewReplacer("'", `\'`, "\n", `\a `, "\r", `\d `)
	return r.Replace(s)
}

func cssIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r >= 0x80:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
