package icontheme

// IconDefaults is the fallback of an icon contribution: either a
// reference to another icon id or a terminal glyph definition.
type IconDefaults struct {
	Ref        string
	Definition *IconDefinition
}

// RefDefaults returns defaults that inherit from the icon id.
func RefDefaults(id string) IconDefaults {
	return IconDefaults{Ref: id}
}

// GlyphDefaults returns terminal defaults.
func GlyphDefaults(def IconDefinition) IconDefaults {
	return IconDefaults{Definition: &def}
}

// IsRef reports whether the defaults point at another icon.
func (d IconDefaults) IsRef() bool {
	return d.Definition == nil && d.Ref != ""
}

// IconContribution describes an icon known to the product and how it
// falls back when a theme does not define it.
type IconContribution struct {
	ID          string
	Description string
	Defaults    IconDefaults
}

// IconRegistry looks up icon contributions by id.
type IconRegistry interface {
	Icon(id string) (IconContribution, bool)
}

// ResolveIcon returns the glyph for c under doc.
//
// A definition in doc for c.ID always wins. Otherwise the defaults chain is
// followed through reg, checking doc for each referenced id. The walk
// ends with the first terminal default, or with no result when a
// referenced id is not registered. A chain that revisits an id resolves to
// no result.
func ResolveIcon(c IconContribution, doc *Document, reg IconRegistry) (IconDefinition, bool) {
	if def, ok := doc.Icon(c.ID); ok {
		return def, true
	}

	defaults := c.Defaults
	visited := map[string]struct{}{c.ID: {}}
	for defaults.IsRef() {
		if reg == nil {
			return IconDefinition{}, false
		}
		if _, seen := visited[defaults.Ref]; seen {
			return IconDefinition{}, false
		}
		visited[defaults.Ref] = struct{}{}

		next, ok := reg.Icon(defaults.Ref)
		if !ok {
			return IconDefinition{}, false
		}
		if def, ok := doc.Icon(next.ID); ok {
			return def, true
		}
		defaults = next.Defaults
	}

	if defaults.Definition != nil {
		return *defaults.Definition, true
	}
	return IconDefinition{}, false
}
