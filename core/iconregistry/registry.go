// Package iconregistry keeps the icon contributions known to the product:
// every icon id and how it falls back when a product icon theme does not
// define it.
package iconregistry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/producticons/core/icontheme"
)

var (
	// ErrInvalidIcon indicates a contribution without a usable id or
	// default.
	ErrInvalidIcon = errors.New("invalid icon contribution")
)

// Registry is a concurrency-safe icontheme.IconRegistry.
type Registry struct {
	mu    sync.RWMutex
	icons map[string]icontheme.IconContribution
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{icons: make(map[string]icontheme.IconContribution)}
}

// RegisterIcon adds an icon. Registering an id twice keeps the first
// contribution, filling in its description if it had none.
func (r *Registry) RegisterIcon(id string, defaults icontheme.IconDefaults, description string) icontheme.IconContribution {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.icons[id]; ok {
		if existing.Description == "" && description != "" {
			existing.Description = description
			r.icons[id] = existing
		}
		return existing
	}

	c := icontheme.IconContribution{ID: id, Description: description, Defaults: defaults}
	r.icons[id] = c
	r.order = append(r.order, id)
	return c
}

// Icon implements icontheme.IconRegistry.
func (r *Registry) Icon(id string) (icontheme.IconContribution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.icons[id]
	return c, ok
}

// Icons returns all contributions in registration order.
func (r *Registry) Icons() []icontheme.IconContribution {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]icontheme.IconContribution, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.icons[id])
	}
	return out
}

// Len returns the number of registered icons.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.icons)
}

// =============================================================================
// YAML contribution files
// =============================================================================

type contributionFile struct {
	Icons []contributionEntry `yaml:"icons"`
}

type contributionEntry struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Default     string `yaml:"default"`
	Glyph       string `yaml:"glyph"`
	Font        string `yaml:"font"`
}

// Load reads contributions from YAML:
//
//	icons:
//	  - id: close
//	    glyph: ""
//	  - id: panel-close
//	    description: Close a panel
//	    default: close
//
// Each icon declares exactly one of default (another icon id) or glyph (a
// character, optionally in font).
func Load(r io.Reader) (*Registry, error) {
	var file contributionFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode icon contributions: %w", err)
	}

	reg := New()
	var errs []error
	for i, entry := range file.Icons {
		defaults, err := entry.defaults()
		if err != nil {
			errs = append(errs, fmt.Errorf("icon %d (%q): %w", i, entry.ID, err))
			continue
		}
		reg.RegisterIcon(entry.ID, defaults, entry.Description)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// LoadFile reads contributions from a YAML file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (e contributionEntry) defaults() (icontheme.IconDefaults, error) {
	switch {
	case e.ID == "":
		return icontheme.IconDefaults{}, fmt.Errorf("%w: missing id", ErrInvalidIcon)
	case e.Default != "" && e.Glyph != "":
		return icontheme.IconDefaults{}, fmt.Errorf("%w: both default and glyph set", ErrInvalidIcon)
	case e.Default != "":
		if e.Font != "" {
			return icontheme.IconDefaults{}, fmt.Errorf("%w: font requires glyph", ErrInvalidIcon)
		}
		return icontheme.RefDefaults(e.Default), nil
	case e.Glyph != "":
		def := icontheme.IconDefinition{FontCharacter: e.Glyph}
		if e.Font != "" {
			def.Font = &icontheme.FontDefinition{ID: e.Font}
		}
		return icontheme.GlyphDefaults(def), nil
	}
	return icontheme.IconDefaults{}, fmt.Errorf("%w: one of default or glyph is required", ErrInvalidIcon)
}
