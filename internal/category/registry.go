// Package category manages the named spending categories and their colors.
package category

import (
	"strings"

	"spendwise/internal/core"
)

// Option configures a Registry.
type Option func(*Registry)

// WithPalette overrides the rotation colors used for new categories.
func WithPalette(colors []string) Option {
	return func(r *Registry) {
		if len(colors) > 0 {
			r.palette = append([]string(nil), colors...)
		}
	}
}

// Registry keeps categories in insertion order.
type Registry struct {
	items   []core.Category
	palette []string
}

// New creates a registry seeded with the default categories.
func New(opts ...Option) *Registry {
	r := &Registry{palette: core.Palette()}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// NewEmpty creates a registry with no categories.
func NewEmpty(opts ...Option) *Registry {
	r := New(opts...)
	r.items = nil
	return r
}

// Add appends a category named name with the next palette color.
// If a category with the same name in any letter case exists, nothing changes
// and the existing entry is returned with false.
func (r *Registry) Add(name string) (core.Category, bool) {
	if i := indexFold(r.items, name); i >= 0 {
		return r.items[i], false
	}
	c := core.Category{
		Name:  name,
		Color: r.palette[len(r.items)%len(r.palette)],
	}
	r.items = append(r.items, c)
	return c, true
}

// ColorOf returns the color of the category with exactly this name,
// or the fallback color. Matching is case-sensitive.
func (r *Registry) ColorOf(name string) string {
	for _, c := range r.items {
		if c.Name == name {
			return c.Color
		}
	}
	return core.FallbackColor
}

// List returns a copy of the categories in insertion order.
func (r *Registry) List() []core.Category {
	out := make([]core.Category, len(r.items))
	copy(out, r.items)
	return out
}

// ReplaceAll overwrites the registry contents. Names are trimmed, blank
// names are skipped and, of names equal ignoring case, only the first is
// kept. A blank color takes the palette color for the entry's position.
func (r *Registry) ReplaceAll(categories []core.Category) {
	items := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" || indexFold(items, c.Name) >= 0 {
			continue
		}
		c.Color = strings.TrimSpace(c.Color)
		if c.Color == "" {
			c.Color = r.palette[len(items)%len(r.palette)]
		}
		items = append(items, c)
	}
	r.items = items
}

func indexFold(items []core.Category, name string) int {
	for i, c := range items {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Reset restores the default categories.
func (r *Registry) Reset() {
	r.items = core.DefaultCategories()
}

func (r *Registry) Len() int {
	return len(r.items)
}
