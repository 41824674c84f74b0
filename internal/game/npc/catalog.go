// Package npc provides the enemy catalog.
package npc

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrUnknownEnemy is returned when a name matches no catalog enemy.
var ErrUnknownEnemy = errors.New("unknown enemy")

// Template defines an enemy archetype.
type Template struct {
	Name        string
	Key         string
	Description string
	Glyph       rune
	// Health is the maximum health.
	Health int
	// Damage is nil for enemies that never attack. Attacking enemies also
	// chase the player.
	Damage *int
}

// ID returns Key if set, otherwise the lowercase Name.
func (t Template) ID() string {
	if t.Key != "" {
		return t.Key
	}
	return strings.ToLower(t.Name)
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff Name is non-empty, Health >= 1 and Damage, if set, is >= 0.
func (t Template) Validate() error {
	if t.Name == "" {
		return errors.New("enemy template: name must not be empty")
	}
	if t.Health < 1 {
		return fmt.Errorf("enemy template %q: health must be >= 1", t.Name)
	}
	if t.Damage != nil && *t.Damage < 0 {
		return fmt.Errorf("enemy template %q: damage must be >= 0", t.Name)
	}
	return nil
}

type yamlTemplate struct {
	Name        string `yaml:"name"`
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
	Glyph       string `yaml:"glyph"`
	Health      int    `yaml:"health"`
	Damage      *int   `yaml:"damage"`
}

type yamlCatalog struct {
	Enemies []yamlTemplate `yaml:"enemies"`
}

// Catalog holds enemy templates in file order.
type Catalog struct {
	templates []Template
}

// NewCatalog validates templates and builds a catalog.
func NewCatalog(templates []Template) (*Catalog, error) {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.ID()] {
			return nil, fmt.Errorf("duplicate enemy %q", t.ID())
		}
		seen[t.ID()] = true
	}
	return &Catalog{templates: templates}, nil
}

// LoadCatalog reads a YAML enemy catalog.
//
// Precondition: path names a readable file with a top-level "enemies" list.
// Postcondition: Returns the catalog or an error.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading enemy catalog %q: %w", path, err)
	}
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing enemy catalog %q: %w", path, err)
	}
	templates := make([]Template, 0, len(raw.Enemies))
	for _, y := range raw.Enemies {
		if utf8.RuneCountInString(y.Glyph) != 1 {
			return nil, fmt.Errorf("enemy %q: glyph must be a single character, got %q", y.Name, y.Glyph)
		}
		g, _ := utf8.DecodeRuneInString(y.Glyph)
		templates = append(templates, Template{
			Name:        y.Name,
			Key:         y.Key,
			Description: y.Description,
			Glyph:       g,
			Health:      y.Health,
			Damage:      y.Damage,
		})
	}
	c, err := NewCatalog(templates)
	if err != nil {
		return nil, fmt.Errorf("enemy catalog %q: %w", path, err)
	}
	return c, nil
}

// Lookup finds a template by lookup key, then by case-folded display name.
//
// Postcondition: Returns the template, or an error wrapping ErrUnknownEnemy.
func (c *Catalog) Lookup(name string) (Template, error) {
	for _, t := range c.templates {
		if t.Key != "" && t.Key == name {
			return t, nil
		}
	}
	for _, t := range c.templates {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%q: %w", name, ErrUnknownEnemy)
}

// Has reports whether name resolves to a template.
func (c *Catalog) Has(name string) bool {
	_, err := c.Lookup(name)
	return err == nil
}
