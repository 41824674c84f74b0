// Package inventory provides the item catalog, the player's carried items,
// and the pickup stage that moves items from the floor into the inventory.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrUnknownItem is returned when a name matches no catalog item.
var ErrUnknownItem = errors.New("unknown item")

// Item is one catalog entry.
type Item struct {
	// Name is the display name, e.g. "Magic Wand".
	Name string
	// Key is the lookup key typed by the player, e.g. "wand". Empty means the
	// case-folded Name is the only way to refer to the item.
	Key         string
	Description string
	Glyph       rune
}

// ID returns the identifier carried in inventories: Key if set, otherwise
// the lowercase Name.
func (it Item) ID() string {
	if it.Key != "" {
		return it.Key
	}
	return strings.ToLower(it.Name)
}

type yamlItem struct {
	Name        string `yaml:"name"`
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
	Glyph       string `yaml:"glyph"`
}

type yamlCatalog struct {
	Items []yamlItem `yaml:"items"`
}

// Catalog holds the item definitions in file order.
type Catalog struct {
	items []Item
}

// NewCatalog builds a catalog from items.
//
// Postcondition: Returns an error if two items share an ID.
func NewCatalog(items []Item) (*Catalog, error) {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Name == "" {
			return nil, errors.New("item name must not be empty")
		}
		if seen[it.ID()] {
			return nil, fmt.Errorf("duplicate item %q", it.ID())
		}
		seen[it.ID()] = true
	}
	return &Catalog{items: items}, nil
}

// LoadCatalog reads a YAML item catalog.
//
// Precondition: path names a readable file with a top-level "items" list.
// Postcondition: Returns the catalog or an error; every item has exactly one glyph rune.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading item catalog %q: %w", path, err)
	}
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing item catalog %q: %w", path, err)
	}
	items := make([]Item, 0, len(raw.Items))
	for _, y := range raw.Items {
		if utf8.RuneCountInString(y.Glyph) != 1 {
			return nil, fmt.Errorf("item %q: glyph must be a single character, got %q", y.Name, y.Glyph)
		}
		g, _ := utf8.DecodeRuneInString(y.Glyph)
		items = append(items, Item{Name: y.Name, Key: y.Key, Description: y.Description, Glyph: g})
	}
	c, err := NewCatalog(items)
	if err != nil {
		return nil, fmt.Errorf("item catalog %q: %w", path, err)
	}
	return c, nil
}

// Lookup finds an item by lookup key, then by case-folded display name.
//
// Postcondition: Returns the item, or an error wrapping ErrUnknownItem.
func (c *Catalog) Lookup(name string) (Item, error) {
	for _, it := range c.items {
		if it.Key != "" && it.Key == name {
			return it, nil
		}
	}
	for _, it := range c.items {
		if strings.EqualFold(it.Name, name) {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%q: %w", name, ErrUnknownItem)
}

// Has reports whether name resolves to a catalog item.
func (c *Catalog) Has(name string) bool {
	_, err := c.Lookup(name)
	return err == nil
}

// Items returns a copy of all items in file order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}
