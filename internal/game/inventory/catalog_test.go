package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
items:
  - name: Lamp
    key: lamp
    description: It's bright!
    glyph: "♠"
  - name: Magic Wand
    key: wand
    description: It hums faintly.
    glyph: "─"
  - name: Crown
    description: Fit for a king.
    glyph: "⌂"
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, catalogYAML))
	require.NoError(t, err)
	require.Len(t, c.Items(), 3)

	lamp, err := c.Lookup("lamp")
	require.NoError(t, err)
	assert.Equal(t, '♠', lamp.Glyph)
	assert.Equal(t, "lamp", lamp.ID())
}

func TestLookup_KeyThenFoldedName(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, catalogYAML))
	require.NoError(t, err)

	wand, err := c.Lookup("wand")
	require.NoError(t, err)
	assert.Equal(t, "Magic Wand", wand.Name)

	wand, err = c.Lookup("MAGIC WAND")
	require.NoError(t, err)
	assert.Equal(t, "wand", wand.ID())

	crown, err := c.Lookup("crown")
	require.NoError(t, err)
	assert.Equal(t, "crown", crown.ID())

	_, err = c.Lookup("harp")
	assert.True(t, errors.Is(err, ErrUnknownItem))
	assert.False(t, c.Has("harp"))
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCatalog(writeCatalog(t, "items:\n  - name: Lamp\n    glyph: ab\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(writeCatalog(t, "items:\n  - name: Lamp\n    glyph: a\n  - name: lamp\n    glyph: b\n"))
	assert.Error(t, err, "duplicate ids are rejected")
}
