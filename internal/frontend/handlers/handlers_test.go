package handlers

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/npc"
	"github.com/cory-johannsen/castle/internal/game/session"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// testContent has room 0 leading north to room 1, with the player at the top edge.
func testContent(t *testing.T) *session.Content {
	t.Helper()
	items, err := inventory.NewCatalog([]inventory.Item{{Name: "Lamp", Description: "a brass lamp", Glyph: 'l'}})
	require.NoError(t, err)
	enemies, err := npc.NewCatalog([]npc.Template{{Name: "Rat", Glyph: 'r', Health: 3}})
	require.NoError(t, err)
	return &session.Content{
		Table: world.NewTable([]*world.Room{
			{
				Description: []string{"The great hall", "", "", "", ""},
				Exits: []world.Exit{
					{Direction: world.North, To: 1},
					{Direction: world.Invalid, To: 0},
					{Direction: world.North, To: 1},
				},
			},
			{Description: []string{"A cellar", "   ", "", "", ""}, Exits: []world.Exit{{Direction: world.South, To: 0}}},
		}),
		Items:   items,
		Enemies: enemies,
		Player:  spawn.PlayerSpec{X: 5, Y: 0, Health: 10, Damage: 10, LogLines: 2},
	}
}

func startedGame(t *testing.T) *session.Game {
	t.Helper()
	g, err := session.NewGame(testContent(t), nil, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(g.Close)
	g.Start()
	return g
}

// fakeConn replays scripted input and records output. With block set, it
// blocks forever once the script runs out instead of returning io.EOF.
type fakeConn struct {
	mu      sync.Mutex
	input   []string
	block   bool
	out     []string
	prompts int
}

func (c *fakeConn) ReadLine() (string, error) {
	c.mu.Lock()
	if len(c.input) == 0 {
		block := c.block
		c.mu.Unlock()
		if block {
			select {}
		}
		return "", io.EOF
	}
	line := c.input[0]
	c.input = c.input[1:]
	c.mu.Unlock()
	return line, nil
}

func (c *fakeConn) WriteLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, text)
	return nil
}

func (c *fakeConn) WritePrompt(string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts++
	return nil
}

func (c *fakeConn) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.out...)
}

var _ LineConn = (*fakeConn)(nil)
