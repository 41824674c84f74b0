package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/castle/internal/game/ecs"
)

func chaser(w *ecs.World, x, y int) ecs.Entity {
	e := w.Create()
	w.Positions.Set(e, ecs.Position{X: x, Y: y})
	w.Movements.Set(e, ecs.Movement{})
	w.AIs.Set(e, ecs.AI{})
	return e
}

func addPlayer(w *ecs.World, x, y int) ecs.Entity {
	p := w.Create()
	w.Players.Set(p, ecs.Player{})
	w.Positions.Set(p, ecs.Position{X: x, Y: y})
	return p
}

func TestChase_StepsTowardPlayer(t *testing.T) {
	w := ecs.NewWorld()
	addPlayer(w, 12, 9)
	e := chaser(w, 3, 15)

	assert.Equal(t, 1, Chase(w))
	mv, _ := w.Movements.Get(e)
	assert.Equal(t, ecs.Movement{DX: 1, DY: -1}, mv)
}

func TestChase_NearestPlayer(t *testing.T) {
	w := ecs.NewWorld()
	addPlayer(w, 0, 0)
	addPlayer(w, 10, 5)
	e := chaser(w, 9, 9)
	Chase(w)
	mv, _ := w.Movements.Get(e)
	assert.Equal(t, ecs.Movement{DX: 1, DY: -1}, mv)
}

func TestChase_NoPlayers(t *testing.T) {
	w := ecs.NewWorld()
	chaser(w, 1, 1)
	assert.Equal(t, 0, Chase(w))
}

func TestPropertyIntentIsUnitStep(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := ecs.NewWorld()
		addPlayer(w, rapid.IntRange(0, 23).Draw(t, "px"), rapid.IntRange(0, 17).Draw(t, "py"))
		e := chaser(w, rapid.IntRange(0, 23).Draw(t, "x"), rapid.IntRange(0, 17).Draw(t, "y"))
		Chase(w)
		mv, _ := w.Movements.Get(e)
		if mv.DX < -1 || mv.DX > 1 || mv.DY < -1 || mv.DY > 1 {
			t.Fatalf("intent (%d,%d) not a unit step", mv.DX, mv.DY)
		}
	})
}
