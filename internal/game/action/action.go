// Package action defines deferred structural state changes. Stages queue
// actions instead of mutating the world mid-iteration; the turn pipeline
// drains the queue between stages.
package action

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// Action is one deferred state change.
type Action interface {
	// Kind names the action for logging.
	Kind() string
}

// DeleteEntities destroys the listed entities.
type DeleteEntities struct {
	Entities []ecs.Entity
}

// ChangeRoom moves the player to room To. Direction is the side the player
// left through; Invalid keeps the player's position unchanged.
type ChangeRoom struct {
	To        int
	Direction world.Direction
}

// RedirectRoom makes every later transition targeting From land in To.
type RedirectRoom struct {
	From, To int
}

// Quit ends the session.
type Quit struct{}

// Save writes a durable session snapshot.
type Save struct{}

// Load restores a durable session snapshot: the one named by ID, or the
// most recent one when ID is uuid.Nil.
type Load struct {
	ID uuid.UUID
}

func (DeleteEntities) Kind() string { return "delete_entities" }
func (ChangeRoom) Kind() string     { return "change_room" }
func (RedirectRoom) Kind() string   { return "redirect_room" }
func (Quit) Kind() string           { return "quit" }
func (Save) Kind() string           { return "save" }
func (Load) Kind() string           { return "load" }

// Queue is a FIFO of pending actions.
type Queue struct {
	pending []Action
}

// Push appends a to the queue. Nil actions are ignored.
func (q *Queue) Push(a Action) {
	if a == nil {
		return
	}
	q.pending = append(q.pending, a)
}

// Drain removes and returns every queued action in push order.
func (q *Queue) Drain() []Action {
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	return len(q.pending)
}
