package engine

import (
	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/grid"
)

// Event names emitted by the engine.
const (
	EventItemAdded         = "item:added"
	EventItemRemoved       = "item:removed"
	EventItemMoved         = "item:moved"
	EventItemResized       = "item:resized"
	EventItemUpdated       = "item:updated"
	EventSelectionChanged  = "selection:changed"
	EventGridChanged       = "grid:changed"
	EventInteractionActive = "interaction:active"
	EventInteractionIdle   = "interaction:idle"
)

// Event is one engine notification. Payload is one of the *Event types
// below, or nil for the interaction events.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// ItemAddedEvent accompanies EventItemAdded.
type ItemAddedEvent struct {
	Item board.Item `json:"item"`
}

// ItemRemovedEvent accompanies EventItemRemoved.
type ItemRemovedEvent struct {
	ID string `json:"id"`
}

// ItemMovedEvent accompanies EventItemMoved.
type ItemMovedEvent struct {
	Item        board.Item    `json:"item"`
	OldPosition grid.Position `json:"oldPosition"`
}

// ItemResizedEvent accompanies EventItemResized.
type ItemResizedEvent struct {
	Item    board.Item `json:"item"`
	OldSize grid.Size  `json:"oldSize"`
}

// ItemUpdatedEvent accompanies EventItemUpdated.
type ItemUpdatedEvent struct {
	Item board.Item `json:"item"`
}

// SelectionChangedEvent accompanies EventSelectionChanged.
type SelectionChangedEvent struct {
	IDs []string `json:"ids"`
}

// GridChangedEvent accompanies EventGridChanged.
type GridChangedEvent struct {
	Grid grid.Config `json:"grid"`
}

type subscriber struct {
	id   int
	name string
	fn   func(Event)
}

// Subscribe registers a handler for events with the given name; the empty
// name or "*" receives every event. The returned function unsubscribes.
// Handlers run synchronously on the mutating call stack, so they observe the
// board exactly as the event left it.
func (e *Engine) Subscribe(name string, fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscriber{id: id, name: name, fn: fn})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) emit(name string, payload any) {
	ev := Event{Name: name, Payload: payload}
	for _, s := range e.subs {
		if s.name == "" || s.name == "*" || s.name == name {
			s.fn(ev)
		}
	}
}
