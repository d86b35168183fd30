package registry

import (
	"sort"
	"sync"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// Bounds is an engine container's rectangle in shared screen coordinates.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether a point falls inside the bounds. The left and top
// edges are inclusive, the right and bottom edges exclusive, so adjacent
// containers never both claim a point.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// DropHandler is the engine-side contract for cross-container drags. Detach
// removes the item from the source board and returns it; Attach places it on
// the target board at a point relative to the target's origin; Restore puts
// a detached item back at the grid position it still carries.
type DropHandler interface {
	Detach(id string) (board.Item, error)
	Attach(item board.Item, x, y float64) error
	Restore(item board.Item) error
}

// Coordinator routes drag hand-off between engine instances sharing a
// screen. It is constructed explicitly and injected into each participating
// engine; nothing here is process-global. Safe for concurrent use.
type Coordinator struct {
	mu    sync.Mutex
	zones map[string]*zone
}

type zone struct {
	bounds  Bounds
	handler DropHandler
}

// NewCoordinator creates a coordinator with no registered containers.
func NewCoordinator() *Coordinator {
	return &Coordinator{zones: make(map[string]*zone)}
}

// Add registers a container under an identifier, replacing any previous
// registration with the same identifier.
func (c *Coordinator) Add(id string, bounds Bounds, handler DropHandler) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "container id must not be empty")
	}
	if handler == nil {
		return errors.New(errors.ErrCodeInvalidInput, "drop handler for %q must not be nil", id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zones[id] = &zone{bounds: bounds, handler: handler}
	return nil
}

// SetBounds updates a container's rectangle after it moves or resizes.
func (c *Coordinator) SetBounds(id string, bounds Bounds) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	z, ok := c.zones[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "container %q is not registered", id)
	}
	z.bounds = bounds
	return nil
}

// Remove unregisters a container. Removing an unknown identifier is a no-op.
func (c *Coordinator) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.zones, id)
}

// HitTest returns the identifier of the container whose bounds contain the
// point. When containers overlap the smallest identifier wins, keeping the
// answer deterministic.
func (c *Coordinator) HitTest(x, y float64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitTest(x, y)
}

func (c *Coordinator) hitTest(x, y float64) (string, bool) {
	ids := make([]string, 0, len(c.zones))
	for id, z := range c.zones {
		if z.bounds.Contains(x, y) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", false
	}
	sort.Strings(ids)
	return ids[0], true
}

// Drop hands an item from the source container to whichever container owns
// the drop point. The detach and attach happen inside this one call; if the
// target rejects the item it is reattached to the source at its old point so
// the item is never lost. A drop landing back on the source container is
// reported with ok=false and no error, leaving in-container moves to the
// source engine.
func (c *Coordinator) Drop(sourceID, itemID string, x, y float64) (targetID string, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, found := c.zones[sourceID]
	if !found {
		return "", false, errors.New(errors.ErrCodeNotFound, "container %q is not registered", sourceID)
	}
	targetID, hit := c.hitTest(x, y)
	if !hit {
		return "", false, errors.New(errors.ErrCodeNotFound, "no container at (%.0f, %.0f)", x, y)
	}
	if targetID == sourceID {
		return targetID, false, nil
	}
	dst := c.zones[targetID]

	item, err := src.handler.Detach(itemID)
	if err != nil {
		return "", false, errors.Wrap(errors.GetCode(err), err, "detach %q from %q", itemID, sourceID)
	}
	if err := dst.handler.Attach(item, x-dst.bounds.X, y-dst.bounds.Y); err != nil {
		if restoreErr := src.handler.Restore(item); restoreErr != nil {
			return "", false, errors.Wrap(errors.ErrCodeInternal, restoreErr,
				"item %q lost: target rejected it (%v) and source refused it back", itemID, err)
		}
		return "", false, errors.Wrap(errors.GetCode(err), err, "attach %q to %q", itemID, targetID)
	}
	return targetID, true, nil
}
