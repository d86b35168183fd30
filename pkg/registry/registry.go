// Package registry maps item type tags to extension capability sets and
// coordinates drag hand-off between engine instances.
//
// Extensions let callers attach per-type behavior (widget construction,
// drawing, teardown) without the engine knowing anything about the rendered
// surface. The engine invokes the hooks around its own mutations; it never
// inspects the surface value it passes through.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// Extension receives lifecycle events for items of one type tag. The surface
// argument is whatever the host application registered the engine with; the
// engine passes it through untouched.
type Extension interface {
	// Create is invoked after an item of this type is added to the board.
	Create(ctx context.Context, item board.Item, surface any) error

	// Render is invoked when the item should redraw, including after moves
	// and resizes.
	Render(ctx context.Context, item board.Item, surface any) error

	// Update is invoked after the item's attributes change.
	Update(ctx context.Context, item board.Item, surface any) error

	// Destroy is invoked after the item is removed from the board.
	Destroy(ctx context.Context, item board.Item, surface any) error
}

// NoopExtension is an Extension that does nothing. Embed it to implement
// only the hooks a type cares about.
type NoopExtension struct{}

func (NoopExtension) Create(context.Context, board.Item, any) error  { return nil }
func (NoopExtension) Render(context.Context, board.Item, any) error  { return nil }
func (NoopExtension) Update(context.Context, board.Item, any) error  { return nil }
func (NoopExtension) Destroy(context.Context, board.Item, any) error { return nil }

// Registry holds the extensions known to one engine instance. The zero value
// is not usable; construct with NewRegistry. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]Extension
}

// NewRegistry creates an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{extensions: make(map[string]Extension)}
}

// Register binds an extension to a type tag, replacing any previous binding.
func (r *Registry) Register(typeTag string, ext Extension) error {
	if err := errors.ValidateTypeTag(typeTag); err != nil {
		return err
	}
	if ext == nil {
		return errors.New(errors.ErrCodeInvalidInput, "extension for %q must not be nil", typeTag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[typeTag] = ext
	return nil
}

// Unregister removes the binding for a type tag, if any.
func (r *Registry) Unregister(typeTag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.extensions, typeTag)
}

// Lookup returns the extension bound to a type tag. An empty type tag
// resolves to a no-op extension so untyped items need no registration.
func (r *Registry) Lookup(typeTag string) (Extension, error) {
	if typeTag == "" {
		return NoopExtension{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.extensions[typeTag]
	if !ok {
		return nil, errors.New(errors.ErrCodeExtensionNotFound, "no extension registered for type %q", typeTag)
	}
	return ext, nil
}

// Must returns the extension bound to a type tag and panics when none is
// registered. Intended for setup paths where a missing extension is a
// programming error.
func (r *Registry) Must(typeTag string) Extension {
	ext, err := r.Lookup(typeTag)
	if err != nil {
		panic(err)
	}
	return ext
}

// Has reports whether a type tag is registered. The empty tag is always
// accepted.
func (r *Registry) Has(typeTag string) bool {
	_, err := r.Lookup(typeTag)
	return err == nil
}

// TypeTags returns the registered type tags in sorted order.
func (r *Registry) TypeTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.extensions))
	for tag := range r.extensions {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
