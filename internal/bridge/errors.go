package bridge

import (
	"errors"
	"fmt"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

var (
	// ErrInvalidEntity means the entity id no longer resolves to a live entity.
	ErrInvalidEntity = errors.New("bridge: invalid entity")
	// ErrNotAComponent means a type without the component trait was used as a component.
	ErrNotAComponent = errors.New("bridge: not a component")
	// ErrNotAResource means a type without the resource trait was used as a resource.
	ErrNotAResource = errors.New("bridge: not a resource")
	// ErrNotDefaultConstructible means the type was registered without a default.
	ErrNotDefaultConstructible = errors.New("bridge: type has no default")
	// ErrAmbiguousFilter means a query both requires and excludes a type.
	ErrAmbiguousFilter = errors.New("bridge: type is both required and excluded")
	// ErrInvalidHierarchy means a parent/child operation would corrupt the links.
	ErrInvalidHierarchy = errors.New("bridge: invalid hierarchy operation")
	// ErrStaleValue means a value reference outlived the component or resource it pointed at.
	ErrStaleValue = errors.New("bridge: value no longer exists")
	// ErrNoSuchField means a field name did not match any exported field.
	ErrNoSuchField = errors.New("bridge: no such field")
	// ErrFieldType means a value cannot be stored in the target field.
	ErrFieldType = errors.New("bridge: value does not fit field")
)

func invalidEntity(e ecs.EntityID) error {
	return fmt.Errorf("entity %s: %w", e, ErrInvalidEntity)
}

func requireComponent(h typereg.Handle) error {
	if !h.IsComponent() {
		return fmt.Errorf("%s: %w", typeLabel(h), ErrNotAComponent)
	}
	return nil
}

func requireResource(h typereg.Handle) error {
	if !h.IsResource() {
		return fmt.Errorf("%s: %w", typeLabel(h), ErrNotAResource)
	}
	return nil
}

func typeLabel(h typereg.Handle) string {
	if h.IsZero() {
		return "<unknown type>"
	}
	return h.ShortName()
}
