package bridge

import (
	"fmt"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

// ComponentAccessor reads and writes one entity's components by handle.
type ComponentAccessor struct {
	gate *Gate
	reg  *typereg.Registry
}

// Get returns a reference to e's component of type h. A missing component is
// (zero, false, nil).
func (a ComponentAccessor) Get(e ecs.EntityID, h typereg.Handle) (DynamicValue, bool, error) {
	if err := requireComponent(h); err != nil {
		return DynamicValue{}, false, err
	}
	var (
		dv DynamicValue
		ok bool
	)
	err := a.gate.WithRead(func(w *ecs.World) error {
		var err error
		dv, ok, err = a.getIn(w, e, h)
		return err
	})
	return dv, ok, err
}

func (a ComponentAccessor) Has(e ecs.EntityID, h typereg.Handle) (bool, error) {
	if err := requireComponent(h); err != nil {
		return false, err
	}
	return readGate(a.gate, func(w *ecs.World) (bool, error) {
		return a.hasIn(w, e, h)
	})
}

// InsertDefault attaches a default-constructed h to e, replacing any existing
// instance, and returns a reference to it. References to the replaced
// instance go stale.
func (a ComponentAccessor) InsertDefault(e ecs.EntityID, h typereg.Handle) (DynamicValue, error) {
	if err := requireComponent(h); err != nil {
		return DynamicValue{}, err
	}
	return writeGate(a.gate, func(w *ecs.World) (DynamicValue, error) {
		return a.insertDefaultIn(w, e, h)
	})
}

// Remove detaches h from e. Absent components are not an error.
func (a ComponentAccessor) Remove(e ecs.EntityID, h typereg.Handle) error {
	if err := requireComponent(h); err != nil {
		return err
	}
	return a.gate.WithWrite(func(w *ecs.World) error {
		return a.removeIn(w, e, h)
	})
}

func (a ComponentAccessor) getIn(w *ecs.World, e ecs.EntityID, h typereg.Handle) (DynamicValue, bool, error) {
	if !w.Alive(e) {
		return DynamicValue{}, false, invalidEntity(e)
	}
	ptr, ok := w.Component(e, h.Type())
	if !ok {
		return DynamicValue{}, false, nil
	}
	return componentRef(a.gate, a.reg, e, h, ptr), true, nil
}

func (a ComponentAccessor) hasIn(w *ecs.World, e ecs.EntityID, h typereg.Handle) (bool, error) {
	if !w.Alive(e) {
		return false, invalidEntity(e)
	}
	return w.HasComponent(e, h.Type()), nil
}

func (a ComponentAccessor) insertDefaultIn(w *ecs.World, e ecs.EntityID, h typereg.Handle) (DynamicValue, error) {
	if !w.Alive(e) {
		return DynamicValue{}, invalidEntity(e)
	}
	ptr, ok := h.New()
	if !ok {
		return DynamicValue{}, fmt.Errorf("%s: %w", typeLabel(h), ErrNotDefaultConstructible)
	}
	if err := w.InsertComponent(e, ptr); err != nil {
		return DynamicValue{}, err
	}
	return componentRef(a.gate, a.reg, e, h, ptr), nil
}

func (a ComponentAccessor) removeIn(w *ecs.World, e ecs.EntityID, h typereg.Handle) error {
	if !w.Alive(e) {
		return invalidEntity(e)
	}
	w.RemoveComponent(e, h.Type())
	return nil
}
