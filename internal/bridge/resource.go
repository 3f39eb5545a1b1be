package bridge

import (
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

// ResourceAccessor is the world-global counterpart of ComponentAccessor.
type ResourceAccessor struct {
	gate *Gate
	reg  *typereg.Registry
}

// Get returns a reference to the resource of type h, or (zero, false, nil).
func (a ResourceAccessor) Get(h typereg.Handle) (DynamicValue, bool, error) {
	if err := requireResource(h); err != nil {
		return DynamicValue{}, false, err
	}
	ptr, err := readGate(a.gate, func(w *ecs.World) (any, error) {
		ptr, _ := w.Resource(h.Type())
		return ptr, nil
	})
	if err != nil || ptr == nil {
		return DynamicValue{}, false, err
	}
	return resourceRef(a.gate, a.reg, h, ptr), true, nil
}

func (a ResourceAccessor) Has(h typereg.Handle) (bool, error) {
	if err := requireResource(h); err != nil {
		return false, err
	}
	return readGate(a.gate, func(w *ecs.World) (bool, error) {
		_, ok := w.Resource(h.Type())
		return ok, nil
	})
}

// Remove drops the resource if present.
func (a ResourceAccessor) Remove(h typereg.Handle) error {
	if err := requireResource(h); err != nil {
		return err
	}
	return a.gate.WithWrite(func(w *ecs.World) error {
		w.RemoveResource(h.Type())
		return nil
	})
}
