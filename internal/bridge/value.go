package bridge

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

type valueOwner uint8

const (
	ownedByEntity valueOwner = iota
	ownedByWorld
)

// DynamicValue is a typed reference to a component, a resource, or a struct
// field nested inside either. It is bound to the stored instance it was
// created for: once that instance is removed or replaced, every access fails
// with ErrStaleValue.
//
// A value taken from a query snapshot also carries a private copy made at
// build time. Reads come from that copy without touching the gate; writes go
// to the live instance and are mirrored into the copy. Such a value belongs
// to the goroutine that built the query.
type DynamicValue struct {
	handle typereg.Handle // type at path
	root   typereg.Handle // type stored in the world
	gate   *Gate
	reg    *typereg.Registry
	owner  valueOwner
	entity ecs.EntityID
	target any           // stored *T the reference was created for
	held   reflect.Value // build-time copy of the root, or invalid
	path   []int
}

func componentRef(g *Gate, reg *typereg.Registry, e ecs.EntityID, h typereg.Handle, ptr any) DynamicValue {
	return DynamicValue{handle: h, root: h, gate: g, reg: reg, owner: ownedByEntity, entity: e, target: ptr}
}

func resourceRef(g *Gate, reg *typereg.Registry, h typereg.Handle, ptr any) DynamicValue {
	return DynamicValue{handle: h, root: h, gate: g, reg: reg, owner: ownedByWorld, target: ptr}
}

// heldRef is componentRef plus a detached copy of *ptr. Caller holds the gate.
func heldRef(g *Gate, reg *typereg.Registry, e ecs.EntityID, h typereg.Handle, ptr any) DynamicValue {
	v := componentRef(g, reg, e, h, ptr)
	src := reflect.ValueOf(ptr).Elem()
	v.held = reflect.New(src.Type()).Elem()
	v.held.Set(deepCopy(src))
	return v
}

// Type returns the handle describing the referenced value.
func (v DynamicValue) Type() typereg.Handle { return v.handle }

// Entity returns the owning entity, or the zero id for resources.
func (v DynamicValue) Entity() ecs.EntityID {
	if v.owner != ownedByEntity {
		return 0
	}
	return v.entity
}

func (v DynamicValue) IsResource() bool { return v.owner == ownedByWorld }

func (v DynamicValue) IsZero() bool { return v.gate == nil }

// resolve walks from the world to the addressable value. Caller holds the gate.
func (v DynamicValue) resolve(w *ecs.World) (reflect.Value, error) {
	var (
		ptr any
		ok  bool
	)
	switch v.owner {
	case ownedByEntity:
		if !w.Alive(v.entity) {
			return reflect.Value{}, fmt.Errorf("%s on %s: %w", typeLabel(v.root), v.entity, ErrStaleValue)
		}
		ptr, ok = w.Component(v.entity, v.root.Type())
	case ownedByWorld:
		ptr, ok = w.Resource(v.root.Type())
	}
	if !ok || ptr != v.target {
		return reflect.Value{}, fmt.Errorf("%s: %w", typeLabel(v.root), ErrStaleValue)
	}
	return walk(reflect.ValueOf(ptr).Elem(), v.path), nil
}

// current is the value assign reads from when v is the source of a write.
func (v DynamicValue) current(w *ecs.World) (reflect.Value, error) {
	if v.held.IsValid() {
		return walk(v.held, v.path), nil
	}
	return v.resolve(w)
}

func walk(rv reflect.Value, path []int) reflect.Value {
	for _, i := range path {
		rv = rv.Field(i)
	}
	return rv
}

// Fields lists the exported field names of the referenced struct type.
func (v DynamicValue) Fields() []string {
	t := v.handle.Type()
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	out := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			out = append(out, f.Name)
		}
	}
	return out
}

// Field reads one field. Struct-typed fields come back as a nested
// DynamicValue; everything else is copied out.
func (v DynamicValue) Field(name string) (any, error) {
	if v.held.IsValid() {
		return v.fieldOf(walk(v.held, v.path), name)
	}
	return readGate(v.gate, func(w *ecs.World) (any, error) {
		rv, err := v.resolve(w)
		if err != nil {
			return nil, err
		}
		return v.fieldOf(rv, name)
	})
}

func (v DynamicValue) fieldOf(rv reflect.Value, name string) (any, error) {
	idx, err := fieldIndex(rv.Type(), name)
	if err != nil {
		return nil, err
	}
	fv := rv.Field(idx)
	if fv.Kind() == reflect.Struct {
		return v.child(idx, fv.Type()), nil
	}
	return copyOut(fv), nil
}

// SetField stores val into one field, converting numeric kinds and filling
// structs from map[string]any and slices from []any.
func (v DynamicValue) SetField(name string, val any) error {
	return v.gate.WithWrite(func(w *ecs.World) error {
		rv, err := v.resolve(w)
		if err != nil {
			return err
		}
		idx, err := fieldIndex(rv.Type(), name)
		if err != nil {
			return err
		}
		if err := assign(w, rv.Field(idx), val); err != nil {
			return fmt.Errorf("%s.%s: %w", typeLabel(v.handle), rv.Type().Field(idx).Name, err)
		}
		v.mirror(append(slices.Clip(v.path), idx), rv.Field(idx))
		return nil
	})
}

// Set replaces the whole referenced value.
func (v DynamicValue) Set(val any) error {
	return v.gate.WithWrite(func(w *ecs.World) error {
		rv, err := v.resolve(w)
		if err != nil {
			return err
		}
		if err := assign(w, rv, val); err != nil {
			return err
		}
		v.mirror(v.path, rv)
		return nil
	})
}

// mirror copies a freshly written live value into the held copy.
func (v DynamicValue) mirror(path []int, live reflect.Value) {
	if v.held.IsValid() {
		walk(v.held, path).Set(deepCopy(live))
	}
}

// Interface returns a detached copy of the value.
func (v DynamicValue) Interface() (any, error) {
	if v.held.IsValid() {
		return copyOut(walk(v.held, v.path)), nil
	}
	return readGate(v.gate, func(w *ecs.World) (any, error) {
		rv, err := v.resolve(w)
		if err != nil {
			return nil, err
		}
		return copyOut(rv), nil
	})
}

func (v DynamicValue) String() string {
	if v.IsZero() {
		return "<nil value>"
	}
	val, err := v.Interface()
	if err != nil {
		return fmt.Sprintf("<stale %s>", typeLabel(v.handle))
	}
	return fmt.Sprintf("%s%+v", v.handle.ShortName(), val)
}

func (v DynamicValue) child(idx int, t reflect.Type) DynamicValue {
	c := v
	c.path = append(slices.Clip(v.path), idx)
	if v.reg != nil {
		c.handle = v.reg.Describe(t)
	}
	return c
}
