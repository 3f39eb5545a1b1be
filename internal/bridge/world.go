// Package bridge lets a dynamically typed script environment inspect and
// mutate an ecs.World through runtime type handles instead of Go generics.
//
// All world access goes through a Gate. Lookups that can legitimately miss
// (unknown type name, absent component or resource, root entity) return an
// ok=false result; everything else is an error wrapping one of the Err
// sentinels in this package.
package bridge

import (
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/event"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

// ScriptWorld is the handle scripts receive. It borrows the world through a
// gate and keeps its own clone of the type registry. Copies made by As share
// the gate.
type ScriptWorld struct {
	gate *Gate
	reg  *typereg.Registry
	log  *zap.Logger
	bus  *event.Bus
	id   ScriptIdentity
}

// Option configures a ScriptWorld.
type Option func(*ScriptWorld)

// WithEventBus makes spawn and despawn emit events on b.
func WithEventBus(b *event.Bus) Option {
	return func(sw *ScriptWorld) { sw.bus = b }
}

func NewScriptWorld(gate *Gate, reg *typereg.Registry, log *zap.Logger, opts ...Option) *ScriptWorld {
	sw := &ScriptWorld{
		gate: gate,
		reg:  reg.Clone(),
		log:  log,
		id:   HostIdentity,
	}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// As returns a view of the same world issuing calls on behalf of id.
func (sw *ScriptWorld) As(id ScriptIdentity) *ScriptWorld {
	c := *sw
	c.id = id
	c.log = sw.log.With(id.Fields()...)
	return &c
}

func (sw *ScriptWorld) Identity() ScriptIdentity      { return sw.id }
func (sw *ScriptWorld) Registry() *typereg.Registry   { return sw.reg }
func (sw *ScriptWorld) Gate() *Gate                   { return sw.gate }
func (sw *ScriptWorld) Components() ComponentAccessor { return ComponentAccessor{gate: sw.gate, reg: sw.reg} }
func (sw *ScriptWorld) Resources() ResourceAccessor   { return ResourceAccessor{gate: sw.gate, reg: sw.reg} }
func (sw *ScriptWorld) Hierarchy() Hierarchy          { return Hierarchy{gate: sw.gate} }

// TypeByName resolves a short or fully qualified type name.
func (sw *ScriptWorld) TypeByName(name string) (typereg.Handle, bool) {
	return sw.reg.Resolve(name)
}

// Spawn creates an empty entity.
func (sw *ScriptWorld) Spawn() ecs.EntityID {
	var e ecs.EntityID
	_ = sw.gate.WithWrite(func(w *ecs.World) error {
		e = w.Spawn()
		return nil
	})
	sw.log.Debug("spawn", zap.Stringer("entity", e))
	event.Emit(sw.bus, event.EntitySpawned{Entity: e, SID: sw.id.SID})
	return e
}

// Despawn removes e and reports whether it existed. Links to and from e are
// dropped; its children become roots.
func (sw *ScriptWorld) Despawn(e ecs.EntityID) bool {
	var ok bool
	_ = sw.gate.WithWrite(func(w *ecs.World) error {
		if !w.Alive(e) {
			return nil
		}
		unlinkIn(w, e)
		ok = w.Despawn(e)
		return nil
	})
	if ok {
		sw.log.Debug("despawn", zap.Stringer("entity", e))
		event.Emit(sw.bus, event.EntityDespawned{Entity: e, SID: sw.id.SID})
	}
	return ok
}

// DespawnLater queues e for removal by the next FlushDestroyQueue.
func (sw *ScriptWorld) DespawnLater(e ecs.EntityID) error {
	return sw.gate.WithWrite(func(w *ecs.World) error {
		if !w.Alive(e) {
			return invalidEntity(e)
		}
		w.MarkForDestruction(e)
		return nil
	})
}

// FlushDestroyQueue despawns every queued entity the way Despawn does and
// returns how many were removed.
func (sw *ScriptWorld) FlushDestroyQueue() int {
	var gone []ecs.EntityID
	_ = sw.gate.WithWrite(func(w *ecs.World) error {
		for _, e := range w.TakeDestroyQueue() {
			if !w.Alive(e) {
				continue
			}
			unlinkIn(w, e)
			if w.Despawn(e) {
				gone = append(gone, e)
			}
		}
		return nil
	})
	sw.emitDespawned(gone)
	return len(gone)
}

func (sw *ScriptWorld) AddDefaultComponent(e ecs.EntityID, h typereg.Handle) (DynamicValue, error) {
	dv, err := sw.Components().InsertDefault(e, h)
	sw.trace("add_default_component", err, zap.Stringer("entity", e), zap.String("type", h.ShortName()))
	return dv, err
}

func (sw *ScriptWorld) GetComponent(e ecs.EntityID, h typereg.Handle) (DynamicValue, bool, error) {
	return sw.Components().Get(e, h)
}

func (sw *ScriptWorld) HasComponent(e ecs.EntityID, h typereg.Handle) (bool, error) {
	return sw.Components().Has(e, h)
}

func (sw *ScriptWorld) RemoveComponent(e ecs.EntityID, h typereg.Handle) error {
	err := sw.Components().Remove(e, h)
	sw.trace("remove_component", err, zap.Stringer("entity", e), zap.String("type", h.ShortName()))
	return err
}

func (sw *ScriptWorld) GetResource(h typereg.Handle) (DynamicValue, bool, error) {
	return sw.Resources().Get(h)
}

func (sw *ScriptWorld) HasResource(h typereg.Handle) (bool, error) {
	return sw.Resources().Has(h)
}

func (sw *ScriptWorld) RemoveResource(h typereg.Handle) error {
	err := sw.Resources().Remove(h)
	sw.trace("remove_resource", err, zap.String("type", h.ShortName()))
	return err
}

func (sw *ScriptWorld) GetChildren(e ecs.EntityID) ([]ecs.EntityID, error) {
	return sw.Hierarchy().Children(e)
}

func (sw *ScriptWorld) GetParent(e ecs.EntityID) (ecs.EntityID, bool, error) {
	return sw.Hierarchy().Parent(e)
}

func (sw *ScriptWorld) PushChild(parent, child ecs.EntityID) error {
	return sw.PushChildren(parent, child)
}

func (sw *ScriptWorld) PushChildren(parent ecs.EntityID, children ...ecs.EntityID) error {
	err := sw.Hierarchy().PushChildren(parent, children...)
	sw.trace("push_children", err, zap.Stringer("parent", parent), zap.Int("count", len(children)))
	return err
}

func (sw *ScriptWorld) InsertChild(parent ecs.EntityID, index int, child ecs.EntityID) error {
	return sw.InsertChildren(parent, index, child)
}

func (sw *ScriptWorld) InsertChildren(parent ecs.EntityID, index int, children ...ecs.EntityID) error {
	err := sw.Hierarchy().InsertChildren(parent, index, children...)
	sw.trace("insert_children", err, zap.Stringer("parent", parent), zap.Int("index", index))
	return err
}

func (sw *ScriptWorld) RemoveChild(parent, child ecs.EntityID) error {
	return sw.RemoveChildren(parent, child)
}

func (sw *ScriptWorld) RemoveChildren(parent ecs.EntityID, children ...ecs.EntityID) error {
	err := sw.Hierarchy().RemoveChildren(parent, children...)
	sw.trace("remove_children", err, zap.Stringer("parent", parent), zap.Int("count", len(children)))
	return err
}

func (sw *ScriptWorld) DespawnRecursive(e ecs.EntityID) error {
	gone, err := sw.Hierarchy().DespawnRecursive(e)
	sw.trace("despawn_recursive", err, zap.Stringer("entity", e), zap.Int("despawned", len(gone)))
	sw.emitDespawned(gone)
	return err
}

func (sw *ScriptWorld) DespawnChildrenRecursive(e ecs.EntityID) error {
	gone, err := sw.Hierarchy().DespawnChildrenRecursive(e)
	sw.trace("despawn_children_recursive", err, zap.Stringer("entity", e), zap.Int("despawned", len(gone)))
	sw.emitDespawned(gone)
	return err
}

// Query starts a builder fetching the given component types in order.
func (sw *ScriptWorld) Query(components ...typereg.Handle) *QueryBuilder {
	return newQueryBuilder(sw.gate, sw.reg).Components(components...)
}

func (sw *ScriptWorld) emitDespawned(ids []ecs.EntityID) {
	for _, id := range ids {
		event.Emit(sw.bus, event.EntityDespawned{Entity: id, SID: sw.id.SID})
	}
}

func (sw *ScriptWorld) trace(op string, err error, fields ...zap.Field) {
	if err != nil {
		sw.log.Debug(op+" failed", append(fields, zap.Error(err))...)
		return
	}
	sw.log.Debug(op, fields...)
}
