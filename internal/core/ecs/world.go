package ecs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrDeadEntity is returned when writing components to an entity that is not alive.
	ErrDeadEntity = errors.New("ecs: entity is not alive")
	// ErrNotPointer is returned when a component or resource is not passed by pointer.
	ErrNotPointer = errors.New("ecs: value must be a non-nil pointer")
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, world-global resources, and a deferred destruction queue drained
// at the end of each tick.
//
// World does no locking of its own. Callers outside the game loop go through
// a gate that serializes readers and writers.
type World struct {
	pool         *EntityPool
	registry     *Registry
	resources    map[reflect.Type]any
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		resources:    make(map[reflect.Type]any, 8),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Spawn() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Despawn removes every component of id and frees its slot. It reports
// whether the entity was alive.
func (w *World) Despawn(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id)
	return w.pool.Destroy(id)
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.pool.Len() }

// EachEntity visits live entities in index order.
func (w *World) EachEntity(fn func(EntityID) bool) {
	w.pool.Each(fn)
}

// Column returns the storage for component type t, or nil.
func (w *World) Column(t reflect.Type) *Column {
	return w.registry.Column(t)
}

// Component returns a pointer to id's component of type t.
func (w *World) Component(id EntityID, t reflect.Type) (any, bool) {
	c := w.registry.Column(t)
	if c == nil {
		return nil, false
	}
	return c.Get(id)
}

func (w *World) HasComponent(id EntityID, t reflect.Type) bool {
	c := w.registry.Column(t)
	return c != nil && c.Has(id)
}

// InsertComponent stores ptr (a *T) as id's component of type T, replacing
// any previous value.
func (w *World) InsertComponent(id EntityID, ptr any) error {
	t, err := elemType(ptr)
	if err != nil {
		return err
	}
	if !w.pool.Alive(id) {
		return fmt.Errorf("insert %s on %s: %w", t, id, ErrDeadEntity)
	}
	w.registry.Ensure(t).Set(id, ptr)
	return nil
}

// RemoveComponent reports whether a component was removed.
func (w *World) RemoveComponent(id EntityID, t reflect.Type) bool {
	c := w.registry.Column(t)
	if c == nil {
		return false
	}
	return c.Remove(id)
}

// ComponentTypes lists the component types currently attached to id.
func (w *World) ComponentTypes(id EntityID) []reflect.Type {
	return w.registry.TypesOf(id)
}

// Resource returns a pointer to the resource of type t.
func (w *World) Resource(t reflect.Type) (any, bool) {
	r, ok := w.resources[t]
	return r, ok
}

// InsertResource stores ptr (a *T) as the resource of type T.
func (w *World) InsertResource(ptr any) error {
	t, err := elemType(ptr)
	if err != nil {
		return err
	}
	w.resources[t] = ptr
	return nil
}

func (w *World) RemoveResource(t reflect.Type) bool {
	if _, ok := w.resources[t]; !ok {
		return false
	}
	delete(w.resources, t)
	return true
}

// EachResource visits every stored resource pointer. Order is unspecified.
func (w *World) EachResource(fn func(reflect.Type, any)) {
	for t, r := range w.resources {
		fn(t, r)
	}
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// TakeDestroyQueue returns the queued ids and empties the queue without
// destroying anything. The caller unlinks and despawns them.
func (w *World) TakeDestroyQueue() []EntityID {
	q := w.destroyQueue
	w.destroyQueue = nil
	return q
}

func elemType(ptr any) (reflect.Type, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, fmt.Errorf("%T: %w", ptr, ErrNotPointer)
	}
	return v.Type().Elem(), nil
}
