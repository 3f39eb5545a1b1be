package bridge

import (
	"reflect"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

// EntitySnapshot is a copy of one entity's registered components keyed by
// full type path.
type EntitySnapshot struct {
	Entity     ecs.EntityID
	Components map[string]any
}

// WorldSnapshot is a point-in-time copy of everything the registry knows how
// to name. Types stored natively but never registered are left out.
type WorldSnapshot struct {
	Entities  []EntitySnapshot
	Resources map[string]any
}

// Snapshot copies the world under one read acquisition.
func (sw *ScriptWorld) Snapshot() (*WorldSnapshot, error) {
	return readGate(sw.gate, func(w *ecs.World) (*WorldSnapshot, error) {
		snap := &WorldSnapshot{
			Entities:  make([]EntitySnapshot, 0, w.Len()),
			Resources: make(map[string]any),
		}
		w.EachEntity(func(id ecs.EntityID) bool {
			es := EntitySnapshot{Entity: id, Components: make(map[string]any)}
			for _, t := range w.ComponentTypes(id) {
				h, ok := sw.reg.ForType(t)
				if !ok || !h.IsComponent() {
					continue
				}
				ptr, _ := w.Component(id, t)
				es.Components[h.TypePath()] = copyOut(reflect.ValueOf(ptr).Elem())
			}
			snap.Entities = append(snap.Entities, es)
			return true
		})
		w.EachResource(func(t reflect.Type, ptr any) {
			if h, ok := sw.reg.ForType(t); ok && h.IsResource() {
				snap.Resources[h.TypePath()] = copyOut(reflect.ValueOf(ptr).Elem())
			}
		})
		return snap, nil
	})
}
