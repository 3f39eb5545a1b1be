package ecs

import "reflect"

// Insert stores c as id's component of type T.
func Insert[T any](w *World, id EntityID, c *T) error {
	return w.InsertComponent(id, c)
}

// Get returns id's component of type T.
func Get[T any](w *World, id EntityID) (*T, bool) {
	v, ok := w.Component(id, reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

func Has[T any](w *World, id EntityID) bool {
	return w.HasComponent(id, reflect.TypeFor[T]())
}

func Remove[T any](w *World, id EntityID) bool {
	return w.RemoveComponent(id, reflect.TypeFor[T]())
}

// SetResource stores r as the world resource of type T.
func SetResource[T any](w *World, r *T) {
	w.resources[reflect.TypeFor[T]()] = r
}

func GetResource[T any](w *World) (*T, bool) {
	v, ok := w.Resource(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller column and checks the larger one.
func Each2[A, B any](w *World, fn func(EntityID, *A, *B)) {
	sa := w.Column(reflect.TypeFor[A]())
	sb := w.Column(reflect.TypeFor[B]())
	if sa == nil || sb == nil {
		return
	}
	if sa.Len() <= sb.Len() {
		sa.Each(func(id EntityID, a any) bool {
			if b, ok := sb.Get(id); ok {
				fn(id, a.(*A), b.(*B))
			}
			return true
		})
	} else {
		sb.Each(func(id EntityID, b any) bool {
			if a, ok := sa.Get(id); ok {
				fn(id, a.(*A), b.(*B))
			}
			return true
		})
	}
}
