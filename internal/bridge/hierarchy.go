package bridge

import (
	"fmt"
	"math"
	"slices"

	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

// Hierarchy maintains parent/child links stored as component.Parent on the
// child and component.Children on the parent. Every operation runs under a
// single write acquisition.
type Hierarchy struct {
	gate *Gate
}

// Children returns a copy of e's ordered child list.
func (h Hierarchy) Children(e ecs.EntityID) ([]ecs.EntityID, error) {
	return readGate(h.gate, func(w *ecs.World) ([]ecs.EntityID, error) {
		if !w.Alive(e) {
			return nil, invalidEntity(e)
		}
		return slices.Clone(childrenOf(w, e)), nil
	})
}

// Parent returns e's parent, or false when e is a root.
func (h Hierarchy) Parent(e ecs.EntityID) (ecs.EntityID, bool, error) {
	var (
		p  ecs.EntityID
		ok bool
	)
	err := h.gate.WithRead(func(w *ecs.World) error {
		if !w.Alive(e) {
			return invalidEntity(e)
		}
		p, ok = parentOf(w, e)
		return nil
	})
	return p, ok, err
}

func (h Hierarchy) PushChild(parent, child ecs.EntityID) error {
	return h.InsertChildren(parent, math.MaxInt, child)
}

// PushChildren appends children to parent, moving them from any previous parent.
func (h Hierarchy) PushChildren(parent ecs.EntityID, children ...ecs.EntityID) error {
	return h.InsertChildren(parent, math.MaxInt, children...)
}

func (h Hierarchy) InsertChild(parent ecs.EntityID, index int, child ecs.EntityID) error {
	return h.InsertChildren(parent, index, child)
}

// InsertChildren places children at index in parent's list. The index is
// clamped into [0, len]; it is never an error.
func (h Hierarchy) InsertChildren(parent ecs.EntityID, index int, children ...ecs.EntityID) error {
	return h.gate.WithWrite(func(w *ecs.World) error {
		return attachIn(w, parent, index, children)
	})
}

func (h Hierarchy) RemoveChild(parent, child ecs.EntityID) error {
	return h.RemoveChildren(parent, child)
}

// RemoveChildren detaches the listed children that are attached to parent.
// Others are ignored.
func (h Hierarchy) RemoveChildren(parent ecs.EntityID, children ...ecs.EntityID) error {
	return h.gate.WithWrite(func(w *ecs.World) error {
		if !w.Alive(parent) {
			return invalidEntity(parent)
		}
		for _, c := range children {
			detachIn(w, parent, c)
		}
		return nil
	})
}

// DespawnRecursive despawns e and all of its descendants and returns the
// despawned ids, deepest first.
func (h Hierarchy) DespawnRecursive(e ecs.EntityID) ([]ecs.EntityID, error) {
	return writeGate(h.gate, func(w *ecs.World) ([]ecs.EntityID, error) {
		if !w.Alive(e) {
			return nil, invalidEntity(e)
		}
		var gone []ecs.EntityID
		despawnTree(w, e, map[ecs.EntityID]struct{}{}, &gone)
		return gone, nil
	})
}

// DespawnChildrenRecursive despawns all descendants of e and keeps e.
func (h Hierarchy) DespawnChildrenRecursive(e ecs.EntityID) ([]ecs.EntityID, error) {
	return writeGate(h.gate, func(w *ecs.World) ([]ecs.EntityID, error) {
		if !w.Alive(e) {
			return nil, invalidEntity(e)
		}
		var gone []ecs.EntityID
		visited := map[ecs.EntityID]struct{}{e: {}}
		for _, c := range slices.Clone(childrenOf(w, e)) {
			despawnTree(w, c, visited, &gone)
		}
		ecs.Remove[component.Children](w, e)
		return gone, nil
	})
}

func childrenOf(w *ecs.World, e ecs.EntityID) []ecs.EntityID {
	if c, ok := ecs.Get[component.Children](w, e); ok {
		return c.Entities
	}
	return nil
}

func parentOf(w *ecs.World, e ecs.EntityID) (ecs.EntityID, bool) {
	if p, ok := ecs.Get[component.Parent](w, e); ok {
		return p.Entity, true
	}
	return 0, false
}

func attachIn(w *ecs.World, parent ecs.EntityID, index int, children []ecs.EntityID) error {
	if !w.Alive(parent) {
		return invalidEntity(parent)
	}
	uniq := make([]ecs.EntityID, 0, len(children))
	for _, c := range children {
		if !w.Alive(c) {
			return invalidEntity(c)
		}
		if c == parent {
			return fmt.Errorf("entity %s cannot be its own child: %w", c, ErrInvalidHierarchy)
		}
		if !slices.Contains(uniq, c) {
			uniq = append(uniq, c)
		}
	}
	if len(uniq) == 0 {
		return nil
	}

	for _, c := range uniq {
		if old, ok := parentOf(w, c); ok {
			detachIn(w, old, c)
		}
	}

	list := slices.Clone(childrenOf(w, parent))
	index = max(0, min(index, len(list)))
	list = slices.Insert(list, index, uniq...)
	// Existing link components are updated in place so references to them
	// stay bound.
	if kids, ok := ecs.Get[component.Children](w, parent); ok {
		kids.Entities = list
	} else if err := ecs.Insert(w, parent, &component.Children{Entities: list}); err != nil {
		return err
	}
	for _, c := range uniq {
		if p, ok := ecs.Get[component.Parent](w, c); ok {
			p.Entity = parent
		} else if err := ecs.Insert(w, c, &component.Parent{Entity: parent}); err != nil {
			return err
		}
	}
	return nil
}

// detachIn unlinks child from parent. It reports whether a link existed.
func detachIn(w *ecs.World, parent, child ecs.EntityID) bool {
	found := false
	if c, ok := ecs.Get[component.Children](w, parent); ok {
		if i := slices.Index(c.Entities, child); i >= 0 {
			c.Entities = slices.Delete(c.Entities, i, i+1)
			found = true
			if len(c.Entities) == 0 {
				ecs.Remove[component.Children](w, parent)
			}
		}
	}
	if p, ok := parentOf(w, child); ok && p == parent {
		ecs.Remove[component.Parent](w, child)
		found = true
	}
	return found
}

// unlinkIn removes every link touching e: from its parent's list, and the
// Parent back-reference of each of its children.
func unlinkIn(w *ecs.World, e ecs.EntityID) {
	if p, ok := parentOf(w, e); ok {
		detachIn(w, p, e)
	}
	for _, c := range childrenOf(w, e) {
		if p, ok := parentOf(w, c); ok && p == e {
			ecs.Remove[component.Parent](w, c)
		}
	}
	ecs.Remove[component.Children](w, e)
}

// despawnTree despawns e and its descendants depth-first. visited guards
// against malformed graphs that loop back on themselves.
func despawnTree(w *ecs.World, e ecs.EntityID, visited map[ecs.EntityID]struct{}, gone *[]ecs.EntityID) {
	if _, seen := visited[e]; seen {
		return
	}
	visited[e] = struct{}{}
	if !w.Alive(e) {
		return
	}
	if p, ok := parentOf(w, e); ok {
		if _, inTree := visited[p]; !inTree {
			detachIn(w, p, e)
		}
	}
	for _, c := range slices.Clone(childrenOf(w, e)) {
		despawnTree(w, c, visited, gone)
	}
	if w.Despawn(e) {
		*gone = append(*gone, e)
	}
}
