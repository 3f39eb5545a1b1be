package ecs

import "reflect"

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID) bool
}

// Column is a type-erased sparse set holding pointers to component values of
// one type. Iteration follows the dense slice; removal swaps the last entry
// into the hole, so stored pointers never move.
type Column struct {
	typ   reflect.Type
	ids   []EntityID
	vals  []any
	index map[EntityID]int
}

func NewColumn(t reflect.Type) *Column {
	return &Column{
		typ:   t,
		ids:   make([]EntityID, 0, 64),
		vals:  make([]any, 0, 64),
		index: make(map[EntityID]int, 64),
	}
}

// Type returns the element type stored in this column (not the pointer type).
func (c *Column) Type() reflect.Type { return c.typ }

// Set stores ptr, which must be a pointer to the column type, replacing any
// existing value for id.
func (c *Column) Set(id EntityID, ptr any) {
	if i, ok := c.index[id]; ok {
		c.vals[i] = ptr
		return
	}
	c.index[id] = len(c.ids)
	c.ids = append(c.ids, id)
	c.vals = append(c.vals, ptr)
}

func (c *Column) Get(id EntityID) (any, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.vals[i], true
}

func (c *Column) Has(id EntityID) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Column) Remove(id EntityID) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	last := len(c.ids) - 1
	if i != last {
		c.ids[i] = c.ids[last]
		c.vals[i] = c.vals[last]
		c.index[c.ids[i]] = i
	}
	c.ids = c.ids[:last]
	c.vals[last] = nil
	c.vals = c.vals[:last]
	delete(c.index, id)
	return true
}

func (c *Column) Len() int {
	return len(c.ids)
}

// Each visits entries in dense order until fn returns false.
func (c *Column) Each(fn func(EntityID, any) bool) {
	for i, id := range c.ids {
		if !fn(id, c.vals[i]) {
			return
		}
	}
}
