package ecs

import "reflect"

// Registry tracks all component columns and supports bulk cleanup on entity destroy.
type Registry struct {
	columns map[reflect.Type]*Column
	order   []*Column
}

func NewRegistry() *Registry {
	return &Registry{
		columns: make(map[reflect.Type]*Column, 16),
		order:   make([]*Column, 0, 16),
	}
}

// Column returns the column for t, or nil if nothing of that type was ever stored.
func (r *Registry) Column(t reflect.Type) *Column {
	return r.columns[t]
}

// Ensure returns the column for t, creating and registering it on first use.
func (r *Registry) Ensure(t reflect.Type) *Column {
	if c, ok := r.columns[t]; ok {
		return c
	}
	c := NewColumn(t)
	r.columns[t] = c
	r.order = append(r.order, c)
	return c
}

// RemoveAll clears the given entity from every registered column.
func (r *Registry) RemoveAll(id EntityID) {
	for _, c := range r.order {
		c.Remove(id)
	}
}

// TypesOf returns the component types stored for id, in registration order.
func (r *Registry) TypesOf(id EntityID) []reflect.Type {
	var out []reflect.Type
	for _, c := range r.order {
		if c.Has(id) {
			out = append(out, c.typ)
		}
	}
	return out
}
