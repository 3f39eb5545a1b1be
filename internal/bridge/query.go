package bridge

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

// QueryBuilder collects a filter over component types. The fetched list is
// ordered and implicitly required; With adds required types that are not
// fetched; Without excludes types.
type QueryBuilder struct {
	gate       *Gate
	reg        *typereg.Registry
	components []typereg.Handle
	with       []typereg.Handle
	without    []typereg.Handle
}

func newQueryBuilder(g *Gate, reg *typereg.Registry) *QueryBuilder {
	return &QueryBuilder{gate: g, reg: reg}
}

// Components appends types whose values are returned for each match.
func (q *QueryBuilder) Components(types ...typereg.Handle) *QueryBuilder {
	q.components = append(q.components, types...)
	return q
}

// With requires the types without fetching them.
func (q *QueryBuilder) With(types ...typereg.Handle) *QueryBuilder {
	q.with = append(q.with, types...)
	return q
}

// Without rejects entities carrying any of the types.
func (q *QueryBuilder) Without(types ...typereg.Handle) *QueryBuilder {
	q.without = append(q.without, types...)
	return q
}

// Build evaluates the filter once under a read lock and returns a snapshot.
func (q *QueryBuilder) Build() (*QuerySnapshot, error) {
	required := make([]typereg.Handle, 0, len(q.components)+len(q.with))
	required = append(required, q.components...)
	required = append(required, q.with...)

	for _, h := range required {
		if err := requireComponent(h); err != nil {
			return nil, err
		}
	}
	for _, h := range q.without {
		if err := requireComponent(h); err != nil {
			return nil, err
		}
		for _, r := range required {
			if r.Equal(h) {
				return nil, fmt.Errorf("%s: %w", typeLabel(h), ErrAmbiguousFilter)
			}
		}
	}

	fetch := append([]typereg.Handle(nil), q.components...)
	return readGate(q.gate, func(w *ecs.World) (*QuerySnapshot, error) {
		return &QuerySnapshot{results: q.collect(w, fetch, required)}, nil
	})
}

func (q *QueryBuilder) collect(w *ecs.World, fetch, required []typereg.Handle) []QueryResult {
	var results []QueryResult
	match := func(id ecs.EntityID) bool {
		for _, h := range required {
			if !w.HasComponent(id, h.Type()) {
				return true
			}
		}
		for _, h := range q.without {
			if w.HasComponent(id, h.Type()) {
				return true
			}
		}
		values := make([]DynamicValue, len(fetch))
		for i, h := range fetch {
			ptr, _ := w.Component(id, h.Type())
			values[i] = heldRef(q.gate, q.reg, id, h, ptr)
		}
		results = append(results, QueryResult{Entity: id, Components: values})
		return true
	}

	if len(required) == 0 {
		w.EachEntity(match)
		return results
	}

	driver := smallestColumn(w, required)
	if driver == nil {
		return nil
	}
	driver.Each(func(id ecs.EntityID, _ any) bool { return match(id) })
	return results
}

// smallestColumn returns nil when any required type has no storage at all,
// which means nothing can match.
func smallestColumn(w *ecs.World, required []typereg.Handle) *ecs.Column {
	var best *ecs.Column
	seen := make(map[reflect.Type]struct{}, len(required))
	for _, h := range required {
		if _, dup := seen[h.Type()]; dup {
			continue
		}
		seen[h.Type()] = struct{}{}
		c := w.Column(h.Type())
		if c == nil {
			return nil
		}
		if best == nil || c.Len() < best.Len() {
			best = c
		}
	}
	return best
}

// QueryResult is one matched entity and its fetched components, in the order
// the builder declared them.
type QueryResult struct {
	Entity     ecs.EntityID
	Components []DynamicValue
}

// QuerySnapshot is the fixed outcome of one Build. Its values were copied
// when it was built, so iterating and reading never touch the world or the
// gate. Writes through its values still reach the live components.
type QuerySnapshot struct {
	results []QueryResult
}

func (s *QuerySnapshot) Len() int { return len(s.results) }

// At returns the i-th match.
func (s *QuerySnapshot) At(i int) (QueryResult, bool) {
	if i < 0 || i >= len(s.results) {
		return QueryResult{}, false
	}
	return s.results[i], true
}

// Cursor returns a fresh cursor positioned before the first match.
func (s *QuerySnapshot) Cursor() *QueryCursor {
	return &QueryCursor{snap: s}
}

// All ranges over matches.
func (s *QuerySnapshot) All() iter.Seq2[ecs.EntityID, []DynamicValue] {
	return func(yield func(ecs.EntityID, []DynamicValue) bool) {
		for _, r := range s.results {
			if !yield(r.Entity, r.Components) {
				return
			}
		}
	}
}

// QueryCursor steps through a snapshot.
type QueryCursor struct {
	snap *QuerySnapshot
	pos  int
}

// Next returns the next match, or false once exhausted. Calling it again
// after exhaustion keeps returning false.
func (c *QueryCursor) Next() (QueryResult, bool) {
	r, ok := c.snap.At(c.pos)
	if ok {
		c.pos++
	}
	return r, ok
}

// Reset rewinds to the first match.
func (c *QueryCursor) Reset() { c.pos = 0 }
