package ecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pos struct{ X, Y int }
type vel struct{ DX, DY int }

func TestEntityPoolGenerations(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	require.False(t, a.IsZero(), "first entity must not be the zero id")
	require.True(t, p.Alive(a))

	require.True(t, p.Destroy(a))
	require.False(t, p.Destroy(a), "second destroy is stale")
	require.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index(), "index is reused")
	assert.NotEqual(t, a, b, "generation must differ")
	assert.False(t, p.Alive(a))
	assert.True(t, p.Alive(b))
	assert.Equal(t, 1, p.Len())
}

func TestEntityPoolEachSkipsFreed(t *testing.T) {
	p := NewEntityPool()
	a, b, c := p.Create(), p.Create(), p.Create()
	p.Destroy(b)

	var seen []EntityID
	p.Each(func(id EntityID) bool {
		seen = append(seen, id)
		return true
	})
	assert.Equal(t, []EntityID{a, c}, seen)
}

func TestColumnSwapRemove(t *testing.T) {
	c := NewColumn(reflect.TypeFor[pos]())
	ids := []EntityID{NewEntityID(0, 1), NewEntityID(1, 1), NewEntityID(2, 1)}
	for i, id := range ids {
		c.Set(id, &pos{X: i})
	}

	require.True(t, c.Remove(ids[0]))
	require.False(t, c.Remove(ids[0]))
	require.Equal(t, 2, c.Len())

	v, ok := c.Get(ids[2])
	require.True(t, ok)
	assert.Equal(t, 2, v.(*pos).X)

	var order []EntityID
	c.Each(func(id EntityID, _ any) bool {
		order = append(order, id)
		return true
	})
	assert.Equal(t, []EntityID{ids[2], ids[1]}, order)
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()

	require.NoError(t, Insert(w, e, &pos{X: 1}))
	require.NoError(t, Insert(w, e, &vel{DX: 2}))

	p, ok := Get[pos](w, e)
	require.True(t, ok)
	assert.Equal(t, 1, p.X)
	assert.Len(t, w.ComponentTypes(e), 2)

	require.True(t, Remove[vel](w, e))
	assert.False(t, Has[vel](w, e))

	require.True(t, w.Despawn(e))
	assert.False(t, w.Despawn(e))
	assert.False(t, Has[pos](w, e))

	err := Insert(w, e, &pos{})
	assert.ErrorIs(t, err, ErrDeadEntity)
}

func TestWorldRejectsNonPointer(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	assert.ErrorIs(t, w.InsertComponent(e, pos{}), ErrNotPointer)
	assert.ErrorIs(t, w.InsertResource(nil), ErrNotPointer)
}

func TestEach2(t *testing.T) {
	w := NewWorld()
	a, b, c := w.Spawn(), w.Spawn(), w.Spawn()
	require.NoError(t, Insert(w, a, &pos{}))
	require.NoError(t, Insert(w, a, &vel{DX: 1}))
	require.NoError(t, Insert(w, b, &pos{}))
	require.NoError(t, Insert(w, c, &vel{DX: 5}))

	Each2(w, func(id EntityID, p *pos, v *vel) {
		p.X += v.DX
	})

	pa, _ := Get[pos](w, a)
	pb, _ := Get[pos](w, b)
	assert.Equal(t, 1, pa.X)
	assert.Equal(t, 0, pb.X)
}

func TestDestroyQueue(t *testing.T) {
	w := NewWorld()
	a, b := w.Spawn(), w.Spawn()
	w.MarkForDestruction(a)
	w.MarkForDestruction(a)
	w.MarkForDestruction(b)

	assert.Equal(t, []EntityID{a, a, b}, w.TakeDestroyQueue())
	assert.Empty(t, w.TakeDestroyQueue())
	assert.True(t, w.Alive(a), "taking the queue destroys nothing")
	assert.True(t, w.Alive(b))
}

func TestResources(t *testing.T) {
	w := NewWorld()
	type clock struct{ Tick int }

	SetResource(w, &clock{Tick: 3})
	c, ok := GetResource[clock](w)
	require.True(t, ok)
	assert.Equal(t, 3, c.Tick)

	assert.True(t, w.RemoveResource(reflect.TypeFor[clock]()))
	assert.False(t, w.RemoveResource(reflect.TypeFor[clock]()))
}
