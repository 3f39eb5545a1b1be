package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/event"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

func TestSpawnDespawn(t *testing.T) {
	sw, w := newTestWorld(t)
	a := sw.Spawn()
	b := sw.Spawn()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsZero())

	assert.True(t, sw.Despawn(a))
	assert.False(t, sw.Despawn(a), "second despawn is a no-op")
	assert.False(t, w.Alive(a))

	c := sw.Spawn()
	assert.NotEqual(t, a, c, "recycled slot gets a new generation")
	assert.Equal(t, 2, w.Len())
}

func TestTypeByName(t *testing.T) {
	sw, _ := newTestWorld(t)
	short, ok := sw.TypeByName("Transform")
	require.True(t, ok)
	full, ok := sw.TypeByName(short.TypePath())
	require.True(t, ok)
	assert.True(t, short.Equal(full))
	assert.Equal(t, "github.com/l1jgo/scriptworld/internal/component.Transform", full.TypePath())

	_, ok = sw.TypeByName("Nope")
	assert.False(t, ok)
}

func TestScriptWorldClonesRegistry(t *testing.T) {
	reg := typereg.NewRegistry()
	require.NoError(t, component.Register(reg))
	sw := NewScriptWorld(NewGate(ecs.NewWorld()), reg, zap.NewNop())
	before := sw.Registry().Len()

	type Local struct{}
	_, err := typereg.Register[Local](reg, typereg.AsComponent())
	require.NoError(t, err)

	assert.Equal(t, before, sw.Registry().Len(), "later host registrations do not leak in")
	_, ok := sw.TypeByName("Local")
	assert.False(t, ok)
}

func TestAsIdentity(t *testing.T) {
	sw, bus := newBusWorld(t)
	assert.Equal(t, HostIdentity, sw.Identity())

	var spawned []event.EntitySpawned
	var despawned []event.EntityDespawned
	event.Subscribe(bus, func(ev event.EntitySpawned) { spawned = append(spawned, ev) })
	event.Subscribe(bus, func(ev event.EntityDespawned) { despawned = append(despawned, ev) })

	script := sw.As(ScriptIdentity{SID: 7, Name: "mover"})
	assert.Equal(t, "script#7(mover)", script.Identity().String())
	assert.Equal(t, HostIdentity, sw.Identity(), "As does not mutate the receiver")

	e := script.Spawn()
	assert.True(t, sw.Despawn(e), "views share one world")
	assert.Equal(t, 2, bus.Pending())

	bus.SwapBuffers()
	assert.Equal(t, 2, bus.DispatchAll())
	require.Len(t, spawned, 1)
	require.Len(t, despawned, 1)
	assert.Equal(t, event.EntitySpawned{Entity: e, SID: 7}, spawned[0])
	assert.Equal(t, event.EntityDespawned{Entity: e, SID: 0}, despawned[0])
}

func TestDespawnRecursiveEmitsPerEntity(t *testing.T) {
	sw, bus := newBusWorld(t)
	root, a, b := sw.Spawn(), sw.Spawn(), sw.Spawn()
	require.NoError(t, sw.PushChildren(root, a, b))
	bus.SwapBuffers()

	require.NoError(t, sw.DespawnRecursive(root))
	assert.Equal(t, 3, bus.Pending())

	assert.ErrorIs(t, sw.DespawnRecursive(root), ErrInvalidEntity)
	assert.Equal(t, 3, bus.Pending())
}

func TestSnapshot(t *testing.T) {
	sw, w := newTestWorld(t)
	type unregistered struct{ N int }

	e := sw.Spawn()
	require.NoError(t, ecs.Insert(w, e, &component.Health{Current: 5, Max: 10}))
	require.NoError(t, ecs.Insert(w, e, &unregistered{N: 1}))
	sw.Spawn()
	ecs.SetResource(w, &component.Clock{Tick: 3})

	snap, err := sw.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Entities, 2)
	assert.Equal(t, e, snap.Entities[0].Entity)
	assert.Equal(t, map[string]any{
		"github.com/l1jgo/scriptworld/internal/component.Health": component.Health{Current: 5, Max: 10},
	}, snap.Entities[0].Components)
	assert.Empty(t, snap.Entities[1].Components)
	assert.Equal(t, component.Clock{Tick: 3}, snap.Resources["github.com/l1jgo/scriptworld/internal/component.Clock"])

	// The snapshot is detached from the world.
	h, _ := ecs.Get[component.Health](w, e)
	h.Current = 1
	assert.Equal(t, component.Health{Current: 5, Max: 10}, snap.Entities[0].Components["github.com/l1jgo/scriptworld/internal/component.Health"])
}

func TestDespawnLater(t *testing.T) {
	sw, bus := newBusWorld(t)
	p, c := sw.Spawn(), sw.Spawn()
	require.NoError(t, sw.PushChild(p, c))
	bus.SwapBuffers()

	require.NoError(t, sw.DespawnLater(p))
	require.NoError(t, sw.DespawnLater(p))
	_, ok, err := sw.GetParent(c)
	require.NoError(t, err)
	assert.True(t, ok, "nothing happens until the flush")

	assert.Equal(t, 1, sw.FlushDestroyQueue())
	assert.Equal(t, 1, bus.Pending())
	_, ok, err = sw.GetParent(c)
	require.NoError(t, err)
	assert.False(t, ok, "children of a flushed entity become roots")

	assert.ErrorIs(t, sw.DespawnLater(p), ErrInvalidEntity)
	assert.Equal(t, 0, sw.FlushDestroyQueue())
}
