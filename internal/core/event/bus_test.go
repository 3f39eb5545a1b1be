package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []ecs.EntityID
	Subscribe(b, func(ev EntitySpawned) { got = append(got, ev.Entity) })

	Emit(b, EntitySpawned{Entity: 7})
	assert.Equal(t, 1, b.Pending())
	assert.Equal(t, 0, b.DispatchAll(), "nothing is readable before the swap")

	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	assert.Equal(t, []ecs.EntityID{7}, got)

	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll())
}

func TestBusKeepsTypesApart(t *testing.T) {
	b := NewBus()
	spawned, despawned := 0, 0
	Subscribe(b, func(EntitySpawned) { spawned++ })
	Subscribe(b, func(EntityDespawned) { despawned++ })

	Emit(b, EntityDespawned{Entity: 1})
	Emit(b, EntityDespawned{Entity: 2})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 0, spawned)
	assert.Equal(t, 2, despawned)
}

func TestEmitOnNilBus(t *testing.T) {
	assert.NotPanics(t, func() { Emit[EntitySpawned](nil, EntitySpawned{}) })
}
