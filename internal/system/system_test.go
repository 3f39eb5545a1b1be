package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/event"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

func newWorld(t *testing.T) (*bridge.ScriptWorld, *ecs.World, *event.Bus) {
	t.Helper()
	reg := typereg.NewRegistry()
	require.NoError(t, component.Register(reg))
	w := ecs.NewWorld()
	bus := event.NewBus()
	return bridge.NewScriptWorld(bridge.NewGate(w), reg, zap.NewNop(), bridge.WithEventBus(bus)), w, bus
}

func TestClockSystem(t *testing.T) {
	sw, w, _ := newWorld(t)
	s := NewClockSystem(sw.Gate())
	s.Update(500 * time.Millisecond)
	s.Update(250 * time.Millisecond)

	c, ok := ecs.GetResource[component.Clock](w)
	require.True(t, ok)
	assert.Equal(t, component.Clock{Tick: 2, Elapsed: 0.75, Delta: 0.25}, *c)
}

func TestMovementSystem(t *testing.T) {
	sw, w, _ := newWorld(t)
	moving, still := w.Spawn(), w.Spawn()
	require.NoError(t, ecs.Insert(w, moving, &component.Transform{}))
	require.NoError(t, ecs.Insert(w, moving, &component.Velocity{X: 2}))
	require.NoError(t, ecs.Insert(w, still, &component.Transform{X: 5}))

	s := NewMovementSystem(sw.Gate())
	s.Update(time.Second)
	tr, _ := ecs.Get[component.Transform](w, moving)
	assert.Equal(t, 2.0, tr.X)

	ecs.SetResource(w, &component.Gravity{Y: -10})
	s.Update(500 * time.Millisecond)
	tr, _ = ecs.Get[component.Transform](w, moving)
	v, _ := ecs.Get[component.Velocity](w, moving)
	assert.Equal(t, 3.0, tr.X)
	assert.Equal(t, -5.0, v.Y)
	assert.Equal(t, -2.5, tr.Y)

	other, _ := ecs.Get[component.Transform](w, still)
	assert.Equal(t, 5.0, other.X)
}

func TestEventDispatchSystem(t *testing.T) {
	sw, _, bus := newWorld(t)
	var got []event.EntitySpawned
	event.Subscribe(bus, func(ev event.EntitySpawned) { got = append(got, ev) })

	s := NewEventDispatchSystem(bus)
	sw.Spawn()
	assert.Empty(t, got, "events wait for the next tick")
	s.Update(0)
	assert.Len(t, got, 1)
	s.Update(0)
	assert.Len(t, got, 1)
}

func TestCleanupSystem(t *testing.T) {
	sw, w, _ := newWorld(t)
	e := sw.Spawn()
	require.NoError(t, sw.DespawnLater(e))
	assert.True(t, w.Alive(e))

	NewCleanupSystem(sw).Update(0)
	assert.False(t, w.Alive(e))
}

type fakeScripts struct {
	dts []float64
	err error
}

func (f *fakeScripts) Update(dt float64) error {
	f.dts = append(f.dts, dt)
	return f.err
}

func TestScriptSystem(t *testing.T) {
	f := &fakeScripts{}
	s := NewScriptSystem(f, zap.NewNop())
	s.Update(100 * time.Millisecond)
	f.err = errors.New("boom")
	s.Update(100 * time.Millisecond)

	assert.Equal(t, []float64{0.1, 0.1}, f.dts)
	assert.Equal(t, uint64(1), s.FailedTicks())
}

type fakeStore struct {
	saved  []uint64
	snaps  []*bridge.WorldSnapshot
	pruned []int
	err    error
}

func (f *fakeStore) Save(_ context.Context, tick uint64, snap *bridge.WorldSnapshot) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.saved = append(f.saved, tick)
	f.snaps = append(f.snaps, snap)
	return uuid.New(), nil
}

func (f *fakeStore) Prune(_ context.Context, keep int) (int64, error) {
	f.pruned = append(f.pruned, keep)
	return 0, nil
}

func TestSnapshotSystem(t *testing.T) {
	sw, w, _ := newWorld(t)
	e := w.Spawn()
	require.NoError(t, ecs.Insert(w, e, &component.Health{Current: 1, Max: 2}))

	store := &fakeStore{}
	s := NewSnapshotSystem(sw, store, zap.NewNop(), 3, 5)
	for i := 0; i < 7; i++ {
		s.Update(0)
	}
	assert.Equal(t, []uint64{3, 6}, store.saved)
	assert.Equal(t, []int{5, 5}, store.pruned)
	require.Len(t, store.snaps[0].Entities, 1)

	store.err = errors.New("db down")
	s.SaveNow()
	assert.Len(t, store.saved, 2, "failed saves are logged, not retried")
	assert.Len(t, store.pruned, 2)
}

func TestSystemsRunInPhases(t *testing.T) {
	sw, w, bus := newWorld(t)
	r := coresys.NewRunner()
	r.Register(NewCleanupSystem(sw))
	r.Register(NewMovementSystem(sw.Gate()))
	r.Register(NewClockSystem(sw.Gate()))
	r.Register(NewEventDispatchSystem(bus))

	e := w.Spawn()
	require.NoError(t, ecs.Insert(w, e, &component.Transform{}))
	require.NoError(t, ecs.Insert(w, e, &component.Velocity{X: 1}))
	r.Tick(time.Second)
	r.Tick(time.Second)

	c, _ := ecs.GetResource[component.Clock](w)
	assert.Equal(t, uint64(2), c.Tick)
	tr, _ := ecs.Get[component.Transform](w, e)
	assert.Equal(t, 2.0, tr.X)
}
