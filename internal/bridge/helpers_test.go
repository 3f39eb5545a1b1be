package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/event"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

func newTestWorld(t *testing.T, opts ...Option) (*ScriptWorld, *ecs.World) {
	t.Helper()
	reg := typereg.NewRegistry()
	require.NoError(t, component.Register(reg))
	w := ecs.NewWorld()
	return NewScriptWorld(NewGate(w), reg, zap.NewNop(), opts...), w
}

func typeOf(t *testing.T, sw *ScriptWorld, name string) typereg.Handle {
	t.Helper()
	h, ok := sw.TypeByName(name)
	require.True(t, ok, "type %s not registered", name)
	return h
}

func newBusWorld(t *testing.T) (*ScriptWorld, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	sw, _ := newTestWorld(t, WithEventBus(bus))
	return sw, bus
}
