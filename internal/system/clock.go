package system

import (
	"time"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
)

// ClockSystem advances the Clock resource, creating it on first use.
// Phase 2 (Update).
type ClockSystem struct {
	gate *bridge.Gate
}

func NewClockSystem(gate *bridge.Gate) *ClockSystem {
	return &ClockSystem{gate: gate}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ClockSystem) Update(dt time.Duration) {
	_ = s.gate.WithWrite(func(w *ecs.World) error {
		c, ok := ecs.GetResource[component.Clock](w)
		if !ok {
			c = &component.Clock{}
			ecs.SetResource(w, c)
		}
		c.Tick++
		c.Delta = dt.Seconds()
		c.Elapsed += c.Delta
		return nil
	})
}
