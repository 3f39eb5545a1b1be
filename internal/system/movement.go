package system

import (
	"time"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
)

// MovementSystem integrates Velocity into Transform, accelerating by the
// Gravity resource when present. Phase 2 (Update).
type MovementSystem struct {
	gate *bridge.Gate
}

func NewMovementSystem(gate *bridge.Gate) *MovementSystem {
	return &MovementSystem{gate: gate}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	_ = s.gate.WithWrite(func(w *ecs.World) error {
		g, hasGravity := ecs.GetResource[component.Gravity](w)
		ecs.Each2(w, func(_ ecs.EntityID, t *component.Transform, v *component.Velocity) {
			if hasGravity {
				v.X += g.X * sec
				v.Y += g.Y * sec
			}
			t.X += v.X * sec
			t.Y += v.Y * sec
		})
		return nil
	})
}
