package system

import (
	"time"

	"github.com/l1jgo/scriptworld/internal/bridge"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	world *bridge.ScriptWorld
}

func NewCleanupSystem(world *bridge.ScriptWorld) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
}
