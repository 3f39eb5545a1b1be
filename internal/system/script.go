package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/scriptworld/internal/core/system"
)

// ScriptRunner is the part of scripting.Engine the loop drives.
type ScriptRunner interface {
	Update(dt float64) error
}

// ScriptSystem calls every script's on_update hook. Phase 1 (Script).
type ScriptSystem struct {
	scripts ScriptRunner
	log     *zap.Logger
	fails   uint64
}

func NewScriptSystem(scripts ScriptRunner, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{scripts: scripts, log: log}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseScript }

func (s *ScriptSystem) Update(dt time.Duration) {
	// Each failure was already logged by the engine.
	if err := s.scripts.Update(dt.Seconds()); err != nil {
		s.fails++
		s.log.Debug("script tick had failures", zap.Uint64("failed_ticks", s.fails))
	}
}

// FailedTicks returns how many ticks had at least one failing hook.
func (s *ScriptSystem) FailedTicks() uint64 { return s.fails }
