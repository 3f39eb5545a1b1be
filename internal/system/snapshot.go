package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/bridge"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
)

// SnapshotStore is implemented by persist.SnapshotRepo.
type SnapshotStore interface {
	Save(ctx context.Context, tick uint64, snap *bridge.WorldSnapshot) (uuid.UUID, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// SnapshotSystem periodically saves a copy of the world. Phase 3 (Persist).
type SnapshotSystem struct {
	world    *bridge.ScriptWorld
	store    SnapshotStore
	log      *zap.Logger
	interval uint64 // save every N ticks
	keep     int
	ticks    uint64
}

func NewSnapshotSystem(world *bridge.ScriptWorld, store SnapshotStore, log *zap.Logger, intervalTicks uint64, keep int) *SnapshotSystem {
	return &SnapshotSystem{
		world:    world,
		store:    store,
		log:      log,
		interval: intervalTicks,
		keep:     keep,
	}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.ticks++
	if s.interval == 0 || s.ticks%s.interval != 0 {
		return
	}
	s.SaveNow()
}

// SaveNow takes and stores a snapshot immediately. Also used at shutdown.
func (s *SnapshotSystem) SaveNow() {
	snap, err := s.world.Snapshot()
	if err != nil {
		s.log.Error("world snapshot failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := s.store.Save(ctx, s.ticks, snap)
	if err != nil {
		s.log.Error("save world snapshot", zap.Uint64("tick", s.ticks), zap.Error(err))
		return
	}
	s.log.Info("world snapshot saved",
		zap.Stringer("id", id),
		zap.Uint64("tick", s.ticks),
		zap.Int("entities", len(snap.Entities)))

	if s.keep > 0 {
		if n, err := s.store.Prune(ctx, s.keep); err != nil {
			s.log.Warn("prune snapshots", zap.Error(err))
		} else if n > 0 {
			s.log.Debug("pruned snapshots", zap.Int64("removed", n))
		}
	}
}
