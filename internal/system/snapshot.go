package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/event"
	coresys "github.com/l1jgo/station/internal/core/system"
	"github.com/l1jgo/station/internal/persist"
)

const snapshotTimeout = 5 * time.Second

// SnapshotSaver stores hierarchy snapshots.
type SnapshotSaver interface {
	Save(ctx context.Context, s persist.Snapshot) error
}

type snapshotPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// SnapshotSystem captures the entity hierarchy every interval ticks and
// saves it when its shape changed since the last save.
// Phase 5 (Persist).
type SnapshotSystem struct {
	world     *ecs.World
	saver     SnapshotSaver
	bus       *event.Bus
	log       *zap.Logger
	tickCount uint64
	interval  uint64
	keep      int
	last      *persist.Snapshot
	saved     int
}

func NewSnapshotSystem(world *ecs.World, saver SnapshotSaver, bus *event.Bus, interval int, log *zap.Logger) *SnapshotSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 1
	}
	return &SnapshotSystem{
		world:    world,
		saver:    saver,
		bus:      bus,
		log:      log,
		interval: uint64(interval),
	}
}

// SetRetention keeps only the newest keep snapshots when the saver can
// prune. Zero keeps everything.
func (s *SnapshotSystem) SetRetention(keep int) { s.keep = keep }

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.saver == nil || s.tickCount%s.interval != 0 {
		return
	}

	snap := persist.Capture(s.world, s.tickCount)
	if s.last != nil && len(persist.Diff(*s.last, snap)) == 0 {
		return
	}

	// Saved synchronously; the tick waits for the database.
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := s.saver.Save(ctx, snap); err != nil {
		s.log.Error("snapshot save failed",
			zap.Uint64("tick", s.tickCount),
			zap.Int("nodes", len(snap.Nodes)),
			zap.Error(err),
		)
		return
	}
	s.last = &snap
	s.saved++
	if p, ok := s.saver.(snapshotPruner); ok && s.keep > 0 {
		if n, err := p.Prune(ctx, s.keep); err != nil {
			s.log.Warn("snapshot prune failed", zap.Error(err))
		} else if n > 0 {
			s.log.Debug("snapshots pruned", zap.Int64("removed", n), zap.Int("keep", s.keep))
		}
	}
	if s.bus != nil {
		event.Emit(s.bus, event.SnapshotSaved{ID: snap.ID.String(), Rows: len(snap.Nodes)})
	}
}

// Saved returns the number of snapshots written.
func (s *SnapshotSystem) Saved() int { return s.saved }
