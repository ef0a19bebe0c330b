package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/station/internal/core/nodetree"
	coresys "github.com/l1jgo/station/internal/core/system"
)

// ReconcileSystem applies every tree queued this tick, level by level,
// until no pass finds more work.
// Phase 3 (PostUpdate).
type ReconcileSystem struct {
	rec        *nodetree.Reconciler
	warnPasses int
	log        *zap.Logger
	lastPasses int
}

func NewReconcileSystem(rec *nodetree.Reconciler, warnPasses int, log *zap.Logger) *ReconcileSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconcileSystem{rec: rec, warnPasses: warnPasses, log: log}
}

func (s *ReconcileSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ReconcileSystem) Update(_ time.Duration) {
	if s.rec.Queued() == 0 {
		s.lastPasses = 0
		return
	}
	s.lastPasses = s.rec.Run()
	if s.warnPasses > 0 && s.lastPasses > s.warnPasses {
		st := s.rec.Stats()
		s.log.Warn("reconcile took many passes",
			zap.Int("passes", s.lastPasses),
			zap.Int("threshold", s.warnPasses),
			zap.Int("spawned", st.Spawned),
			zap.Int("despawned", st.Despawned),
		)
	}
}

// LastPasses returns the number of productive passes of the last tick.
func (s *ReconcileSystem) LastPasses() int { return s.lastPasses }
