package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain terminal input
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: game logic, describe the HUD
	PhasePostUpdate              // 3: reconcile node trees
	PhaseOutput                  // 4: draw
	PhasePersist                 // 5: hierarchy snapshots
	PhaseCleanup                 // 6: destroy queued entities
)

var phaseNames = [...]string{"input", "pre_update", "update", "post_update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
