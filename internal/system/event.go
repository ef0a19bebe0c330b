package system

import (
	"time"

	"github.com/l1jgo/station/internal/core/event"
	coresys "github.com/l1jgo/station/internal/core/system"
)

// EventSystem delivers the events emitted during the previous tick.
// Phase 1 (PreUpdate).
type EventSystem struct {
	bus        *event.Bus
	dispatched int
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.dispatched += s.bus.DispatchAll()
}

// Dispatched returns the number of events delivered so far.
func (s *EventSystem) Dispatched() int { return s.dispatched }
