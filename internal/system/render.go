package system

import (
	"time"

	"github.com/l1jgo/station/internal/core/ecs"
	coresys "github.com/l1jgo/station/internal/core/system"
	"github.com/l1jgo/station/internal/render"
)

// RenderSystem draws the HUD root to the terminal.
// Phase 4 (Output).
type RenderSystem struct {
	world    *ecs.World
	term     *render.Terminal
	rootName string
	drawn    int
}

func NewRenderSystem(world *ecs.World, term *render.Terminal, rootName string) *RenderSystem {
	return &RenderSystem{world: world, term: term, rootName: rootName}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	root, ok := FindRoot(s.world, s.rootName)
	if !ok {
		return
	}
	s.drawn = s.term.Draw(s.world, root)
}

// Drawn returns the number of nodes drawn in the last frame.
func (s *RenderSystem) Drawn() int { return s.drawn }
