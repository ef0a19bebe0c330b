package system

import (
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/nodetree"
	coresys "github.com/l1jgo/station/internal/core/system"
	"github.com/l1jgo/station/internal/data"
	"github.com/l1jgo/station/internal/scripting"
	"github.com/l1jgo/station/internal/ui"
)

// HUDState is what a HUD builder sees each tick.
type HUDState struct {
	Tick     uint64
	Elapsed  time.Duration
	Entities int
}

// Seconds is the whole number of seconds since start.
func (s HUDState) Seconds() int { return int(s.Elapsed / time.Second) }

// BuildFunc describes the HUD for one tick. Every call returns a new tree.
type BuildFunc func(HUDState) (*nodetree.Tree, error)

// LuaBuilder calls the Lua function fn with a state table.
func LuaBuilder(e *scripting.Engine, fn string) BuildFunc {
	return func(s HUDState) (*nodetree.Tree, error) {
		state := e.Table(map[string]any{
			"tick":     s.Tick,
			"seconds":  s.Seconds(),
			"entities": s.Entities,
		})
		return e.Build(fn, lua.LValue(state))
	}
}

// TemplateBuilder builds the named YAML template.
func TemplateBuilder(t *data.TemplateTable, name string) BuildFunc {
	return func(HUDState) (*nodetree.Tree, error) {
		return t.Build(name)
	}
}

// ClockBuilder shows the elapsed time over a row of one to five counters
// that grows by one each second and starts over.
func ClockBuilder() BuildFunc {
	return func(s HUDState) (*nodetree.Tree, error) {
		root := ui.WithDirection(ui.Div(), ui.Column)
		root.WithChild(ui.Labelf("T+%02d:%02d", s.Seconds()/60, s.Seconds()%60))
		for i := 0; i <= s.Seconds()%5; i++ {
			root.WithChild(ui.Labelf("%d", i+1))
		}
		return root, nil
	}
}

// FindRoot returns the entity marked with ui.Root{Name: name}.
func FindRoot(w *ecs.World, name string) (ecs.EntityID, bool) {
	var found ecs.EntityID
	ecs.Each(w, func(e ecs.EntityID, r *ui.Root) {
		if found.IsZero() && r.Name == name {
			found = e
		}
	})
	return found, !found.IsZero()
}

// HUDSystem describes the HUD each tick and queues it for reconciliation
// onto the HUD root entity, spawning the root on first use.
// Phase 2 (Update).
type HUDSystem struct {
	world    *ecs.World
	rec      *nodetree.Reconciler
	build    BuildFunc
	rootName string
	log      *zap.Logger
	state    HUDState
	lastErr  string
}

func NewHUDSystem(rec *nodetree.Reconciler, build BuildFunc, rootName string, log *zap.Logger) *HUDSystem {
	if log == nil {
		log = zap.NewNop()
	}
	ecs.Register[ui.Root](rec.World())
	return &HUDSystem{
		world:    rec.World(),
		rec:      rec,
		build:    build,
		rootName: rootName,
		log:      log,
	}
}

func (s *HUDSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Root returns the HUD root, spawning it if needed.
func (s *HUDSystem) Root() ecs.EntityID {
	if e, ok := FindRoot(s.world, s.rootName); ok {
		return e
	}
	e := s.world.Spawn()
	ecs.Insert(s.world, e, ui.Root{Name: s.rootName})
	s.log.Info("hud root spawned", zap.String("root", s.rootName), zap.Stringer("entity", e))
	return e
}

func (s *HUDSystem) Update(dt time.Duration) {
	s.state.Tick++
	s.state.Elapsed += dt
	s.state.Entities = s.world.Pool().Len()

	tree, err := s.build(s.state)
	if err != nil {
		// Keep the last good HUD; log each distinct failure once.
		if msg := err.Error(); msg != s.lastErr {
			s.lastErr = msg
			s.log.Warn("hud build failed", zap.Uint64("tick", s.state.Tick), zap.Error(err))
		}
		return
	}
	if s.lastErr != "" {
		s.log.Info("hud build recovered", zap.Uint64("tick", s.state.Tick))
		s.lastErr = ""
	}
	s.rec.Insert(s.Root(), tree)
}

// State returns the state passed to the last build.
func (s *HUDSystem) State() HUDState { return s.state }

func (s *HUDSystem) String() string {
	return fmt.Sprintf("hud(%s)", s.rootName)
}
