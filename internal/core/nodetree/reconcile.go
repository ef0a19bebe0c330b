package nodetree

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/event"
)

// template records what the last reconciliation attached to an entity.
// removers[i] detaches types[i].
type template struct {
	types    []reflect.Type
	removers []RemoveFunc
}

// pendingChildren holds the child trees of an entity until the next pass
// unpacks them.
type pendingChildren struct {
	trees []*Tree
}

// Stats counts reconciliation work since the Reconciler was created.
type Stats struct {
	Applied     int
	Inserted    int
	Overwritten int
	Removed     int
	Spawned     int
	Despawned   int
	Passes      int
}

type command struct {
	entity ecs.EntityID
	tree   *Tree
}

// Reconciler converges entity hierarchies to node trees. It is not safe for
// concurrent use; it runs inside the tick like any other system.
type Reconciler struct {
	world   *ecs.World
	bus     *event.Bus
	log     *zap.Logger
	queue   []command
	work    int
	stats   Stats
	cacheID ecs.ComponentID
}

func NewReconciler(w *ecs.World, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	ecs.Register[template](w)
	return &Reconciler{
		world:   w,
		log:     log,
		cacheID: ecs.Register[pendingChildren](w),
	}
}

// SetBus makes the reconciler publish TreeApplied, ChildSpawned and
// ChildDespawned events on bus. A nil bus disables publishing.
func (r *Reconciler) SetBus(bus *event.Bus) { r.bus = bus }

func (r *Reconciler) World() *ecs.World { return r.world }

func (r *Reconciler) Stats() Stats { return r.stats }

// Apply reconciles t onto e immediately. t's children are not touched yet;
// they are cached on e for the next Pass. Most callers want Insert.
func (r *Reconciler) Apply(e ecs.EntityID, t *Tree) {
	if t.consumed {
		panic("nodetree: tree applied twice")
	}
	t.consumed = true
	w := r.world

	for _, reg := range t.register {
		reg(w)
	}

	applied := event.TreeApplied{Entity: e, Children: len(t.children)}
	next := template{
		types:    t.order,
		removers: make([]RemoveFunc, 0, len(t.order)),
	}
	for _, typ := range t.order {
		h := t.components[typ]
		if w.HasID(e, w.MustComponentID(typ)) {
			h.Overwrite(w, e)
			applied.Overwritten++
		} else {
			h.Insert(w, e)
			applied.Inserted++
		}
		next.removers = append(next.removers, h.Remover())
	}

	if prev, ok := ecs.Get[template](w, e); ok {
		for i, typ := range prev.types {
			if _, kept := t.components[typ]; kept {
				continue
			}
			prev.removers[i](w, e)
			applied.Removed++
		}
	}

	ecs.Insert(w, e, next)
	ecs.Insert(w, e, pendingChildren{trees: t.children})
	// Holders are spent; drop them so the consumed tree retains nothing.
	t.components, t.children, t.register = nil, nil, nil

	r.work++
	r.stats.Applied++
	r.stats.Inserted += applied.Inserted
	r.stats.Overwritten += applied.Overwritten
	r.stats.Removed += applied.Removed
	if r.bus != nil {
		event.Emit(r.bus, applied)
	}
}

// AppliedTypes returns the component types the last reconciliation of e
// attached, in attach order.
func (r *Reconciler) AppliedTypes(e ecs.EntityID) ([]reflect.Type, bool) {
	prev, ok := ecs.Get[template](r.world, e)
	if !ok {
		return nil, false
	}
	out := make([]reflect.Type, len(prev.types))
	copy(out, prev.types)
	return out, true
}

// Pending reports whether e still has children waiting to be unpacked.
func (r *Reconciler) Pending(e ecs.EntityID) bool {
	return r.world.HasID(e, r.cacheID)
}
