package nodetree

import (
	"go.uber.org/zap"

	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/event"
)

// Insert queues t for reconciliation onto e. Nothing happens until the next Run.
func (r *Reconciler) Insert(e ecs.EntityID, t *Tree) {
	r.queue = append(r.queue, command{entity: e, tree: t})
}

// Queued returns the number of trees waiting for Run.
func (r *Reconciler) Queued() int { return len(r.queue) }

// Pass unpacks the children of every entity that held pending children when
// the pass started. Children created or refreshed here are left for the next
// pass, so a tree resolves one level per pass. It returns the work done: one
// per entity unpacked plus one per child reconciled.
func (r *Reconciler) Pass() int {
	r.work = 0
	w := r.world
	for _, e := range w.EntitiesWith(r.cacheID) {
		cache, ok := ecs.Get[pendingChildren](w, e)
		if !ok {
			continue // despawned earlier in this pass
		}
		trees := cache.trees
		cache.trees = nil

		for i, child := range trees {
			target, ok := w.ChildAt(e, i)
			if !ok {
				target = w.Spawn()
				w.AddChild(e, target)
				r.stats.Spawned++
				if r.bus != nil {
					event.Emit(r.bus, event.ChildSpawned{Parent: e, Child: target, Index: i})
				}
			}
			r.Apply(target, child)
		}

		for n := w.ChildCount(e); n > len(trees); n = w.ChildCount(e) {
			last, _ := w.ChildAt(e, n-1)
			count := w.DespawnRecursive(last)
			r.stats.Despawned += count
			if r.bus != nil {
				event.Emit(r.bus, event.ChildDespawned{Parent: e, Child: last, Count: count})
			}
		}

		w.RemoveByID(e, r.cacheID)
		r.work++
	}
	r.stats.Passes++
	return r.work
}

// Run applies every queued tree, then runs passes until one does no work. It
// returns the number of passes that did work; a tree of depth D takes D+1.
func (r *Reconciler) Run() int {
	queued := r.queue
	r.queue = nil
	for _, c := range queued {
		if !r.world.Alive(c.entity) {
			r.log.Debug("drop tree for dead entity", zap.Stringer("entity", c.entity))
			continue
		}
		r.Apply(c.entity, c.tree)
	}

	passes := 0
	for r.Pass() > 0 {
		passes++
	}
	if passes > 0 {
		r.log.Debug("reconcile converged",
			zap.Int("trees", len(queued)),
			zap.Int("passes", passes),
		)
	}
	return passes
}
