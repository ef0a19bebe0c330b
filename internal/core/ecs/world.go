package ecs

import (
	"fmt"
	"reflect"
	"slices"
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the parent/child hierarchy, and a deferred destruction queue
// flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	children     map[EntityID][]EntityID
	parent       map[EntityID]EntityID
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		children:     make(map[EntityID][]EntityID, 64),
		parent:       make(map[EntityID]EntityID, 64),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// Spawn creates an entity with no components.
func (w *World) Spawn() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

func (w *World) mustAlive(id EntityID) {
	if !w.pool.Alive(id) {
		panic(fmt.Sprintf("ecs: entity %s is not alive", id))
	}
}

// ComponentID returns the slot registered for t.
func (w *World) ComponentID(t reflect.Type) (ComponentID, bool) {
	return w.registry.Lookup(t)
}

// MustComponentID returns the slot registered for t. An unregistered type
// means a registration step was skipped, which is a bug in the caller.
func (w *World) MustComponentID(t reflect.Type) ComponentID {
	id, ok := w.registry.Lookup(t)
	if !ok {
		panic(fmt.Sprintf("ecs: component type %s is not registered", t))
	}
	return id
}

// AddChild appends child to the child order of parent, detaching it from
// any previous parent first.
func (w *World) AddChild(parent, child EntityID) {
	w.mustAlive(parent)
	w.mustAlive(child)
	if parent == child {
		panic(fmt.Sprintf("ecs: entity %s cannot be its own child", parent))
	}
	w.detach(child)
	w.children[parent] = append(w.children[parent], child)
	w.parent[child] = parent
}

// Children returns a copy of e's child order.
func (w *World) Children(e EntityID) []EntityID {
	return slices.Clone(w.children[e])
}

// ChildAt returns the child at position i of e's child order.
func (w *World) ChildAt(e EntityID, i int) (EntityID, bool) {
	kids := w.children[e]
	if i < 0 || i >= len(kids) {
		return 0, false
	}
	return kids[i], true
}

func (w *World) ChildCount(e EntityID) int { return len(w.children[e]) }

// Parent returns e's parent, if it has one.
func (w *World) Parent(e EntityID) (EntityID, bool) {
	p, ok := w.parent[e]
	return p, ok
}

// Roots returns the live entities without a parent in ascending index order.
func (w *World) Roots() []EntityID {
	var roots []EntityID
	w.pool.Each(func(e EntityID) {
		if _, ok := w.parent[e]; !ok {
			roots = append(roots, e)
		}
	})
	return roots
}

// EntitiesWith returns the holders of slot id in ascending index order.
func (w *World) EntitiesWith(id ComponentID) []EntityID {
	return w.registry.store(id).entities()
}

func (w *World) detach(child EntityID) {
	p, ok := w.parent[child]
	if !ok {
		return
	}
	delete(w.parent, child)
	kids := w.children[p]
	if i := slices.Index(kids, child); i >= 0 {
		w.children[p] = slices.Delete(kids, i, i+1)
	}
}

// Despawn destroys e and its components. Its children are left without a parent.
func (w *World) Despawn(e EntityID) {
	if !w.pool.Alive(e) {
		return
	}
	w.detach(e)
	for _, c := range w.children[e] {
		delete(w.parent, c)
	}
	delete(w.children, e)
	w.registry.RemoveAll(e)
	w.pool.Destroy(e)
}

// DespawnRecursive destroys e and every descendant, deepest first.
// It returns the number of entities destroyed.
func (w *World) DespawnRecursive(e EntityID) int {
	if !w.pool.Alive(e) {
		return 0
	}
	w.detach(e)
	// Collect the subtree breadth-first with a worklist instead of recursing.
	order := []EntityID{e}
	for i := 0; i < len(order); i++ {
		order = append(order, w.children[order[i]]...)
	}
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		delete(w.children, id)
		delete(w.parent, id)
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
	return len(order)
}

// MarkForDestruction queues an entity and its descendants for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick. It returns the number of
// entities destroyed.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		n += w.DespawnRecursive(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
