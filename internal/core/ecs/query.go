package ecs

import "reflect"

// Each visits every entity holding T in ascending index order.
func Each[T any](w *World, fn func(EntityID, *T)) {
	id, ok := w.registry.Lookup(reflect.TypeFor[T]())
	if !ok {
		return
	}
	s := w.registry.stores[id]
	for _, e := range s.entities() {
		c, ok := s.get(e)
		if !ok {
			continue // removed by an earlier callback
		}
		fn(e, c.(*T))
	}
}

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B any](w *World, fn func(EntityID, *A, *B)) {
	ia, okA := w.registry.Lookup(reflect.TypeFor[A]())
	ib, okB := w.registry.Lookup(reflect.TypeFor[B]())
	if !okA || !okB {
		return
	}
	sa, sb := w.registry.stores[ia], w.registry.stores[ib]
	if sa.len() <= sb.len() {
		for _, e := range sa.entities() {
			a, okA := sa.get(e)
			b, okB := sb.get(e)
			if okA && okB {
				fn(e, a.(*A), b.(*B))
			}
		}
		return
	}
	for _, e := range sb.entities() {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		if okA && okB {
			fn(e, a.(*A), b.(*B))
		}
	}
}
