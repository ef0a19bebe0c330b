package ecs

import (
	"reflect"
	"unsafe"
)

// Register makes T a component type of w and returns its slot. Idempotent.
func Register[T any](w *World) ComponentID {
	return w.registry.register(reflect.TypeFor[T]())
}

// RegisterType is Register for a type only known at runtime.
func RegisterType(w *World, t reflect.Type) ComponentID {
	return w.registry.register(t)
}

// RegisterBundle registers every field type of the bundle struct B.
func RegisterBundle[B any](w *World) []ComponentID {
	return RegisterBundleType(w, reflect.TypeFor[B]())
}

// RegisterBundleType is RegisterBundle for a type only known at runtime.
func RegisterBundleType(w *World, t reflect.Type) []ComponentID {
	fields := BundleLayout(t)
	ids := make([]ComponentID, len(fields))
	for i, f := range fields {
		ids[i] = w.registry.register(f.Type())
	}
	return ids
}

// ComponentIDOf returns the slot of T. T must be registered.
func ComponentIDOf[T any](w *World) ComponentID {
	return w.MustComponentID(reflect.TypeFor[T]())
}

// Insert attaches v to e as a new value, replacing any previous value of T.
// T must be registered.
func Insert[T any](w *World, e EntityID, v T) {
	w.mustAlive(e)
	id := ComponentIDOf[T](w)
	w.registry.stores[id].set(e, &v)
}

// InsertPtr attaches the value at p to e without copying it.
func InsertPtr[T any](w *World, e EntityID, p *T) {
	w.mustAlive(e)
	id := ComponentIDOf[T](w)
	w.registry.stores[id].set(e, p)
}

// Get returns e's value of T. Writes through the pointer update it in place.
func Get[T any](w *World, e EntityID) (*T, bool) {
	id, ok := w.registry.Lookup(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	c, ok := w.registry.stores[id].get(e)
	if !ok {
		return nil, false
	}
	return c.(*T), true
}

func Has[T any](w *World, e EntityID) bool {
	id, ok := w.registry.Lookup(reflect.TypeFor[T]())
	return ok && w.registry.stores[id].has(e)
}

// Remove detaches T from e and reports whether it was present.
func Remove[T any](w *World, e EntityID) bool {
	id, ok := w.registry.Lookup(reflect.TypeFor[T]())
	return ok && w.registry.stores[id].remove(e)
}

// InsertRaw attaches a copy of the value at src, which must point at a value
// of the slot's type.
func (w *World) InsertRaw(e EntityID, id ComponentID, src unsafe.Pointer) {
	w.mustAlive(e)
	w.registry.store(id).setRaw(e, src)
}

// OverwriteRaw copies the value at src over e's live value in place, keeping
// the storage other pointers from Get refer to. A missing value is inserted.
func (w *World) OverwriteRaw(e EntityID, id ComponentID, src unsafe.Pointer) {
	w.mustAlive(e)
	s := w.registry.store(id)
	if !s.overwriteRaw(e, src) {
		s.setRaw(e, src)
	}
}

// GetByID returns e's value in slot id as a *T behind any.
func (w *World) GetByID(e EntityID, id ComponentID) (any, bool) {
	return w.registry.store(id).get(e)
}

func (w *World) HasID(e EntityID, id ComponentID) bool {
	return w.registry.store(id).has(e)
}

// RemoveByID detaches slot id from e and reports whether it was present.
func (w *World) RemoveByID(e EntityID, id ComponentID) bool {
	return w.registry.store(id).remove(e)
}

// ComponentsOf returns the slots e holds a value in, ascending.
func (w *World) ComponentsOf(e EntityID) []ComponentID {
	var ids []ComponentID
	for _, s := range w.registry.stores {
		if s.has(e) {
			ids = append(ids, s.info.ID)
		}
	}
	return ids
}
