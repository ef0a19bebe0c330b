package ecs

import (
	"fmt"
	"reflect"
)

// ComponentID identifies the storage slot of one component type in a World.
type ComponentID uint32

// ComponentInfo describes a registered component type.
type ComponentInfo struct {
	ID     ComponentID
	Name   string
	Layout Layout
}

func (i ComponentInfo) Type() reflect.Type { return i.Layout.Type }

// Registry maps component types to slots and owns one store per slot, so an
// entity's data can be bulk-removed from every store on destroy.
type Registry struct {
	byType map[reflect.Type]ComponentID
	infos  []ComponentInfo
	stores []*store
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]ComponentID, 32),
		infos:  make([]ComponentInfo, 0, 32),
		stores: make([]*store, 0, 32),
	}
}

// register returns the slot of t, creating it on first use.
func (r *Registry) register(t reflect.Type) ComponentID {
	if id, ok := r.byType[t]; ok {
		return id
	}
	id := ComponentID(len(r.infos))
	info := ComponentInfo{ID: id, Name: t.String(), Layout: LayoutFor(t)}
	r.byType[t] = id
	r.infos = append(r.infos, info)
	r.stores = append(r.stores, newStore(info))
	return id
}

// Lookup returns the slot registered for t.
func (r *Registry) Lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := r.byType[t]
	return id, ok
}

// Info returns the description of a registered slot.
func (r *Registry) Info(id ComponentID) ComponentInfo {
	return r.store(id).info
}

// Len returns the number of registered component types.
func (r *Registry) Len() int { return len(r.infos) }

func (r *Registry) store(id ComponentID) *store {
	if int(id) >= len(r.stores) {
		panic(fmt.Sprintf("ecs: component slot %d is not registered", id))
	}
	return r.stores[id]
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.remove(id)
	}
}
