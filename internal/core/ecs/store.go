package ecs

import (
	"cmp"
	"reflect"
	"slices"
	"unsafe"
)

// store holds the values of one component slot. Every value is a *T of the
// slot's type stored behind any, so typed access is a plain type assertion
// and raw access goes through reflect.
type store struct {
	info ComponentInfo
	data map[EntityID]any
}

func newStore(info ComponentInfo) *store {
	return &store{
		info: info,
		data: make(map[EntityID]any, 64),
	}
}

func (s *store) set(id EntityID, ptr any) {
	s.data[id] = ptr
}

func (s *store) get(id EntityID) (any, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *store) has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *store) remove(id EntityID) bool {
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	return true
}

func (s *store) len() int { return len(s.data) }

// setRaw stores a fresh copy of the value at src.
func (s *store) setRaw(id EntityID, src unsafe.Pointer) {
	v := reflect.New(s.info.Type())
	copyValue(s.info.Layout, v.UnsafePointer(), src)
	s.data[id] = v.Interface()
}

// overwriteRaw copies the value at src over the live value of id. It
// returns false when id holds no value in this slot.
func (s *store) overwriteRaw(id EntityID, src unsafe.Pointer) bool {
	cur, ok := s.data[id]
	if !ok {
		return false
	}
	copyValue(s.info.Layout, reflect.ValueOf(cur).UnsafePointer(), src)
	return true
}

// entities returns the holders of this slot in ascending index order.
func (s *store) entities() []EntityID {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b EntityID) int { return cmp.Compare(a.Index(), b.Index()) })
	return ids
}
