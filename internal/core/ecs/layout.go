package ecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Layout describes the memory shape of one component value.
//
// Type is optional for pointer-free data. When it is set, buffers are
// allocated as that type and copies go through typed moves, so the garbage
// collector keeps seeing every pointer stored inside the bytes.
type Layout struct {
	Size  uintptr
	Align uintptr
	Type  reflect.Type
}

// LayoutOf returns the layout of T.
func LayoutOf[T any]() Layout {
	return LayoutFor(reflect.TypeFor[T]())
}

// LayoutFor returns the layout of t.
func LayoutFor(t reflect.Type) Layout {
	return Layout{Size: t.Size(), Align: uintptr(t.Align()), Type: t}
}

// RawLayout describes size bytes of pointer-free data.
func RawLayout(size, align uintptr) Layout {
	if align == 0 || align&(align-1) != 0 {
		panic(fmt.Sprintf("ecs: alignment %d is not a power of two", align))
	}
	return Layout{Size: size, Align: align}
}

func (l Layout) String() string {
	if l.Type != nil {
		return fmt.Sprintf("%s(size=%d, align=%d)", l.Type, l.Size, l.Align)
	}
	return fmt.Sprintf("raw(size=%d, align=%d)", l.Size, l.Align)
}

// allocate returns zeroed memory for one value of layout l.
func allocate(l Layout) unsafe.Pointer {
	if l.Type != nil {
		return reflect.New(l.Type).UnsafePointer()
	}
	// Over-allocate so the start can be aligned; an interior pointer keeps
	// the whole buffer alive.
	buf := make([]byte, l.Size+l.Align)
	base := unsafe.Pointer(unsafe.SliceData(buf))
	if pad := uintptr(base) % l.Align; pad != 0 {
		return unsafe.Add(base, l.Align-pad)
	}
	return base
}

// copyValue copies one value of layout l from src to dst.
func copyValue(l Layout, dst, src unsafe.Pointer) {
	if l.Size == 0 {
		return
	}
	if l.Type != nil {
		reflect.NewAt(l.Type, dst).Elem().Set(reflect.NewAt(l.Type, src).Elem())
		return
	}
	copy(unsafe.Slice((*byte)(dst), l.Size), unsafe.Slice((*byte)(src), l.Size))
}
