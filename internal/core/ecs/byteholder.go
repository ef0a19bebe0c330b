package ecs

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// ByteHolder owns one component value as a buffer of Layout.Size bytes.
//
// It is logically single-owner. The pointer is atomic only so a holder can be
// handed across goroutines between ticks; concurrent use is not supported.
type ByteHolder struct {
	ptr    atomic.Pointer[byte]
	layout Layout
	owned  bool
}

// HolderFromValue returns a holder owning an independent copy of *v.
func HolderFromValue[T any](v *T) *ByteHolder {
	l := LayoutOf[T]()
	return fromPointer(unsafe.Pointer(v), l)
}

// HolderFromBytes copies b into a fresh buffer shaped by l.
// len(b) must equal l.Size.
//
// When l.Type is nil the bytes must not contain Go pointers: the buffer is
// plain memory the collector does not scan.
func HolderFromBytes(b []byte, l Layout) *ByteHolder {
	if uintptr(len(b)) != l.Size {
		panic(fmt.Sprintf("ecs: %d bytes do not fit layout %s", len(b), l))
	}
	return fromPointer(unsafe.Pointer(unsafe.SliceData(b)), l)
}

func fromPointer(src unsafe.Pointer, l Layout) *ByteHolder {
	h := &ByteHolder{layout: l, owned: true}
	dst := allocate(l)
	copyValue(l, dst, src)
	h.ptr.Store((*byte)(dst))
	return h
}

func (h *ByteHolder) Layout() Layout { return h.layout }

// Live reports whether the holder still owns its buffer.
func (h *ByteHolder) Live() bool { return h.ptr.Load() != nil }

// Pointer returns the start of the buffer.
func (h *ByteHolder) Pointer() unsafe.Pointer {
	p := h.ptr.Load()
	if p == nil {
		panic("ecs: byte holder used after its buffer was released or transferred")
	}
	return unsafe.Pointer(p)
}

// Bytes returns the buffer as a byte slice aliasing the holder's memory.
func (h *ByteHolder) Bytes() []byte {
	return unsafe.Slice((*byte)(h.Pointer()), h.layout.Size)
}

// Clone deep-copies the buffer into a new allocation owned by the result.
func (h *ByteHolder) Clone() *ByteHolder {
	return fromPointer(h.Pointer(), h.layout)
}

// Release drops the buffer. Releasing a holder twice, or after its buffer
// was transferred with IntoOwned, panics.
func (h *ByteHolder) Release() {
	if !h.owned {
		panic("ecs: byte holder released twice or after ownership transfer")
	}
	h.owned = false
	h.ptr.Store(nil)
}

// take hands the buffer to the caller and leaves h unusable.
func (h *ByteHolder) take() unsafe.Pointer {
	p := h.ptr.Swap(nil)
	if p == nil || !h.owned {
		panic("ecs: byte holder used after its buffer was released or transferred")
	}
	h.owned = false
	return unsafe.Pointer(p)
}

// Ptr reinterprets the buffer as *T. The holder must have been built from a
// T-shaped source; nothing is checked beyond liveness.
func Ptr[T any](h *ByteHolder) *T {
	return (*T)(h.Pointer())
}

// Value returns a copy of the buffer read as T. Unchecked, like Ptr.
func Value[T any](h *ByteHolder) T {
	return *Ptr[T](h)
}

// IntoOwned transfers the buffer to the returned *T. The holder must not be
// used or released afterwards. Unchecked, like Ptr.
func IntoOwned[T any](h *ByteHolder) *T {
	return (*T)(h.take())
}
