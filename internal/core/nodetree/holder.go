package nodetree

import (
	"fmt"
	"reflect"

	"github.com/l1jgo/station/internal/core/ecs"
)

// RemoveFunc detaches one component type from an entity. It outlives the
// holder that produced it, so a later reconciliation can drop the component.
type RemoveFunc func(w *ecs.World, e ecs.EntityID)

// Holder is one component value attached to a tree node. Insert and
// Overwrite consume the value; a holder is applied at most once.
type Holder interface {
	// Type is the component type the holder attaches.
	Type() reflect.Type
	Insert(w *ecs.World, e ecs.EntityID)
	Overwrite(w *ecs.World, e ecs.EntityID)
	Remover() RemoveFunc

	// view returns the held value as a *T behind any, or nil once consumed.
	view() any
}

// View returns the holder's value if it holds a T.
func View[T any](h Holder) (*T, bool) {
	if h == nil || h.Type() != reflect.TypeFor[T]() {
		return nil, false
	}
	p, ok := h.view().(*T)
	return p, ok
}

// TypedHolder carries a value whose type was known where it was built.
type TypedHolder struct {
	typ       reflect.Type
	value     any // *T, nil once consumed
	insert    func(*ecs.World, ecs.EntityID, any)
	overwrite func(*ecs.World, ecs.EntityID, any)
	remove    RemoveFunc
}

// NewTypedHolder captures v along with the insert, overwrite and remove
// operations for T.
func NewTypedHolder[T any](v T) *TypedHolder {
	return &TypedHolder{
		typ:   reflect.TypeFor[T](),
		value: &v,
		insert: func(w *ecs.World, e ecs.EntityID, v any) {
			ecs.InsertPtr(w, e, v.(*T))
		},
		overwrite: func(w *ecs.World, e ecs.EntityID, v any) {
			if cur, ok := ecs.Get[T](w, e); ok {
				*cur = *v.(*T)
				return
			}
			ecs.InsertPtr(w, e, v.(*T))
		},
		remove: func(w *ecs.World, e ecs.EntityID) {
			ecs.Remove[T](w, e)
		},
	}
}

func (h *TypedHolder) Type() reflect.Type { return h.typ }

func (h *TypedHolder) Insert(w *ecs.World, e ecs.EntityID) {
	h.insert(w, e, h.take())
}

func (h *TypedHolder) Overwrite(w *ecs.World, e ecs.EntityID) {
	h.overwrite(w, e, h.take())
}

func (h *TypedHolder) Remover() RemoveFunc { return h.remove }

func (h *TypedHolder) view() any { return h.value }

func (h *TypedHolder) take() any {
	v := h.value
	if v == nil {
		panic(fmt.Sprintf("nodetree: %s holder applied twice", h.typ))
	}
	h.value = nil
	return v
}

// RawHolder carries a value as bytes plus the runtime type they encode. The
// storage slot is resolved from the type each time the holder is applied.
type RawHolder struct {
	typ   reflect.Type
	bytes *ecs.ByteHolder
}

// NewRawHolder wraps b, which must hold a value of type t.
func NewRawHolder(b *ecs.ByteHolder, t reflect.Type) *RawHolder {
	l := b.Layout()
	if l.Size != t.Size() || (l.Type != nil && l.Type != t) {
		panic(fmt.Sprintf("nodetree: buffer of %s cannot hold %s", l, t))
	}
	return &RawHolder{typ: t, bytes: b}
}

func (h *RawHolder) Type() reflect.Type { return h.typ }

func (h *RawHolder) Insert(w *ecs.World, e ecs.EntityID) {
	id := w.MustComponentID(h.typ)
	b := h.take()
	w.InsertRaw(e, id, b.Pointer())
	b.Release()
}

func (h *RawHolder) Overwrite(w *ecs.World, e ecs.EntityID) {
	id := w.MustComponentID(h.typ)
	b := h.take()
	w.OverwriteRaw(e, id, b.Pointer())
	b.Release()
}

func (h *RawHolder) Remover() RemoveFunc {
	t := h.typ
	return func(w *ecs.World, e ecs.EntityID) {
		w.RemoveByID(e, w.MustComponentID(t))
	}
}

func (h *RawHolder) view() any {
	if h.bytes == nil {
		return nil
	}
	return reflect.NewAt(h.typ, h.bytes.Pointer()).Interface()
}

func (h *RawHolder) take() *ecs.ByteHolder {
	b := h.bytes
	if b == nil {
		panic(fmt.Sprintf("nodetree: %s holder applied twice", h.typ))
	}
	h.bytes = nil
	return b
}
