// Package nodetree describes entity hierarchies as declarative trees and
// reconciles them onto an ecs.World.
//
// A Tree is plain data: building one touches no entity. Handing it to
// Reconciler.Insert queues it against a target entity; Reconciler.Run then
// diffs it against what that entity received last time, spawns, reuses or
// despawns children by position, and repeats until no work is left.
package nodetree

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/l1jgo/station/internal/core/ecs"
)

// Tree is the desired state of one entity: one holder per component type,
// an ordered child list, and the registrations its component types need.
// A tree is consumed by the first reconciliation it takes part in.
type Tree struct {
	components map[reflect.Type]Holder
	order      []reflect.Type
	children   []*Tree
	register   []func(*ecs.World)
	consumed   bool
}

func New() *Tree {
	return &Tree{components: make(map[reflect.Type]Holder, 4)}
}

// With attaches v to t, replacing an earlier T on the same node.
func With[T any](t *Tree, v T) *Tree {
	t.attach(NewTypedHolder(v))
	t.register = append(t.register, func(w *ecs.World) { ecs.Register[T](w) })
	return t
}

// WithBundle splits the bundle struct b into one component per exported
// field. b may be a struct value or a pointer to one.
func (t *Tree) WithBundle(b any) *Tree {
	v := reflect.ValueOf(b)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	typ := v.Type()
	fields := ecs.BundleLayout(typ)

	// Copy into addressable storage so field bytes can be read in place.
	tmp := reflect.New(typ)
	tmp.Elem().Set(v)
	base := tmp.UnsafePointer()
	for _, f := range fields {
		raw := unsafe.Slice((*byte)(unsafe.Add(base, f.Offset)), f.Layout.Size)
		t.attach(NewRawHolder(ecs.HolderFromBytes(raw, f.Layout), f.Type()))
	}
	t.register = append(t.register, func(w *ecs.World) { ecs.RegisterBundleType(w, typ) })
	return t
}

// Insert attaches a holder for a type only known at runtime.
func (t *Tree) Insert(typ reflect.Type, h Holder) *Tree {
	if h.Type() != typ {
		panic(fmt.Sprintf("nodetree: holder of %s inserted as %s", h.Type(), typ))
	}
	t.attach(h)
	t.register = append(t.register, func(w *ecs.World) { ecs.RegisterType(w, typ) })
	return t
}

func (t *Tree) attach(h Holder) {
	t.mustFresh()
	typ := h.Type()
	if _, ok := t.components[typ]; !ok {
		t.order = append(t.order, typ)
	}
	t.components[typ] = h
}

func (t *Tree) WithChild(child *Tree) *Tree {
	t.mustFresh()
	t.children = append(t.children, child)
	return t
}

func (t *Tree) WithChildren(children ...*Tree) *Tree {
	t.mustFresh()
	t.children = append(t.children, children...)
	return t
}

// Has reports whether t carries a T.
func Has[T any](t *Tree) bool {
	_, ok := t.components[reflect.TypeFor[T]()]
	return ok
}

// Get returns t's T, if present.
func Get[T any](t *Tree) (*T, bool) {
	h, ok := t.components[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return View[T](h)
}

// Types returns the component types of t in attach order.
func (t *Tree) Types() []reflect.Type {
	out := make([]reflect.Type, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of components on t.
func (t *Tree) Len() int { return len(t.order) }

func (t *Tree) Children() []*Tree { return t.children }

// Depth is 0 for a leaf and one more than the deepest child otherwise.
func (t *Tree) Depth() int {
	d := 0
	for _, c := range t.children {
		if cd := c.Depth() + 1; cd > d {
			d = cd
		}
	}
	return d
}

func (t *Tree) mustFresh() {
	if t.consumed {
		panic("nodetree: tree modified after it was applied")
	}
}
