package ecs

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct{ HP int }
type tag struct{ Name string }

func TestEntityPoolGenerations(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	assert.False(t, a.IsZero())
	assert.True(t, p.Alive(a))

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.Equal(t, a.Generation()+1, b.Generation())
	assert.False(t, p.Alive(a), "stale id must stay dead after reuse")
	assert.Equal(t, 1, p.Len())

	p.Destroy(a)
	assert.True(t, p.Alive(b), "destroying a stale id is a no-op")
}

func TestTypedComponents(t *testing.T) {
	w := NewWorld()
	Register[health](w)
	assert.Equal(t, Register[health](w), ComponentIDOf[health](w), "registration is idempotent")

	e := w.Spawn()
	Insert(w, e, health{HP: 10})
	got, ok := Get[health](w, e)
	require.True(t, ok)
	assert.Equal(t, 10, got.HP)

	got.HP = 4
	again, _ := Get[health](w, e)
	assert.Equal(t, 4, again.HP)

	_, ok = Get[tag](w, e)
	assert.False(t, ok, "unregistered types are absent, not fatal")
	assert.False(t, Has[tag](w, e))

	assert.True(t, Remove[health](w, e))
	assert.False(t, Remove[health](w, e))
	assert.False(t, Has[health](w, e))

	assert.PanicsWithValue(t, "ecs: component type ecs.tag is not registered", func() {
		Insert(w, e, tag{})
	})
}

func TestRawComponents(t *testing.T) {
	w := NewWorld()
	id := Register[tag](w)
	e := w.Spawn()

	v := tag{Name: "first"}
	w.InsertRaw(e, id, unsafe.Pointer(&v))
	v.Name = "changed"
	got, ok := Get[tag](w, e)
	require.True(t, ok)
	assert.Equal(t, "first", got.Name)

	next := tag{Name: "second"}
	w.OverwriteRaw(e, id, unsafe.Pointer(&next))
	assert.Equal(t, "second", got.Name, "overwrite keeps the live storage")
	assert.True(t, w.HasID(e, id))
	assert.Equal(t, []ComponentID{id}, w.ComponentsOf(e))

	assert.True(t, w.RemoveByID(e, id))
	assert.False(t, w.HasID(e, id))

	assert.Panics(t, func() { w.MustComponentID(reflect.TypeFor[health]()) })
	assert.Panics(t, func() { w.HasID(e, ComponentID(99)) })
}

func TestRegisterBundle(t *testing.T) {
	type bundle struct {
		Health health
		Tag    tag
	}
	w := NewWorld()
	ids := RegisterBundle[bundle](w)
	require.Len(t, ids, 2)
	assert.Equal(t, ComponentIDOf[health](w), ids[0])
	assert.Equal(t, ComponentIDOf[tag](w), ids[1])
	assert.Equal(t, ids, RegisterBundle[bundle](w))
	assert.Equal(t, 2, w.Registry().Len())
	assert.Equal(t, "ecs.tag", w.Registry().Info(ids[1]).Name)
}

func TestHierarchy(t *testing.T) {
	w := NewWorld()
	Register[tag](w)
	root := w.Spawn()
	a, b := w.Spawn(), w.Spawn()
	w.AddChild(root, a)
	w.AddChild(root, b)
	grand := w.Spawn()
	w.AddChild(a, grand)
	Insert(w, grand, tag{Name: "g"})

	assert.Equal(t, []EntityID{a, b}, w.Children(root))
	c, ok := w.ChildAt(root, 1)
	require.True(t, ok)
	assert.Equal(t, b, c)
	_, ok = w.ChildAt(root, 2)
	assert.False(t, ok)
	p, ok := w.Parent(grand)
	require.True(t, ok)
	assert.Equal(t, a, p)
	assert.Equal(t, []EntityID{root}, w.Roots())

	// Reparenting moves the child.
	w.AddChild(b, grand)
	assert.Equal(t, 0, w.ChildCount(a))
	assert.Equal(t, []EntityID{grand}, w.Children(b))

	assert.Equal(t, 2, w.DespawnRecursive(b))
	assert.False(t, w.Alive(b))
	assert.False(t, w.Alive(grand))
	assert.False(t, Has[tag](w, grand))
	assert.Equal(t, []EntityID{a}, w.Children(root))
	assert.Equal(t, 0, w.DespawnRecursive(b))

	assert.Panics(t, func() { w.AddChild(root, root) })
}

func TestDespawnOrphansChildren(t *testing.T) {
	w := NewWorld()
	root, kid := w.Spawn(), w.Spawn()
	w.AddChild(root, kid)
	w.Despawn(root)
	assert.True(t, w.Alive(kid))
	_, ok := w.Parent(kid)
	assert.False(t, ok)
	assert.Equal(t, []EntityID{kid}, w.Roots())
}

func TestDestroyQueue(t *testing.T) {
	w := NewWorld()
	root, kid := w.Spawn(), w.Spawn()
	w.AddChild(root, kid)
	w.MarkForDestruction(root)
	assert.True(t, w.Alive(root))
	assert.Equal(t, 2, w.FlushDestroyQueue())
	assert.False(t, w.Alive(kid))
	assert.Equal(t, 0, w.FlushDestroyQueue())
}

func TestQueries(t *testing.T) {
	w := NewWorld()
	hid := Register[health](w)
	Register[tag](w)
	var es []EntityID
	for i := 0; i < 4; i++ {
		e := w.Spawn()
		es = append(es, e)
		Insert(w, e, health{HP: i})
		if i%2 == 0 {
			Insert(w, e, tag{Name: "even"})
		}
	}
	assert.Equal(t, es, w.EntitiesWith(hid))

	var hp []int
	Each(w, func(_ EntityID, h *health) { hp = append(hp, h.HP) })
	assert.Equal(t, []int{0, 1, 2, 3}, hp)

	var both []EntityID
	Each2(w, func(e EntityID, _ *health, tg *tag) {
		assert.Equal(t, "even", tg.Name)
		both = append(both, e)
	})
	assert.Equal(t, []EntityID{es[0], es[2]}, both)
}
